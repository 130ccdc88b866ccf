package services

import (
	"github.com/sirupsen/logrus"

	"github.com/arbportal/feedback-portal/pkg/eventbus"
)

// AuditLogger turns pipeline lifecycle events into structured log lines, so
// that staged, confirmed and discarded change sets leave an audit trail
// without anyone having to read the staging directory.
type AuditLogger struct {
	logger *logrus.Logger
}

func NewAuditLogger(logger *logrus.Logger) *AuditLogger {
	return &AuditLogger{logger: logger}
}

func (a *AuditLogger) Register(bus eventbus.EventBus) {
	bus.Subscribe(a.onUploadStaged)
	bus.Subscribe(a.onStagingConfirmed)
	bus.Subscribe(a.onStagingDiscarded)
}

func (a *AuditLogger) onUploadStaged(e UploadStagedEvent) {
	a.logger.WithFields(logrus.Fields{
		"staged_id":    e.StagedID,
		"incidence_id": e.IncidenceID,
		"schema_id":    e.SchemaID,
		"filename":     e.SourceFilename,
	}).Info("upload staged for review")
}

func (a *AuditLogger) onStagingConfirmed(e StagingConfirmedEvent) {
	a.logger.WithFields(logrus.Fields{
		"staged_id":    e.StagedID,
		"incidence_id": e.Result.ID(),
		"overridden":   e.Overridden,
	}).Info("staged change set confirmed")
}

func (a *AuditLogger) onStagingDiscarded(e StagingDiscardedEvent) {
	a.logger.WithField("staged_id", e.StagedID).Info("staged change set discarded")
}
