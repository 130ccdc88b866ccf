package services

import (
	"github.com/arbportal/feedback-portal/modules/feedback/domain/incidence"
	"github.com/arbportal/feedback-portal/modules/feedback/domain/staging"
)

type UploadStagedEvent struct {
	StagedID       string
	IncidenceID    int64
	SchemaID       string
	SourceFilename string
	ChangeSet      *staging.ChangeSet
}

type StagingConfirmedEvent struct {
	StagedID   string
	Overridden bool
	Result     incidence.Incidence
}

type StagingDiscardedEvent struct {
	StagedID string
}
