package metrics

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arbportal/feedback-portal/pkg/application"
)

// Review-workflow counters, shared by the ingest and staging services.
var (
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedback_uploads_total",
		Help: "Workbook uploads by outcome (staged, rejected).",
	}, []string{"outcome"})

	StagedConfirmsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedback_staged_confirms_total",
		Help: "Staged change-sets confirmed into the database.",
	})

	StagedDiscardsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedback_staged_discards_total",
		Help: "Staged change-sets discarded by a reviewer.",
	})

	ValidationViolationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedback_validation_violations_total",
		Help: "Validation rule violations collected during uploads.",
	})
)

type PrometheusController struct {
	path string
}

func NewPrometheusController(path string) application.Controller {
	if path == "" {
		path = "/debug/prometheus"
	}
	return &PrometheusController{path: path}
}

func (c *PrometheusController) Key() string {
	return c.path
}

func (c *PrometheusController) Register(r *mux.Router) {
	r.Handle(c.path, promhttp.Handler()).Methods(http.MethodGet)
}
