package controllers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/arbportal/feedback-portal/pkg/application"
	"github.com/arbportal/feedback-portal/pkg/composables"
)

type healthStatus string

const (
	healthStatusHealthy healthStatus = "healthy"
	healthStatusDown    healthStatus = "down"
)

type healthResponse struct {
	Status    healthStatus   `json:"status"`
	Timestamp string         `json:"timestamp"`
	Checks    map[string]any `json:"checks"`
}

type componentHealth struct {
	Status       healthStatus `json:"status"`
	ResponseTime string       `json:"responseTime,omitempty"`
	Error        string       `json:"error,omitempty"`
}

type HealthController struct {
	app application.Application
}

func NewHealthController(app application.Application) application.Controller {
	return &HealthController{app: app}
}

func (c *HealthController) Key() string {
	return "/health"
}

func (c *HealthController) Register(r *mux.Router) {
	r.HandleFunc("/health", c.Get).Methods(http.MethodGet)
}

func (c *HealthController) Get(w http.ResponseWriter, r *http.Request) {
	db := componentHealth{Status: healthStatusHealthy}
	start := time.Now()
	if pool, err := composables.UsePool(r.Context()); err != nil {
		db = componentHealth{Status: healthStatusDown, Error: err.Error()}
	} else if err := pool.Ping(r.Context()); err != nil {
		db = componentHealth{Status: healthStatusDown, Error: err.Error()}
	}
	db.ResponseTime = time.Since(start).String()

	response := healthResponse{
		Status:    db.Status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    map[string]any{"database": db},
	}
	status := http.StatusOK
	if response.Status != healthStatusHealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}
