package controllers

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/arbportal/feedback-portal/modules/feedback/domain/incidence"
	"github.com/arbportal/feedback-portal/modules/feedback/domain/staging"
	"github.com/arbportal/feedback-portal/modules/feedback/infrastructure/stagingstore"
)

var validate = validator.New()

type ConfirmRequest struct {
	Override bool `json:"override"`
}

type ListIncidencesQuery struct {
	Sector string `validate:"omitempty,oneof=oil_and_gas landfill dairy_digester energy generic"`
	Limit  int    `validate:"min=1,max=1000"`
	Offset int    `validate:"min=0"`
}

type StagedListResponse struct {
	Items     []*staging.ChangeSet         `json:"items"`
	Malformed []stagingstore.MalformedFile `json:"malformed,omitempty"`
}

type IncidenceResponse struct {
	ID        int64          `json:"id"`
	Sector    string         `json:"sector"`
	SchemaID  string         `json:"schema_id"`
	Fields    map[string]any `json:"fields"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func toIncidenceResponse(inc incidence.Incidence) IncidenceResponse {
	return IncidenceResponse{
		ID:        inc.ID(),
		Sector:    string(inc.Sector()),
		SchemaID:  inc.SchemaID(),
		Fields:    inc.Fields(),
		CreatedAt: inc.CreatedAt(),
		UpdatedAt: inc.UpdatedAt(),
	}
}

type IncidenceListResponse struct {
	Items  []IncidenceResponse `json:"items"`
	Total  int64               `json:"total"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}
