package response

import "shower_intake/internal/models"

// SuccessResponse is returned by commands that have nothing else to report.
type SuccessResponse struct {
	Message string `json:"message" example:"ok"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	// Machine-readable error code
	// example: VALIDATION_ERROR
	Code string `json:"code"`

	// Human-readable message
	// example: missing required fields: first_name
	Message string `json:"message"`

	// Optional details
	// example: first_name,last_name
	Details string `json:"details,omitempty"`
}

// BannedResponse is returned when intake matches the ban registry.
type BannedResponse struct {
	ErrorResponse
	Entry models.BannedEntry `json:"entry"`
}
