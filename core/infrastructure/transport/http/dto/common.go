package dto

// HealthResponse represents a health check response
type HealthResponse struct {
	Success bool   `json:"success"`
	Version string `json:"version,omitempty"`
}

// ErrorDetail represents detailed error information
type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"tag"`
}

// ErrorResponse is the body of every non-2xx API response
type ErrorResponse struct {
	Detail string `json:"detail,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ValidationErrorResponse represents a validation error response
type ValidationErrorResponse struct {
	Detail  string        `json:"detail"`
	Details []ErrorDetail `json:"details,omitempty"`
}
