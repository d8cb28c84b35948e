// pkg/models/api.go
package models

// Envelope is the success response shape shared by every handler.
type Envelope struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
	User    any    `json:"user,omitempty"`
	Order   any    `json:"order,omitempty"`
	Token   string `json:"token,omitempty"`
}

// Validation error response (Laravel-style field map)
type ValidationErrorResponse struct {
	Success bool                `json:"success" example:"false"`
	Message string              `json:"message" example:"Validation failed"`
	Errors  map[string][]string `json:"errors"`
}

// Generic error response (401/403/404/409/500)
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message" example:"Access denied"`
}

// OK wraps data in a success envelope with a message.
func OK(message string, data any) Envelope {
	return Envelope{Success: true, Message: message, Data: data}
}

// List wraps a slice in a success envelope with its count.
func List[T any](items []T) Envelope {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	return Envelope{Success: true, Count: &n, Data: items}
}
