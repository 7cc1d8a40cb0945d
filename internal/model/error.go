package model

// ErrorResponse is the JSON body of every error the storefront writes.
type ErrorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlationId,omitempty"`
	// Redirect tells the UI where to send the shopper, e.g. the login page.
	Redirect string `json:"redirect,omitempty"`
	Conflict bool   `json:"conflict,omitempty"`
}
