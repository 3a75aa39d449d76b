package errors

// standardized error body returned by every REST handler
type ErrorResponse struct {
	Error   string `json:"error"`             // error code (e.g., "unauthorized", "quota_exceeded")
	Message string `json:"message"`           // user-facing message
	Details string `json:"details,omitempty"` // sanitized in production
}

// result of classifying an error for logging and sanitizing
type ErrorInfo struct {
	category  string
	sanitized string
}

// returns the category assigned by classifyError
func (i ErrorInfo) Category() string {
	return i.category
}
