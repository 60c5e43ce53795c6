package anthropicadapter

// MessagesError is the error detail shape of the Anthropic Messages API.
type MessagesError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Error implements the error interface, returning the error message.
func (e *MessagesError) Error() string {
	return e.Message
}

// ErrorResponse wraps MessagesError in the envelope Anthropic clients
// expect: {"type": "error", "error": {...}}.
type ErrorResponse struct {
	// EnvelopeType is always "error"; serialized as the outer "type" field.
	EnvelopeType string        `json:"type"`
	Err          MessagesError `json:"error"`
}

// NewErrorResponse builds a complete error envelope.
func NewErrorResponse(errType, message string) *ErrorResponse {
	return &ErrorResponse{
		EnvelopeType: "error",
		Err: MessagesError{
			Type:    errType,
			Message: message,
		},
	}
}

// Error implements the error interface, returning the underlying error
// message. This allows ErrorResponse to be used directly in error returns
// while keeping the full envelope for marshaling.
func (e *ErrorResponse) Error() string {
	if e.Err.Message == "" {
		return "unknown error"
	}
	return e.Err.Message
}
