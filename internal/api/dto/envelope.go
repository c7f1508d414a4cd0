package dto

// Envelope is the response shape shared by every endpoint.
type Envelope struct {
	Success    bool           `json:"success"`
	Data       any            `json:"data,omitempty"`
	Error      string         `json:"error,omitempty"`
	Code       string         `json:"code,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	StatusCode int            `json:"statusCode"`
}

// Success wraps data in a success envelope.
func Success(status int, data any) Envelope {
	return Envelope{Success: true, Data: data, StatusCode: status}
}

// Failure builds an error envelope.
func Failure(status int, code, message string, details map[string]any) Envelope {
	return Envelope{Success: false, Error: message, Code: code, Details: details, StatusCode: status}
}
