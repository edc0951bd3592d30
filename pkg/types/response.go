package types

// SuccessEnvelope wraps every 2xx portal response body.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public half of an error: the code is stable for clients,
// the message is safe to show, details carry field-level validation output.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps every non-2xx portal response body.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
