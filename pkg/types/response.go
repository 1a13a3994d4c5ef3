package types

// ErrorEnvelope is the body written for every failed request.
type ErrorEnvelope struct {
	Error       string `json:"error"`
	Description string `json:"description"`
	Details     any    `json:"details,omitempty"`
}
