package chat

// ChatRequest is the body POSTed to the backend.
type ChatRequest struct {
	Message string `json:"message"`
	Lang    string `json:"lang"`
}

// ChatResponse is the backend's answer. Reply is HTML and is rendered as is.
type ChatResponse struct {
	OK    bool   `json:"ok"`
	Reply string `json:"reply,omitempty"`
	Error string `json:"error,omitempty"`
}

// Outcome labels how an exchange ended.
type Outcome string

const (
	OutcomeOK             Outcome = "ok"
	OutcomeBackendError   Outcome = "backend_error"
	OutcomeTransportError Outcome = "transport_error"
)
