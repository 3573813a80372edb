package model

const (
	EnvelopeContent  = "content"
	EnvelopeComplete = "complete"
	EnvelopeError    = "error"
)

// StreamEnvelope is one server-push event of the explanation relay.
type StreamEnvelope struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Status  string `json:"status"`
}

func ContentEnvelope(chunk string) StreamEnvelope {
	return StreamEnvelope{Type: EnvelopeContent, Content: chunk, Status: "streaming"}
}

func CompleteEnvelope() StreamEnvelope {
	return StreamEnvelope{Type: EnvelopeComplete, Status: "completed"}
}

func ErrorEnvelope(msg string) StreamEnvelope {
	return StreamEnvelope{Type: EnvelopeError, Content: msg, Status: "error"}
}
