// Package response holds the JSON envelopes returned by the HTTP handlers.
package response

// Envelope is the body of single-entity and message-only responses.
type Envelope struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(message string, data interface{}) *Envelope {
	return &Envelope{Message: message, Data: data}
}

func Message(message string) *Envelope {
	return &Envelope{Message: message}
}
