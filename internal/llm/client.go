package llm

import "github.com/sposusu/eat-aware-scheduler/internal/core"

// Provider is a recognizer with a name for logs and fallback errors.
type Provider interface {
	core.Recognizer
	Name() string
}
