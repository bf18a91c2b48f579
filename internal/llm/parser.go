package llm

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/sposusu/eat-aware-scheduler/internal/core"
)

var ErrNoJSON = errors.New("model reply contains no JSON object")

// ExtractJSON returns the first well-formed JSON object in text. Models
// wrap replies in prose or code fences often enough that a plain
// unmarshal is not enough.
func ExtractJSON(text string) (string, bool) {
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}

		var raw json.RawMessage
		dec := json.NewDecoder(strings.NewReader(text[i:]))
		if err := dec.Decode(&raw); err == nil {
			return string(raw), true
		}
	}
	return "", false
}

// ParseRecognition decodes a recognizer reply.
func ParseRecognition(text string) (*core.Recognition, error) {
	obj, ok := ExtractJSON(text)
	if !ok {
		return nil, ErrNoJSON
	}

	var rec core.Recognition
	if err := json.Unmarshal([]byte(obj), &rec); err != nil {
		return nil, err
	}
	if rec.Items == nil {
		rec.Items = []core.Guess{}
	}
	return &rec, nil
}
