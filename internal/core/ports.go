package core

import "context"

// Recognizer turns a plate photo into dish guesses. The prompt carries the
// catalog context for the model.
type Recognizer interface {
	Recognize(ctx context.Context, img Image, prompt string) (*Recognition, error)
}

// ItemAppender receives committed plates.
type ItemAppender interface {
	Append(items []PlateItem)
}
