package ai

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when a provider answers without any usable text.
var ErrEmptyResponse = errors.New("model returned an empty response")

// Generator abstracts a text-completion model. Implementations send a single
// prompt and return the raw textual response; callers treat the result as
// unstructured text.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}
