// Package textgen defines the contract with the external text-generation
// service. Implementations live in subpackages.
package textgen

import (
	"context"
	"errors"
)

// ErrRemoteService is returned, wrapped, for every failure of the remote
// service: transport errors, non-2xx answers and empty candidates.
var ErrRemoteService = errors.New("text generation service error")

// Generator turns a prompt into text using the named model.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}
