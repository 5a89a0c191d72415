// Package fake is an offline textgen.Generator. It answers deterministically
// so the service runs without an API key.
package fake

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
)

var openers = []string{
	"Built for long days in the field,",
	"Engineered for durability and value,",
	"A proven workhorse for any operation,",
	"Ready for contractors and family farms alike,",
}

type Generator struct{}

func New() *Generator { return &Generator{} }

func (g *Generator) Generate(ctx context.Context, model, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(model))
	_, _ = h.Write([]byte(prompt))
	opener := openers[h.Sum32()%uint32(len(openers))]

	subject := firstLine(prompt)
	if len(subject) > 80 {
		subject = subject[:80] + "..."
	}
	return fmt.Sprintf("%s generated offline by %s for %s", opener, model, subject), nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
