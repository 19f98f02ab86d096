// Package extract pulls structured payloads out of free-text expert replies.
//
// The experts are asked to answer with bare JSON, but replies routinely wrap
// the payload in prose or markdown fences. The scan here is deliberately
// narrow: first opening delimiter to last closing delimiter, no nesting or
// balance checks. That tolerates surrounding chatter at the cost of
// fragility with multiple bracketed structures; a merged span simply fails
// to decode downstream.
package extract

import (
	"errors"
	"fmt"
	"strings"
)

// Shape selects which payload delimiters to scan for.
type Shape string

const (
	// ShapeList expects a JSON array payload.
	ShapeList Shape = "list"
	// ShapeRecord expects a JSON object payload.
	ShapeRecord Shape = "record"
)

// ErrNoPayload indicates no span of the requested shape was found.
var ErrNoPayload = errors.New("no payload found in response")

// Payload returns the substring spanning the first opening delimiter to the
// last closing delimiter of the requested shape, inclusive. It has no side
// effects and never modifies the candidate text beyond fence stripping.
func Payload(raw string, shape Shape) (string, error) {
	raw = stripFences(strings.TrimSpace(raw))

	var open, close byte
	switch shape {
	case ShapeList:
		open, close = '[', ']'
	case ShapeRecord:
		open, close = '{', '}'
	default:
		return "", fmt.Errorf("unknown payload shape %q", shape)
	}

	start := strings.IndexByte(raw, open)
	end := strings.LastIndexByte(raw, close)
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("%w: expected %c...%c", ErrNoPayload, open, close)
	}
	return raw[start : end+1], nil
}

// stripFences removes a wrapping markdown code block, if present.
func stripFences(s string) string {
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	} else {
		return s
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// Truncate shortens a raw response for inclusion in diagnostics.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
