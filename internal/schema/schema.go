// Package schema validates extracted expert payloads against the shape each
// planning stage requires: a non-empty list of named options, or a single
// analysis record with a fixed field set.
package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/soireekit/soiree/pkg/models"
)

var (
	// ErrNotAList indicates the suggestions payload is not a sequence.
	ErrNotAList = errors.New("suggestions payload is not a list")
	// ErrEmptyList indicates the suggestions list has no entries.
	ErrEmptyList = errors.New("suggestions list is empty")
	// ErrMalformedEntry indicates a suggestion is missing required attributes.
	ErrMalformedEntry = errors.New("malformed suggestion entry")
	// ErrNotARecord indicates the analysis payload is not a key/value structure.
	ErrNotARecord = errors.New("analysis payload is not a record")
)

// MissingFieldError reports a required analysis field absent or empty.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("analysis record missing required field %q", e.Field)
}

// ValidateSuggestions checks that candidate is a non-empty sequence of
// objects carrying name and description. Order is preserved: it is display
// order, not a ranking. The input is never mutated.
func ValidateSuggestions(candidate any) ([]models.Suggestion, error) {
	list, ok := candidate.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotAList, candidate)
	}
	if len(list) == 0 {
		return nil, ErrEmptyList
	}

	out := make([]models.Suggestion, 0, len(list))
	for i, entry := range list {
		obj, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: entry %d is %T, not an object", ErrMalformedEntry, i, entry)
		}
		name, ok := obj["name"].(string)
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: entry %d has no name", ErrMalformedEntry, i)
		}
		desc, ok := obj["description"].(string)
		if !ok {
			return nil, fmt.Errorf("%w: entry %d has no description", ErrMalformedEntry, i)
		}
		out = append(out, models.Suggestion{Name: name, Description: desc})
	}
	return out, nil
}

// ValidateAnalysis checks that candidate is a record containing every
// required field as a non-empty string. All missing fields are reported,
// not just the first.
func ValidateAnalysis(candidate any, required []string) (map[string]string, error) {
	obj, ok := candidate.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotARecord, candidate)
	}

	out := make(map[string]string, len(required))
	var missing []error
	for _, field := range required {
		v, ok := obj[field].(string)
		if !ok || strings.TrimSpace(v) == "" {
			missing = append(missing, &MissingFieldError{Field: field})
			continue
		}
		out[field] = v
	}
	if len(missing) > 0 {
		return nil, errors.Join(missing...)
	}
	return out, nil
}
