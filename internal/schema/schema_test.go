package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/soireekit/soiree/pkg/models"
)

func TestValidateSuggestions(t *testing.T) {
	tests := []struct {
		name      string
		candidate any
		want      []models.Suggestion
		wantErr   error
	}{
		{
			name:      "valid three options",
			candidate: decodeJSON(`[{"name":"Ribeye Steak","description":"a"},{"name":"Lamb Shanks","description":"b"},{"name":"Duck Breast","description":"c"}]`),
			want: []models.Suggestion{
				{Name: "Ribeye Steak", Description: "a"},
				{Name: "Lamb Shanks", Description: "b"},
				{Name: "Duck Breast", Description: "c"},
			},
		},
		{
			name:      "not a list",
			candidate: "not a list",
			wantErr:   ErrNotAList,
		},
		{
			name:      "empty list",
			candidate: decodeJSON(`[]`),
			wantErr:   ErrEmptyList,
		},
		{
			name:      "entry missing description",
			candidate: decodeJSON(`[{"name":"A"}]`),
			wantErr:   ErrMalformedEntry,
		},
		{
			name:      "entry missing name",
			candidate: decodeJSON(`[{"description":"d"}]`),
			wantErr:   ErrMalformedEntry,
		},
		{
			name:      "entry not an object",
			candidate: decodeJSON(`["just a string"]`),
			wantErr:   ErrMalformedEntry,
		},
		{
			name:      "blank name rejected",
			candidate: decodeJSON(`[{"name":"  ","description":"d"}]`),
			wantErr:   ErrMalformedEntry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateSuggestions(tt.candidate)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ValidateSuggestions() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateSuggestions() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d suggestions, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("suggestion %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestValidateSuggestions_OrderPreserved(t *testing.T) {
	candidate := decodeJSON(`[{"name":"Z","description":"z"},{"name":"A","description":"a"}]`)
	got, err := ValidateSuggestions(candidate)
	if err != nil {
		t.Fatalf("ValidateSuggestions() error = %v", err)
	}
	if got[0].Name != "Z" || got[1].Name != "A" {
		t.Errorf("order not preserved: %+v", got)
	}
}

func TestValidateAnalysis(t *testing.T) {
	required := models.AnalysisFields()

	t.Run("valid record", func(t *testing.T) {
		candidate := decodeJSON(`{
			"wine_pairing": "w",
			"flavor_progression": "f",
			"highlights": "h",
			"overall_harmony": "o",
			"extra": "ignored"
		}`)
		got, err := ValidateAnalysis(candidate, required)
		if err != nil {
			t.Fatalf("ValidateAnalysis() error = %v", err)
		}
		for _, field := range required {
			if got[field] == "" {
				t.Errorf("field %q missing from result", field)
			}
		}
		if _, ok := got["extra"]; ok {
			t.Error("unrequested field should not be carried through")
		}
	})

	t.Run("not a record", func(t *testing.T) {
		if _, err := ValidateAnalysis(decodeJSON(`["a"]`), required); !errors.Is(err, ErrNotARecord) {
			t.Errorf("ValidateAnalysis() error = %v, want ErrNotARecord", err)
		}
	})

	t.Run("reports every missing field", func(t *testing.T) {
		candidate := decodeJSON(`{"wine_pairing": "w", "highlights": ""}`)
		_, err := ValidateAnalysis(candidate, required)
		if err == nil {
			t.Fatal("expected error")
		}
		var missing *MissingFieldError
		if !errors.As(err, &missing) {
			t.Fatalf("error should carry MissingFieldError, got %v", err)
		}
		for _, field := range []string{"flavor_progression", "highlights", "overall_harmony"} {
			if !containsField(err, field) {
				t.Errorf("error should name missing field %q: %v", field, err)
			}
		}
	})
}

func decodeJSON(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		panic(err)
	}
	return v
}

func containsField(err error, field string) bool {
	type unwrapper interface{ Unwrap() []error }
	var joined unwrapper
	if !errors.As(err, &joined) {
		var single *MissingFieldError
		return errors.As(err, &single) && single.Field == field
	}
	for _, e := range joined.Unwrap() {
		var mf *MissingFieldError
		if errors.As(e, &mf) && mf.Field == field {
			return true
		}
	}
	return false
}
