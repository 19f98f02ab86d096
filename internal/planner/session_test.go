package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/soireekit/soiree/internal/expert"
	"github.com/soireekit/soiree/internal/extract"
	"github.com/soireekit/soiree/internal/schema"
	"github.com/soireekit/soiree/pkg/models"
)

// stubGateway replays scripted raw responses in order.
type stubGateway struct {
	responses []string
	errs      []error
	requests  []expert.Request
}

func (g *stubGateway) Invoke(_ context.Context, req expert.Request) (string, error) {
	i := len(g.requests)
	g.requests = append(g.requests, req)
	if i < len(g.errs) && g.errs[i] != nil {
		return "", g.errs[i]
	}
	if i < len(g.responses) {
		return g.responses[i], nil
	}
	return "", errors.New("stub exhausted")
}

const (
	mainCourseList = `Here are my suggestions:
[
    {"name": "Ribeye Steak", "description": "Caramelized crust"},
    {"name": "Lamb Shanks", "description": "Slow-cooked with herbs"},
    {"name": "Duck Breast", "description": "Crispy skin"}
]`
	starterList = `[
    {"name": "Seared Scallops", "description": "Light and delicate"},
    {"name": "Wild Mushroom Crostini", "description": "Earthy bridge"},
    {"name": "Citrus-Cured Salmon", "description": "Fresh contrast"}
]`
	finalCourseList = `[
    {"name": "Dark Chocolate Truffles", "description": "Rich finish"},
    {"name": "Berry Tart", "description": "Fresh balance"},
    {"name": "Creme Brulee", "description": "Creamy close"}
]`
	analysisRecord = `{
    "wine_pairing": "The Cabernet stands up to the lamb.",
    "flavor_progression": "Light scallops build toward the braise.",
    "highlights": "Herb and tannin interplay.",
    "overall_harmony": "A balanced, confident menu."
}`
)

func newTestSession(gw expert.Invoker) *Session {
	return NewSession(NewRequestBuilder(CrewPaired), gw)
}

// assertInvariant checks the stage/selection consistency rule: everything
// strictly before the current stage is committed, everything at or after it
// is not (committed-but-stalled transitions excepted, which callers assert
// separately).
func assertInvariant(t *testing.T, snap Snapshot) {
	t.Helper()
	order := []struct {
		stage Stage
		sel   *models.Suggestion
	}{
		{StageBeverage, snap.Beverage},
		{StageMainCourse, snap.MainCourse},
		{StageStarter, snap.Starter},
		{StageFinalCourse, snap.FinalCourse},
	}
	reached := true
	for _, step := range order {
		if step.stage == snap.Stage {
			reached = false
			continue
		}
		if reached && step.sel == nil {
			t.Errorf("stage %s precedes %s but has no selection", step.stage, snap.Stage)
		}
		if !reached && step.sel != nil {
			t.Errorf("stage %s is at/after %s but has a selection", step.stage, snap.Stage)
		}
	}
}

func TestSession_HappyPath(t *testing.T) {
	gw := &stubGateway{responses: []string{mainCourseList, starterList, finalCourseList, analysisRecord}}
	s := newTestSession(gw)
	ctx := context.Background()

	if err := s.SubmitBeverageName(ctx, "Cabernet Sauvignon"); err != nil {
		t.Fatalf("SubmitBeverageName() error = %v", err)
	}
	snap := s.Snapshot()
	if snap.Stage != StageMainCourse {
		t.Fatalf("stage = %s, want %s", snap.Stage, StageMainCourse)
	}
	if len(snap.Pending) != 3 {
		t.Fatalf("pending = %d options, want 3", len(snap.Pending))
	}
	wantNames := []string{"Ribeye Steak", "Lamb Shanks", "Duck Breast"}
	for i, want := range wantNames {
		if snap.Pending[i].Name != want {
			t.Errorf("option %d = %q, want %q", i, snap.Pending[i].Name, want)
		}
	}
	assertInvariant(t, snap)

	if err := s.ChooseOption(ctx, "Lamb Shanks"); err != nil {
		t.Fatalf("ChooseOption(main course) error = %v", err)
	}
	snap = s.Snapshot()
	if snap.Stage != StageStarter {
		t.Fatalf("stage = %s, want %s", snap.Stage, StageStarter)
	}
	if snap.MainCourse == nil || snap.MainCourse.Name != "Lamb Shanks" {
		t.Fatalf("main course = %+v", snap.MainCourse)
	}
	assertInvariant(t, snap)

	if err := s.ChooseOption(ctx, "Seared Scallops"); err != nil {
		t.Fatalf("ChooseOption(starter) error = %v", err)
	}
	if got := s.Snapshot().Stage; got != StageFinalCourse {
		t.Fatalf("stage = %s, want %s", got, StageFinalCourse)
	}

	if err := s.ChooseOption(ctx, "Berry Tart"); err != nil {
		t.Fatalf("ChooseOption(final course) error = %v", err)
	}
	snap = s.Snapshot()
	if snap.Stage != StageComplete {
		t.Fatalf("stage = %s, want %s", snap.Stage, StageComplete)
	}
	if snap.Analysis == nil {
		t.Fatal("analysis missing at completion")
	}
	if snap.Analysis.WinePairing == "" || snap.Analysis.FlavorProgression == "" ||
		snap.Analysis.Highlights == "" || snap.Analysis.OverallHarmony == "" {
		t.Errorf("analysis incomplete: %+v", snap.Analysis)
	}
	if snap.Pending != nil {
		t.Error("pending suggestions must be discarded at completion")
	}
	assertInvariant(t, snap)

	menu, err := s.Menu()
	if err != nil {
		t.Fatalf("Menu() error = %v", err)
	}
	if menu.Beverage.Name != "Cabernet Sauvignon" || menu.FinalCourse.Name != "Berry Tart" {
		t.Errorf("menu = %+v", menu)
	}
}

func TestSession_UnknownSelectionRejected(t *testing.T) {
	gw := &stubGateway{responses: []string{mainCourseList}}
	s := newTestSession(gw)
	ctx := context.Background()

	if err := s.SubmitBeverageName(ctx, "Merlot"); err != nil {
		t.Fatalf("SubmitBeverageName() error = %v", err)
	}
	before := s.Snapshot()

	err := s.ChooseOption(ctx, "Tofu Scramble")
	if !errors.Is(err, ErrUnknownSelection) {
		t.Fatalf("ChooseOption() error = %v, want ErrUnknownSelection", err)
	}

	after := s.Snapshot()
	if after.Stage != before.Stage {
		t.Errorf("stage moved from %s to %s on rejected input", before.Stage, after.Stage)
	}
	if after.MainCourse != nil {
		t.Error("rejected choice must not be committed")
	}
	if len(after.Pending) != len(before.Pending) {
		t.Error("pending suggestions must survive a rejected choice")
	}
}

func TestSession_NoAdvanceOnExtractionFailure(t *testing.T) {
	gw := &stubGateway{responses: []string{mainCourseList, "I am sorry, I cannot answer in that format."}}
	s := newTestSession(gw)
	ctx := context.Background()

	if err := s.SubmitBeverageName(ctx, "Chianti"); err != nil {
		t.Fatalf("SubmitBeverageName() error = %v", err)
	}

	err := s.ChooseOption(ctx, "Lamb Shanks")
	if !errors.Is(err, extract.ErrNoPayload) {
		t.Fatalf("ChooseOption() error = %v, want extraction failure", err)
	}

	snap := s.Snapshot()
	if snap.Stage != StageMainCourse {
		t.Errorf("stage = %s, want unchanged %s", snap.Stage, StageMainCourse)
	}
	// The choice was valid, so it stays committed even though the stage held.
	if snap.MainCourse == nil || snap.MainCourse.Name != "Lamb Shanks" {
		t.Errorf("valid choice should remain committed, got %+v", snap.MainCourse)
	}
	if snap.LastError == nil {
		t.Error("snapshot should surface the failure")
	}

	// Retry re-runs only the stalled fetch and then advances.
	gw.responses = append(gw.responses, starterList)
	if err := s.Retry(ctx); err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if got := s.Snapshot().Stage; got != StageStarter {
		t.Errorf("stage after retry = %s, want %s", got, StageStarter)
	}
}

func TestSession_NoAdvanceOnValidationFailure(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantErr  error
	}{
		{"empty list", `[]`, schema.ErrEmptyList},
		{"malformed entry", `[{"name": "A"}]`, schema.ErrMalformedEntry},
		{"entries are not objects", `["Steak", "Lamb", "Duck"]`, schema.ErrMalformedEntry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &stubGateway{responses: []string{tt.response}}
			s := newTestSession(gw)

			err := s.SubmitBeverageName(context.Background(), "Riesling")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SubmitBeverageName() error = %v, want %v", err, tt.wantErr)
			}
			snap := s.Snapshot()
			if snap.Stage != StageBeverage {
				t.Errorf("stage = %s, want unchanged %s", snap.Stage, StageBeverage)
			}
			// The typed name survives so the user need not retype it.
			if snap.BeverageInput != "Riesling" {
				t.Errorf("beverage input = %q, want retained", snap.BeverageInput)
			}
			if snap.Beverage != nil {
				t.Error("beverage must not be committed on a failed fetch")
			}
		})
	}
}

func TestSession_GatewayFailureIsRetryable(t *testing.T) {
	gw := &stubGateway{
		errs:      []error{expert.ErrExpertTimeout},
		responses: []string{"", mainCourseList},
	}
	s := newTestSession(gw)
	ctx := context.Background()

	err := s.SubmitBeverageName(ctx, "Syrah")
	if !errors.Is(err, expert.ErrExpertTimeout) {
		t.Fatalf("SubmitBeverageName() error = %v, want timeout", err)
	}
	if got := s.Snapshot().Stage; got != StageBeverage {
		t.Fatalf("stage = %s, want %s", got, StageBeverage)
	}

	if err := s.Retry(ctx); err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if got := s.Snapshot().Stage; got != StageMainCourse {
		t.Errorf("stage after retry = %s, want %s", got, StageMainCourse)
	}
}

func TestSession_RetryThroughCacheReconsultsAfterBadReply(t *testing.T) {
	// An answer that arrives cleanly but carries no usable payload must not
	// stay memoized; retrying has to reach the experts again.
	tests := []struct {
		name     string
		badReply string
	}{
		{"no payload", "Sorry, I cannot answer in that format."},
		{"span does not decode", `[not json at all]`},
		{"fails validation", `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &stubGateway{responses: []string{tt.badReply, mainCourseList}}
			cache := expert.NewCache(gw, time.Hour)
			s := NewSession(NewRequestBuilder(CrewPaired), cache)
			ctx := context.Background()

			if err := s.SubmitBeverageName(ctx, "Nebbiolo"); err == nil {
				t.Fatal("first submit should fail on the bad reply")
			}
			if err := s.Retry(ctx); err != nil {
				t.Fatalf("Retry() error = %v", err)
			}
			if len(gw.requests) != 2 {
				t.Errorf("inner invoked %d times, want 2: the bad reply must not be replayed from cache", len(gw.requests))
			}
			if got := s.Snapshot().Stage; got != StageMainCourse {
				t.Errorf("stage after retry = %s, want %s", got, StageMainCourse)
			}
		})
	}
}

func TestSession_RetryAfterCompletionRejected(t *testing.T) {
	gw := &stubGateway{responses: []string{mainCourseList, starterList, finalCourseList, analysisRecord}}
	s := newTestSession(gw)
	ctx := context.Background()

	s.SubmitBeverageName(ctx, "Cabernet Sauvignon")
	s.ChooseOption(ctx, "Ribeye Steak")
	s.ChooseOption(ctx, "Seared Scallops")
	s.ChooseOption(ctx, "Berry Tart")
	if got := s.Snapshot().Stage; got != StageComplete {
		t.Fatalf("stage = %s, want %s", got, StageComplete)
	}

	if err := s.Retry(ctx); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Retry after completion: error = %v, want ErrInvalidTransition", err)
	}
}

func TestSession_ResetIdempotent(t *testing.T) {
	gw := &stubGateway{responses: []string{mainCourseList, starterList}}
	s := newTestSession(gw)
	ctx := context.Background()

	s.SubmitBeverageName(ctx, "Pinot Noir")
	s.ChooseOption(ctx, "Duck Breast")

	s.Reset()
	first := s.Snapshot()
	s.Reset()
	second := s.Snapshot()

	for _, snap := range []Snapshot{first, second} {
		if snap.Stage != StageBeverage {
			t.Errorf("stage after reset = %s", snap.Stage)
		}
		if snap.Beverage != nil || snap.MainCourse != nil || snap.Starter != nil || snap.FinalCourse != nil {
			t.Error("selections survive reset")
		}
		if snap.Pending != nil || snap.Analysis != nil || snap.LastError != nil || snap.BeverageInput != "" {
			t.Error("pending state survives reset")
		}
	}
}

func TestSession_DuplicateNamesFirstMatchWins(t *testing.T) {
	dupes := `[
    {"name": "Lamb Shanks", "description": "first"},
    {"name": "Lamb Shanks", "description": "second"},
    {"name": "Duck Breast", "description": "third"}
]`
	gw := &stubGateway{responses: []string{dupes, starterList}}
	s := newTestSession(gw)
	ctx := context.Background()

	s.SubmitBeverageName(ctx, "Malbec")
	if err := s.ChooseOption(ctx, "Lamb Shanks"); err != nil {
		t.Fatalf("ChooseOption() error = %v", err)
	}
	if got := s.Snapshot().MainCourse.Description; got != "first" {
		t.Errorf("description = %q, want first match", got)
	}
}

func TestSession_OperationsRejectedOutOfOrder(t *testing.T) {
	s := newTestSession(&stubGateway{})
	ctx := context.Background()

	if err := s.ChooseOption(ctx, "Anything"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("ChooseOption before submit: error = %v, want ErrInvalidTransition", err)
	}
	if err := s.SubmitBeverageName(ctx, "  "); !errors.Is(err, ErrEmptyBeverage) {
		t.Errorf("blank name: error = %v, want ErrEmptyBeverage", err)
	}
	if err := s.Retry(ctx); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Retry with nothing pending: error = %v, want ErrInvalidTransition", err)
	}
	if _, err := s.Menu(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Menu before completion: error = %v, want ErrInvalidTransition", err)
	}
}

func TestSession_ResubmitRejectedAfterAdvance(t *testing.T) {
	gw := &stubGateway{responses: []string{mainCourseList}}
	s := newTestSession(gw)
	ctx := context.Background()

	s.SubmitBeverageName(ctx, "Cava")
	if err := s.SubmitBeverageName(ctx, "Prosecco"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second submit: error = %v, want ErrInvalidTransition", err)
	}
	if got := s.Snapshot().Beverage.Name; got != "Cava" {
		t.Errorf("beverage = %q, committed selection must be immutable", got)
	}
}

func TestSession_SnapshotIsolation(t *testing.T) {
	gw := &stubGateway{responses: []string{mainCourseList}}
	s := newTestSession(gw)
	s.SubmitBeverageName(context.Background(), "Zinfandel")

	snap := s.Snapshot()
	snap.Pending[0].Name = "Tampered"
	snap.Beverage.Name = "Tampered"

	fresh := s.Snapshot()
	if fresh.Pending[0].Name == "Tampered" || fresh.Beverage.Name == "Tampered" {
		t.Error("snapshot aliases session state")
	}
}

func TestSession_SpanThatDoesNotDecodeIsExtractionFailure(t *testing.T) {
	// Two bracketed asides merged by the first-open/last-close scan produce
	// a span that is not valid JSON; the session reports it explicitly
	// rather than guessing which aside was the payload.
	gw := &stubGateway{responses: []string{`[first aside] and the real payload [{"name":"A","description":"d"}]`}}
	s := newTestSession(gw)

	err := s.SubmitBeverageName(context.Background(), "Gamay")
	if !errors.Is(err, extract.ErrNoPayload) {
		t.Fatalf("error = %v, want extraction failure", err)
	}
	if got := s.Snapshot().Stage; got != StageBeverage {
		t.Errorf("stage = %s, want unchanged", got)
	}
}
