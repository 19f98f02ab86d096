package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/soireekit/soiree/internal/expert"
	"github.com/soireekit/soiree/internal/extract"
	"github.com/soireekit/soiree/internal/schema"
	"github.com/soireekit/soiree/pkg/models"
)

var (
	// ErrInvalidTransition indicates an operation was attempted at a stage
	// that does not accept it.
	ErrInvalidTransition = errors.New("invalid stage transition")
	// ErrUnknownSelection indicates the chosen name is not among the
	// offered suggestions.
	ErrUnknownSelection = errors.New("selection not among offered options")
	// ErrEmptyBeverage indicates an empty beverage name was submitted.
	ErrEmptyBeverage = errors.New("beverage name is empty")
)

// Session owns one planning run: the committed selections, the pending
// suggestion set, and the current stage. Every mutation goes through
// SubmitBeverageName, ChooseOption, Retry, or Reset; nothing advances unless
// the expert answer extracted and validated cleanly.
//
// A Session serves one user conversation and is not safe for concurrent use.
type Session struct {
	builder *RequestBuilder
	gateway expert.Invoker

	stage         Stage
	beverageInput string // retained across failed fetches so the user need not retype
	beverage      *models.Suggestion
	mainCourse    *models.Suggestion
	starter       *models.Suggestion
	finalCourse   *models.Suggestion
	pending       []models.Suggestion
	analysis      *models.Analysis
	lastErr       error
}

// NewSession creates a fresh session at the beverage stage.
func NewSession(builder *RequestBuilder, gateway expert.Invoker) *Session {
	return &Session{
		builder: builder,
		gateway: gateway,
		stage:   StageBeverage,
	}
}

// SubmitBeverageName stores the beverage name, consults the crew for
// main-course suggestions, and on success commits the beverage and advances
// to the main-course choice. On failure the name is retained, the stage does
// not move, and the error is both returned and kept for Snapshot.
func (s *Session) SubmitBeverageName(ctx context.Context, name string) error {
	if s.stage != StageBeverage {
		return s.fail(fmt.Errorf("%w: beverage already submitted at stage %s", ErrInvalidTransition, s.stage))
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return s.fail(ErrEmptyBeverage)
	}
	s.beverageInput = name

	suggestions, err := s.fetchSuggestions(ctx, StageBeverage, Selections{
		Beverage: &models.Suggestion{Name: name},
	})
	if err != nil {
		return s.fail(err)
	}

	s.beverage = &models.Suggestion{Name: name}
	s.pending = suggestions
	s.stage = StageMainCourse
	s.lastErr = nil
	return nil
}

// ChooseOption commits the named option for the current stage, then fetches
// the next stage's suggestions (or, from the final course, the harmony
// analysis). The choice must match a pending suggestion by name; the first
// match wins when names repeat. On a fetch failure the committed choice
// survives and the stage does not advance; Retry re-runs just the fetch.
func (s *Session) ChooseOption(ctx context.Context, name string) error {
	switch s.stage {
	case StageMainCourse, StageStarter, StageFinalCourse:
	default:
		return s.fail(fmt.Errorf("%w: no pending choice at stage %s", ErrInvalidTransition, s.stage))
	}

	committed := s.selectionFor(s.stage)
	if *committed != nil && (*committed).Name != name {
		return s.fail(fmt.Errorf("%w: %s already committed as %q", ErrInvalidTransition, s.stage, (*committed).Name))
	}
	if *committed == nil {
		chosen, err := s.matchPending(name)
		if err != nil {
			return s.fail(err)
		}
		*committed = chosen
	}

	return s.advance(ctx)
}

// Retry re-runs the fetch for the transition the session is blocked on: the
// main-course fetch when a beverage was submitted but failed, or the next
// stage's fetch after a committed choice whose follow-up failed.
func (s *Session) Retry(ctx context.Context) error {
	switch s.stage {
	case StageBeverage:
		if s.beverageInput != "" {
			return s.SubmitBeverageName(ctx, s.beverageInput)
		}
	case StageMainCourse, StageStarter, StageFinalCourse:
		if *s.selectionFor(s.stage) != nil {
			return s.advance(ctx)
		}
	}
	return s.fail(fmt.Errorf("%w: nothing to retry at stage %s", ErrInvalidTransition, s.stage))
}

// Reset discards the whole session and returns to the beverage stage.
// It always succeeds and is idempotent.
func (s *Session) Reset() {
	s.stage = StageBeverage
	s.beverageInput = ""
	s.beverage = nil
	s.mainCourse = nil
	s.starter = nil
	s.finalCourse = nil
	s.pending = nil
	s.analysis = nil
	s.lastErr = nil
}

// advance performs the fetch for the current stage's committed selection and
// moves the session forward on success.
func (s *Session) advance(ctx context.Context) error {
	sel := s.selections()

	if s.stage == StageFinalCourse {
		analysis, err := s.fetchAnalysis(ctx, sel)
		if err != nil {
			return s.fail(err)
		}
		s.analysis = analysis
		s.pending = nil
		s.stage = StageComplete
		s.lastErr = nil
		return nil
	}

	suggestions, err := s.fetchSuggestions(ctx, s.stage, sel)
	if err != nil {
		return s.fail(err)
	}
	s.pending = suggestions
	s.stage = s.stage.Next()
	s.lastErr = nil
	return nil
}

// fetchSuggestions runs the request→invoke→extract→validate pipeline for a
// suggestion stage.
func (s *Session) fetchSuggestions(ctx context.Context, stage Stage, sel Selections) ([]models.Suggestion, error) {
	req, err := s.builder.Build(stage, sel)
	if err != nil {
		return nil, err
	}
	candidate, err := s.invokeAndDecode(ctx, req)
	if err != nil {
		return nil, err
	}
	suggestions, err := schema.ValidateSuggestions(candidate)
	if err != nil {
		s.discardCached(req)
		return nil, err
	}
	return suggestions, nil
}

// fetchAnalysis runs the same pipeline for the terminal analysis record.
func (s *Session) fetchAnalysis(ctx context.Context, sel Selections) (*models.Analysis, error) {
	req, err := s.builder.Build(StageFinalCourse, sel)
	if err != nil {
		return nil, err
	}
	candidate, err := s.invokeAndDecode(ctx, req)
	if err != nil {
		return nil, err
	}
	fields, err := schema.ValidateAnalysis(candidate, models.AnalysisFields())
	if err != nil {
		s.discardCached(req)
		return nil, err
	}
	analysis := models.AnalysisFromFields(fields)
	return &analysis, nil
}

// invokeAndDecode consults the gateway and turns the raw reply into a
// generic JSON value. A span that will not decode is an extraction failure:
// the scan found brackets, but no usable payload.
func (s *Session) invokeAndDecode(ctx context.Context, req expert.Request) (any, error) {
	raw, err := s.gateway.Invoke(ctx, req)
	if err != nil {
		return nil, err
	}
	span, err := extract.Payload(raw, req.Shape)
	if err != nil {
		s.discardCached(req)
		return nil, fmt.Errorf("%w (response: %s)", err, extract.Truncate(raw, 200))
	}
	var candidate any
	if err := json.Unmarshal([]byte(span), &candidate); err != nil {
		s.discardCached(req)
		return nil, fmt.Errorf("%w: span does not decode: %v (span: %s)",
			extract.ErrNoPayload, err, extract.Truncate(span, 200))
	}
	return candidate, nil
}

// evictor is implemented by caching invokers that can drop a stored answer.
type evictor interface {
	Evict(fingerprint string)
}

// discardCached drops the cached reply for a request whose text arrived but
// carried no usable payload. Retrying must reach the experts again, not
// replay the same unusable answer until the cache entry expires.
func (s *Session) discardCached(req expert.Request) {
	if c, ok := s.gateway.(evictor); ok {
		c.Evict(req.Fingerprint())
	}
}

// matchPending finds the first pending suggestion with the given name.
func (s *Session) matchPending(name string) (*models.Suggestion, error) {
	for i := range s.pending {
		if s.pending[i].Name == name {
			chosen := s.pending[i]
			return &chosen, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSelection, name)
}

// selectionFor returns the slot a choice stage commits into, or nil for
// stages that take no choice. Callers guard the stage before dereferencing.
func (s *Session) selectionFor(stage Stage) **models.Suggestion {
	switch stage {
	case StageMainCourse:
		return &s.mainCourse
	case StageStarter:
		return &s.starter
	case StageFinalCourse:
		return &s.finalCourse
	default:
		return nil
	}
}

// selections returns the committed choices for the request builder.
func (s *Session) selections() Selections {
	return Selections{
		Beverage:    s.beverage,
		MainCourse:  s.mainCourse,
		Starter:     s.starter,
		FinalCourse: s.finalCourse,
	}
}

// fail records and returns an operation error without touching the stage.
func (s *Session) fail(err error) error {
	s.lastErr = err
	return err
}

// Snapshot is the read-only view handed to the presentation layer. All
// fields are copies; mutating a snapshot never touches the session.
type Snapshot struct {
	Stage         Stage
	BeverageInput string
	Beverage      *models.Suggestion
	MainCourse    *models.Suggestion
	Starter       *models.Suggestion
	FinalCourse   *models.Suggestion
	Pending       []models.Suggestion
	Analysis      *models.Analysis
	LastError     error
}

// Snapshot returns the current session state for rendering.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Stage:         s.stage,
		BeverageInput: s.beverageInput,
		Beverage:      cloneSuggestion(s.beverage),
		MainCourse:    cloneSuggestion(s.mainCourse),
		Starter:       cloneSuggestion(s.starter),
		FinalCourse:   cloneSuggestion(s.finalCourse),
		LastError:     s.lastErr,
	}
	if s.pending != nil {
		snap.Pending = make([]models.Suggestion, len(s.pending))
		copy(snap.Pending, s.pending)
	}
	if s.analysis != nil {
		a := *s.analysis
		snap.Analysis = &a
	}
	return snap
}

// Menu assembles the completed plan. It is only available once the session
// reaches Complete.
func (s *Session) Menu() (models.Menu, error) {
	if s.stage != StageComplete || s.analysis == nil {
		return models.Menu{}, fmt.Errorf("%w: menu not complete at stage %s", ErrInvalidTransition, s.stage)
	}
	return models.Menu{
		Beverage:    *s.beverage,
		Starter:     *s.starter,
		MainCourse:  *s.mainCourse,
		FinalCourse: *s.finalCourse,
		Analysis:    *s.analysis,
		CreatedAt:   time.Now(),
	}, nil
}

func cloneSuggestion(s *models.Suggestion) *models.Suggestion {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
