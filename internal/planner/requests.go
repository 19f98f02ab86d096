package planner

import (
	"fmt"

	"github.com/soireekit/soiree/internal/expert"
	"github.com/soireekit/soiree/internal/extract"
	"github.com/soireekit/soiree/pkg/models"
)

// CrewMode selects how many personas cooperate on a suggestion stage.
type CrewMode string

const (
	// CrewPaired runs a sommelier analysis task ahead of the chef's
	// suggestion task; the analysis feeds the chef's briefing.
	CrewPaired CrewMode = "paired"
	// CrewSolo sends the chef a single combined briefing.
	CrewSolo CrewMode = "solo"
)

// Valid returns true if the mode is a known value.
func (m CrewMode) Valid() bool {
	return m == CrewPaired || m == CrewSolo
}

// Selections carries the committed choices a stage's instructions embed.
// Nil means not yet selected.
type Selections struct {
	Beverage    *models.Suggestion
	MainCourse  *models.Suggestion
	Starter     *models.Suggestion
	FinalCourse *models.Suggestion
}

// MissingContextError indicates the builder was asked for a stage whose
// required prior selections are absent. The state machine only reaches a
// stage with everything before it committed, so this is a driving error,
// not a user error.
type MissingContextError struct {
	Stage Stage
	Need  string
}

func (e *MissingContextError) Error() string {
	return fmt.Sprintf("stage %s request needs %s, which is not selected", e.Stage, e.Need)
}

// listFormat is appended to every suggestion instruction. The shape demand
// and example mirror what the extractor and validator expect back.
const listFormat = `You MUST format your response as a JSON array of objects with 'name' and 'description' fields.
Do not include any other text before or after the JSON array.
Example:
[
    {"name": "Grilled Ribeye Steak",
     "description": "Pan-seared to develop a caramelized crust, complementing the wine's structure"},
    {"name": "Braised Lamb Shanks",
     "description": "Slow-cooked with herbs to match the wine's complexity"},
    {"name": "Duck Breast",
     "description": "Crispy skin and medium-rare meat to balance the wine's characteristics"}
]`

// RequestBuilder produces the expert instruction set for each stage from the
// selections committed so far.
type RequestBuilder struct {
	mode CrewMode
}

// NewRequestBuilder creates a builder with the given crew mode.
func NewRequestBuilder(mode CrewMode) *RequestBuilder {
	if !mode.Valid() {
		mode = CrewPaired
	}
	return &RequestBuilder{mode: mode}
}

// Build returns the request for the given stage. The stage keys what is
// being fetched: a Beverage request fetches main-course suggestions, a
// MainCourse request fetches starters, a Starter request fetches final
// courses, and a FinalCourse request fetches the harmony analysis.
func (b *RequestBuilder) Build(stage Stage, sel Selections) (expert.Request, error) {
	switch stage {
	case StageBeverage:
		return b.beverageRequest(sel)
	case StageMainCourse:
		return b.mainCourseRequest(sel)
	case StageStarter:
		return b.starterRequest(sel)
	case StageFinalCourse:
		return b.finalCourseRequest(sel)
	default:
		return expert.Request{}, fmt.Errorf("no expert request exists for stage %s", stage)
	}
}

func (b *RequestBuilder) beverageRequest(sel Selections) (expert.Request, error) {
	if sel.Beverage == nil || sel.Beverage.Name == "" {
		return expert.Request{}, &MissingContextError{Stage: StageBeverage, Need: "a beverage"}
	}

	analysis := fmt.Sprintf(`Analyze %s and provide its key characteristics and flavor profile.
Consider body, tannins, acidity, and primary flavors.`, sel.Beverage.Name)
	suggest := fmt.Sprintf(`Based on the analysis of %s, suggest three dinner main courses that pair well with it.
%s`, sel.Beverage.Name, listFormat)

	return b.listRequest(StageBeverage, analysis, suggest), nil
}

func (b *RequestBuilder) mainCourseRequest(sel Selections) (expert.Request, error) {
	if sel.Beverage == nil {
		return expert.Request{}, &MissingContextError{Stage: StageMainCourse, Need: "a beverage"}
	}
	if sel.MainCourse == nil {
		return expert.Request{}, &MissingContextError{Stage: StageMainCourse, Need: "a main course"}
	}

	analysis := fmt.Sprintf(`Analyze how a starter should complement both %s and %s (%s).
Consider progression of flavors through the meal.`,
		sel.Beverage.Name, sel.MainCourse.Name, sel.MainCourse.Description)
	suggest := fmt.Sprintf(`Suggest three starters that create a harmonious progression to %s.
%s`, sel.MainCourse.Name, listFormat)

	return b.listRequest(StageMainCourse, analysis, suggest), nil
}

func (b *RequestBuilder) starterRequest(sel Selections) (expert.Request, error) {
	if sel.Beverage == nil {
		return expert.Request{}, &MissingContextError{Stage: StageStarter, Need: "a beverage"}
	}
	if sel.MainCourse == nil {
		return expert.Request{}, &MissingContextError{Stage: StageStarter, Need: "a main course"}
	}
	if sel.Starter == nil {
		return expert.Request{}, &MissingContextError{Stage: StageStarter, Need: "a starter"}
	}

	analysis := fmt.Sprintf(`Analyze how a final course should complement %s, %s (%s), and %s (%s).
Consider progression of flavors through the meal.`,
		sel.Beverage.Name,
		sel.MainCourse.Name, sel.MainCourse.Description,
		sel.Starter.Name, sel.Starter.Description)
	suggest := fmt.Sprintf(`Suggest three final courses that close a meal of %s followed by %s.
%s`, sel.Starter.Name, sel.MainCourse.Name, listFormat)

	return b.listRequest(StageStarter, analysis, suggest), nil
}

func (b *RequestBuilder) finalCourseRequest(sel Selections) (expert.Request, error) {
	need := ""
	switch {
	case sel.Beverage == nil:
		need = "a beverage"
	case sel.MainCourse == nil:
		need = "a main course"
	case sel.Starter == nil:
		need = "a starter"
	case sel.FinalCourse == nil:
		need = "a final course"
	}
	if need != "" {
		return expert.Request{}, &MissingContextError{Stage: StageFinalCourse, Need: need}
	}

	instruction := fmt.Sprintf(`Analyze how the following menu components will interact together and return ONLY a JSON object with NO additional text:
Beverage: %s
Starter: %s (%s)
Main Course: %s (%s)
Final Course: %s (%s)

The response must be a valid JSON object with exactly this structure:
{
    "wine_pairing": "Detailed analysis of how the beverage pairs with each course",
    "flavor_progression": "How flavors develop from the starter through the final course",
    "highlights": "Notable flavor combinations and interactions",
    "overall_harmony": "Assessment of the menu's overall balance"
}

Do not include any text before or after the JSON object.`,
		sel.Beverage.Name,
		sel.Starter.Name, sel.Starter.Description,
		sel.MainCourse.Name, sel.MainCourse.Description,
		sel.FinalCourse.Name, sel.FinalCourse.Description)

	return expert.Request{
		Stage: string(StageFinalCourse),
		Shape: extract.ShapeRecord,
		Tasks: []expert.Task{
			{Persona: expert.PersonaSommelier, Instruction: instruction},
		},
	}, nil
}

// listRequest assembles a suggestion request in the configured crew mode.
func (b *RequestBuilder) listRequest(stage Stage, analysis, suggest string) expert.Request {
	var tasks []expert.Task
	if b.mode == CrewPaired {
		tasks = []expert.Task{
			{Persona: expert.PersonaSommelier, Instruction: analysis},
			{Persona: expert.PersonaChef, Instruction: suggest},
		}
	} else {
		tasks = []expert.Task{
			{Persona: expert.PersonaChef, Instruction: analysis + "\n\n" + suggest},
		}
	}
	return expert.Request{
		Stage: string(stage),
		Shape: extract.ShapeList,
		Tasks: tasks,
	}
}
