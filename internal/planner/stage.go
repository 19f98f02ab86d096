// Package planner is the staged-suggestion orchestration engine: it tracks
// where the user is in the beverage→courses→analysis pipeline, builds the
// expert briefing for each stage, pushes the raw answer through extraction
// and validation, and advances only when the result is sound.
package planner

// Stage tracks progress through the fixed planning pipeline. The stage names
// what the session is waiting for: a beverage name first, then one choice
// per course. Advance is strictly monotonic; the only way back is Reset.
type Stage string

const (
	// StageBeverage waits for the user to name the beverage the menu is
	// planned around.
	StageBeverage Stage = "beverage"
	// StageMainCourse offers main-course suggestions and waits for a choice.
	StageMainCourse Stage = "main_course"
	// StageStarter offers starter suggestions and waits for a choice.
	StageStarter Stage = "starter"
	// StageFinalCourse offers final-course suggestions and waits for a choice.
	StageFinalCourse Stage = "final_course"
	// StageComplete means the menu is finished and the analysis is available.
	StageComplete Stage = "complete"
)

// Valid returns true if the stage is a known value.
func (s Stage) Valid() bool {
	switch s {
	case StageBeverage, StageMainCourse, StageStarter, StageFinalCourse, StageComplete:
		return true
	default:
		return false
	}
}

// Next returns the stage that follows s. Complete is terminal and returns
// itself.
func (s Stage) Next() Stage {
	switch s {
	case StageBeverage:
		return StageMainCourse
	case StageMainCourse:
		return StageStarter
	case StageStarter:
		return StageFinalCourse
	case StageFinalCourse:
		return StageComplete
	default:
		return StageComplete
	}
}

// Title returns the stage's display heading.
func (s Stage) Title() string {
	switch s {
	case StageBeverage:
		return "Beverage Selection"
	case StageMainCourse:
		return "Main Course Selection"
	case StageStarter:
		return "Starter Selection"
	case StageFinalCourse:
		return "Final Course Selection"
	case StageComplete:
		return "Your Menu"
	default:
		return string(s)
	}
}
