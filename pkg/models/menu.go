package models

import "time"

// Suggestion is a single named menu option. The expert crew produces
// suggestions in display order; the user commits one per course.
type Suggestion struct {
	// Name is the short dish or beverage name shown to the user.
	Name string `json:"name" yaml:"name"`
	// Description explains how the option fits the selections made so far.
	Description string `json:"description" yaml:"description"`
}

// Analysis is the final harmony assessment of a completed menu.
// Field names follow the record the sommelier is asked to produce.
type Analysis struct {
	WinePairing       string `json:"wine_pairing" yaml:"wine_pairing"`
	FlavorProgression string `json:"flavor_progression" yaml:"flavor_progression"`
	Highlights        string `json:"highlights" yaml:"highlights"`
	OverallHarmony    string `json:"overall_harmony" yaml:"overall_harmony"`
}

// AnalysisFields lists the fields a final analysis record must carry,
// in presentation order.
func AnalysisFields() []string {
	return []string{"wine_pairing", "flavor_progression", "highlights", "overall_harmony"}
}

// AnalysisFromFields builds an Analysis from a validated field map.
func AnalysisFromFields(fields map[string]string) Analysis {
	return Analysis{
		WinePairing:       fields["wine_pairing"],
		FlavorProgression: fields["flavor_progression"],
		Highlights:        fields["highlights"],
		OverallHarmony:    fields["overall_harmony"],
	}
}

// Menu is a completed dinner plan: the beverage, three courses, and the
// crew's closing analysis.
type Menu struct {
	// ID is the unique identifier assigned when the menu is saved.
	ID string `json:"id" yaml:"id"`
	// Beverage is the drink the whole menu was planned around.
	Beverage Suggestion `json:"beverage" yaml:"beverage"`
	// Starter opens the meal.
	Starter Suggestion `json:"starter" yaml:"starter"`
	// MainCourse is the centerpiece the beverage was matched against.
	MainCourse Suggestion `json:"main_course" yaml:"main_course"`
	// FinalCourse closes the meal.
	FinalCourse Suggestion `json:"final_course" yaml:"final_course"`
	// Analysis is the crew's harmony assessment of the full menu.
	Analysis Analysis `json:"analysis" yaml:"analysis"`
	// CreatedAt is when the plan was completed.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
