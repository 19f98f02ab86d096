// Package expert invokes the planner's LLM personas and shields the caller
// from the transport underneath. A stage request names one or more personas
// and the instructions each should receive; the crew runs them in order and
// hands back the final persona's raw text.
package expert

import "fmt"

// Persona describes one expert role the planner can consult.
type Persona struct {
	// ID is the stable identifier tasks reference (e.g. "sommelier").
	ID string `yaml:"id"`
	// Role is the persona's professional identity.
	Role string `yaml:"role"`
	// Goal is what the persona is trying to achieve.
	Goal string `yaml:"goal"`
	// Backstory grounds the persona's expertise.
	Backstory string `yaml:"backstory"`
	// Temperature tunes response variety for this persona. Zero means
	// provider default.
	Temperature float64 `yaml:"temperature"`
}

// SystemPrompt renders the persona as a system instruction.
func (p Persona) SystemPrompt() string {
	return fmt.Sprintf("Role: %s\nGoal: %s\nBackground: %s", p.Role, p.Goal, p.Backstory)
}
