package expert

import (
	"context"
	"errors"
	"fmt"
)

// TextRunner is the subset of the API runner the crew needs.
type TextRunner interface {
	RunWithSystem(ctx context.Context, system, prompt string, temperature float64) (string, error)
}

// Invoker produces a raw text answer for a stage request.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (string, error)
}

// Crew executes a request's tasks in order, feeding each task's output into
// the next task's instruction. This is the cooperative-delegation model: the
// sommelier's analysis becomes part of the chef's briefing, with no shared
// agent runtime in between. The final task's text is the crew's answer.
type Crew struct {
	runner      TextRunner
	personas    *Registry
	temperature float64
}

// NewCrew creates a Crew over the given runner and persona registry.
func NewCrew(runner TextRunner, personas *Registry) *Crew {
	return &Crew{runner: runner, personas: personas}
}

// SetTemperature overrides every persona's sampling temperature.
// Zero keeps each persona's own setting.
func (c *Crew) SetTemperature(t float64) {
	c.temperature = t
}

// Invoke runs the request's tasks sequentially and returns the last output.
func (c *Crew) Invoke(ctx context.Context, req Request) (string, error) {
	if len(req.Tasks) == 0 {
		return "", errors.New("request has no tasks")
	}

	var prior string
	for i, task := range req.Tasks {
		persona, err := c.personas.Get(task.Persona)
		if err != nil {
			return "", err
		}

		instruction := task.Instruction
		if prior != "" {
			instruction = fmt.Sprintf("%s\n\nFindings from the previous expert:\n%s", instruction, prior)
		}

		temperature := persona.Temperature
		if c.temperature > 0 {
			temperature = c.temperature
		}

		out, err := c.runner.RunWithSystem(ctx, persona.SystemPrompt(), instruction, temperature)
		if err != nil {
			return "", fmt.Errorf("task %d (%s): %w", i+1, task.Persona, err)
		}
		prior = out
	}
	return prior, nil
}
