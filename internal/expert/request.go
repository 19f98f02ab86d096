package expert

import (
	"crypto/sha256"
	"encoding/hex"
	"io"

	"github.com/soireekit/soiree/internal/extract"
)

// Task is one instruction for one persona.
type Task struct {
	// Persona is the ID of the persona that should perform the task.
	Persona string
	// Instruction is the natural-language task description. Prior
	// selections are already embedded by the request builder.
	Instruction string
}

// Request is the full instruction set for one planning stage: which
// personas to consult, in what order, and what payload shape the final
// answer must carry.
type Request struct {
	// Stage labels the planning stage, for diagnostics and cache keys.
	Stage string
	// Shape is the payload shape demanded from the final task.
	Shape extract.Shape
	// Tasks run in order; each task's output feeds the next task's
	// instruction.
	Tasks []Task
}

// Fingerprint returns a stable key identifying the request's content.
// Two requests built from the same stage and selections fingerprint
// identically, which is what makes response memoization safe.
func (r Request) Fingerprint() string {
	h := sha256.New()
	io.WriteString(h, r.Stage)
	io.WriteString(h, "\x00")
	io.WriteString(h, string(r.Shape))
	for _, t := range r.Tasks {
		io.WriteString(h, "\x00")
		io.WriteString(h, t.Persona)
		io.WriteString(h, "\x00")
		io.WriteString(h, t.Instruction)
	}
	return hex.EncodeToString(h.Sum(nil))
}
