package agent

import (
	"github.com/makeXnow/BrainTrust-AI/core"
	"github.com/makeXnow/BrainTrust-AI/internal/util"
)

// Provider supplies the system instruction for a persona at call time.
type Provider interface {
	Instruction(p core.Persona) (string, error)
}

// Func is a functional adapter to allow ordinary functions to be used as Providers.
type Func func(p core.Persona) (string, error)

// Instruction implements Provider.
func (f Func) Instruction(p core.Persona) (string, error) { return f(p) }

// Instruction represents either a static instruction template or a dynamic provider.
// Static text is rendered as a template against the persona.
type Instruction struct {
	text     string
	provider Provider
}

// DefaultPersonaInstruction is the system instruction sent with every persona reply.
const DefaultPersonaInstruction = "You are {{.FirstName}}, {{.ShortDescription}}. {{.FullPersonality}} Stay in character."

// NewInstructionFromText creates an Instruction from a static template.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p Provider) Instruction { return Instruction{provider: p} }

// NewInstructionFromFunc creates an Instruction from a function.
func NewInstructionFromFunc(f func(p core.Persona) (string, error)) Instruction {
	return Instruction{provider: Func(f)}
}

// IsStatic returns true if the instruction is backed by a static template.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// Resolve returns the instruction text for p, invoking the provider if needed.
func (i Instruction) Resolve(p core.Persona) (string, error) {
	if i.provider != nil {
		return i.provider.Instruction(p)
	}
	return util.RenderTemplate(i.text, p)
}
