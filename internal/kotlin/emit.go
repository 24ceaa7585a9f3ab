package kotlin

import (
	"github.com/chainkt/chainkt/internal/generator"
	"github.com/chainkt/chainkt/internal/ir"
)

// Emitter renders generator call specs back into Kotlin source text. Each
// step becomes an opaque Raw expression, so decorators can keep chaining on
// the rendered result.
type Emitter struct{}

// NewEmitter returns the Kotlin source emitter.
func NewEmitter() *Emitter { return &Emitter{} }

func (e *Emitter) Emit(spec generator.CallSpec) ir.Expr {
	text := ir.RenderTemplate(spec.Template, spec.Args)
	if spec.Receiver != nil {
		dot := "."
		if spec.SafeCall {
			dot = "?."
		}
		text = spec.Receiver.String() + dot + text
	}
	return &ir.Raw{Text: text}
}
