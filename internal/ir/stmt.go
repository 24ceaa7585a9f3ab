package ir

// Span is a half-open byte range into the original source buffer.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes the span covers.
func (s Span) Len() int { return s.End - s.Start }

// Stmt is a residual loop-body statement after filter peeling. The front-end
// classifies statements into this closed set once; the matchers switch on the
// concrete type instead of re-inspecting source nodes.
type Stmt interface {
	isStmt()
}

// Assign is a simple `=` assignment to a resolved variable.
type Assign struct {
	Target *VarDecl
	Value  Expr
}

func (*Assign) isStmt() {}

// Break terminates a loop. Target is resolved by the front-end; a bare break
// targets the innermost loop.
type Break struct {
	Target *Loop
	Label  string
}

func (*Break) isStmt() {}

// Return exits the enclosing function (or the labeled lambda). ValueSpan
// locates the returned expression in the source for later splicing.
type Return struct {
	Value     Expr
	Label     string
	ValueSpan Span
}

func (*Return) isStmt() {}

// Other is any statement shape the matchers do not care about.
type Other struct{}

func (*Other) isStmt() {}

// Loop is the normalized view of a candidate for-loop.
type Loop struct {
	// Span covers the whole loop statement, label included, so deleting the
	// span removes the label with the loop it owns.
	Span     Span
	Label    string
	Iterable Expr
	InputVar *VarDecl
	IndexVar *VarDecl
	Body     []Stmt
}

// VariableInitialization is a `var x = <initializer>` declaration found before
// the loop. KeywordSpan covers the var/val keyword so an applied rewrite can
// tighten the binding; InitializerSpan covers the initializer expression.
type VariableInitialization struct {
	Variable        *VarDecl
	Initializer     Expr
	Mutable         bool
	KeywordSpan     Span
	InitializerSpan Span
}

// FilterCondition is a side-effect-free boolean predicate peeled off the loop
// body by the filter-extraction collaborator. Borrowed read-only by matchers.
type FilterCondition struct {
	Expr Expr
}

// Oracles are the resolved-fact capabilities the matchers consume instead of
// doing their own analysis. The front-end supplies a concrete implementation;
// tests supply stubs.
type Oracles interface {
	// IsNullable reports whether the variable's static type admits null.
	IsNullable(v *VarDecl) bool
	// IsConstant reports whether e is a compile-time constant that is safe to
	// duplicate or move without changing behavior.
	IsConstant(e Expr) bool
	// IsLoopInvariant reports whether e evaluates to the same value on every
	// iteration of the loop.
	IsLoopInvariant(e Expr, loop *Loop) bool
	// SideEffectFree reports whether evaluating e has no observable effects.
	SideEffectFree(e Expr) bool
	// UsageCountInLoop counts references to v anywhere inside the loop body,
	// assignment targets included.
	UsageCountInLoop(v *VarDecl, loop *Loop) int
}

// MatchingState is the normalized input handed to the idiom matchers: the
// loop, its residual body statements (never empty), the declared loop
// variables, the statement immediately following the loop, and the variable
// initializations preceding the loop in nearest-first order.
type MatchingState struct {
	Loop       *Loop
	Statements []Stmt
	InputVar   *VarDecl
	IndexVar   *VarDecl
	Following  Stmt
	Preceding  []*VariableInitialization
	Oracles    Oracles
}
