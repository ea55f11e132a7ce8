package step

// SubTraversal is the contract an anonymous sub-traversal (package anon)
// must satisfy so the step package can close over it without importing
// anon, which itself depends on step - avoiding an import cycle, grounded
// on cayley's own split between graph/path (public builder) and
// graph/path/pathtest helpers that consume it structurally rather than by
// concrete type.
type SubTraversal interface {
	// Build binds the sub-traversal against ctx's graph/options and
	// returns an executable form. Build must be idempotent.
	Build(ctx *BuildCtx) (BuiltSub, error)
	// NumberOfSteps reports the sub-traversal's step count.
	NumberOfSteps() int
	// EndsInMapStep reports whether the sub-traversal's last recorded step
	// is Map-shaped, used by branch() to enforce spec §4.3's "the branch
	// function must end with a Map-shaped step" rule at build time.
	EndsInMapStep() bool
}

// BuiltSub is a bound, executable anonymous sub-traversal.
type BuiltSub interface {
	Apply(ctx *ExecCtx, in Stream) (Stream, error)
	NeedsPath() bool
}
