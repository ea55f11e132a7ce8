// Package travelerr defines the error taxonomy of the traversal engine:
// construction-time QueryErrors, runtime TraversalErrors, and the GraphError
// the in-memory graph store raises. The typed-struct-with-Error() idiom
// follows cayley's query/gizmo and query/linkedql error packages.
package travelerr

import (
	"errors"
	"fmt"
)

// QueryKind enumerates the distinct QueryError causes from spec §7.
type QueryKind int

const (
	QueryUnknown QueryKind = iota
	QueryBadArgCount
	QueryUnsupportedModulator
	QueryDuplicateOptionKey
	QueryMultipleDefaultOptions
	QueryBranchNotMap
	QueryUnknownByType
	QueryTerminated
	QueryDanglingModulator
	QueryMissingFromTo
	QueryIONotConfigured
	QueryNonEmptyStart
	QueryDisallowedInAnon
	QueryBadIndexProfile
	QueryUnionNoBranches
	QueryDanglingPlaceholder
)

var queryKindNames = map[QueryKind]string{
	QueryUnknown:                "unknown",
	QueryBadArgCount:            "bad-arg-count",
	QueryUnsupportedModulator:   "unsupported-modulator",
	QueryDuplicateOptionKey:     "duplicate-option-key",
	QueryMultipleDefaultOptions: "multiple-default-options",
	QueryBranchNotMap:           "branch-not-map",
	QueryUnknownByType:          "unknown-by-type",
	QueryTerminated:             "traversal-terminated",
	QueryDanglingModulator:      "dangling-modulator",
	QueryMissingFromTo:          "missing-from-to",
	QueryIONotConfigured:        "io-not-configured",
	QueryNonEmptyStart:          "non-empty-start-input",
	QueryDisallowedInAnon:       "disallowed-in-anonymous",
	QueryBadIndexProfile:        "bad-index-profile",
	QueryUnionNoBranches:        "union-no-branches",
	QueryDanglingPlaceholder:    "dangling-placeholder",
}

func (k QueryKind) String() string {
	if s, ok := queryKindNames[k]; ok {
		return s
	}
	return "query-error"
}

// QueryError is raised at traversal construction or build time.
type QueryError struct {
	Kind QueryKind
	Step string
	Msg  string
	err  error
}

func (e *QueryError) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("query error [%s] at step %q: %s", e.Kind, e.Step, e.Msg)
	}
	return fmt.Sprintf("query error [%s]: %s", e.Kind, e.Msg)
}

func (e *QueryError) Unwrap() error { return e.err }

// NewQuery builds a QueryError.
func NewQuery(kind QueryKind, step, msg string) *QueryError {
	return &QueryError{Kind: kind, Step: step, Msg: msg}
}

// WrapQuery builds a QueryError chaining an underlying cause.
func WrapQuery(kind QueryKind, step string, err error) *QueryError {
	return &QueryError{Kind: kind, Step: step, Msg: err.Error(), err: err}
}

// TraversalKind enumerates the distinct TraversalError causes from spec §7.
type TraversalKind int

const (
	TraversalUnknown TraversalKind = iota
	TraversalTypeMismatch
	TraversalNotAValue
	TraversalNotAnElement
	TraversalMaxDepthExceeded
	TraversalNotComparable
	TraversalNotNumeric
	TraversalMissingLabel
	TraversalMissingID
	TraversalIncompatibleTypes
	TraversalStepFailed
)

var traversalKindNames = map[TraversalKind]string{
	TraversalUnknown:           "unknown",
	TraversalTypeMismatch:      "type-mismatch",
	TraversalNotAValue:         "not-a-value",
	TraversalNotAnElement:      "not-an-element",
	TraversalMaxDepthExceeded:  "max-iteration-depth-exceeded",
	TraversalNotComparable:     "not-comparable",
	TraversalNotNumeric:        "not-numeric",
	TraversalMissingLabel:      "missing-as-label",
	TraversalMissingID:         "missing-id",
	TraversalIncompatibleTypes: "incompatible-types",
	TraversalStepFailed:        "step-failed",
}

func (k TraversalKind) String() string {
	if s, ok := traversalKindNames[k]; ok {
		return s
	}
	return "traversal-error"
}

// TraversalError is raised during traversal execution.
type TraversalError struct {
	Kind TraversalKind
	Step string
	Msg  string
	err  error
}

func (e *TraversalError) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("traversal error [%s] at step %q: %s", e.Kind, e.Step, e.Msg)
	}
	return fmt.Sprintf("traversal error [%s]: %s", e.Kind, e.Msg)
}

func (e *TraversalError) Unwrap() error { return e.err }

// NewTraversal builds a TraversalError.
func NewTraversal(kind TraversalKind, step, msg string) *TraversalError {
	return &TraversalError{Kind: kind, Step: step, Msg: msg}
}

// WrapTraversal builds a TraversalError annotated with the failing step's
// printed form, chaining the original cause so eager-mode execution does
// not lose it the way the teacher's documented Open Question describes.
func WrapTraversal(step string, err error) *TraversalError {
	var te *TraversalError
	if errors.As(err, &te) {
		return &TraversalError{Kind: te.Kind, Step: step, Msg: te.Msg, err: err}
	}
	return &TraversalError{Kind: TraversalStepFailed, Step: step, Msg: err.Error(), err: err}
}

// GraphErrorKind enumerates construction-time errors from the graph store.
type GraphErrorKind int

const (
	GraphUnknown GraphErrorKind = iota
	GraphReservedKey
	GraphNoSuchNode
	GraphNoSuchEdge
)

var graphKindNames = map[GraphErrorKind]string{
	GraphUnknown:     "unknown",
	GraphReservedKey: "reserved-key",
	GraphNoSuchNode:  "no-such-node",
	GraphNoSuchEdge:  "no-such-edge",
}

func (k GraphErrorKind) String() string {
	if s, ok := graphKindNames[k]; ok {
		return s
	}
	return "graph-error"
}

// GraphError is raised by the graph store on reserved-key collisions or
// references to non-existent endpoints.
type GraphError struct {
	Kind GraphErrorKind
	Msg  string
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("graph error [%s]: %s", e.Kind, e.Msg)
}

// NewGraph builds a GraphError.
func NewGraph(kind GraphErrorKind, msg string) *GraphError {
	return &GraphError{Kind: kind, Msg: msg}
}

// ErrAnonRun is returned by an anonymous sub-traversal's Run method, which
// must never execute - anonymous traversals are templates, not runnable
// pipelines.
var ErrAnonRun = errors.New("travelerr: cannot call Run on an anonymous sub-traversal")
