package step

import (
	"github.com/graphwalk/loom/travelerr"
)

// ToList builds to_list(): drains the stream into a []interface{} of
// underlying values, the common terminal step of spec §4.5.
func ToList() *Step {
	return &Step{
		StepName:  "to_list",
		StepFlags: IsTerminal,
		TerminalFn: func(ctx *ExecCtx, in Stream) (interface{}, error) {
			items, err := Drain(in)
			if err != nil {
				return nil, err
			}
			out := make([]interface{}, len(items))
			for i, it := range items {
				out[i] = underlyingValue(ctx, it)
			}
			return out, nil
		},
	}
}

// AsPath builds as_path(): drains the stream into a slice of path slices,
// one per item. Requires NeedsPath.
func AsPath() *Step {
	return &Step{
		StepName:  "as_path",
		StepFlags: IsTerminal | NeedsPath,
		TerminalFn: func(ctx *ExecCtx, in Stream) (interface{}, error) {
			items, err := Drain(in)
			if err != nil {
				return nil, err
			}
			out := make([][]interface{}, len(items))
			for i, it := range items {
				path := it.PathOf()
				row := make([]interface{}, len(path))
				for j, p := range path {
					if id, ok := p.Node(); ok {
						row[j] = id
					} else {
						src, dst, _ := p.Edge()
						row[j] = [2]interface{}{src, dst}
					}
				}
				out[i] = row
			}
			return out, nil
		},
	}
}

// HasNext builds has_next(): reports whether the stream yields at least
// one item, without materializing the rest.
func HasNext() *Step {
	return &Step{
		StepName:  "has_next",
		StepFlags: IsTerminal,
		TerminalFn: func(ctx *ExecCtx, in Stream) (interface{}, error) {
			defer in.Close()
			_, ok, err := in.Next()
			if err != nil {
				return nil, err
			}
			return ok, nil
		},
	}
}

// Next builds next(): returns the first item's underlying value, or nil if
// the stream is empty.
func Next() *Step {
	return &Step{
		StepName:  "next",
		StepFlags: IsTerminal,
		TerminalFn: func(ctx *ExecCtx, in Stream) (interface{}, error) {
			defer in.Close()
			it, ok, err := in.Next()
			if err != nil || !ok {
				return nil, err
			}
			return underlyingValue(ctx, it), nil
		},
	}
}

// Iter builds iter(): drains the stream for its side effects, discarding
// results; equivalent in purpose to to_list() but without materializing
// output.
func Iter() *Step {
	return &Step{
		StepName:  "iter",
		StepFlags: IsTerminal,
		TerminalFn: func(ctx *ExecCtx, in Stream) (interface{}, error) {
			_, err := Drain(in)
			return nil, err
		},
	}
}

// Iterate is an alias of Iter, matching the teacher-adjacent naming some
// Gremlin dialects prefer.
func Iterate() *Step {
	s := Iter()
	s.StepName = "iterate"
	return s
}

// ReadStep builds read(): a terminal step that accepts with_() options but
// always fails with QueryIONotConfigured. This engine ships no IO backends
// (spec Non-goal: no wire formats, no persistence), and its TerminalFn does
// not consult the with_() options, so no backend can be plugged in.
func ReadStep() *Step {
	return &Step{
		StepName:  "read",
		StepFlags: IsTerminal | SupportsWith,
		TerminalFn: func(ctx *ExecCtx, in Stream) (interface{}, error) {
			return nil, travelerr.NewQuery(travelerr.QueryIONotConfigured, "read", "read() has no IO backend in this engine")
		},
	}
}

// WriteStep builds write(): the side-effecting counterpart of ReadStep,
// which likewise always fails with QueryIONotConfigured.
func WriteStep() *Step {
	return &Step{
		StepName:  "write",
		StepFlags: IsTerminal | SupportsWith,
		TerminalFn: func(ctx *ExecCtx, in Stream) (interface{}, error) {
			return nil, travelerr.NewQuery(travelerr.QueryIONotConfigured, "write", "write() has no IO backend in this engine")
		},
	}
}
