package step

import (
	"github.com/graphwalk/loom/traverser"
	"github.com/graphwalk/loom/travelerr"
)

// SideEffect builds side_effect(sub): runs sub for its effect on every
// passing-through element, discarding its output and re-emitting the
// original element unchanged, per spec §4.3.
func SideEffect(sub SubTraversal) *Step {
	s := &Step{StepName: "side_effect", Subs: map[string]SubTraversal{"sub": sub}}
	s.SideEffectFn = func(ctx *ExecCtx, it traverser.Item) error {
		_, err := runSub(ctx, s.BuiltSubs["sub"], it)
		return err
	}
	return s
}

// Property builds property(key, value, cardinality): writes an attribute
// onto the current element in place, per spec §4.3/§6.1's Cardinality type.
func Property(key string, value interface{}, card traverser.Cardinality) *Step {
	return &Step{
		StepName: "property",
		SideEffectFn: func(ctx *ExecCtx, it traverser.Item) error {
			t, ok := it.(*traverser.Traverser)
			if !ok {
				return travelerr.NewTraversal(travelerr.TraversalNotAnElement, "property", "property() requires an element")
			}
			attrs := elementAttrs(ctx, t)
			if attrs == nil {
				return travelerr.NewTraversal(travelerr.TraversalNotAnElement, "property", "element has no attribute bag")
			}
			switch card {
			case traverser.CardinalityList:
				existing, _ := attrs[key].([]interface{})
				attrs[key] = append(existing, value)
			case traverser.CardinalitySet:
				existing, _ := attrs[key].([]interface{})
				for _, v := range existing {
					if v == value {
						return nil
					}
				}
				attrs[key] = append(existing, value)
			case traverser.CardinalityMap:
				m, _ := attrs[key].(map[string]interface{})
				if m == nil {
					m = map[string]interface{}{}
				}
				if kv, ok := value.([2]interface{}); ok {
					if k, ok := kv[0].(string); ok {
						m[k] = kv[1]
					}
				}
				attrs[key] = m
			default:
				attrs[key] = value
			}
			return nil
		},
	}
}
