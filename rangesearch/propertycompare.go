package rangesearch

import (
	"bytes"

	"github.com/arloliu/jubako/entry"
	"github.com/arloliu/jubako/errs"
	"github.com/arloliu/jubako/format"
)

// PropertyCompare is a Comparator that extracts one or more properties
// from a candidate entry, by index into its selected Variant's Property
// list, and compares them in order against a fixed value tuple,
// short-circuiting at the first non-equal pair — a lexicographic compare
// over the declared property tuple.
type PropertyCompare struct {
	store     *entry.EntryStore
	variantID int
	propIdx   []int
	targets   []entry.RawValue
	ordered   bool
}

// NewPropertyCompare returns a PropertyCompare over a single property.
func NewPropertyCompare(store *entry.EntryStore, variantID int, propIdx int, target entry.RawValue, ordered bool) (*PropertyCompare, error) {
	return NewPropertyCompareMultiple(store, variantID, []int{propIdx}, []entry.RawValue{target}, ordered)
}

// NewPropertyCompareMultiple returns a PropertyCompare over several
// properties of the same Variant, compared in declaration order.
func NewPropertyCompareMultiple(store *entry.EntryStore, variantID int, propIdx []int, targets []entry.RawValue, ordered bool) (*PropertyCompare, error) {
	if len(propIdx) != len(targets) {
		return nil, errs.NewArg("property_compare: %d property indices but %d target values", len(propIdx), len(targets))
	}
	if variantID < 0 || variantID >= len(store.Layout().Variants) {
		return nil, errs.NewArg("property_compare: variant id %d out of range", variantID)
	}
	propCount := len(store.Layout().Variants[variantID].Properties)
	for _, pi := range propIdx {
		if pi < 0 || pi >= propCount {
			return nil, errs.NewArg("property_compare: property index %d out of range (variant has %d)", pi, propCount)
		}
	}

	return &PropertyCompare{
		store: store, variantID: variantID,
		propIdx: propIdx, targets: targets, ordered: ordered,
	}, nil
}

// Ordered reports whether the entries this comparator is run against are
// sorted by the compared property tuple.
func (c *PropertyCompare) Ordered() bool { return c.ordered }

// Compare decodes entry idx and compares its selected properties against
// the comparator's target tuple.
func (c *PropertyCompare) Compare(idx format.EntryIdx) (int, error) {
	e, err := c.store.CreateAnyEntry(idx)
	if err != nil {
		return 0, err
	}
	if e.VariantID != c.variantID {
		return 0, errs.NewFormat(int64(idx), "entry selects variant %d, property_compare expects %d", e.VariantID, c.variantID)
	}

	for i, pi := range c.propIdx {
		cmp, err := compareRawValue(e.Values[pi], c.targets[i])
		if err != nil {
			return 0, err
		}
		if cmp != 0 {
			return cmp, nil
		}
	}

	return 0, nil
}

func compareRawValue(a, b entry.RawValue) (int, error) {
	if a.Kind != b.Kind {
		return 0, errs.NewArg("property_compare: mismatched value kinds %d vs %d", a.Kind, b.Kind)
	}

	switch a.Kind {
	case entry.ValueU8, entry.ValueU16, entry.ValueU32, entry.ValueU64:
		return compareUint(a.Uint, b.Uint), nil

	case entry.ValueI8, entry.ValueI16, entry.ValueI32, entry.ValueI64:
		return compareInt(a.Int, b.Int), nil

	case entry.ValueArray:
		return bytes.Compare(a.Array.Base, b.Array.Base), nil

	default:
		return 0, errs.NewArg("property_compare: value kind %d is not comparable", a.Kind)
	}
}

func compareUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
