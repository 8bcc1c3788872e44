package entry

import (
	"github.com/arloliu/jubako/errs"
	"github.com/arloliu/jubako/format"
)

// AnyEntry is one entry's values, materialized on demand: every Property
// of the Variant the entry's VariantId byte selected, decoded into a
// RawValue. Array values carrying a deported tail are not resolved to
// bytes until the caller asks — see ArrayValue.Bytes.
type AnyEntry struct {
	VariantID int
	Values    []RawValue
}

// CreateAnyEntry reads entry idx out of store and materializes every
// Property of its selected Variant.
func (s *EntryStore) CreateAnyEntry(idx format.EntryIdx) (*AnyEntry, error) {
	record, variant, err := s.GetEntry(idx)
	if err != nil {
		return nil, err
	}

	values := make([]RawValue, len(variant.Properties))
	for i, p := range variant.Properties {
		v, err := CreateValue(p, record)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	variantID := 0
	if s.layout.HasVariantID() {
		variantID = int(record[0])
	}

	return &AnyEntry{VariantID: variantID, Values: values}, nil
}

// Builder validates a declared property count against one Variant of a
// Layout and exposes entries of that Variant by typed accessor index,
// resolved once at build time rather than re-walked on every entry.
type Builder struct {
	layout    Layout
	variantID int
	variant   Variant
}

// NewBuilder builds a Builder bound to layout's Variant variantID,
// checking it declares exactly propertyCount properties.
func NewBuilder(layout Layout, variantID int, propertyCount int) (*Builder, error) {
	if variantID < 0 || variantID >= len(layout.Variants) {
		return nil, errs.NewArg("variant id %d out of range (layout has %d variants)", variantID, len(layout.Variants))
	}

	variant := layout.Variants[variantID]
	if len(variant.Properties) != propertyCount {
		return nil, errs.NewArg(
			"builder declares %d properties but variant %d has %d",
			propertyCount, variantID, len(variant.Properties),
		)
	}

	return &Builder{layout: layout, variantID: variantID, variant: variant}, nil
}

// Property returns the i'th Property of the Builder's bound Variant.
func (b *Builder) Property(i int) (Property, error) {
	if i < 0 || i >= len(b.variant.Properties) {
		return Property{}, errs.NewArg("property index %d out of range", i)
	}

	return b.variant.Properties[i], nil
}

// CreateEntry reads entry idx out of store and decodes every Property of
// the Builder's bound Variant, failing if the entry selects a different
// one.
func (b *Builder) CreateEntry(store *EntryStore, idx format.EntryIdx) ([]RawValue, error) {
	record, variant, err := store.GetEntry(idx)
	if err != nil {
		return nil, err
	}
	if len(variant.Properties) != len(b.variant.Properties) {
		return nil, errs.NewArg("entry %d does not select the builder's bound variant", idx)
	}

	values := make([]RawValue, len(b.variant.Properties))
	for i, p := range b.variant.Properties {
		v, err := CreateValue(p, record)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	return values, nil
}
