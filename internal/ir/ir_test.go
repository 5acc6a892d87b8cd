package ir

import "testing"

func TestScanHelpers(t *testing.T) {
	fields := []Field{
		{Name: "a", Obligations: []Obligation{&TypeCheck{Kind: KindString}, &Bound{Op: Min, Value: "0"}}},
	}
	if hs := ScanHelpers(fields); !hs.Empty() {
		t.Fatalf("expected no helpers, got %b", hs)
	}

	fields = append(fields,
		Field{Name: "b", Obligations: []Obligation{&Union{Mode: OneOf}}},
		Field{Name: "c", Obligations: []Obligation{&TypeCheck{Kind: KindArray}, &Items{Kind: KindInteger}}},
	)
	hs := ScanHelpers(fields)
	if !hs.Has(HelperOneOf) || !hs.Has(HelperItems) {
		t.Fatalf("missing helpers: %b", hs)
	}
	if hs.Has(HelperAnyOf) || hs.Has(HelperEnum) || hs.Has(HelperFormat) {
		t.Fatalf("unexpected helpers: %b", hs)
	}
	if !hs.NeedsSchemaMatch() {
		t.Fatalf("oneOf requires the schema match routine")
	}
}
