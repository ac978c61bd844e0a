package pricecache

import (
	"testing"
)

func TestKeyNormalization(t *testing.T) {
	cases := []struct {
		name         string
		postcode     string
		propertyType string
		want         string
	}{
		{"already normalized", "hp12", "2-bed-house", "hp12_2-bed-house"},
		{"mixed case", "HP12", "2-bed house", "hp12_2-bed-house"},
		{"postcode with spaces", "HP 12", "2-bed house", "hp12_2-bed-house"},
		{"type with extra spaces", "HP12", "  2  Bed   House ", "hp12_2-bed-house"},
		{"full postcode", "SW1A 1AA", "1-bed flat", "sw1a1aa_1-bed-flat"},
	}
	for _, tc := range cases {
		if got := Key(tc.postcode, tc.propertyType); got != tc.want {
			t.Errorf("%s: Expected key %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestKeyEquivalentInputsCollide(t *testing.T) {
	a := Key("HP12", "2-Bed House")
	b := Key("hp 12", "2-bed   house")
	if a != b {
		t.Errorf("Expected equivalent inputs to share a key, got %q and %q", a, b)
	}
}
