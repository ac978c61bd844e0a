package lookup

import (
	"context"
	"testing"
)

func TestStaticSourceKnownType(t *testing.T) {
	source := NewStaticSource()

	options, err := source.Lookup(context.Background(), "HP12", "2 Bed House")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(options) != 1 {
		t.Fatalf("Expected 1 option, got %d", len(options))
	}
	if options[0].PropertyType != "2-bed-house" {
		t.Errorf("Expected property type 2-bed-house, got %s", options[0].PropertyType)
	}
	if options[0].MinPrice != 300000 || options[0].MaxPrice != 300000 {
		t.Errorf("Expected price range 300000..300000, got %v..%v", options[0].MinPrice, options[0].MaxPrice)
	}
	if options[0].Source != "static-table" {
		t.Errorf("Expected source static-table, got %s", options[0].Source)
	}
}

func TestStaticSourceUnknownType(t *testing.T) {
	source := NewStaticSource()

	options, err := source.Lookup(context.Background(), "HP12", "castle")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if options != nil {
		t.Errorf("Expected no options for unknown type, got %v", options)
	}
}

func TestStaticSourceAllTypes(t *testing.T) {
	source := NewStaticSource()

	options, err := source.Lookup(context.Background(), "HP12", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(options) != 4 {
		t.Fatalf("Expected 4 options, got %d", len(options))
	}
	for i := 1; i < len(options); i++ {
		if options[i].MinPrice < options[i-1].MinPrice {
			t.Errorf("Expected options sorted by price, got %v before %v", options[i-1].MinPrice, options[i].MinPrice)
		}
	}
}
