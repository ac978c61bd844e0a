package lookup

import (
	"context"
	"sort"

	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/domain"
	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/pricecache"
)

const staticSourceName = "static-table"

// StaticSource serves a fixed nationwide price table. It stands in for the
// real market-data service in development and tests, so prices do not vary
// by postcode.
type StaticSource struct {
	table map[string]int64
}

// NewStaticSource returns a source with the built-in price table.
func NewStaticSource() *StaticSource {
	return &StaticSource{table: map[string]int64{
		"1-bed-flat":  100000,
		"2-bed-flat":  200000,
		"2-bed-house": 300000,
		"3-bed-house": 400000,
	}}
}

// Lookup returns the table entry for the property type, or every entry in
// ascending price order when the type is empty. Unknown types yield an empty
// result, not an error.
func (s *StaticSource) Lookup(ctx context.Context, postcode, propertyType string) ([]domain.PriceOption, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if propertyType != "" {
		normalized := pricecache.NormalizePropertyType(propertyType)
		price, ok := s.table[normalized]
		if !ok {
			return nil, nil
		}
		return []domain.PriceOption{{
			PropertyType: normalized,
			MinPrice:     price,
			MaxPrice:     price,
			Source:       staticSourceName,
		}}, nil
	}

	options := make([]domain.PriceOption, 0, len(s.table))
	for propType, price := range s.table {
		options = append(options, domain.PriceOption{
			PropertyType: propType,
			MinPrice:     price,
			MaxPrice:     price,
			Source:       staticSourceName,
		})
	}
	sort.Slice(options, func(i, j int) bool { return options[i].MinPrice < options[j].MinPrice })
	return options, nil
}
