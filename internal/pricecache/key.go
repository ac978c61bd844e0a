// Package pricecache caches property price lookups under a normalized
// (postcode, property type) key. The cache is strictly best-effort: a broken
// or slow backend degrades to a miss, never to a failed request.
package pricecache

import (
	"strings"
)

// NormalizePostcode lower-cases a postcode and strips all whitespace,
// so "HP 12" and "hp12" address the same entry.
func NormalizePostcode(postcode string) string {
	return strings.Join(strings.Fields(strings.ToLower(postcode)), "")
}

// NormalizePropertyType lower-cases a property type and collapses whitespace
// runs to single hyphens, so "2 Bed House" and "2-bed house" match.
func NormalizePropertyType(propertyType string) string {
	return strings.Join(strings.Fields(strings.ToLower(propertyType)), "-")
}

// Key derives the cache key for a postcode and property type. Callers with
// equivalent inputs always produce identical keys regardless of casing or
// spacing, e.g. ("HP12", "2-bed house") -> "hp12_2-bed-house".
func Key(postcode, propertyType string) string {
	return NormalizePostcode(postcode) + "_" + NormalizePropertyType(propertyType)
}
