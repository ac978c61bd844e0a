// Package lookup holds the external collaborator clients: property price
// sources and the postcode validity checker. The planner only sees the
// interfaces; transport details stay here.
package lookup

import (
	"context"
	"errors"

	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/domain"
)

// ErrUnavailable marks a collaborator that failed or timed out. Callers
// surface it as a LOOKUP_UNAVAILABLE status rather than an internal fault.
var ErrUnavailable = errors.New("lookup unavailable")

// PriceSource returns price options for a postcode area. An empty property
// type asks for every type the source knows; an empty result with a nil
// error means the area has no listings, not a failure.
type PriceSource interface {
	Lookup(ctx context.Context, postcode, propertyType string) ([]domain.PriceOption, error)
}

// CheckResult is the postcode checker's answer. Suggestions carry nearby
// outcodes when the queried one does not exist.
type CheckResult struct {
	Valid       bool
	Suggestions []string
}

// PostcodeChecker validates a UK outcode. The core never re-validates
// postcode format itself; it only consumes this boolean.
type PostcodeChecker interface {
	Check(ctx context.Context, outcode string) (CheckResult, error)
}

var (
	_ PriceSource     = (*StaticSource)(nil)
	_ PriceSource     = (*HTTPSource)(nil)
	_ PostcodeChecker = (*PostcodeClient)(nil)
)
