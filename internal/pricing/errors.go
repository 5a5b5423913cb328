package pricing

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalid matches every ValidationError via errors.Is.
	ErrInvalid = errors.New("pricing: invalid input")
	// ErrLookup matches every LookupError via errors.Is.
	ErrLookup = errors.New("pricing: no configured price")
)

// ValidationError reports invalid numeric input: a negative price, a non-positive quantity
// or a negative tax rate. It is also used for incomplete price tables.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "pricing: " + e.Reason
	}
	return fmt.Sprintf("pricing: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalid }

// LookupError reports an unknown item type or an (item, service) pair with no configured price.
type LookupError struct {
	Item    ItemType
	Service ServiceType
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("pricing: no price configured for %q / %q", string(e.Item), string(e.Service))
}

func (e *LookupError) Is(target error) bool { return target == ErrLookup }
