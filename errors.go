package ledger

import (
	"errors"
	"fmt"
)

// The store reports every failure as one of these sentinels, wrapped
// with context. Callers match with errors.Is.
var (
	// ErrNotFound: an identifier does not resolve to an entity.
	ErrNotFound = errors.New("not found")
	// ErrInvalidReference: a foreign key points to a nonexistent or
	// wrong-kind entity.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrConstraint: the mutation would violate a store invariant, e.g.
	// deleting an account that still has transactions without cascade.
	ErrConstraint = errors.New("constraint violation")
)

func notFound(kind string, id ID) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

func invalidReference(field, kind string, id ID) error {
	return fmt.Errorf("%s references %s %q: %w", field, kind, id, ErrInvalidReference)
}

func constraint(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrConstraint)...)
}

// RowError is a per-row statement import failure. Rows fail
// individually; a RowError never aborts the batch.
type RowError struct {
	Index int    // position of the row in the statement
	Raw   string // raw description of the offending row
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d (%q): %v", e.Index, e.Raw, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// RuleConflict is a warning raised when two standardization rules have
// identical match predicates. The first-defined rule wins; the
// conflict is surfaced so the user can clean up, it is never fatal.
type RuleConflict struct {
	First  ID
	Second ID
	Match  string
}

func (c RuleConflict) String() string {
	return fmt.Sprintf("rules %s and %s share the predicate %q; the first wins", c.First, c.Second, c.Match)
}
