package record

import (
	"context"
	"time"
)

// Filter narrows a List call. Both fields are optional; when both are set
// they are ANDed. Search matches case-insensitively as a substring against
// student name, student id and class name.
type Filter struct {
	Status Status
	Search string
}

// Store is the single source of truth for Records. Implementations must
// serialize Insert/Checkout per student id so that two simultaneous
// check-ins, or a check-in racing a check-out, cannot both succeed.
type Store interface {
	// Insert persists a new record. Fails with ErrDuplicateStudentID when an
	// open check-in already exists for the student, and ErrDuplicateRecordID
	// on a record id collision.
	Insert(ctx context.Context, rec Record) (Record, error)

	// FindByStudentID returns the most recent record for the student.
	FindByStudentID(ctx context.Context, studentID string) (Record, error)

	// FindByRecordID returns the record with the given record id.
	FindByRecordID(ctx context.Context, recordID string) (Record, error)

	// List returns records matching the filter in insertion order, oldest
	// first.
	List(ctx context.Context, f Filter) ([]Record, error)

	// Checkout applies the terminal transition to the record. Fails with
	// ErrNotFound when the record id does not exist and ErrAlreadyCheckedOut
	// when the record is no longer open.
	Checkout(ctx context.Context, recordID string, at time.Time) (Record, error)
}
