package record

import "context"

// Queries is the read facade over the store used by the checkout scan,
// record detail view and admin dashboard. Reads never mutate state and are
// safe to retry.
type Queries struct {
	store Store
}

// NewQueries wraps a store.
func NewQueries(store Store) *Queries {
	return &Queries{store: store}
}

// ByStudentID normalizes a scanned identifier and returns the student's
// most recent record.
func (q *Queries) ByStudentID(ctx context.Context, raw string) (Record, error) {
	id, err := NormalizeStudentID(raw)
	if err != nil {
		return Record{}, err
	}
	return q.store.FindByStudentID(ctx, id)
}

// ByRecordID returns the record with the given record id.
func (q *Queries) ByRecordID(ctx context.Context, recordID string) (Record, error) {
	return q.store.FindByRecordID(ctx, recordID)
}

// List returns records matching the filter in insertion order.
func (q *Queries) List(ctx context.Context, f Filter) ([]Record, error) {
	return q.store.List(ctx, f)
}
