package record

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecord(recordID, studentID, name string) Record {
	return Record{
		RecordID:          recordID,
		StudentID:         studentID,
		StudentName:       name,
		ClassName:         "Robotics 101",
		StudentPhoto:      "https://cdn.example.com/student/" + recordID + ".jpg",
		DevicePhotos:      []string{"https://cdn.example.com/device/" + recordID + "-1.jpg"},
		DeviceDescription: "Silver laptop",
		CheckInTime:       time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		Status:            StatusCheckedIn,
	}
}

func TestMemoryStoreInsert(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	rec, err := s.Insert(ctx, newRecord("r1", "STU001", "Alex Johnson"))
	require.NoError(t, err)
	assert.Equal(t, "r1", rec.RecordID)

	t.Run("duplicate open check-in refused", func(t *testing.T) {
		_, err := s.Insert(ctx, newRecord("r2", "STU001", "Alex Johnson"))
		assert.ErrorIs(t, err, ErrDuplicateStudentID)

		all, err := s.List(ctx, Filter{Status: StatusCheckedIn})
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("duplicate record id refused", func(t *testing.T) {
		_, err := s.Insert(ctx, newRecord("r1", "STU099", "Sam Lee"))
		assert.ErrorIs(t, err, ErrDuplicateRecordID)
	})

	t.Run("re-check-in allowed after checkout", func(t *testing.T) {
		_, err := s.Checkout(ctx, "r1", time.Now().UTC())
		require.NoError(t, err)

		_, err = s.Insert(ctx, newRecord("r3", "STU001", "Alex Johnson"))
		require.NoError(t, err)
	})
}

func TestMemoryStoreFindByStudentID(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Insert(ctx, newRecord("r1", "STU001", "Alex Johnson"))
	require.NoError(t, err)
	_, err = s.Checkout(ctx, "r1", time.Now().UTC())
	require.NoError(t, err)
	_, err = s.Insert(ctx, newRecord("r2", "STU001", "Alex Johnson"))
	require.NoError(t, err)

	t.Run("most recent record wins", func(t *testing.T) {
		rec, err := s.FindByStudentID(ctx, "STU001")
		require.NoError(t, err)
		assert.Equal(t, "r2", rec.RecordID)
		assert.Equal(t, StatusCheckedIn, rec.Status)
	})

	t.Run("unknown student", func(t *testing.T) {
		_, err := s.FindByStudentID(ctx, "STU404")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMemoryStoreFindByRecordID(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	want := newRecord("r1", "STU001", "Alex Johnson")
	want.DevicePhotos = []string{"url-a", "url-b", "url-c"}
	_, err := s.Insert(ctx, want)
	require.NoError(t, err)

	got, err := s.FindByRecordID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, want, got, "round-trip must preserve every field including photo order")

	_, err = s.FindByRecordID(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreList(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	a := newRecord("r1", "STU001", "Alex Johnson")
	b := newRecord("r2", "STU002", "Maria Gomez")
	b.ClassName = "Physics 201"
	c := newRecord("r3", "STU003", "Chen Wei")
	for _, rec := range []Record{a, b, c} {
		_, err := s.Insert(ctx, rec)
		require.NoError(t, err)
	}
	_, err := s.Checkout(ctx, "r2", time.Now().UTC())
	require.NoError(t, err)

	t.Run("no filter returns all in insertion order", func(t *testing.T) {
		got, err := s.List(ctx, Filter{})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, []string{"r1", "r2", "r3"}, []string{got[0].RecordID, got[1].RecordID, got[2].RecordID})
	})

	t.Run("status filter", func(t *testing.T) {
		got, err := s.List(ctx, Filter{Status: StatusCheckedIn})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "r1", got[0].RecordID)
		assert.Equal(t, "r3", got[1].RecordID)
	})

	t.Run("search is case-insensitive over name id and class", func(t *testing.T) {
		byName, err := s.List(ctx, Filter{Search: "maria"})
		require.NoError(t, err)
		require.Len(t, byName, 1)
		assert.Equal(t, "r2", byName[0].RecordID)

		byID, err := s.List(ctx, Filter{Search: "stu003"})
		require.NoError(t, err)
		require.Len(t, byID, 1)
		assert.Equal(t, "r3", byID[0].RecordID)

		byClass, err := s.List(ctx, Filter{Search: "physics"})
		require.NoError(t, err)
		require.Len(t, byClass, 1)
	})

	t.Run("filters are ANDed", func(t *testing.T) {
		got, err := s.List(ctx, Filter{Status: StatusCheckedIn, Search: "maria"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestMemoryStoreCheckout(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Insert(ctx, newRecord("r1", "STU001", "Alex Johnson"))
	require.NoError(t, err)

	at := time.Date(2024, 3, 1, 17, 30, 0, 0, time.UTC)
	rec, err := s.Checkout(ctx, "r1", at)
	require.NoError(t, err)
	assert.Equal(t, StatusCheckedOut, rec.Status)
	require.NotNil(t, rec.CheckOutTime)
	assert.True(t, !rec.CheckOutTime.Before(rec.CheckInTime), "checkOutTime must not precede checkInTime")

	t.Run("second checkout fails and record unchanged", func(t *testing.T) {
		_, err := s.Checkout(ctx, "r1", at.Add(time.Hour))
		assert.ErrorIs(t, err, ErrAlreadyCheckedOut)

		got, err := s.FindByRecordID(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, at, *got.CheckOutTime)
	})

	t.Run("unknown record", func(t *testing.T) {
		_, err := s.Checkout(ctx, "nope", at)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMemoryStoreConcurrentCheckIns(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Insert(ctx, newRecord(fmt.Sprintf("r%d", i), "STU001", "Alex Johnson"))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrDuplicateStudentID)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one concurrent check-in may win")
}
