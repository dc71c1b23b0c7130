package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/classbot/internal/domain"
)

var testNow = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

func TestMemoryContract(t *testing.T) {
	runContract(t, func(*testing.T) Store { return NewMemory() })
}

func TestMemoryFailNextCommit(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	boom := errors.New("disk full")
	m.FailNextCommit(boom)

	err := m.Atomic(ctx, func(tx Tx) error {
		return tx.InsertUser(ctx, domain.NewPlaceholderUser("1", testNow))
	})
	require.ErrorIs(t, err, boom)
	assert.Empty(t, m.Users())

	// only the next commit fails
	require.NoError(t, m.Atomic(ctx, func(tx Tx) error {
		return tx.InsertUser(ctx, domain.NewPlaceholderUser("1", testNow))
	}))
	assert.Len(t, m.Users(), 1)
}

func TestMemoryPlatformIDUnique(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Atomic(ctx, func(tx Tx) error {
		return tx.InsertUser(ctx, domain.NewPlaceholderUser("1", testNow))
	}))
	dup := domain.NewPlaceholderUser("1", testNow)
	dup.Email = "x@example.com"
	err := m.Atomic(ctx, func(tx Tx) error { return tx.InsertUser(ctx, dup) })
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "platform_user_id", conflict.Field)
}

func TestMemorySerialisesAtomicUnits(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_, err := ApplyRoster(ctx, m, &Roster{
		Courses: []RosterCourse{{Key: "a", Name: "A"}, {Key: "b", Name: "B"}},
		Users:   []RosterUser{{Email: "amy@example.com", Courses: []string{"a", "b"}}},
	})
	require.NoError(t, err)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Atomic(ctx, func(tx Tx) error {
				n, err := tx.CheckInPending(ctx, "amy@example.com", testNow)
				mu.Lock()
				total += n
				mu.Unlock()
				return err
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 2, total)
	for _, e := range m.Enrollments() {
		assert.NotNil(t, e.CheckedInAt)
	}
}

func TestMemoryRejectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := NewMemory().Atomic(ctx, func(Tx) error { called = true; return nil })
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
