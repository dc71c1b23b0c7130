package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/classbot/internal/domain"
)

// runContract exercises behaviour every Store implementation must share.
// fresh must return an empty store.
func runContract(t *testing.T, fresh func(t *testing.T) Store) {
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	seed := func(t *testing.T, s Store) {
		t.Helper()
		_, err := ApplyRoster(ctx, s, &Roster{
			Courses: []RosterCourse{
				{Key: "cpr", Name: "CPR", Weekday: domain.Ptr(0), StartTime: "09:30"},
				{Key: "old", Name: "Expired", Weekday: domain.Ptr(2), EndDate: "2026-05-31"},
				{Key: "today", Name: "Ends today", EndDate: "2026-06-01"},
			},
			Users: []RosterUser{
				{Email: "amy@example.com", Name: "Amy", Courses: []string{"cpr", "old"}},
			},
		})
		require.NoError(t, err)
	}

	t.Run("user lifecycle", func(t *testing.T) {
		s := fresh(t)
		u := domain.NewPlaceholderUser("p-1", now)
		require.NoError(t, s.Atomic(ctx, func(tx Tx) error { return tx.InsertUser(ctx, u) }))
		assert.NotZero(t, u.ID)

		require.NoError(t, s.Atomic(ctx, func(tx Tx) error {
			got, err := tx.FindUserByPlatformID(ctx, "p-1")
			require.NoError(t, err)
			assert.Equal(t, domain.StatusCheckIdentity, got.Status)
			assert.Equal(t, "p-1@placeholder.invalid", got.Email)
			got.Email = "new@example.com"
			got.Status = domain.StatusWaitName
			return tx.UpdateUser(ctx, got)
		}))

		require.NoError(t, s.Atomic(ctx, func(tx Tx) error {
			got, err := tx.FindUserByEmail(ctx, "new@example.com")
			require.NoError(t, err)
			assert.Equal(t, domain.StatusWaitName, got.Status)
			return tx.DeleteUser(ctx, got.ID)
		}))

		err := s.Atomic(ctx, func(tx Tx) error {
			_, err := tx.FindUserByPlatformID(ctx, "p-1")
			return err
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("email unique", func(t *testing.T) {
		s := fresh(t)
		seed(t, s)
		err := s.Atomic(ctx, func(tx Tx) error {
			u := domain.NewPlaceholderUser("p-2", now)
			if err := tx.InsertUser(ctx, u); err != nil {
				return err
			}
			u.Email = "amy@example.com"
			return tx.UpdateUser(ctx, u)
		})
		var conflict *domain.ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, "email", conflict.Field)

		// the insert in the failed unit must not survive
		err = s.Atomic(ctx, func(tx Tx) error {
			_, err := tx.FindUserByPlatformID(ctx, "p-2")
			return err
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("callback error rolls back", func(t *testing.T) {
		s := fresh(t)
		boom := errors.New("boom")
		err := s.Atomic(ctx, func(tx Tx) error {
			require.NoError(t, tx.InsertUser(ctx, domain.NewPlaceholderUser("p-3", now)))
			return boom
		})
		require.ErrorIs(t, err, boom)
		err = s.Atomic(ctx, func(tx Tx) error {
			_, err := tx.FindUserByPlatformID(ctx, "p-3")
			return err
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("upcoming courses", func(t *testing.T) {
		s := fresh(t)
		seed(t, s)
		var names []string
		require.NoError(t, s.Atomic(ctx, func(tx Tx) error {
			courses, err := tx.ListUpcomingCourses(ctx, now)
			for _, c := range courses {
				names = append(names, c.Name)
			}
			return err
		}))
		assert.ElementsMatch(t, []string{"CPR", "Ends today"}, names)
	})

	t.Run("enrollments follow email and cascade", func(t *testing.T) {
		s := fresh(t)
		seed(t, s)
		require.NoError(t, s.Atomic(ctx, func(tx Tx) error {
			u, err := tx.FindUserByEmail(ctx, "amy@example.com")
			require.NoError(t, err)
			u.Email = "amy@new.example.com"
			return tx.UpdateUser(ctx, u)
		}))
		require.NoError(t, s.Atomic(ctx, func(tx Tx) error {
			items, err := tx.ListEnrollmentsForUser(ctx, "amy@new.example.com")
			require.NoError(t, err)
			require.Len(t, items, 2)
			assert.Equal(t, "09:30", items[0].Course.StartTime.String())
			u, err := tx.FindUserByEmail(ctx, "amy@new.example.com")
			require.NoError(t, err)
			return tx.DeleteUser(ctx, u.ID)
		}))
		require.NoError(t, s.Atomic(ctx, func(tx Tx) error {
			items, err := tx.ListEnrollmentsForUser(ctx, "amy@new.example.com")
			assert.Empty(t, items)
			return err
		}))
	})

	t.Run("check in applies once", func(t *testing.T) {
		s := fresh(t)
		seed(t, s)
		counts := make([]int, 0, 2)
		for range 2 {
			require.NoError(t, s.Atomic(ctx, func(tx Tx) error {
				n, err := tx.CheckInPending(ctx, "amy@example.com", now)
				counts = append(counts, n)
				return err
			}))
		}
		assert.Equal(t, []int{2, 0}, counts)
	})

	t.Run("unbind platform id", func(t *testing.T) {
		s := fresh(t)
		seed(t, s)
		require.NoError(t, s.Atomic(ctx, func(tx Tx) error {
			u := domain.NewPlaceholderUser("p-9", now)
			u.Status = domain.StatusFree
			u.Email = "other@example.com"
			if err := tx.InsertUser(ctx, u); err != nil {
				return err
			}
			amy, err := tx.FindUserByEmail(ctx, "amy@example.com")
			require.NoError(t, err)
			if err := tx.UnbindPlatformID(ctx, "p-9", amy.ID); err != nil {
				return err
			}
			amy.PlatformUserID = domain.Ptr("p-9")
			return tx.UpdateUser(ctx, amy)
		}))
		require.NoError(t, s.Atomic(ctx, func(tx Tx) error {
			got, err := tx.FindUserByPlatformID(ctx, "p-9")
			require.NoError(t, err)
			assert.Equal(t, "amy@example.com", got.Email)
			other, err := tx.FindUserByEmail(ctx, "other@example.com")
			require.NoError(t, err)
			assert.Nil(t, other.PlatformUserID)
			return nil
		}))
	})

	t.Run("roster is idempotent", func(t *testing.T) {
		s := fresh(t)
		seed(t, s)
		res, err := ApplyRoster(ctx, s, &Roster{
			Courses: []RosterCourse{{Key: "cpr", Name: "CPR"}},
			Users:   []RosterUser{{Email: "amy@example.com", Courses: []string{"cpr"}}},
		})
		require.NoError(t, err)
		assert.Equal(t, RosterResult{}, res)
	})
}
