package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusPredicates(t *testing.T) {
	assert.False(t, StatusUnbound.Valid())
	assert.True(t, StatusFree.Valid())
	assert.False(t, Status("deleted").Valid())

	for _, s := range []Status{StatusCheckIdentity, StatusWaitEmail, StatusWaitName, StatusWaitDept} {
		assert.True(t, s.Onboarding(), s)
	}
	assert.False(t, StatusFree.Onboarding())

	assert.False(t, StatusCheckIdentity.HasRealEmail())
	assert.False(t, StatusWaitEmail.HasRealEmail())
	assert.True(t, StatusWaitName.HasRealEmail())
	assert.True(t, StatusFree.HasRealEmail())
}

func TestNewPlaceholderUser(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	u := NewPlaceholderUser("4242", now)
	assert.Equal(t, "4242@placeholder.invalid", u.Email)
	assert.Equal(t, StatusCheckIdentity, u.Status)
	require.True(t, u.Bound())
	assert.Equal(t, "4242", *u.PlatformUserID)
	assert.Equal(t, now, u.CreatedAt)
}

func TestUserCloneDoesNotAlias(t *testing.T) {
	u := User{PlatformUserID: Ptr("1"), Name: Ptr("Amy")}
	c := u.Clone()
	*c.Name = "Bob"
	assert.Equal(t, "Amy", *u.Name)
}

func TestParseClock(t *testing.T) {
	c, err := ParseClock("09:05:00")
	require.NoError(t, err)
	assert.Equal(t, "09:05", c.String())

	c, err = ParseClock("18:30")
	require.NoError(t, err)
	assert.Equal(t, 18*60+30, c.Minutes())

	_, err = ParseClock("25:00")
	require.Error(t, err)
}

func TestWeekdayOf(t *testing.T) {
	assert.Equal(t, Monday, WeekdayOf(time.Monday))
	assert.Equal(t, Sunday, WeekdayOf(time.Sunday))
	assert.False(t, Weekday(7).Valid())
}

func TestDateOfKeepsLocalCalendarDay(t *testing.T) {
	taipei := time.FixedZone("UTC+8", 8*3600)
	// 2026-05-31T17:00Z is already June 1st in UTC+8.
	local := time.Date(2026, 5, 31, 17, 0, 0, 0, time.UTC).In(taipei)
	assert.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), DateOf(local))
}

func TestErrorKinds(t *testing.T) {
	nf := fmt.Errorf("lookup: %w", &NotFoundError{Entity: "user", Key: "a@b.c"})
	assert.True(t, errors.Is(nf, ErrNotFound))
	assert.True(t, IsUserFacing(nf))
	assert.True(t, IsUserFacing(&ConflictError{Field: "email", Value: "a@b.c"}))
	assert.True(t, IsUserFacing(&ValidationError{Field: "email", Reason: "format"}))

	pe := &PersistenceError{Op: "commit", Err: errors.New("conn reset")}
	assert.False(t, IsUserFacing(pe))
	assert.Equal(t, CodePersistence, pe.Code())
	assert.EqualError(t, pe, "persistence: commit: conn reset")
}
