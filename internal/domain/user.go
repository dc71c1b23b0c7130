// Package domain holds the entities shared by the store, the renderer and the conversation machine.
package domain

import (
	"fmt"
	"time"
)

// Status is the persisted lifecycle state of a User.
type Status string

const (
	// StatusUnbound means no User row holds the platform id. It is never persisted.
	StatusUnbound       Status = "unbound"
	StatusCheckIdentity Status = "check_identity"
	StatusWaitEmail     Status = "wait_email"
	StatusWaitName      Status = "wait_name"
	StatusWaitDept      Status = "wait_dept"
	StatusFree          Status = "free"
)

// Valid reports whether s may be stored on a User row.
func (s Status) Valid() bool {
	switch s {
	case StatusCheckIdentity, StatusWaitEmail, StatusWaitName, StatusWaitDept, StatusFree:
		return true
	}
	return false
}

// Onboarding reports whether s is one of the guided dialogue steps.
func (s Status) Onboarding() bool {
	switch s {
	case StatusCheckIdentity, StatusWaitEmail, StatusWaitName, StatusWaitDept:
		return true
	}
	return false
}

// HasRealEmail reports whether a User in state s must carry a collected email.
func (s Status) HasRealEmail() bool {
	return s == StatusWaitName || s == StatusWaitDept || s == StatusFree
}

// User is a person known to the bot, bound to a platform account or pre-seeded from a roster.
type User struct {
	ID             int64
	PlatformUserID *string
	Email          string
	Name           *string
	Identity       *string
	Status         Status
	CreatedAt      time.Time
}

// Bound reports whether a platform account is attached.
func (u *User) Bound() bool {
	return u != nil && u.PlatformUserID != nil && *u.PlatformUserID != ""
}

// Clone returns a deep copy so callers can mutate without aliasing.
func (u User) Clone() User {
	u.PlatformUserID = clonePtr(u.PlatformUserID)
	u.Name = clonePtr(u.Name)
	u.Identity = clonePtr(u.Identity)
	return u
}

// PlaceholderEmail derives the unique, non-routable email held until the real one is collected.
func PlaceholderEmail(platformUserID string) string {
	return fmt.Sprintf("%s@placeholder.invalid", platformUserID)
}

// NewPlaceholderUser builds the row inserted when onboarding starts.
func NewPlaceholderUser(platformUserID string, now time.Time) *User {
	return &User{
		PlatformUserID: Ptr(platformUserID),
		Email:          PlaceholderEmail(platformUserID),
		Status:         StatusCheckIdentity,
		CreatedAt:      now,
	}
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	return Ptr(*p)
}
