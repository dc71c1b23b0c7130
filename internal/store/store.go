// Package store persists users, courses and enrollments.
//
// Every conversation step runs inside Store.Atomic. User lookups lock the row for the
// rest of the transaction, so two messages from the same account are applied one after
// the other and a failed callback or commit leaves no trace.
package store

import (
	"context"
	"time"

	"github.com/m3rciful/classbot/internal/domain"
)

// Tx is the set of operations available inside one atomic unit.
type Tx interface {
	// FindUserByPlatformID returns domain.ErrNotFound when no row holds id.
	FindUserByPlatformID(ctx context.Context, platformUserID string) (*domain.User, error)
	// FindUserByEmail matches the email exactly.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	// InsertUser stores u and sets u.ID. A taken email or platform id yields *domain.ConflictError.
	InsertUser(ctx context.Context, u *domain.User) error
	// UpdateUser rewrites every mutable column of u. Email changes cascade to enrollments.
	UpdateUser(ctx context.Context, u *domain.User) error
	// DeleteUser removes the user and cascades to its enrollments.
	DeleteUser(ctx context.Context, id int64) error
	// UnbindPlatformID clears platformUserID from every row except keepUserID.
	UnbindPlatformID(ctx context.Context, platformUserID string, keepUserID int64) error

	// ListUpcomingCourses returns courses without an end date or ending on or after asOf's date.
	ListUpcomingCourses(ctx context.Context, asOf time.Time) ([]domain.Course, error)
	// ListEnrollmentsForUser joins the user's enrollments with their courses.
	ListEnrollmentsForUser(ctx context.Context, email string) ([]domain.EnrolledCourse, error)
	// CheckInPending stamps at on enrollments not yet checked in and returns how many changed.
	CheckInPending(ctx context.Context, email string, at time.Time) (int, error)

	FindCourseByName(ctx context.Context, name string) (*domain.Course, error)
	InsertCourse(ctx context.Context, c *domain.Course) error
	// InsertEnrollment reports false when the pair already exists.
	InsertEnrollment(ctx context.Context, e *domain.Enrollment) (bool, error)
}

// Store opens atomic units and reports backend health.
type Store interface {
	// Atomic runs fn in one transaction. Any error from fn or the commit discards every change.
	Atomic(ctx context.Context, fn func(Tx) error) error
	Ping(ctx context.Context) error
}
