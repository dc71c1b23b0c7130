package store

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/m3rciful/classbot/internal/domain"
)

// Memory is an in-process Store for tests and local runs without PostgreSQL.
// Atomic holds one mutex for the whole callback and works on a copy that replaces
// the live data only when the callback succeeds, mirroring a serialisable transaction.
type Memory struct {
	mu         sync.Mutex
	data       memData
	failCommit error
}

type memData struct {
	users       map[int64]domain.User
	courses     map[int64]domain.Course
	enrollments map[int64]domain.Enrollment
	seq         int64
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{data: memData{
		users:       make(map[int64]domain.User),
		courses:     make(map[int64]domain.Course),
		enrollments: make(map[int64]domain.Enrollment),
	}}
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error { return nil }

// Atomic runs fn against a private copy and publishes it on success.
func (m *Memory) Atomic(ctx context.Context, fn func(Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	work := m.data.clone()
	if err := fn(&memTx{d: &work}); err != nil {
		return err
	}
	if err := m.failCommit; err != nil {
		m.failCommit = nil
		return fmt.Errorf("commit: %w", err)
	}
	m.data = work
	return nil
}

// FailNextCommit makes the next successful callback fail at commit with err.
func (m *Memory) FailNextCommit(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failCommit = err
}

// Users returns a snapshot ordered by id.
func (m *Memory) Users() []domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.User, 0, len(m.data.users))
	for _, id := range slices.Sorted(maps.Keys(m.data.users)) {
		out = append(out, m.data.users[id].Clone())
	}
	return out
}

// Enrollments returns a snapshot ordered by id.
func (m *Memory) Enrollments() []domain.Enrollment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Enrollment, 0, len(m.data.enrollments))
	for _, id := range slices.Sorted(maps.Keys(m.data.enrollments)) {
		out = append(out, m.data.enrollments[id])
	}
	return out
}

func (d memData) clone() memData {
	c := memData{
		users:       make(map[int64]domain.User, len(d.users)),
		courses:     maps.Clone(d.courses),
		enrollments: maps.Clone(d.enrollments),
		seq:         d.seq,
	}
	for id, u := range d.users {
		c.users[id] = u.Clone()
	}
	if c.courses == nil {
		c.courses = make(map[int64]domain.Course)
	}
	if c.enrollments == nil {
		c.enrollments = make(map[int64]domain.Enrollment)
	}
	return c
}

type memTx struct {
	d *memData
}

func (t *memTx) next() int64 {
	t.d.seq++
	return t.d.seq
}

func (t *memTx) findUser(match func(domain.User) bool) (*domain.User, bool) {
	for _, id := range slices.Sorted(maps.Keys(t.d.users)) {
		if u := t.d.users[id]; match(u) {
			c := u.Clone()
			return &c, true
		}
	}
	return nil, false
}

func (t *memTx) FindUserByPlatformID(_ context.Context, platformUserID string) (*domain.User, error) {
	u, ok := t.findUser(func(u domain.User) bool {
		return u.PlatformUserID != nil && *u.PlatformUserID == platformUserID
	})
	if !ok {
		return nil, &domain.NotFoundError{Entity: "user", Key: platformUserID}
	}
	return u, nil
}

func (t *memTx) FindUserByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := t.findUser(func(u domain.User) bool { return u.Email == email })
	if !ok {
		return nil, &domain.NotFoundError{Entity: "user", Key: email}
	}
	return u, nil
}

// checkUnique enforces the email and platform id unique indexes.
func (t *memTx) checkUnique(u *domain.User) error {
	for id, other := range t.d.users {
		if id == u.ID {
			continue
		}
		if other.Email == u.Email {
			return &domain.ConflictError{Field: "email", Value: u.Email}
		}
		if u.PlatformUserID != nil && other.PlatformUserID != nil && *other.PlatformUserID == *u.PlatformUserID {
			return &domain.ConflictError{Field: "platform_user_id", Value: *u.PlatformUserID}
		}
	}
	return nil
}

func (t *memTx) InsertUser(_ context.Context, u *domain.User) error {
	if !u.Status.Valid() {
		return fmt.Errorf("insert user: invalid status %q", u.Status)
	}
	u.ID = 0
	if err := t.checkUnique(u); err != nil {
		return err
	}
	u.ID = t.next()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	t.d.users[u.ID] = u.Clone()
	return nil
}

func (t *memTx) UpdateUser(_ context.Context, u *domain.User) error {
	if !u.Status.Valid() {
		return fmt.Errorf("update user: invalid status %q", u.Status)
	}
	prev, ok := t.d.users[u.ID]
	if !ok {
		return &domain.NotFoundError{Entity: "user", Key: fmt.Sprint(u.ID)}
	}
	if err := t.checkUnique(u); err != nil {
		return err
	}
	if prev.Email != u.Email {
		for id, e := range t.d.enrollments {
			if e.UserEmail == prev.Email {
				e.UserEmail = u.Email
				t.d.enrollments[id] = e
			}
		}
	}
	next := u.Clone()
	next.CreatedAt = prev.CreatedAt
	t.d.users[u.ID] = next
	return nil
}

func (t *memTx) DeleteUser(_ context.Context, id int64) error {
	u, ok := t.d.users[id]
	if !ok {
		return &domain.NotFoundError{Entity: "user", Key: fmt.Sprint(id)}
	}
	delete(t.d.users, id)
	for eid, e := range t.d.enrollments {
		if e.UserEmail == u.Email {
			delete(t.d.enrollments, eid)
		}
	}
	return nil
}

func (t *memTx) UnbindPlatformID(_ context.Context, platformUserID string, keepUserID int64) error {
	for id, u := range t.d.users {
		if id != keepUserID && u.PlatformUserID != nil && *u.PlatformUserID == platformUserID {
			u.PlatformUserID = nil
			t.d.users[id] = u
		}
	}
	return nil
}

func (t *memTx) ListUpcomingCourses(_ context.Context, asOf time.Time) ([]domain.Course, error) {
	today := domain.DateOf(asOf)
	var out []domain.Course
	for _, id := range slices.Sorted(maps.Keys(t.d.courses)) {
		c := t.d.courses[id]
		if c.EndDate == nil || !c.EndDate.Before(today) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (t *memTx) ListEnrollmentsForUser(_ context.Context, email string) ([]domain.EnrolledCourse, error) {
	var out []domain.EnrolledCourse
	for _, id := range slices.Sorted(maps.Keys(t.d.enrollments)) {
		e := t.d.enrollments[id]
		if e.UserEmail != email {
			continue
		}
		out = append(out, domain.EnrolledCourse{Enrollment: e, Course: t.d.courses[e.CourseID]})
	}
	return out, nil
}

func (t *memTx) CheckInPending(_ context.Context, email string, at time.Time) (int, error) {
	n := 0
	for id, e := range t.d.enrollments {
		if e.UserEmail == email && e.CheckedInAt == nil {
			e.CheckedInAt = domain.Ptr(at)
			t.d.enrollments[id] = e
			n++
		}
	}
	return n, nil
}

func (t *memTx) FindCourseByName(_ context.Context, name string) (*domain.Course, error) {
	for _, id := range slices.Sorted(maps.Keys(t.d.courses)) {
		if c := t.d.courses[id]; c.Name == name {
			return &c, nil
		}
	}
	return nil, &domain.NotFoundError{Entity: "course", Key: name}
}

func (t *memTx) InsertCourse(_ context.Context, c *domain.Course) error {
	if c.Weekday != nil && !c.Weekday.Valid() {
		return fmt.Errorf("insert course: weekday %d out of range", *c.Weekday)
	}
	c.ID = t.next()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	t.d.courses[c.ID] = *c
	return nil
}

func (t *memTx) InsertEnrollment(_ context.Context, e *domain.Enrollment) (bool, error) {
	if _, ok := t.findUser(func(u domain.User) bool { return u.Email == e.UserEmail }); !ok {
		return false, fmt.Errorf("insert enrollment: no user with email %q", e.UserEmail)
	}
	if _, ok := t.d.courses[e.CourseID]; !ok {
		return false, fmt.Errorf("insert enrollment: no course %d", e.CourseID)
	}
	for _, other := range t.d.enrollments {
		if other.UserEmail == e.UserEmail && other.CourseID == e.CourseID {
			return false, nil
		}
	}
	e.ID = t.next()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	t.d.enrollments[e.ID] = *e
	return true, nil
}
