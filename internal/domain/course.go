package domain

import (
	"fmt"
	"time"
)

// Weekday counts from Monday=0 to Sunday=6.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// Valid reports whether w is within Monday..Sunday.
func (w Weekday) Valid() bool {
	return w >= Monday && w <= Sunday
}

// WeekdayOf converts a time.Weekday (Sunday=0) to the Monday-first numbering.
func WeekdayOf(d time.Weekday) Weekday {
	return Weekday((int(d) + 6) % 7)
}

// Clock is a wall-clock start time without a date.
type Clock struct {
	Hour, Minute int
}

// ParseClock accepts "15:04" and "15:04:05" as produced by PostgreSQL TIME.
func ParseClock(s string) (Clock, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
		}
	}
	return Clock{}, fmt.Errorf("invalid clock %q", s)
}

// String formats the clock as HH:MM.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Minutes returns minutes since midnight, used for ordering.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// Course is a recurring class. Weekday, start time and end date are optional.
type Course struct {
	ID        int64
	Name      string
	Weekday   *Weekday
	StartTime *Clock
	EndDate   *time.Time
	CreatedAt time.Time
}

// Enrollment links a User, by email, to a Course.
type Enrollment struct {
	ID          int64
	UserEmail   string
	CourseID    int64
	CheckedInAt *time.Time
	CreatedAt   time.Time
}

// EnrolledCourse is an enrollment joined with its course.
type EnrolledCourse struct {
	Enrollment
	Course Course
}

// DateOf truncates t to its calendar date in t's own location, returned as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
