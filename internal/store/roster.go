package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/m3rciful/classbot/internal/domain"
)

// Roster is the seed file format: courses keyed by a local id, and pre-registered users
// enrolled into those keys. Seeded users have a real email and no platform account.
type Roster struct {
	Courses []RosterCourse `yaml:"courses"`
	Users   []RosterUser   `yaml:"users"`
}

// RosterCourse describes one course. Weekday counts from Monday=0.
type RosterCourse struct {
	Key       string `yaml:"key"`
	Name      string `yaml:"name"`
	Weekday   *int   `yaml:"weekday"`
	StartTime string `yaml:"start_time"`
	EndDate   string `yaml:"end_date"`
}

// RosterUser is a pre-registered participant.
type RosterUser struct {
	Email    string   `yaml:"email"`
	Name     string   `yaml:"name"`
	Identity string   `yaml:"identity"`
	Courses  []string `yaml:"courses"`
}

// RosterResult counts the rows created by ApplyRoster.
type RosterResult struct {
	Courses     int
	Users       int
	Enrollments int
}

// LoadRoster reads and validates a YAML roster file.
func LoadRoster(path string) (*Roster, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	var r Roster
	if err := yaml.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", path, err)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("roster %s: %w", path, err)
	}
	return &r, nil
}

// Validate checks keys, weekdays, times, dates and course references.
func (r *Roster) Validate() error {
	var errs []error
	keys := make(map[string]bool, len(r.Courses))
	for i, c := range r.Courses {
		switch {
		case strings.TrimSpace(c.Key) == "":
			errs = append(errs, fmt.Errorf("courses[%d]: key is required", i))
		case keys[c.Key]:
			errs = append(errs, fmt.Errorf("courses[%d]: duplicate key %q", i, c.Key))
		}
		keys[c.Key] = true
		if strings.TrimSpace(c.Name) == "" {
			errs = append(errs, fmt.Errorf("courses[%d]: name is required", i))
		}
		if _, err := c.toDomain(); err != nil {
			errs = append(errs, fmt.Errorf("courses[%d]: %w", i, err))
		}
	}
	emails := make(map[string]bool, len(r.Users))
	for i, u := range r.Users {
		email := strings.TrimSpace(u.Email)
		if !strings.Contains(email, "@") {
			errs = append(errs, fmt.Errorf("users[%d]: invalid email %q", i, u.Email))
		}
		if emails[email] {
			errs = append(errs, fmt.Errorf("users[%d]: duplicate email %q", i, email))
		}
		emails[email] = true
		for _, k := range u.Courses {
			if !keys[k] {
				errs = append(errs, fmt.Errorf("users[%d]: unknown course key %q", i, k))
			}
		}
	}
	return errors.Join(errs...)
}

func (c RosterCourse) toDomain() (domain.Course, error) {
	out := domain.Course{Name: strings.TrimSpace(c.Name)}
	if c.Weekday != nil {
		w := domain.Weekday(*c.Weekday)
		if !w.Valid() {
			return out, fmt.Errorf("weekday %d out of range 0..6", *c.Weekday)
		}
		out.Weekday = &w
	}
	if s := strings.TrimSpace(c.StartTime); s != "" {
		clock, err := domain.ParseClock(s)
		if err != nil {
			return out, err
		}
		out.StartTime = &clock
	}
	if s := strings.TrimSpace(c.EndDate); s != "" {
		d, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return out, fmt.Errorf("end_date: %w", err)
		}
		out.EndDate = &d
	}
	return out, nil
}

// ApplyRoster inserts missing courses, users and enrollments in one atomic unit.
// Courses match by name and users by email, so re-applying the same file creates nothing.
func ApplyRoster(ctx context.Context, s Store, r *Roster) (RosterResult, error) {
	var res RosterResult
	if err := r.Validate(); err != nil {
		return res, err
	}
	err := s.Atomic(ctx, func(tx Tx) error {
		res = RosterResult{}
		ids := make(map[string]int64, len(r.Courses))
		for _, rc := range r.Courses {
			existing, err := tx.FindCourseByName(ctx, strings.TrimSpace(rc.Name))
			switch {
			case err == nil:
				ids[rc.Key] = existing.ID
				continue
			case !errors.Is(err, domain.ErrNotFound):
				return err
			}
			c, _ := rc.toDomain()
			if err := tx.InsertCourse(ctx, &c); err != nil {
				return err
			}
			ids[rc.Key] = c.ID
			res.Courses++
		}

		for _, ru := range r.Users {
			email := strings.TrimSpace(ru.Email)
			_, err := tx.FindUserByEmail(ctx, email)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				u := &domain.User{
					Email:    email,
					Name:     optional(ru.Name),
					Identity: optional(ru.Identity),
					Status:   domain.StatusFree,
				}
				if err := tx.InsertUser(ctx, u); err != nil {
					return err
				}
				res.Users++
			case err != nil:
				return err
			}
			for _, key := range ru.Courses {
				created, err := tx.InsertEnrollment(ctx, &domain.Enrollment{UserEmail: email, CourseID: ids[key]})
				if err != nil {
					return err
				}
				if created {
					res.Enrollments++
				}
			}
		}
		return nil
	})
	return res, err
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}
