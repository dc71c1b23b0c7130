// Package render formats courses, schedules and profiles into reply text.
// Nothing here touches the store; missing optional fields render as the catalog placeholders.
package render

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/m3rciful/classbot/internal/domain"
	"github.com/m3rciful/classbot/internal/locale"
)

const dateLayout = "2006-01-02"

// Renderer formats with one catalog and calendar link.
type Renderer struct {
	cat         *locale.Catalog
	calendarURL string
}

// New returns a Renderer. An empty calendarURL drops the footer.
func New(cat *locale.Catalog, calendarURL string) *Renderer {
	return &Renderer{cat: cat, calendarURL: strings.TrimSpace(calendarURL)}
}

// WeekdayLabel returns the catalog day name, or the pending token when w is nil or out of range.
func (r *Renderer) WeekdayLabel(w *domain.Weekday) string {
	if w == nil || !w.Valid() {
		return r.cat.Pending
	}
	return r.cat.Weekdays[*w]
}

// ClockLabel returns HH:MM or the pending token.
func (r *Renderer) ClockLabel(c *domain.Clock) string {
	if c == nil {
		return r.cat.Pending
	}
	return c.String()
}

// CourseList renders the upcoming course listing with the calendar footer.
func (r *Renderer) CourseList(courses []domain.Course) string {
	if len(courses) == 0 {
		return r.cat.Msg.NoUpcoming
	}
	sorted := slices.Clone(courses)
	SortUpcoming(sorted)

	var b strings.Builder
	b.WriteString(r.cat.Msg.CourseListHeader)
	for _, c := range sorted {
		fmt.Fprintf(&b, r.cat.Msg.CourseLineFormat, c.Name, r.WeekdayLabel(c.Weekday), r.ClockLabel(c.StartTime))
		if c.EndDate != nil {
			fmt.Fprintf(&b, r.cat.Msg.CourseEndsFormat, c.EndDate.Format(dateLayout))
		}
	}
	if r.calendarURL != "" {
		fmt.Fprintf(&b, r.cat.Msg.CalendarFormat, r.calendarURL)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Schedule renders enrolled courses grouped by weekday, one header per weekday change.
func (r *Renderer) Schedule(items []domain.EnrolledCourse) string {
	if len(items) == 0 {
		return r.cat.Msg.NoEnrollments
	}
	sorted := slices.Clone(items)
	SortSchedule(sorted)

	var b strings.Builder
	b.WriteString(r.cat.Msg.ScheduleHeader)
	for i, it := range sorted {
		if i == 0 || !sameWeekday(sorted[i-1].Course.Weekday, it.Course.Weekday) {
			fmt.Fprintf(&b, r.cat.Msg.ScheduleDayFormat, r.WeekdayLabel(it.Course.Weekday))
		}
		fmt.Fprintf(&b, r.cat.Msg.ScheduleLineFmt, r.ClockLabel(it.Course.StartTime), it.Course.Name)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Profile renders name, email and identity. The email is always shown.
func (r *Renderer) Profile(u *domain.User) string {
	if u == nil {
		return fmt.Sprintf(r.cat.Msg.ProfileFormat, r.cat.Unset, r.cat.Unset, r.cat.Unset)
	}
	return fmt.Sprintf(r.cat.Msg.ProfileFormat, r.orUnset(u.Name), u.Email, r.orUnset(u.Identity))
}

// CourseNames lists course names in schedule order, used after a roster bind.
func (r *Renderer) CourseNames(items []domain.EnrolledCourse) string {
	if len(items) == 0 {
		return r.cat.Msg.NoEnrollments
	}
	sorted := slices.Clone(items)
	SortSchedule(sorted)

	var b strings.Builder
	b.WriteString(r.cat.Msg.CourseNamesHeader)
	for _, it := range sorted {
		fmt.Fprintf(&b, r.cat.Msg.CourseNameFormat, it.Course.Name)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Help lists the command keywords. The check-in entry appears only when enabled.
func (r *Renderer) Help(checkIn bool) string {
	labels := []string{r.cat.Labels.Recent, r.cat.Labels.Enrollments, r.cat.Labels.Profile}
	if checkIn {
		labels = append(labels, r.cat.Labels.CheckIn)
	}
	var b strings.Builder
	b.WriteString(r.cat.Msg.HelpHeader)
	for i, l := range labels {
		fmt.Fprintf(&b, r.cat.Msg.HelpItemFormat, i+1, l)
	}
	return strings.TrimSpace(b.String())
}

// DisplayName picks the name for greetings, falling back to the email.
func (r *Renderer) DisplayName(u *domain.User) string {
	if u.Name != nil && strings.TrimSpace(*u.Name) != "" {
		return *u.Name
	}
	return u.Email
}

func (r *Renderer) orUnset(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return r.cat.Unset
	}
	return *s
}

func sameWeekday(a, b *domain.Weekday) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// SortUpcoming orders by weekday then start time; a missing weekday or time sorts last.
func SortUpcoming(courses []domain.Course) {
	slices.SortStableFunc(courses, func(a, b domain.Course) int {
		return cmp.Or(
			compareWeekday(a.Weekday, b.Weekday),
			compareClock(a.StartTime, b.StartTime, false),
		)
	})
}

// SortSchedule orders by weekday then start time; a missing weekday sorts last,
// a missing start time sorts first within its day.
func SortSchedule(items []domain.EnrolledCourse) {
	slices.SortStableFunc(items, func(a, b domain.EnrolledCourse) int {
		return cmp.Or(
			compareWeekday(a.Course.Weekday, b.Course.Weekday),
			compareClock(a.Course.StartTime, b.Course.StartTime, true),
		)
	})
}

func compareWeekday(a, b *domain.Weekday) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return cmp.Compare(*a, *b)
}

func compareClock(a, b *domain.Clock, nilFirst bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		if nilFirst {
			return -1
		}
		return 1
	case b == nil:
		if nilFirst {
			return 1
		}
		return -1
	}
	return cmp.Compare(a.Minutes(), b.Minutes())
}
