package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/classbot/internal/domain"
	"github.com/m3rciful/classbot/internal/locale"
)

func wd(w domain.Weekday) *domain.Weekday { return &w }

func clock(h, m int) *domain.Clock { return &domain.Clock{Hour: h, Minute: m} }

func newRenderer(t *testing.T, tag string) *Renderer {
	t.Helper()
	cat, err := locale.Lookup(tag)
	require.NoError(t, err)
	return New(cat, "https://calendar.example.com/classes")
}

func TestCourseListOrdersByWeekdayWithMissingLast(t *testing.T) {
	r := newRenderer(t, "zh-TW")
	end := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	out := r.CourseList([]domain.Course{
		{Name: "Wednesday class", Weekday: wd(domain.Wednesday), StartTime: clock(19, 0)},
		{Name: "Monday class", Weekday: wd(domain.Monday), StartTime: clock(9, 30), EndDate: &end},
		{Name: "Unscheduled class", StartTime: clock(8, 0)},
	})

	mon := strings.Index(out, "Monday class")
	wed := strings.Index(out, "Wednesday class")
	unk := strings.Index(out, "Unscheduled class")
	require.True(t, mon >= 0 && wed >= 0 && unk >= 0, out)
	assert.Less(t, mon, wed)
	assert.Less(t, wed, unk)

	assert.Contains(t, out, "🔹 Monday class\n   (週一 09:30)\n   ~ 至 2026-12-31 截止")
	assert.Contains(t, out, "(週三 19:00)")
	assert.Contains(t, out, "(週待定 08:00)")
	assert.True(t, strings.HasSuffix(out, "https://calendar.example.com/classes"), out)
}

func TestCourseListMissingTimeSortsLastWithinDay(t *testing.T) {
	r := newRenderer(t, "en")
	out := r.CourseList([]domain.Course{
		{Name: "no-time", Weekday: wd(domain.Friday)},
		{Name: "evening", Weekday: wd(domain.Friday), StartTime: clock(18, 0)},
	})
	assert.Less(t, strings.Index(out, "evening"), strings.Index(out, "no-time"))
	assert.Contains(t, out, "(Fri TBD)")
}

func TestCourseListEmpty(t *testing.T) {
	r := newRenderer(t, "zh-TW")
	assert.Equal(t, "目前沒有即將進行的課程喔！😅", r.CourseList(nil))
}

func TestCourseListWithoutCalendar(t *testing.T) {
	cat, _ := locale.Lookup("en")
	out := New(cat, " ").CourseList([]domain.Course{{Name: "Yoga"}})
	assert.NotContains(t, out, "calendar")
	assert.Contains(t, out, "(TBD TBD)")
}

func TestScheduleGroupsByWeekday(t *testing.T) {
	r := newRenderer(t, "zh-TW")
	items := []domain.EnrolledCourse{
		{Course: domain.Course{Name: "C-sun", Weekday: wd(domain.Sunday), StartTime: clock(10, 0)}},
		{Course: domain.Course{Name: "B-mon-late", Weekday: wd(domain.Monday), StartTime: clock(14, 0)}},
		{Course: domain.Course{Name: "D-none"}},
		{Course: domain.Course{Name: "A-mon-notime", Weekday: wd(domain.Monday)}},
		{Course: domain.Course{Name: "E-none-2", StartTime: clock(7, 0)}},
	}
	out := r.Schedule(items)

	want := "🗓️ 您的課表：\n" +
		"\n【週一】\n" +
		"   待定 A-mon-notime\n" +
		"   14:00 B-mon-late\n" +
		"\n【週日】\n" +
		"   10:00 C-sun\n" +
		"\n【週待定】\n" +
		"   待定 D-none\n" +
		"   07:00 E-none-2"
	assert.Equal(t, want, out)
}

func TestScheduleMondayIsNotSortedLast(t *testing.T) {
	r := newRenderer(t, "en")
	out := r.Schedule([]domain.EnrolledCourse{
		{Course: domain.Course{Name: "tue", Weekday: wd(domain.Tuesday)}},
		{Course: domain.Course{Name: "mon", Weekday: wd(domain.Monday)}},
	})
	assert.Less(t, strings.Index(out, "mon"), strings.Index(out, "tue"))
}

func TestScheduleEmpty(t *testing.T) {
	r := newRenderer(t, "zh-TW")
	assert.Equal(t, "您目前還沒有選修任何課程喔！📚", r.Schedule(nil))
}

func TestProfileAlwaysIncludesEmail(t *testing.T) {
	r := newRenderer(t, "zh-TW")
	cases := []domain.User{
		{Email: "amy@example.com"},
		{Email: "amy@example.com", Name: domain.Ptr("Amy")},
		{Email: "amy@example.com", Identity: domain.Ptr("ICU")},
		{Email: "amy@example.com", Name: domain.Ptr(" "), Identity: domain.Ptr("ICU")},
	}
	for _, u := range cases {
		out := r.Profile(&u)
		assert.Contains(t, out, "Email: amy@example.com")
	}
	assert.Equal(t, "您的綁定資料：\n\n姓名: 未設定\nEmail: amy@example.com\n身分: 未設定", r.Profile(&cases[0]))
	assert.NotPanics(t, func() { r.Profile(nil) })
}

func TestCourseNames(t *testing.T) {
	r := newRenderer(t, "en")
	out := r.CourseNames([]domain.EnrolledCourse{
		{Course: domain.Course{Name: "Wound care", Weekday: wd(domain.Thursday)}},
		{Course: domain.Course{Name: "CPR", Weekday: wd(domain.Monday)}},
	})
	assert.Equal(t, "Your courses:\n- CPR\n- Wound care", out)
	assert.Equal(t, "You are not enrolled in any course yet. 📚", r.CourseNames(nil))
}

func TestHelpListsCheckInOnlyWhenEnabled(t *testing.T) {
	r := newRenderer(t, "zh-TW")
	assert.Equal(t, "指令清單：1.「近期課程」2.「已選課程」3.「我的資料」", r.Help(false))
	assert.Contains(t, r.Help(true), "4.「簽到」")
}

func TestDisplayName(t *testing.T) {
	r := newRenderer(t, "en")
	assert.Equal(t, "Amy", r.DisplayName(&domain.User{Email: "a@b.c", Name: domain.Ptr("Amy")}))
	assert.Equal(t, "a@b.c", r.DisplayName(&domain.User{Email: "a@b.c"}))
}
