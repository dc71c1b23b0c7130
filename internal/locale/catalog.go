// Package locale holds the user-facing strings for each supported language.
package locale

import (
	"fmt"
	"strings"
)

// Labels are the command keywords a user types or taps.
type Labels struct {
	Bind        string
	Recent      string
	Enrollments string
	Profile     string
	Help        string
	CheckIn     string
	Confirm     string
	Decline     string
}

// Menu holds the descriptions published with the slash command menu.
type Menu struct {
	Bind        string
	Recent      string
	Enrollments string
	Profile     string
	Help        string
	CheckIn     string
}

// Messages are the reply texts. Fields ending in Format take fmt verbs.
type Messages struct {
	IdentityPrompt string
	IdentityRetry  string
	AskEmail       string
	OptOut         string
	EmailTaken     string
	EmailInvalid   string
	AskName        string
	NameInvalid    string
	AskDeptFormat  string
	DeptInvalid    string
	Completed      string
	AlreadyBound   string
	BindFirst      string
	HelpHint       string
	HelpHeader     string
	HelpItemFormat string

	NoUpcoming        string
	CourseListHeader  string
	CourseLineFormat  string
	CourseEndsFormat  string
	CalendarFormat    string
	ProfileFormat     string
	NoEnrollments     string
	ScheduleHeader    string
	ScheduleDayFormat string
	ScheduleLineFmt   string

	RosterAskEmail       string
	RosterGreetingFormat string
	CourseNamesHeader    string
	CourseNameFormat     string
	EmailNotFound        string
	CheckInDoneFormat    string
	NothingToCheckIn     string
	CheckInBindFirst     string
	InternalError        string
}

// Catalog is one language's full set of labels and messages.
type Catalog struct {
	Tag      string
	Labels   Labels
	Menu     Menu
	Weekdays [7]string
	// Pending replaces a missing weekday or start time.
	Pending string
	// Unset replaces a missing profile field.
	Unset string
	Msg   Messages
}

var catalogs = map[string]*Catalog{
	zhTW.Tag: &zhTW,
	en.Tag:   &en,
}

// Default is the tag used when none is configured.
const Default = "zh-TW"

// Lookup returns the catalog for tag. Matching ignores case and accepts "_" for "-".
func Lookup(tag string) (*Catalog, error) {
	norm := strings.ReplaceAll(strings.TrimSpace(tag), "_", "-")
	if norm == "" {
		norm = Default
	}
	for key, c := range catalogs {
		if strings.EqualFold(key, norm) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("unsupported locale %q", tag)
}

// Tags lists the supported locale tags.
func Tags() []string {
	return []string{zhTW.Tag, en.Tag}
}
