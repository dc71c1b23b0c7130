package chat

// Command is the closed set of message meanings the machine reacts to.
type Command int

const (
	// CmdNone is free text: a data value during onboarding, otherwise unrecognised.
	CmdNone Command = iota
	// CmdEmail is free text that looks like an email address.
	CmdEmail
	CmdBind
	CmdRecent
	CmdEnrollments
	CmdProfile
	CmdHelp
	CmdCheckIn
	CmdConfirm
	CmdDecline
)

var commandNames = [...]string{
	CmdNone:        "none",
	CmdEmail:       "email",
	CmdBind:        "bind",
	CmdRecent:      "recent",
	CmdEnrollments: "enrollments",
	CmdProfile:     "profile",
	CmdHelp:        "help",
	CmdCheckIn:     "check_in",
	CmdConfirm:     "confirm",
	CmdDecline:     "decline",
}

func (c Command) String() string {
	if c < 0 || int(c) >= len(commandNames) {
		return "unknown"
	}
	return commandNames[c]
}

// Keyword reports whether c came from a command label or alias rather than free text.
func (c Command) Keyword() bool {
	return c != CmdNone && c != CmdEmail
}

// MenuEntry is one slash command published to the platform menu.
type MenuEntry struct {
	Name        string
	Description string
}
