package chat

import (
	"strings"
	"unicode"

	"github.com/m3rciful/classbot/internal/locale"
)

// RegistryOptions tune classification.
type RegistryOptions struct {
	// BotUsername lets "/help@name" match in group chats. Empty accepts any suffix.
	BotUsername string
	// CheckIn enables the check-in label and alias.
	CheckIn bool
}

// Registry maps message text to commands for one locale.
type Registry struct {
	labels      map[string]Command
	aliases     map[string]Command
	menu        []MenuEntry
	botUsername string
}

// NewRegistry builds the keyword tables from cat.
func NewRegistry(cat *locale.Catalog, opts RegistryOptions) *Registry {
	r := &Registry{
		labels:      make(map[string]Command),
		aliases:     make(map[string]Command),
		botUsername: strings.TrimPrefix(strings.TrimSpace(opts.BotUsername), "@"),
	}
	l := cat.Labels
	for label, cmd := range map[string]Command{
		l.Bind:        CmdBind,
		l.Recent:      CmdRecent,
		l.Enrollments: CmdEnrollments,
		l.Profile:     CmdProfile,
		l.Help:        CmdHelp,
		l.Confirm:     CmdConfirm,
		l.Decline:     CmdDecline,
	} {
		r.labels[normalizeLabel(label)] = cmd
	}

	r.alias("bind", CmdBind, cat.Menu.Bind)
	r.alias("courses", CmdRecent, cat.Menu.Recent)
	r.alias("mine", CmdEnrollments, cat.Menu.Enrollments)
	r.alias("profile", CmdProfile, cat.Menu.Profile)
	r.alias("help", CmdHelp, cat.Menu.Help)
	r.aliases["start"] = CmdHelp
	if opts.CheckIn {
		r.labels[normalizeLabel(l.CheckIn)] = CmdCheckIn
		r.alias("checkin", CmdCheckIn, cat.Menu.CheckIn)
	}
	return r
}

func (r *Registry) alias(name string, cmd Command, description string) {
	r.aliases[name] = cmd
	r.menu = append(r.menu, MenuEntry{Name: name, Description: description})
}

// Menu lists the slash commands in display order.
func (r *Registry) Menu() []MenuEntry {
	return append([]MenuEntry(nil), r.menu...)
}

// Classify maps text to a command. It never fails: anything unrecognised is CmdNone.
func (r *Registry) Classify(text string) Command {
	text = strings.TrimSpace(text)
	if text == "" {
		return CmdNone
	}
	if strings.HasPrefix(text, "/") {
		return r.classifySlash(text)
	}
	if cmd, ok := r.labels[normalizeLabel(text)]; ok {
		return cmd
	}
	if LooksLikeEmail(text) {
		return CmdEmail
	}
	return CmdNone
}

func (r *Registry) classifySlash(text string) Command {
	name := strings.TrimPrefix(strings.Fields(text)[0], "/")
	if base, target, ok := strings.Cut(name, "@"); ok {
		if r.botUsername != "" && !strings.EqualFold(target, r.botUsername) {
			return CmdNone
		}
		name = base
	}
	if cmd, ok := r.aliases[strings.ToLower(name)]; ok {
		return cmd
	}
	return CmdNone
}

// LooksLikeEmail is the loose check used to tell an email answer from other text:
// an "@" and a "." somewhere, and no whitespace.
func LooksLikeEmail(s string) bool {
	return strings.Contains(s, "@") && strings.Contains(s, ".") && !strings.ContainsFunc(s, unicode.IsSpace)
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
