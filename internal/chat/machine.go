// Package chat is the conversation state machine: it classifies an inbound message,
// applies the matching transition to the stored user inside one atomic unit and
// returns the reply to send.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/classbot/core/logger"
	"github.com/m3rciful/classbot/internal/domain"
	"github.com/m3rciful/classbot/internal/locale"
	"github.com/m3rciful/classbot/internal/render"
	"github.com/m3rciful/classbot/internal/store"
)

// ClaimPolicy decides what happens when an onboarding user types the email of a
// pre-seeded roster user that has no platform account yet.
type ClaimPolicy string

const (
	// ClaimReject answers "already taken".
	ClaimReject ClaimPolicy = "reject"
	// ClaimResume binds the roster row and finishes onboarding.
	ClaimResume ClaimPolicy = "resume"
	// ClaimRestart binds the roster row and continues at the name step.
	ClaimRestart ClaimPolicy = "restart"
)

// ParseClaimPolicy accepts the configured value; empty means ClaimReject.
func ParseClaimPolicy(s string) (ClaimPolicy, error) {
	switch p := ClaimPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return ClaimReject, nil
	case ClaimReject, ClaimResume, ClaimRestart:
		return p, nil
	}
	return "", fmt.Errorf("invalid claim policy %q; allowed: reject, resume, restart", s)
}

// Features switch the roster binding and check-in behaviours on top of guided onboarding.
type Features struct {
	// Onboarding enables the guided dialogue. Without it the bot only binds by roster email.
	Onboarding    bool
	RosterBinding bool
	CheckIn       bool
	ClaimPolicy   ClaimPolicy
}

// Inbound is one text message from the platform.
type Inbound struct {
	PlatformUserID string
	Text           string
	// ReplyToken is the platform's correlation handle for the reply; only logged here.
	ReplyToken string
}

// Reply is the text to send and optional quick-reply labels; each label resends itself.
type Reply struct {
	Text    string
	Choices []string
}

// Options wire a Machine. Store and Catalog are required.
type Options struct {
	Store    store.Store
	Catalog  *locale.Catalog
	Registry *Registry
	Renderer *render.Renderer
	Features Features
	// Location decides the calendar date used to filter upcoming courses.
	Location *time.Location
	Now      func() time.Time
}

// Machine handles inbound messages. It is safe for concurrent use.
type Machine struct {
	store    store.Store
	cat      *locale.Catalog
	reg      *Registry
	render   *render.Renderer
	features Features
	loc      *time.Location
	now      func() time.Time
}

// NewMachine validates opts and fills defaults.
func NewMachine(opts Options) (*Machine, error) {
	if opts.Store == nil {
		return nil, errors.New("chat: store is required")
	}
	if opts.Catalog == nil {
		return nil, errors.New("chat: catalog is required")
	}
	m := &Machine{
		store:    opts.Store,
		cat:      opts.Catalog,
		reg:      opts.Registry,
		render:   opts.Renderer,
		features: opts.Features,
		loc:      opts.Location,
		now:      opts.Now,
	}
	if m.reg == nil {
		m.reg = NewRegistry(m.cat, RegistryOptions{CheckIn: m.features.CheckIn})
	}
	if m.render == nil {
		m.render = render.New(m.cat, "")
	}
	if m.loc == nil {
		m.loc = time.UTC
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.features.ClaimPolicy == "" {
		m.features.ClaimPolicy = ClaimReject
	}
	return m, nil
}

// Registry returns the classifier in use.
func (m *Machine) Registry() *Registry {
	return m.reg
}

// step records one handled message for the transition log.
type step struct {
	cmd      Command
	from, to domain.Status
}

// Handle processes one message. User mistakes come back as a corrective Reply with a nil
// error. Any other failure returns *domain.PersistenceError and no reply: nothing was applied.
func (m *Machine) Handle(ctx context.Context, in Inbound) (Reply, error) {
	pid := strings.TrimSpace(in.PlatformUserID)
	if pid == "" {
		return Reply{}, &domain.PersistenceError{Op: "handle", Err: errors.New("empty platform user id")}
	}
	text := strings.TrimSpace(in.Text)
	cmd := m.reg.Classify(text)

	var (
		reply Reply
		st    step
	)
	err := m.store.Atomic(ctx, func(tx store.Tx) error {
		var err error
		reply, st, err = m.dispatch(ctx, tx, pid, cmd, text)
		return err
	})

	attrs := []slog.Attr{
		slog.String("platform_user_id", pid),
		slog.String("command", cmd.String()),
		slog.String("from", string(st.from)),
	}
	switch {
	case err == nil:
		logger.Info(ctx, "chat", "transition", append(attrs,
			slog.String("to", string(st.to)),
			slog.String("outcome", "ok"),
		)...)
		return reply, nil
	case isCorrectable(err):
		logger.Info(ctx, "chat", "transition", append(attrs,
			slog.String("to", string(st.from)),
			slog.String("outcome", "rejected"),
			slog.String("err_code", errCode(err)),
			slog.String("err", err.Error()),
		)...)
		return m.correction(err), nil
	default:
		perr := &domain.PersistenceError{Op: "handle " + cmd.String(), Err: err}
		logger.Error(ctx, "chat", "transition", append(attrs,
			slog.String("outcome", "fail"),
			slog.String("err_code", perr.Code()),
			slog.String("err", err.Error()),
		)...)
		return Reply{}, perr
	}
}

func (m *Machine) dispatch(ctx context.Context, tx store.Tx, pid string, cmd Command, text string) (Reply, step, error) {
	user, err := tx.FindUserByPlatformID(ctx, pid)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		user = nil
	case err != nil:
		return Reply{}, step{cmd: cmd, from: domain.StatusUnbound}, err
	}

	st := step{cmd: cmd, from: domain.StatusUnbound}
	if user != nil {
		st.from = user.Status
	}
	st.to = st.from

	var reply Reply
	switch st.from {
	case domain.StatusUnbound:
		reply, err = m.onUnbound(ctx, tx, pid, cmd, text, &st)
	case domain.StatusCheckIdentity:
		reply, err = m.onCheckIdentity(ctx, tx, user, cmd, &st)
	case domain.StatusWaitEmail:
		reply, err = m.onWaitEmail(ctx, tx, user, cmd, text, &st)
	case domain.StatusWaitName:
		reply, err = m.onWaitName(ctx, tx, user, cmd, text, &st)
	case domain.StatusWaitDept:
		reply, err = m.onWaitDept(ctx, tx, user, cmd, text, &st)
	case domain.StatusFree:
		reply, err = m.onFree(ctx, tx, user, cmd, text, &st)
	default:
		err = fmt.Errorf("user %d has unknown status %q", user.ID, user.Status)
	}
	return reply, st, err
}

func (m *Machine) onUnbound(ctx context.Context, tx store.Tx, pid string, cmd Command, text string, st *step) (Reply, error) {
	switch cmd {
	case CmdBind:
		return m.bind(ctx, tx, nil, pid, st)
	case CmdEmail:
		if m.features.RosterBinding {
			return m.bindRoster(ctx, tx, pid, text, st)
		}
	case CmdRecent:
		return m.recent(ctx, tx)
	case CmdHelp:
		return m.text(m.render.Help(m.features.CheckIn)), nil
	case CmdCheckIn:
		return m.text(m.cat.Msg.CheckInBindFirst), nil
	case CmdNone, CmdEnrollments, CmdProfile, CmdConfirm, CmdDecline:
	}
	if !m.features.Onboarding {
		return m.text(m.cat.Msg.RosterAskEmail), nil
	}
	return m.text(m.cat.Msg.BindFirst), nil
}

// bind starts or restarts the guided dialogue. user is nil for an unbound account.
// Restarting is limited to check_identity and wait_email.
func (m *Machine) bind(ctx context.Context, tx store.Tx, user *domain.User, pid string, st *step) (Reply, error) {
	switch {
	case !m.features.Onboarding:
		return m.text(m.cat.Msg.RosterAskEmail), nil
	case user == nil:
		if err := tx.InsertUser(ctx, domain.NewPlaceholderUser(pid, m.now())); err != nil {
			return Reply{}, err
		}
	case user.Status.HasRealEmail():
		// Only placeholder rows restart; a collected or claimed email stays bound.
		return m.text(m.cat.Msg.AlreadyBound), nil
	default:
		user.Status = domain.StatusCheckIdentity
		if err := tx.UpdateUser(ctx, user); err != nil {
			return Reply{}, err
		}
	}
	st.to = domain.StatusCheckIdentity
	return m.identityPrompt(m.cat.Msg.IdentityPrompt), nil
}

func (m *Machine) onCheckIdentity(ctx context.Context, tx store.Tx, user *domain.User, cmd Command, st *step) (Reply, error) {
	switch cmd {
	case CmdBind:
		return m.bind(ctx, tx, user, *user.PlatformUserID, st)
	case CmdConfirm:
		user.Status = domain.StatusWaitEmail
		if err := tx.UpdateUser(ctx, user); err != nil {
			return Reply{}, err
		}
		st.to = domain.StatusWaitEmail
		return m.text(m.cat.Msg.AskEmail), nil
	case CmdDecline:
		if err := tx.DeleteUser(ctx, user.ID); err != nil {
			return Reply{}, err
		}
		st.to = domain.StatusUnbound
		return m.text(m.cat.Msg.OptOut), nil
	}
	return Reply{}, &domain.ValidationError{Field: fieldIdentityChoice, Reason: "expected one of the offered choices"}
}

func (m *Machine) onWaitEmail(ctx context.Context, tx store.Tx, user *domain.User, cmd Command, text string, st *step) (Reply, error) {
	switch cmd {
	case CmdBind:
		return m.bind(ctx, tx, user, *user.PlatformUserID, st)
	case CmdEmail:
	default:
		return Reply{}, &domain.ValidationError{Field: fieldEmail, Reason: "malformed address"}
	}
	if strings.HasSuffix(strings.ToLower(text), ".invalid") {
		return Reply{}, &domain.ValidationError{Field: fieldEmail, Reason: "reserved domain"}
	}

	owner, err := tx.FindUserByEmail(ctx, text)
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		return Reply{}, err
	case owner.ID != user.ID:
		if m.features.ClaimPolicy == ClaimReject || owner.Bound() || owner.Status != domain.StatusFree {
			return Reply{}, &domain.ConflictError{Field: fieldEmail, Value: text}
		}
		return m.claim(ctx, tx, user, owner, st)
	}

	user.Email = text
	user.Status = domain.StatusWaitName
	if err := tx.UpdateUser(ctx, user); err != nil {
		return Reply{}, err
	}
	st.to = domain.StatusWaitName
	return m.text(m.cat.Msg.AskName), nil
}

// claim hands the account over to an unbound roster row and drops the placeholder.
func (m *Machine) claim(ctx context.Context, tx store.Tx, placeholder, owner *domain.User, st *step) (Reply, error) {
	if err := tx.DeleteUser(ctx, placeholder.ID); err != nil {
		return Reply{}, err
	}
	owner.PlatformUserID = placeholder.PlatformUserID
	if m.features.ClaimPolicy == ClaimRestart {
		owner.Status = domain.StatusWaitName
	}
	if err := tx.UpdateUser(ctx, owner); err != nil {
		return Reply{}, err
	}
	st.to = owner.Status
	if owner.Status == domain.StatusWaitName {
		return m.text(m.cat.Msg.AskName), nil
	}
	return m.greeting(ctx, tx, owner)
}

func (m *Machine) onWaitName(ctx context.Context, tx store.Tx, user *domain.User, cmd Command, text string, st *step) (Reply, error) {
	if cmd == CmdBind {
		return m.bind(ctx, tx, user, *user.PlatformUserID, st)
	}
	if cmd.Keyword() || text == "" {
		return Reply{}, &domain.ValidationError{Field: fieldName, Reason: "blank or command keyword"}
	}
	user.Name = &text
	user.Status = domain.StatusWaitDept
	if err := tx.UpdateUser(ctx, user); err != nil {
		return Reply{}, err
	}
	st.to = domain.StatusWaitDept
	return m.text(fmt.Sprintf(m.cat.Msg.AskDeptFormat, text)), nil
}

func (m *Machine) onWaitDept(ctx context.Context, tx store.Tx, user *domain.User, cmd Command, text string, st *step) (Reply, error) {
	if cmd == CmdBind {
		return m.bind(ctx, tx, user, *user.PlatformUserID, st)
	}
	if cmd.Keyword() || text == "" {
		return Reply{}, &domain.ValidationError{Field: fieldIdentity, Reason: "blank or command keyword"}
	}
	user.Identity = &text
	user.Status = domain.StatusFree
	if err := tx.UpdateUser(ctx, user); err != nil {
		return Reply{}, err
	}
	st.to = domain.StatusFree
	return m.text(m.cat.Msg.Completed), nil
}

func (m *Machine) onFree(ctx context.Context, tx store.Tx, user *domain.User, cmd Command, text string, st *step) (Reply, error) {
	switch cmd {
	case CmdBind:
		return m.bind(ctx, tx, user, *user.PlatformUserID, st)
	case CmdEmail:
		if m.features.RosterBinding {
			return m.bindRoster(ctx, tx, *user.PlatformUserID, text, st)
		}
	case CmdRecent:
		return m.recent(ctx, tx)
	case CmdEnrollments:
		items, err := tx.ListEnrollmentsForUser(ctx, user.Email)
		if err != nil {
			return Reply{}, err
		}
		return m.text(m.render.Schedule(items)), nil
	case CmdProfile:
		return m.text(m.render.Profile(user)), nil
	case CmdHelp:
		return m.text(m.render.Help(m.features.CheckIn)), nil
	case CmdCheckIn:
		return m.checkIn(ctx, tx, user)
	case CmdNone, CmdConfirm, CmdDecline:
	}
	if !m.features.Onboarding {
		return m.text(m.render.Help(m.features.CheckIn)), nil
	}
	return m.text(m.cat.Msg.HelpHint), nil
}

// bindRoster attaches pid to the pre-seeded user owning email, moving it off any other row.
func (m *Machine) bindRoster(ctx context.Context, tx store.Tx, pid, email string, st *step) (Reply, error) {
	owner, err := tx.FindUserByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return Reply{}, &domain.NotFoundError{Entity: entityRosterEmail, Key: email}
	}
	if err != nil {
		return Reply{}, err
	}
	if owner.Status != domain.StatusFree {
		return Reply{}, &domain.ConflictError{Field: fieldEmail, Value: email}
	}
	if err := tx.UnbindPlatformID(ctx, pid, owner.ID); err != nil {
		return Reply{}, err
	}
	owner.PlatformUserID = &pid
	if err := tx.UpdateUser(ctx, owner); err != nil {
		return Reply{}, err
	}
	st.to = domain.StatusFree
	return m.greeting(ctx, tx, owner)
}

func (m *Machine) greeting(ctx context.Context, tx store.Tx, user *domain.User) (Reply, error) {
	items, err := tx.ListEnrollmentsForUser(ctx, user.Email)
	if err != nil {
		return Reply{}, err
	}
	return m.text(fmt.Sprintf(m.cat.Msg.RosterGreetingFormat, m.render.DisplayName(user)) + m.render.CourseNames(items)), nil
}

func (m *Machine) checkIn(ctx context.Context, tx store.Tx, user *domain.User) (Reply, error) {
	n, err := tx.CheckInPending(ctx, user.Email, m.now().UTC())
	if err != nil {
		return Reply{}, err
	}
	if n == 0 {
		return m.text(m.cat.Msg.NothingToCheckIn), nil
	}
	return m.text(fmt.Sprintf(m.cat.Msg.CheckInDoneFormat, n)), nil
}

func (m *Machine) recent(ctx context.Context, tx store.Tx) (Reply, error) {
	courses, err := tx.ListUpcomingCourses(ctx, m.now().In(m.loc))
	if err != nil {
		return Reply{}, err
	}
	return m.text(m.render.CourseList(courses)), nil
}

func (m *Machine) text(s string) Reply {
	return Reply{Text: s}
}

func (m *Machine) identityPrompt(text string) Reply {
	return Reply{Text: text, Choices: []string{m.cat.Labels.Confirm, m.cat.Labels.Decline}}
}
