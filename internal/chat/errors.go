package chat

import (
	"errors"

	"github.com/m3rciful/classbot/internal/domain"
)

const (
	fieldIdentityChoice = "identity_choice"
	fieldEmail          = "email"
	fieldName           = "name"
	fieldIdentity       = "identity"

	entityRosterEmail = "roster_email"
)

// isCorrectable reports whether err is answered with a corrective reply.
// A not-found from anything but the roster lookup means a row vanished mid-transaction,
// and a platform id conflict means a concurrent message already created the row.
func isCorrectable(err error) bool {
	var (
		v  *domain.ValidationError
		c  *domain.ConflictError
		nf *domain.NotFoundError
	)
	switch {
	case errors.As(err, &v):
		return true
	case errors.As(err, &c):
		return c.Field == fieldEmail
	case errors.As(err, &nf):
		return nf.Entity == entityRosterEmail
	}
	return false
}

// correction picks the reply for a correctable error.
func (m *Machine) correction(err error) Reply {
	var (
		v *domain.ValidationError
		c *domain.ConflictError
	)
	switch {
	case errors.As(err, &c):
		return m.text(m.cat.Msg.EmailTaken)
	case errors.As(err, &v):
		switch v.Field {
		case fieldIdentityChoice:
			return m.identityPrompt(m.cat.Msg.IdentityRetry)
		case fieldName:
			return m.text(m.cat.Msg.NameInvalid)
		case fieldIdentity:
			return m.text(m.cat.Msg.DeptInvalid)
		default:
			return m.text(m.cat.Msg.EmailInvalid)
		}
	default:
		return m.text(m.cat.Msg.EmailNotFound)
	}
}

func errCode(err error) string {
	var coder interface{ Code() string }
	if errors.As(err, &coder) {
		return coder.Code()
	}
	return ""
}
