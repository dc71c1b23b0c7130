package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/m3rciful/classbot/core/logger"
	"github.com/m3rciful/classbot/internal/domain"
)

const pgUniqueViolation = "23505"

// Postgres implements Store on a sqlx pool.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres wraps an opened pool.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

// Ping checks that the pool can reach the server.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Atomic runs fn inside a READ COMMITTED transaction; row locks taken by lookups serialise writers.
func (p *Postgres) Atomic(ctx context.Context, fn func(Tx) error) error {
	start := time.Now()
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(&pgTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapErr("commit", "", err)
	}
	if logger.ShouldSampleDebug() {
		logger.Debug(ctx, "db", "atomic", slog.Duration("duration", logger.Took(start)))
	}
	return nil
}

type pgTx struct {
	tx *sqlx.Tx
}

type userRow struct {
	ID             int64          `db:"id"`
	PlatformUserID sql.NullString `db:"platform_user_id"`
	Email          string         `db:"email"`
	Name           sql.NullString `db:"name"`
	Identity       sql.NullString `db:"identity"`
	Status         string         `db:"status"`
	CreatedAt      time.Time      `db:"created_at"`
}

func (r userRow) toDomain() *domain.User {
	return &domain.User{
		ID:             r.ID,
		PlatformUserID: fromNullString(r.PlatformUserID),
		Email:          r.Email,
		Name:           fromNullString(r.Name),
		Identity:       fromNullString(r.Identity),
		Status:         domain.Status(r.Status),
		CreatedAt:      r.CreatedAt,
	}
}

type courseRow struct {
	ID        int64          `db:"id"`
	Name      string         `db:"course_name"`
	Weekday   sql.NullInt16  `db:"weekday"`
	StartTime sql.NullString `db:"start_time"`
	EndDate   sql.NullString `db:"end_date"`
	CreatedAt time.Time      `db:"created_at"`
}

func (r courseRow) toDomain() (domain.Course, error) {
	c := domain.Course{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt}
	if r.Weekday.Valid {
		c.Weekday = domain.Ptr(domain.Weekday(r.Weekday.Int16))
	}
	if r.StartTime.Valid {
		clock, err := domain.ParseClock(r.StartTime.String)
		if err != nil {
			return c, fmt.Errorf("course %d: %w", r.ID, err)
		}
		c.StartTime = &clock
	}
	if r.EndDate.Valid {
		d, err := time.Parse(time.DateOnly, r.EndDate.String)
		if err != nil {
			return c, fmt.Errorf("course %d: end date: %w", r.ID, err)
		}
		c.EndDate = &d
	}
	return c, nil
}

type enrolledRow struct {
	ID          int64        `db:"id"`
	UserEmail   string       `db:"user_email"`
	CourseID    int64        `db:"course_id"`
	CheckedInAt sql.NullTime `db:"checked_in_at"`
	CreatedAt   time.Time    `db:"created_at"`
	Course      courseRow    `db:"course"`
}

const (
	userColumns   = `id, platform_user_id, email, name, identity, status, created_at`
	courseColumns = `id, course_name, weekday, start_time::text AS start_time,
		to_char(end_date, 'YYYY-MM-DD') AS end_date, created_at`
)

func (t *pgTx) findUser(ctx context.Context, column, value string) (*domain.User, error) {
	var row userRow
	q := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1 FOR UPDATE`
	if err := t.tx.GetContext(ctx, &row, q, value); err != nil {
		return nil, mapErr("find user by "+column, value, err)
	}
	return row.toDomain(), nil
}

func (t *pgTx) FindUserByPlatformID(ctx context.Context, platformUserID string) (*domain.User, error) {
	return t.findUser(ctx, "platform_user_id", platformUserID)
}

func (t *pgTx) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return t.findUser(ctx, "email", email)
}

func (t *pgTx) InsertUser(ctx context.Context, u *domain.User) error {
	if !u.Status.Valid() {
		return fmt.Errorf("insert user: invalid status %q", u.Status)
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	err := t.tx.QueryRowxContext(ctx,
		`INSERT INTO users (platform_user_id, email, name, identity, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		toNullString(u.PlatformUserID), u.Email, toNullString(u.Name), toNullString(u.Identity),
		string(u.Status), u.CreatedAt,
	).Scan(&u.ID)
	if err != nil {
		return mapErr("insert user", u.Email, err)
	}
	return nil
}

func (t *pgTx) UpdateUser(ctx context.Context, u *domain.User) error {
	if !u.Status.Valid() {
		return fmt.Errorf("update user: invalid status %q", u.Status)
	}
	res, err := t.tx.ExecContext(ctx,
		`UPDATE users SET platform_user_id = $2, email = $3, name = $4, identity = $5, status = $6
		 WHERE id = $1`,
		u.ID, toNullString(u.PlatformUserID), u.Email, toNullString(u.Name), toNullString(u.Identity),
		string(u.Status),
	)
	if err != nil {
		return mapErr("update user", u.Email, err)
	}
	return requireRow(res, "user", fmt.Sprint(u.ID))
}

func (t *pgTx) DeleteUser(ctx context.Context, id int64) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapErr("delete user", "", err)
	}
	return requireRow(res, "user", fmt.Sprint(id))
}

func (t *pgTx) UnbindPlatformID(ctx context.Context, platformUserID string, keepUserID int64) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE users SET platform_user_id = NULL WHERE platform_user_id = $1 AND id <> $2`,
		platformUserID, keepUserID,
	)
	if err != nil {
		return mapErr("unbind platform id", platformUserID, err)
	}
	return nil
}

func (t *pgTx) ListUpcomingCourses(ctx context.Context, asOf time.Time) ([]domain.Course, error) {
	var rows []courseRow
	err := t.tx.SelectContext(ctx, &rows,
		`SELECT `+courseColumns+` FROM courses
		 WHERE end_date IS NULL OR end_date >= $1::date
		 ORDER BY weekday NULLS LAST, start_time NULLS LAST, id`,
		asOf.Format(time.DateOnly),
	)
	if err != nil {
		return nil, mapErr("list upcoming courses", "", err)
	}
	out := make([]domain.Course, 0, len(rows))
	for _, r := range rows {
		c, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (t *pgTx) ListEnrollmentsForUser(ctx context.Context, email string) ([]domain.EnrolledCourse, error) {
	var rows []enrolledRow
	err := t.tx.SelectContext(ctx, &rows,
		`SELECT e.id, e.user_email, e.course_id, e.checked_in_at, e.created_at,
		        c.id AS "course.id", c.course_name AS "course.course_name", c.weekday AS "course.weekday",
		        c.start_time::text AS "course.start_time",
		        to_char(c.end_date, 'YYYY-MM-DD') AS "course.end_date",
		        c.created_at AS "course.created_at"
		 FROM enrollments e JOIN courses c ON c.id = e.course_id
		 WHERE e.user_email = $1
		 ORDER BY e.id`,
		email,
	)
	if err != nil {
		return nil, mapErr("list enrollments", email, err)
	}
	out := make([]domain.EnrolledCourse, 0, len(rows))
	for _, r := range rows {
		c, err := r.Course.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, domain.EnrolledCourse{
			Enrollment: domain.Enrollment{
				ID:          r.ID,
				UserEmail:   r.UserEmail,
				CourseID:    r.CourseID,
				CheckedInAt: fromNullTime(r.CheckedInAt),
				CreatedAt:   r.CreatedAt,
			},
			Course: c,
		})
	}
	return out, nil
}

func (t *pgTx) CheckInPending(ctx context.Context, email string, at time.Time) (int, error) {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE enrollments SET checked_in_at = $2 WHERE user_email = $1 AND checked_in_at IS NULL`,
		email, at,
	)
	if err != nil {
		return 0, mapErr("check in", email, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check in: rows affected: %w", err)
	}
	return int(n), nil
}

func (t *pgTx) FindCourseByName(ctx context.Context, name string) (*domain.Course, error) {
	var row courseRow
	err := t.tx.GetContext(ctx, &row,
		`SELECT `+courseColumns+` FROM courses WHERE course_name = $1 ORDER BY id LIMIT 1`, name)
	if err != nil {
		return nil, mapErr("find course", name, err)
	}
	c, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (t *pgTx) InsertCourse(ctx context.Context, c *domain.Course) error {
	var weekday sql.NullInt16
	if c.Weekday != nil {
		weekday = sql.NullInt16{Int16: int16(*c.Weekday), Valid: true}
	}
	var start, end sql.NullString
	if c.StartTime != nil {
		start = sql.NullString{String: c.StartTime.String(), Valid: true}
	}
	if c.EndDate != nil {
		end = sql.NullString{String: c.EndDate.Format(time.DateOnly), Valid: true}
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	err := t.tx.QueryRowxContext(ctx,
		`INSERT INTO courses (course_name, weekday, start_time, end_date, created_at)
		 VALUES ($1, $2, $3::time, $4::date, $5) RETURNING id`,
		c.Name, weekday, start, end, c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		return mapErr("insert course", c.Name, err)
	}
	return nil
}

func (t *pgTx) InsertEnrollment(ctx context.Context, e *domain.Enrollment) (bool, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	err := t.tx.QueryRowxContext(ctx,
		`INSERT INTO enrollments (user_email, course_id, checked_in_at, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_email, course_id) DO NOTHING
		 RETURNING id`,
		e.UserEmail, e.CourseID, toNullTime(e.CheckedInAt), e.CreatedAt,
	).Scan(&e.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, mapErr("insert enrollment", e.UserEmail, err)
	}
	return true, nil
}

// mapErr turns driver errors into domain errors; value names the offending key.
func mapErr(op, value string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
		field := "email"
		if strings.Contains(pqErr.Constraint, "platform_user_id") {
			field = "platform_user_id"
		}
		return &domain.ConflictError{Field: field, Value: value}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func requireRow(res sql.Result, entity, key string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s: rows affected: %w", entity, key, err)
	}
	if n == 0 {
		return &domain.NotFoundError{Entity: entity, Key: key}
	}
	return nil
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return domain.Ptr(s.String)
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return domain.Ptr(t.Time)
}
