package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/classbot/core/logger"
	"github.com/m3rciful/classbot/core/telegram/keyboard"
)

type fakeContext struct {
	tele.Context
	update tele.Update
	store  map[string]any
	sent   []any
}

func newFake(updateID int, userID int64, text string) *fakeContext {
	return &fakeContext{
		update: tele.Update{ID: updateID, Message: &tele.Message{
			Text:   text,
			Sender: &tele.User{ID: userID},
			Chat:   &tele.Chat{ID: userID, Type: tele.ChatPrivate},
		}},
		store: map[string]any{},
	}
}

func (f *fakeContext) Update() tele.Update { return f.update }
func (f *fakeContext) Sender() *tele.User  { return f.update.Message.Sender }
func (f *fakeContext) Chat() *tele.Chat    { return f.update.Message.Chat }
func (f *fakeContext) Text() string        { return f.update.Message.Text }
func (f *fakeContext) Get(k string) any    { return f.store[k] }
func (f *fakeContext) Set(k string, v any) { f.store[k] = v }
func (f *fakeContext) Send(what any, _ ...any) error {
	f.sent = append(f.sent, what)
	return nil
}

func TestRateLimitDropsFloods(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	limited := 0
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Second,
		Now:       func() time.Time { return now },
		OnLimited: func(tele.Context) error { limited++; return nil },
	})
	calls := 0
	h := mw(func(tele.Context) error { calls++; return nil })

	require.NoError(t, h(newFake(1, 7, "a")))
	require.NoError(t, h(newFake(2, 7, "b")))
	require.NoError(t, h(newFake(3, 8, "c")))
	now = now.Add(time.Second)
	require.NoError(t, h(newFake(4, 7, "d")))

	assert.Equal(t, 3, calls)
	assert.Equal(t, 1, limited)
}

func TestRateLimitExcludedKind(t *testing.T) {
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval: time.Hour,
		Exclude:  map[string]struct{}{"message": {}},
	})
	calls := 0
	h := mw(func(tele.Context) error { calls++; return nil })
	for i := range 3 {
		require.NoError(t, h(newFake(i, 7, "x")))
	}
	assert.Equal(t, 3, calls)
}

func TestRecoverTurnsPanicIntoError(t *testing.T) {
	var (
		got    any
		gotCtx context.Context
	)
	h := Recover(func(ctx context.Context, r any) { gotCtx, got = ctx, r })(func(tele.Context) error {
		panic("boom")
	})
	c := newFake(5, 9, "x")
	err := h(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, "boom", got)
	assert.Equal(t, logger.BuildRID(5, 9, 9), logger.RIDFrom(gotCtx))
}

func TestRecoverPassesErrorsThrough(t *testing.T) {
	want := errors.New("plain")
	err := RecoverMiddleware(func(tele.Context) error { return want })(newFake(1, 1, ""))
	assert.ErrorIs(t, err, want)
}

func TestLoggerMiddlewareSetsContext(t *testing.T) {
	c := newFake(11, 22, "hello")
	var ctx context.Context
	err := LoggerMiddleware(func(tc tele.Context) error {
		ctx, _ = tc.Get("logger_ctx").(context.Context)
		return nil
	})(c)
	require.NoError(t, err)
	require.NotNil(t, ctx)
	assert.Equal(t, logger.BuildRID(11, 22, 22), c.Get("rid"))
	assert.Equal(t, logger.BuildRID(11, 22, 22), logger.RIDFrom(ctx))
	assert.NotEmpty(t, logger.TraceIDFrom(ctx))
	assert.EqualValues(t, 22, logger.UserIDFrom(ctx))
}

func TestMessageMetricsCounts(t *testing.T) {
	c := newFake(1, 1, "")
	err := MessageMetricsMiddleware(func(tc tele.Context) error {
		if err := tc.Send("one", keyboard.RemoveKeyboard()); err != nil {
			return err
		}
		return tc.Send("two", &tele.SendOptions{ReplyMarkup: keyboard.QuickReply("a", "b")})
	})(c)
	require.NoError(t, err)
	msgs, kb := GetCounters(c)
	assert.Equal(t, 2, msgs)
	assert.True(t, kb)
	assert.Len(t, c.sent, 2)
}
