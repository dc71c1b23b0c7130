package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/classbot/core/telegram/commands"
)

func noop(tele.Context) error { return nil }

func TestRegistryListAndLookup(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/profile", commands.Command{Handler: noop, Description: "我的資料"})
	reg.RegisterCommand("/bind", commands.Command{Handler: noop, Description: "綁定資料", Aliases: []string{"register"}})
	reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "start", Hidden: true})

	// rejected registrations
	reg.RegisterCommand("help", commands.Command{Handler: noop, Description: "x"})
	reg.RegisterCommand("/empty", commands.Command{Handler: noop})
	reg.RegisterCommand("/bind", commands.Command{Handler: noop, Description: "dup"})

	assert.Len(t, reg.Commands(), 3)
	assert.Equal(t, []tele.Command{
		{Text: "bind", Description: "綁定資料"},
		{Text: "profile", Description: "我的資料"},
	}, reg.ListCommands(true))
	assert.Len(t, reg.ListCommands(false), 3)

	key, cmd, ok := reg.LookupCommand("register")
	require.True(t, ok)
	assert.Equal(t, "/bind", key)
	assert.Equal(t, "綁定資料", cmd.Description)

	key, _, ok = reg.LookupCommand("/start")
	require.True(t, ok)
	assert.Equal(t, "/start", key)

	_, _, ok = reg.LookupCommand("綁定資料")
	assert.False(t, ok)
}

func TestBuildPoller(t *testing.T) {
	p := BuildPoller(PollerOptions{
		RunMode: "webhook",
		Webhook: WebhookOptions{Listen: "0.0.0.0", Port: 8443, URL: "https://bot.example.com/hook", SecretToken: "s3cret"},
	})
	wh, ok := p.(*tele.Webhook)
	require.True(t, ok)
	assert.Equal(t, "0.0.0.0:8443", wh.Listen)
	assert.Equal(t, "https://bot.example.com/hook", wh.Endpoint.PublicURL)
	assert.Equal(t, "s3cret", wh.SecretToken)

	lp, ok := BuildPoller(PollerOptions{RunMode: "longpoll"}).(*tele.LongPoller)
	require.True(t, ok)
	assert.Equal(t, "10s", lp.Timeout.String())
}
