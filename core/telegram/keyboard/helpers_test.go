package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuickReplyOneRow(t *testing.T) {
	m := QuickReply("是的，我是", "我只是路過的")
	assert.True(t, m.OneTimeKeyboard)
	assert.True(t, m.ResizeKeyboard)
	require.Len(t, m.ReplyKeyboard, 1)
	require.Len(t, m.ReplyKeyboard[0], 2)
	assert.Equal(t, "是的，我是", m.ReplyKeyboard[0][0].Text)
	assert.Equal(t, "我只是路過的", m.ReplyKeyboard[0][1].Text)
}

func TestQuickReplyWithoutChoicesRemovesKeyboard(t *testing.T) {
	m := QuickReply()
	assert.True(t, m.RemoveKeyboard)
	assert.Empty(t, m.ReplyKeyboard)
}
