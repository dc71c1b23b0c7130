package locale

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	c, err := Lookup("")
	require.NoError(t, err)
	assert.Equal(t, "zh-TW", c.Tag)

	c, err = Lookup("zh_tw")
	require.NoError(t, err)
	assert.Equal(t, "綁定資料", c.Labels.Bind)

	c, err = Lookup("EN")
	require.NoError(t, err)
	assert.Equal(t, "TBD", c.Pending)

	_, err = Lookup("fr")
	require.Error(t, err)
}

func TestCatalogsComplete(t *testing.T) {
	for _, tag := range Tags() {
		c, err := Lookup(tag)
		require.NoError(t, err)
		for _, v := range []any{c.Labels, c.Menu, c.Msg} {
			rv := reflect.ValueOf(v)
			for i := 0; i < rv.NumField(); i++ {
				assert.NotEmpty(t, rv.Field(i).String(), "%s: %s.%s", tag, rv.Type().Name(), rv.Type().Field(i).Name)
			}
		}
		for i, d := range c.Weekdays {
			assert.NotEmpty(t, d, "%s weekday %d", tag, i)
		}
		assert.NotEmpty(t, c.Pending)
		assert.NotEmpty(t, c.Unset)
	}
}

func TestLabelsDistinct(t *testing.T) {
	for _, tag := range Tags() {
		c, _ := Lookup(tag)
		seen := map[string]bool{}
		rv := reflect.ValueOf(c.Labels)
		for i := 0; i < rv.NumField(); i++ {
			label := rv.Field(i).String()
			assert.False(t, seen[label], "%s: duplicate label %q", tag, label)
			seen[label] = true
		}
	}
}
