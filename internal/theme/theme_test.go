package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	t.Cleanup(func() { Current = Dark })

	assert.True(t, Set("light"))
	assert.Equal(t, "light", Current.Name)
	assert.Equal(t, "light", Current.MarkdownStyle)

	assert.False(t, Set("solarized"))
	assert.Equal(t, "light", Current.Name, "unknown name keeps the current theme")
}

func TestToggle(t *testing.T) {
	t.Cleanup(func() { Current = Dark })

	Current = Dark
	assert.Equal(t, "light", Toggle())
	assert.Equal(t, "dark", Toggle())
	assert.Equal(t, Dark, Current)
}

func TestList(t *testing.T) {
	assert.Equal(t, []string{"dark", "light"}, List())
}
