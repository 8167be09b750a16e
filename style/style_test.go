package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetTheme(t *testing.T) {
	t.Cleanup(func() { SetTheme("dark") })

	assert.False(t, SetTheme("solarized"))
	assert.Equal(t, "dark", CurrentThemeName)

	assert.True(t, SetTheme("light"))
	assert.Equal(t, "light", CurrentThemeName)
	assert.False(t, IsDark())
	assert.Equal(t, lightTheme.Primary, Primary)

	assert.True(t, SetTheme("catppuccin"))
	assert.True(t, IsDark())
}

func TestThemeNamesAreRegistered(t *testing.T) {
	for _, n := range ThemeNames {
		_, ok := Themes[n]
		assert.True(t, ok, n)
	}
}

func TestRule(t *testing.T) {
	assert.Empty(t, Rule(0))
	assert.NotEmpty(t, Rule(4))
}
