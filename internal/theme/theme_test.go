package theme

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTheme(t *testing.T) {
	th := Default()

	assert.Equal(t, "smartshuttle", th.Name())
	primary, ok := th.Color("primary")
	require.True(t, ok)
	assert.Equal(t, "#6366F1", primary)

	md, ok := th.Spacing("md")
	require.True(t, ok)
	assert.Equal(t, 16, md)

	_, ok = th.Color("nope")
	assert.False(t, ok)
}

func TestSnapshotIsACopy(t *testing.T) {
	th := Default()

	snap := th.Snapshot()
	snap.Colors["primary"] = "#000000"
	delete(snap.Spacing, "md")

	primary, _ := th.Color("primary")
	assert.Equal(t, "#6366F1", primary)
	_, ok := th.Spacing("md")
	assert.True(t, ok)
}

func TestCSSVariables(t *testing.T) {
	css := string(Default().CSSVariables())

	assert.Contains(t, css, "--color-primary: #6366F1;")
	assert.Contains(t, css, "--color-primary-dark: #4F46E5;")
	assert.Contains(t, css, "--space-md: 16px;")
	assert.Contains(t, css, "--font-size-body-small: 14px;")
	assert.Contains(t, css, `--font-family: "Inter"`)

	// stable ordering
	assert.Equal(t, css, string(Default().CSSVariables()))
	assert.Less(t, strings.Index(css, "--color-accent"), strings.Index(css, "--color-primary"))
}

func TestParseRejectsInvalid(t *testing.T) {
	_, err := Parse([]byte("colors: {primary: '#fff'}"))
	assert.Error(t, err, "missing name")

	_, err = Parse([]byte("name: x\ncolors: {primary: red}"))
	assert.Error(t, err, "named colors are not accepted")

	_, err = Parse([]byte("name: x"))
	assert.Error(t, err, "no colors")

	_, err = Parse([]byte("name: ["))
	assert.Error(t, err)
}
