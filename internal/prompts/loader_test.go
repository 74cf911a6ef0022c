package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	clearCache()

	prompt, err := Get("outreach.json", "internship-email")
	require.NoError(t, err)
	assert.Contains(t, prompt, "SUBJECT:")
	assert.Contains(t, prompt, "BODY:")
	assert.Contains(t, prompt, "7. Ends professionally")
}

func TestGet_InvalidFile(t *testing.T) {
	clearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	clearCache()

	_, err := Get("outreach.json", "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	clearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestFormat(t *testing.T) {
	template := "Hello {{.Name}}, welcome to {{.Company}}!"
	data := map[string]string{
		"Name":    "Alice",
		"Company": "Acme Corp",
	}

	assert.Equal(t, "Hello Alice, welcome to Acme Corp!", Format(template, data))
}

func TestFormat_EmptyData(t *testing.T) {
	template := "Hello {{.Name}}"
	assert.Equal(t, template, Format(template, map[string]string{}))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"Company", "Name"}, Placeholders("{{.Name}} at {{.Company}}, {{.Name}}"))
	assert.Empty(t, Placeholders("plain"))
}

func TestRender_Unfilled(t *testing.T) {
	clearCache()

	_, err := Render("outreach.json", "fallback-body", map[string]string{"RecipientName": "Priya"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SenderName")
}

func TestList(t *testing.T) {
	clearCache()

	keys, err := list("outreach.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"fallback-body", "internship-email"}, keys)
}

func TestCaching(t *testing.T) {
	clearCache()

	prompt1, err := Get("outreach.json", "fallback-body")
	require.NoError(t, err)
	prompt2, err := Get("outreach.json", "fallback-body")
	require.NoError(t, err)

	assert.Equal(t, prompt1, prompt2)
}
