package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSubstitutesVariables(t *testing.T) {
	out, err := Render("Dear {{ recipientName }}, see you at {{eventName}}.", map[string]any{
		"recipientName": "Sara",
		"eventName":     "Riyadh Expo",
	})
	require.NoError(t, err)
	assert.Equal(t, "Dear Sara, see you at Riyadh Expo.", out)
}

func TestRenderMissingVariableIsEmpty(t *testing.T) {
	out, err := Render("Hi {{ who }}!", nil)
	require.NoError(t, err)
	assert.Equal(t, "Hi !", out)
}

func TestRenderParseError(t *testing.T) {
	_, err := Render("{% if %}", nil)
	assert.Error(t, err)
}

func TestRendererCachesByKey(t *testing.T) {
	r := NewRenderer()
	out, err := r.Render("k", "one {{ v }}", map[string]any{"v": 1})
	require.NoError(t, err)
	assert.Equal(t, "one 1", out)

	// cached source wins until forgotten
	out, err = r.Render("k", "two {{ v }}", map[string]any{"v": 2})
	require.NoError(t, err)
	assert.Equal(t, "one 2", out)

	r.Forget("k")
	out, err = r.Render("k", "two {{ v }}", map[string]any{"v": 2})
	require.NoError(t, err)
	assert.Equal(t, "two 2", out)
}

func TestDefaultTemplates(t *testing.T) {
	for _, kind := range Kinds {
		for _, lang := range []string{"ar", "en"} {
			tpl, err := Default("Spring", kind, lang)
			require.NoError(t, err)
			assert.Equal(t, lang, tpl.Language)
			assert.Equal(t, string(kind), tpl.Category)
			assert.True(t, tpl.IsActive)
			assert.NotEmpty(t, tpl.HTMLContent)
			assert.Len(t, tpl.Variables, 4)
			assert.Equal(t, "recipientName", tpl.Variables[0].Name)
		}
	}

	tpl, err := Default("Spring", KindWelcome, "en")
	require.NoError(t, err)
	assert.Equal(t, "Spring - Welcome", tpl.Name)
	assert.Equal(t, "Welcome to The Next Event", tpl.Subject)
	assert.Contains(t, tpl.HTMLContent, "Welcome {{ recipientName }}")

	tpl, err = Default("Spring", KindContact, "fr")
	require.NoError(t, err)
	assert.Equal(t, "ar", tpl.Language)

	_, err = Default("x", Kind("promo"), "en")
	assert.Error(t, err)
}

func TestContactTemplateRenders(t *testing.T) {
	tpl, err := Default("Reply", KindContact, "en")
	require.NoError(t, err)
	out, err := Render(tpl.HTMLContent, map[string]any{"recipientName": "Omar", "ticketNumber": "T-42", "message": "We have a slot."})
	require.NoError(t, err)
	assert.Contains(t, out, "Dear Omar,")
	assert.Contains(t, out, "T-42")
	assert.Contains(t, out, "We have a slot.")

	out, err = Render(tpl.HTMLContent, map[string]any{"recipientName": "Omar"})
	require.NoError(t, err)
	assert.NotContains(t, out, `<div style="margin: 20px 0;">`)
}
