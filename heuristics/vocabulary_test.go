package heuristics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultVocabulary_Valid(t *testing.T) {
	v := DefaultVocabulary()
	require.NoError(t, v.Validate())
	assert.Equal(t, []string{"Council Tax", "Waste & Bins", "Benefits & Support", "Education"}, v.TopicNames())
}

func TestTemplates_FollowUp(t *testing.T) {
	tmpl := DefaultVocabulary().Templates

	assert.Equal(t,
		"Is this about **paying** for **Council Tax** (e.g., instalments, missed payments, direct debit)?",
		tmpl.FollowUp(IntentPayment, "Council Tax"))
	assert.Contains(t, tmpl.FollowUp(IntentEligibility, "Education"), "**Education**")
	assert.Contains(t, tmpl.FollowUp(IntentApplication, "Education"), "**apply**")
	assert.Contains(t, tmpl.FollowUp(IntentContact, "Waste & Bins"), "**contact details** for **Waste & Bins**")
	assert.Equal(t,
		"It looks like a follow-up about **Waste & Bins**. Can you clarify: **payment**, **eligibility**, **application**, or **contact details**?",
		tmpl.FollowUp("", "Waste & Bins"))
}

func TestParseVocabulary_MergesDefaults(t *testing.T) {
	data := []byte(`
topics:
  - name: Parking
    phrases: [parking, permit]
  - name: Council Tax
    phrases: [council tax]
templates:
  menu: "Pick a service."
`)
	v, err := ParseVocabulary(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"Parking", "Council Tax"}, v.TopicNames())
	assert.Equal(t, "Pick a service.", v.Templates.Menu)
	assert.Equal(t, DefaultVocabulary().Templates.AskTopic, v.Templates.AskTopic)
	assert.Equal(t, DefaultVocabulary().Intents, v.Intents)
	assert.Equal(t, "Parking", v.DetectTopic("resident parking permit"))
}

func TestParseVocabulary_RejectsUnknownTopic(t *testing.T) {
	_, err := ParseVocabulary([]byte("topics:\n  - name: Unknown\n    phrases: [x]\n"))
	assert.ErrorIs(t, err, ErrInvalidVocabulary)
}

func TestParseVocabulary_BadYAML(t *testing.T) {
	_, err := ParseVocabulary([]byte("topics: [unterminated"))
	assert.ErrorIs(t, err, ErrVocabularyRead)
}

func TestLoadVocabularyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	require.NoError(t, os.WriteFile(path, []byte("generic: [yo]\n"), 0o644))

	v, err := LoadVocabularyFile(path)
	require.NoError(t, err)
	assert.True(t, v.IsGeneric("yo"))
	assert.False(t, v.IsGeneric("hi"))

	_, err = LoadVocabularyFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrVocabularyRead)
}

func TestLoadVocabulary_Fs(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/etc/civicfaq/vocab.yaml", []byte("generic: [hiya]\n"), 0o644))

	v, err := LoadVocabulary(fsys, "/etc/civicfaq/vocab.yaml")
	require.NoError(t, err)
	assert.True(t, v.IsGeneric("hiya"))

	_, err = LoadVocabulary(fsys, "/etc/civicfaq/other.yaml")
	assert.ErrorIs(t, err, ErrVocabularyRead)
}
