package embedcache

import (
	"testing"

	"github.com/poiesic/civicfaq/core"
	"github.com/stretchr/testify/assert"
)

func sampleEntries() []core.FAQEntry {
	return []core.FAQEntry{
		{Service: "Council Tax", Title: "Pay my bill", Answer: "Visit the portal.", Keywords: []string{"pay", "bill"}},
		{Service: "Waste & Bins", Title: "Missed collection", Answer: "Report it online."},
		{Service: "Education", Title: "School admissions", Answer: "Apply by the deadline."},
	}
}

func TestFingerprint_Deterministic(t *testing.T) {
	a := Fingerprint(sampleEntries())
	b := Fingerprint(sampleEntries())

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestFingerprint_OrderSensitive(t *testing.T) {
	entries := sampleEntries()
	reversed := []core.FAQEntry{entries[2], entries[1], entries[0]}

	assert.NotEqual(t, Fingerprint(entries), Fingerprint(reversed))
}

func TestFingerprint_TracksEmbeddedFields(t *testing.T) {
	base := Fingerprint(sampleEntries())

	mutations := map[string]func(*core.FAQEntry){
		"service": func(e *core.FAQEntry) { e.Service = "Housing" },
		"title":   func(e *core.FAQEntry) { e.Title = "Pay my council tax" },
		"answer":  func(e *core.FAQEntry) { e.Answer = "Call the office." },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			entries := sampleEntries()
			mutate(&entries[0])
			assert.NotEqual(t, base, Fingerprint(entries))
		})
	}
}

func TestFingerprint_IgnoresNonEmbeddedFields(t *testing.T) {
	entries := sampleEntries()
	base := Fingerprint(entries)

	entries[0].Keywords = []string{"council tax"}
	entries[0].NextStepsURL = "https://example.org/pay"
	entries[0].Responses = []string{"Pay online."}

	assert.Equal(t, base, Fingerprint(entries))
}

func TestFingerprint_Empty(t *testing.T) {
	assert.Equal(t, Fingerprint(nil), Fingerprint([]core.FAQEntry{}))
	assert.NotEqual(t, Fingerprint(nil), Fingerprint(sampleEntries()))
}
