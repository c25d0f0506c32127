package heuristics

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/poiesic/civicfaq/core"
)

// Follow-up intent labels.
const (
	IntentPayment     = "payment"
	IntentEligibility = "eligibility"
	IntentApplication = "application"
	IntentContact     = "contact"
)

// Group is a named, ordered list of trigger phrases.
type Group struct {
	Name    string   `yaml:"name"`
	Phrases []string `yaml:"phrases"`
}

// Templates holds the fixed replies used when no FAQ entry is confident.
// Templates that name a topic use the {topic} placeholder.
type Templates struct {
	Menu        string `yaml:"menu"`
	AskTopic    string `yaml:"ask_topic"`
	Payment     string `yaml:"payment"`
	Eligibility string `yaml:"eligibility"`
	Application string `yaml:"application"`
	Contact     string `yaml:"contact"`
	Clarify     string `yaml:"clarify"`
	Unavailable string `yaml:"unavailable"`
}

// Vocabulary is the consolidated phrase table.
//
// Topics are checked in order, so earlier groups win when a message mentions
// several services. The same topic phrases act as scoring synonyms for FAQ
// entries whose service matches the group name.
type Vocabulary struct {
	Topics    []Group   `yaml:"topics"`
	Intents   []Group   `yaml:"intents"`
	Generic   []string  `yaml:"generic"`
	Templates Templates `yaml:"templates"`
}

// DefaultVocabulary returns the built-in phrase tables for the four supported services.
func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{
		Topics: []Group{
			{Name: "Council Tax", Phrases: []string{
				"council tax", "ctax", "tax", "bill", "balance", "arrears",
				"direct debit", "discount", "exemption", "move home",
			}},
			{Name: "Waste & Bins", Phrases: []string{
				"bin", "bins", "waste", "recycling", "missed", "collection",
				"bulky", "replacement bin",
			}},
			{Name: "Benefits & Support", Phrases: []string{
				"benefit", "benefits", "support", "financial support", "hardship",
				"council tax support", "housing benefit", "universal credit", "uc",
				"money help", "low income",
			}},
			{Name: "Education", Phrases: []string{
				"school", "admissions", "apply for school", "deadline", "in-year",
				"transfer", "send", "ehcp", "transport",
			}},
		},
		Intents: []Group{
			{Name: IntentPayment, Phrases: []string{
				"pay", "payment", "paying", "missed payment", "owe", "arrears", "direct debit",
			}},
			{Name: IntentEligibility, Phrases: []string{
				"eligible", "eligibility", "qualify", "can i get", "who can", "discount", "exemption",
			}},
			{Name: IntentApplication, Phrases: []string{
				"apply", "application", "how do i apply", "form", "submit",
			}},
			{Name: IntentContact, Phrases: []string{
				"contact", "phone", "email", "speak to", "call", "talk to someone",
			}},
		},
		Generic: []string{
			"help", "hi", "hello", "hey", "ok", "okay", "thanks", "thank you", "please",
		},
		Templates: Templates{
			Menu:        "I can help with **Council Tax**, **Waste/Bins**, **Benefits**, and **School Admissions**. Which service do you need?",
			AskTopic:    "Which service is this about: **Council Tax**, **Waste/Bins**, **Benefits**, or **School Admissions**?",
			Payment:     "Is this about **paying** for **{topic}** (e.g., instalments, missed payments, direct debit)?",
			Eligibility: "Are you checking **eligibility** for **{topic}** (who qualifies / what documents are needed)?",
			Application: "Are you asking how to **apply** for something under **{topic}**? Tell me what you're applying for.",
			Contact:     "Do you want **contact details** for **{topic}**, or should I link you to the official support page?",
			Clarify:     "It looks like a follow-up about **{topic}**. Can you clarify: **payment**, **eligibility**, **application**, or **contact details**?",
			Unavailable: "Sorry, I can't look that up right now. Please try again in a moment.",
		},
	}
}

// LoadVocabulary reads a YAML vocabulary from path on fsys. Sections missing
// from the file keep their default values.
func LoadVocabulary(fsys afero.Fs, path string) (*Vocabulary, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVocabularyRead, err)
	}
	return ParseVocabulary(data)
}

// LoadVocabularyFile reads a YAML vocabulary from the operating system filesystem.
func LoadVocabularyFile(path string) (*Vocabulary, error) {
	return LoadVocabulary(afero.NewOsFs(), path)
}

// ParseVocabulary decodes a YAML vocabulary over the defaults.
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var parsed Vocabulary
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVocabularyRead, err)
	}

	v := DefaultVocabulary()
	if len(parsed.Topics) > 0 {
		v.Topics = parsed.Topics
	}
	if len(parsed.Intents) > 0 {
		v.Intents = parsed.Intents
	}
	if len(parsed.Generic) > 0 {
		v.Generic = parsed.Generic
	}
	mergeTemplates(&v.Templates, parsed.Templates)

	if err := v.Validate(); err != nil {
		return nil, err
	}
	return v, nil
}

func mergeTemplates(dst *Templates, src Templates) {
	set := func(d *string, s string) {
		if strings.TrimSpace(s) != "" {
			*d = s
		}
	}
	set(&dst.Menu, src.Menu)
	set(&dst.AskTopic, src.AskTopic)
	set(&dst.Payment, src.Payment)
	set(&dst.Eligibility, src.Eligibility)
	set(&dst.Application, src.Application)
	set(&dst.Contact, src.Contact)
	set(&dst.Clarify, src.Clarify)
	set(&dst.Unavailable, src.Unavailable)
}

// Validate checks that every group is named and that no topic uses the
// reserved unknown label.
func (v *Vocabulary) Validate() error {
	for _, g := range v.Topics {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			return fmt.Errorf("%w: topic group without a name", ErrInvalidVocabulary)
		}
		if name == core.UnknownTopic {
			return fmt.Errorf("%w: %q is reserved", ErrInvalidVocabulary, core.UnknownTopic)
		}
	}
	for _, g := range v.Intents {
		if strings.TrimSpace(g.Name) == "" {
			return fmt.Errorf("%w: intent group without a name", ErrInvalidVocabulary)
		}
	}
	return nil
}

// DetectTopic returns the first topic whose phrases appear in normMsg, or "".
func (v *Vocabulary) DetectTopic(normMsg string) string {
	return Detect(normMsg, v.Topics)
}

// DetectIntent returns the first follow-up intent whose phrases appear in normMsg, or "".
func (v *Vocabulary) DetectIntent(normMsg string) string {
	return Detect(normMsg, v.Intents)
}

// IsGeneric reports whether normMsg is exactly one of the generic greetings.
func (v *Vocabulary) IsGeneric(normMsg string) bool {
	if normMsg == "" {
		return false
	}
	return slices.ContainsFunc(v.Generic, func(g string) bool {
		return core.Normalize(g) == normMsg
	})
}

// Synonyms returns the topic phrases for service, or nil when the service
// has no group.
func (v *Vocabulary) Synonyms(service string) []string {
	for _, g := range v.Topics {
		if strings.EqualFold(g.Name, service) {
			return g.Phrases
		}
	}
	return nil
}

// TopicNames returns the topic labels in table order.
func (v *Vocabulary) TopicNames() []string {
	names := make([]string, len(v.Topics))
	for i, g := range v.Topics {
		names[i] = g.Name
	}
	return names
}

// FollowUp renders the clarifying template for intent and topic.
// An unrecognised or empty intent uses the generic clarify template.
func (t Templates) FollowUp(intent, topic string) string {
	var tmpl string
	switch intent {
	case IntentPayment:
		tmpl = t.Payment
	case IntentEligibility:
		tmpl = t.Eligibility
	case IntentApplication:
		tmpl = t.Application
	case IntentContact:
		tmpl = t.Contact
	default:
		tmpl = t.Clarify
	}
	return strings.ReplaceAll(tmpl, "{topic}", topic)
}
