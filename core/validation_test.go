package core

import (
	"errors"
	"testing"
)

func TestValidateFAQEntry(t *testing.T) {
	tests := []struct {
		name    string
		entry   *FAQEntry
		wantErr error
	}{
		{
			name:    "valid entry",
			entry:   &FAQEntry{Service: "Council Tax", Title: "Pay", Answer: "Online."},
			wantErr: nil,
		},
		{
			name:    "valid entry with empty answer",
			entry:   &FAQEntry{Service: "Council Tax"},
			wantErr: nil,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantErr: ErrInvalidFAQEntry,
		},
		{
			name:    "blank service",
			entry:   &FAQEntry{Service: "   ", Title: "Pay"},
			wantErr: ErrEmptyService,
		},
		{
			name:    "blank alternative response",
			entry:   &FAQEntry{Service: "Education", Responses: []string{"ok", " "}},
			wantErr: ErrEmptyResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFAQEntry(tt.entry)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateFAQEntry() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateFAQEntry() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSessionTopic(t *testing.T) {
	tests := []struct {
		name    string
		st      *SessionTopic
		wantErr error
	}{
		{name: "valid", st: &SessionTopic{SessionID: "s1", Topic: "Education"}},
		{name: "nil", st: nil, wantErr: ErrInvalidSessionTopic},
		{name: "empty session", st: &SessionTopic{SessionID: "", Topic: "Education"}},
		{name: "blank session", st: &SessionTopic{SessionID: " ", Topic: "Education"}},
		{name: "unknown topic", st: &SessionTopic{SessionID: "s1", Topic: UnknownTopic}, wantErr: ErrUnstorableTopic},
		{name: "blank topic", st: &SessionTopic{SessionID: "s1", Topic: "\t"}, wantErr: ErrUnstorableTopic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSessionTopic(tt.st)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateSessionTopic() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateSessionTopic() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
