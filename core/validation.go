// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"strings"
)

// ValidateFAQEntry validates an FAQEntry according to domain rules.
//
// Validation rules:
//   - Service must not be blank
//   - Responses, when present, must not contain blank entries
//
// NOT validated:
//   - Answer (empty is allowed, the entry then replies with an empty string)
//   - Keywords (may be empty)
//   - NextStepsURL (empty means no link)
func ValidateFAQEntry(entry *FAQEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidFAQEntry)
	}

	if strings.TrimSpace(entry.Service) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFAQEntry, ErrEmptyService)
	}

	for _, r := range entry.Responses {
		if strings.TrimSpace(r) == "" {
			return fmt.Errorf("%w: %w", ErrInvalidFAQEntry, ErrEmptyResponse)
		}
	}

	return nil
}

// ValidateSessionTopic validates a SessionTopic before it is stored.
// Any session id is a valid key, including the empty string.
func ValidateSessionTopic(st *SessionTopic) error {
	if st == nil {
		return fmt.Errorf("%w: session topic is nil", ErrInvalidSessionTopic)
	}

	if !IsStorableTopic(st.Topic) {
		return fmt.Errorf("%w: %w", ErrInvalidSessionTopic, ErrUnstorableTopic)
	}

	return nil
}

// IsStorableTopic reports whether topic may be remembered for a session.
func IsStorableTopic(topic string) bool {
	t := strings.TrimSpace(topic)
	return t != "" && t != UnknownTopic
}
