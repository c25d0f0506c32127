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

import "errors"

// Domain validation errors
var (
	// ErrInvalidFAQEntry indicates an FAQEntry failed validation.
	ErrInvalidFAQEntry = errors.New("invalid faq entry")

	// ErrEmptyService indicates the Service field is empty.
	ErrEmptyService = errors.New("service cannot be empty")

	// ErrEmptyResponse indicates one of the alternative responses is blank.
	ErrEmptyResponse = errors.New("responses cannot contain blank entries")

	// ErrInvalidSessionTopic indicates a SessionTopic failed validation.
	ErrInvalidSessionTopic = errors.New("invalid session topic")

	// ErrUnstorableTopic indicates an attempt to store a blank or unknown topic.
	ErrUnstorableTopic = errors.New("topic cannot be blank or unknown")
)
