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


package storage

import (
	"fmt"

	"github.com/poiesic/civicfaq/core"
)

// MarshalSessionTopic serializes a SessionTopic to bytes.
func MarshalSessionTopic(topic *core.SessionTopic) []byte {
	buf := make([]byte, core.SessionTopicMUS.Size(*topic))
	core.SessionTopicMUS.Marshal(*topic, buf)
	return buf
}

// UnmarshalSessionTopic deserializes a SessionTopic from bytes.
func UnmarshalSessionTopic(data []byte) (*core.SessionTopic, error) {
	topic, _, err := core.SessionTopicMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &topic, nil
}
