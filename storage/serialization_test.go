package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/civicfaq/core"
)

func TestMarshalUnmarshalSessionTopic(t *testing.T) {
	now := time.UnixMicro(time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC).UnixMicro())

	tests := []struct {
		name  string
		topic core.SessionTopic
	}{
		{
			name:  "full",
			topic: core.SessionTopic{SessionID: "s-1", Topic: "Council Tax", UpdatedAt: now, ExpiresAt: now.Add(time.Hour)},
		},
		{
			name:  "no expiry",
			topic: core.SessionTopic{SessionID: "s-2", Topic: "Benefits & Support", UpdatedAt: now},
		},
		{
			name:  "unicode",
			topic: core.SessionTopic{SessionID: "sesión", Topic: "Éducation"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalSessionTopic(&tt.topic)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalSessionTopic(data)
			require.NoError(t, err)
			assert.Equal(t, tt.topic.SessionID, decoded.SessionID)
			assert.Equal(t, tt.topic.Topic, decoded.Topic)
			assert.True(t, tt.topic.UpdatedAt.Equal(decoded.UpdatedAt))
			assert.True(t, tt.topic.ExpiresAt.Equal(decoded.ExpiresAt))
		})
	}
}

func TestUnmarshalSessionTopic_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"nil data", nil},
		{"empty data", []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalSessionTopic(tt.data)
			assert.ErrorIs(t, err, ErrSerializationFailed)
		})
	}
}

func TestUnmarshalSessionTopic_Truncated(t *testing.T) {
	topic := core.SessionTopic{SessionID: "session", Topic: "Waste & Bins", UpdatedAt: time.Now()}
	data := MarshalSessionTopic(&topic)

	_, err := UnmarshalSessionTopic(data[:len(data)-3])
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
