package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// SessionTopicMUS is the binary serializer used to persist SessionTopic values.
// Timestamps are stored as Unix microseconds; a zero time round-trips as zero.
var SessionTopicMUS = sessionTopicMUS{}

type sessionTopicMUS struct{}

func (s sessionTopicMUS) Marshal(v SessionTopic, bs []byte) (n int) {
	n = ord.String.Marshal(v.SessionID, bs)
	n += ord.String.Marshal(v.Topic, bs[n:])
	n += varint.Int64.Marshal(timeToMicros(v.UpdatedAt), bs[n:])
	return n + varint.Int64.Marshal(timeToMicros(v.ExpiresAt), bs[n:])
}

func (s sessionTopicMUS) Unmarshal(bs []byte) (v SessionTopic, n int, err error) {
	v.SessionID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Topic, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var updated, expires int64
	updated, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	expires, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt = microsToTime(updated)
	v.ExpiresAt = microsToTime(expires)
	return
}

func (s sessionTopicMUS) Size(v SessionTopic) (size int) {
	size = ord.String.Size(v.SessionID)
	size += ord.String.Size(v.Topic)
	size += varint.Int64.Size(timeToMicros(v.UpdatedAt))
	return size + varint.Int64.Size(timeToMicros(v.ExpiresAt))
}

func (s sessionTopicMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int64.Skip(bs[n:])
	n += n1
	return
}

func timeToMicros(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}

func microsToTime(us int64) time.Time {
	if us == 0 {
		return time.Time{}
	}
	return time.UnixMicro(us)
}
