package badger

// Key prefixes for different data types
const (
	sessionTopicPrefix = "sestop"
)

// makeSessionTopicKey generates a key for a session's remembered topic.
// Format: prefix:sessionID
func makeSessionTopicKey(sessionID string) []byte {
	prefix := sessionTopicPrefix + ":"
	buf := make([]byte, len(prefix)+len(sessionID))
	offset := copy(buf, prefix)
	copy(buf[offset:], sessionID)
	return buf
}
