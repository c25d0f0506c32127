package embedcache

import (
	"encoding/hex"
	"io"

	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/civicfaq/core"
)

const (
	fieldSeparator = "::"
	entrySeparator = "||"
)

// Fingerprint returns a deterministic, order-sensitive digest of the service,
// title and answer of every entry. Keywords, links and alternative responses
// do not contribute; they never affect the embedded text.
func Fingerprint(entries []core.FAQEntry) string {
	h, _ := blake2b.New256(nil)
	for i := range entries {
		if i > 0 {
			io.WriteString(h, entrySeparator)
		}
		io.WriteString(h, entries[i].Service)
		io.WriteString(h, fieldSeparator)
		io.WriteString(h, entries[i].Title)
		io.WriteString(h, fieldSeparator)
		io.WriteString(h, entries[i].Answer)
	}
	return hex.EncodeToString(h.Sum(nil))
}
