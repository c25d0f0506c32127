package embedcache

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// progressTracker reports how many FAQ entries have been embedded during a rebuild.
type progressTracker struct {
	writer       io.Writer
	total        int
	current      int
	every        int
	lastReported int
	startTime    time.Time
	started      bool
	mu           sync.Mutex
}

// newProgressTracker creates a tracker that writes a status line to w every
// `every` entries. A nil writer disables reporting.
func newProgressTracker(w io.Writer, total, every int) *progressTracker {
	if every < 1 {
		every = 1
	}
	return &progressTracker{
		writer: w,
		total:  total,
		every:  every,
	}
}

func (p *progressTracker) start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	p.started = true
	p.current = 0
	p.lastReported = 0
}

// increment records one more embedded entry.
func (p *progressTracker) increment() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	if p.current < p.total {
		p.current++
	}
	if p.current-p.lastReported >= p.every {
		p.report()
		p.lastReported = p.current
	}
}

// finish prints the final line. Partial progress is kept as is so a failed
// rebuild does not claim completion.
func (p *progressTracker) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started || p.writer == nil {
		return
	}

	p.report()
	fmt.Fprintln(p.writer)
}

func (p *progressTracker) elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}
	return time.Since(p.startTime)
}

// report must be called with the lock held.
func (p *progressTracker) report() {
	if p.writer == nil {
		return
	}

	rate := 0.0
	if secs := time.Since(p.startTime).Seconds(); secs > 0 {
		rate = float64(p.current) / secs
	}

	percentage := 0.0
	if p.total > 0 {
		percentage = float64(p.current) / float64(p.total) * 100.0
	}

	fmt.Fprintf(p.writer, "\rEmbedding FAQ: %d/%d (%.1f%%) - %.1f entries/s",
		p.current, p.total, percentage, rate)
}
