package index

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Progress reports embedding progress to a writer on a single, rewritten line.
// It is safe for concurrent use by pool workers.
type Progress struct {
	mu       sync.Mutex
	w        io.Writer
	total    int
	done     int
	every    int
	reported int
	start    time.Time
}

// NewProgress creates a reporter that prints after every `every` examples.
func NewProgress(w io.Writer, total, every int) *Progress {
	if every < 1 {
		every = 1
	}
	return &Progress{w: w, total: total, every: every, start: time.Now()}
}

// Add records n more embedded examples.
func (p *Progress) Add(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = min(p.done+n, p.total)
	if p.done-p.reported >= p.every {
		p.print()
		p.reported = p.done
	}
}

// Done prints the final state followed by a newline.
func (p *Progress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = p.total
	p.print()
	fmt.Fprintln(p.w)
}

// print must be called with the lock held.
func (p *Progress) print() {
	pct := 100.0
	if p.total > 0 {
		pct = float64(p.done) / float64(p.total) * 100
	}
	rate := float64(p.done) / time.Since(p.start).Seconds()
	fmt.Fprintf(p.w, "\rEmbedding examples: %d/%d (%.1f%%) %.1f/s", p.done, p.total, pct, rate)
}
