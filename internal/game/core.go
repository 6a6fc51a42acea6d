package game

import "sync"

// ChatLine is one delivered chat message. To is -1 for broadcasts.
type ChatLine struct {
	T    float64 `json:"t"`
	To   int     `json:"to"`
	Text string  `json:"text"`
}

// Backlog keeps the most recent chat lines in a fixed ring.
type Backlog struct {
	buf   []ChatLine
	head  int
	size  int
	mu    sync.RWMutex
	limit int
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func newBacklog(n int) *Backlog {
	if n < 1 {
		n = 1
	}
	return &Backlog{buf: make([]ChatLine, n), limit: n}
}

func (b *Backlog) push(l ChatLine) {
	b.mu.Lock()
	b.buf[b.head] = l
	b.head = (b.head + 1) % b.limit
	if b.size < b.limit {
		b.size++
	}
	b.mu.Unlock()
}

func (b *Backlog) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// Recent returns up to n lines, oldest first.
func (b *Backlog) Recent(n int) []ChatLine {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if n <= 0 || b.size == 0 {
		return nil
	}
	if n > b.size {
		n = b.size
	}
	out := make([]ChatLine, n)
	start := (b.head - n + b.limit) % b.limit
	for i := 0; i < n; i++ {
		out[i] = b.buf[(start+i)%b.limit]
	}
	return out
}
