package job

const (
	// MaxHistory is the number of execution records retained per job.
	// Older records are evicted first-in-first-out.
	MaxHistory = 100

	// RecentHistory is the number of newest records included in a View.
	RecentHistory = 10
)

// ring is a fixed-capacity FIFO of execution records.
type ring struct {
	buf  []Execution
	head int // index of the oldest record
	n    int
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]Execution, capacity)}
}

// push appends a record, evicting the oldest when full.
func (r *ring) push(e Execution) {
	if r.n < len(r.buf) {
		r.buf[(r.head+r.n)%len(r.buf)] = e
		r.n++
		return
	}
	r.buf[r.head] = e
	r.head = (r.head + 1) % len(r.buf)
}

func (r *ring) len() int { return r.n }

// last returns up to k newest records in chronological order.
func (r *ring) last(k int) []Execution {
	if k > r.n {
		k = r.n
	}
	out := make([]Execution, 0, k)
	for i := r.n - k; i < r.n; i++ {
		out = append(out, r.buf[(r.head+i)%len(r.buf)])
	}
	return out
}
