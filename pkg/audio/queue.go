package audio

import (
	"sync"
)

// Player plays one PCM16 chunk and invokes done when the chunk has finished.
// Implementations must not call done more than once per Play.
type Player interface {
	Play(pcm []byte, done func()) error
	Close() error
}

// Queue sequences playback of audio chunks in strict arrival order.
//
// At most one chunk is playing at any time. A chunk arriving while another is
// playing is appended to the tail; completion of a chunk starts the head of
// the queue. Reset drops pending chunks unconditionally and invalidates the
// completion callback of a chunk that is mid-playback, so late callbacks after
// teardown are no-ops.
type Queue struct {
	player Player

	mu      sync.Mutex
	pending [][]byte
	playing bool
	gen     uint64
	err     error
}

// NewQueue creates a playback queue driving the given player.
func NewQueue(player Player) *Queue {
	return &Queue{player: player}
}

// Enqueue submits a chunk for playback. If nothing is playing the chunk
// starts immediately, otherwise it waits its turn.
func (q *Queue) Enqueue(pcm []byte) {
	if q == nil || q.player == nil || len(pcm) == 0 {
		return
	}
	q.mu.Lock()
	if q.playing {
		q.pending = append(q.pending, pcm)
		q.mu.Unlock()
		return
	}
	q.playing = true
	gen := q.gen
	q.mu.Unlock()

	q.play(pcm, gen)
}

func (q *Queue) play(pcm []byte, gen uint64) {
	err := q.player.Play(pcm, func() { q.onFinished(gen) })
	if err == nil {
		return
	}
	q.mu.Lock()
	if gen == q.gen {
		q.playing = false
		q.pending = nil
		if q.err == nil {
			q.err = err
		}
	}
	q.mu.Unlock()
}

func (q *Queue) onFinished(gen uint64) {
	q.mu.Lock()
	if gen != q.gen {
		// Completion from before a Reset; the queue has moved on.
		q.mu.Unlock()
		return
	}
	if len(q.pending) == 0 {
		q.playing = false
		q.mu.Unlock()
		return
	}
	next := q.pending[0]
	q.pending = q.pending[1:]
	q.mu.Unlock()

	q.play(next, gen)
}

// Playing reports whether a chunk is currently being played.
func (q *Queue) Playing() bool {
	if q == nil {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.playing
}

// Pending returns the number of chunks waiting behind the one playing.
func (q *Queue) Pending() int {
	if q == nil {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Err returns the first player error observed, if any.
func (q *Queue) Err() error {
	if q == nil {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.err
}

// Reset clears the queue and the playing flag unconditionally, even if a
// chunk is mid-playback. Safe to call repeatedly.
func (q *Queue) Reset() {
	if q == nil {
		return
	}
	q.mu.Lock()
	q.gen++
	q.pending = nil
	q.playing = false
	q.mu.Unlock()
}
