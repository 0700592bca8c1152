// Package conversation keeps the bounded chat history sent with each generation request.
package conversation

import "studymate/internal/domain"

// DefaultMaxHistoryPairs is the number of user/assistant exchanges kept by default.
const DefaultMaxHistoryPairs = 10

// Window is an oldest-first buffer of turns holding at most 2*maxPairs entries.
// It is not safe for concurrent use.
type Window struct {
	capacity int
	turns    []domain.Turn
}

// NewWindow creates a window for maxPairs exchanges. Non-positive values use the default.
func NewWindow(maxPairs int) *Window {
	if maxPairs <= 0 {
		maxPairs = DefaultMaxHistoryPairs
	}
	return &Window{capacity: 2 * maxPairs}
}

// Capacity returns the maximum number of turns kept.
func (w *Window) Capacity() int { return w.capacity }

// Len returns the number of turns currently held.
func (w *Window) Len() int { return len(w.turns) }

// Append records one exchange. Oldest turns are evicted first so that the window
// holds at most capacity-2 entries before the new pair is added.
func (w *Window) Append(user, assistant string) {
	if keep := w.capacity - 2; len(w.turns) > keep {
		w.turns = append([]domain.Turn(nil), w.turns[len(w.turns)-keep:]...)
	}
	w.turns = append(w.turns,
		domain.Turn{Role: domain.RoleUser, Content: user},
		domain.Turn{Role: domain.RoleAssistant, Content: assistant},
	)
}

// Render returns a copy of the history, oldest first.
func (w *Window) Render() []domain.Turn {
	out := make([]domain.Turn, len(w.turns))
	copy(out, w.turns)
	return out
}

// Reset drops all turns.
func (w *Window) Reset() { w.turns = nil }
