// Package history keeps a linear undo/redo log of cart action intents.
//
// The log is pure bookkeeping: it never touches a store. Callers pop an action
// with Undo or Redo and apply its inverse or forward effect themselves.
package history

import (
	"sync"

	"github.com/utafrali/EcommerceGo/clientstate/internal/domain"
)

// DefaultLimit is the depth cart commands use when given no log.
const DefaultLimit = 50

// Log holds the past and future action stacks. past is most-recent-last and
// future is most-recent-first. The zero value is ready to use and unbounded.
type Log struct {
	mu     sync.Mutex
	past   []domain.HistoryAction
	future []domain.HistoryAction
	limit  int
}

// New creates a log that keeps at most limit past actions. A limit of zero or
// less keeps everything.
func New(limit int) *Log {
	return &Log{limit: limit}
}

// Record pushes action onto the past stack and discards the redo branch.
func (l *Log) Record(action domain.HistoryAction) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.past = append(l.past, cloneAction(action))
	if l.limit > 0 && len(l.past) > l.limit {
		l.past = append([]domain.HistoryAction(nil), l.past[len(l.past)-l.limit:]...)
	}
	l.future = nil
}

// Undo moves the most recent action from past to the front of future and
// returns it. ok is false when there is nothing to undo.
func (l *Log) Undo() (action domain.HistoryAction, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.past)
	if n == 0 {
		return action, false
	}
	action = l.past[n-1]
	l.past = l.past[:n-1]
	l.future = append([]domain.HistoryAction{action}, l.future...)
	return cloneAction(action), true
}

// Redo moves the front of future back onto past and returns it. ok is false
// when there is nothing to redo.
func (l *Log) Redo() (action domain.HistoryAction, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.future) == 0 {
		return action, false
	}
	action = l.future[0]
	l.future = l.future[1:]
	l.past = append(l.past, action)
	return cloneAction(action), true
}

// CanUndo reports whether Undo would return an action.
func (l *Log) CanUndo() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.past) > 0
}

// CanRedo reports whether Redo would return an action.
func (l *Log) CanRedo() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.future) > 0
}

// Clear empties both stacks.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.past = nil
	l.future = nil
}

// Depth returns the sizes of the past and future stacks.
func (l *Log) Depth() (past, future int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.past), len(l.future)
}

// cloneAction detaches action from caller-owned memory so later edits to an
// item or slice cannot rewrite history.
func cloneAction(a domain.HistoryAction) domain.HistoryAction {
	if a.Item != nil {
		item := *a.Item
		a.Item = &item
	}
	if a.Items != nil {
		a.Items = append([]domain.LineItem(nil), a.Items...)
	}
	return a
}
