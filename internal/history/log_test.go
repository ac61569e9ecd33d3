package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/EcommerceGo/clientstate/internal/domain"
)

func addAction(productID string) domain.HistoryAction {
	return domain.HistoryAction{
		Type: domain.ActionAdd,
		Item: &domain.LineItem{ProductID: productID, Quantity: 1},
	}
}

// ============================================================================
// Stack discipline
// ============================================================================

func TestLog_EmptyIsNoop(t *testing.T) {
	l := New(0)

	assert.False(t, l.CanUndo())
	assert.False(t, l.CanRedo())

	_, ok := l.Undo()
	assert.False(t, ok)
	_, ok = l.Redo()
	assert.False(t, ok)
}

func TestLog_UndoRedoOrder(t *testing.T) {
	l := New(0)
	l.Record(addAction("p1"))
	l.Record(addAction("p2"))
	l.Record(addAction("p3"))

	a, ok := l.Undo()
	require.True(t, ok)
	assert.Equal(t, "p3", a.Item.ProductID)

	a, ok = l.Undo()
	require.True(t, ok)
	assert.Equal(t, "p2", a.Item.ProductID)

	past, future := l.Depth()
	assert.Equal(t, 1, past)
	assert.Equal(t, 2, future)

	// Redo replays the most recently undone action first.
	a, ok = l.Redo()
	require.True(t, ok)
	assert.Equal(t, "p2", a.Item.ProductID)

	a, ok = l.Redo()
	require.True(t, ok)
	assert.Equal(t, "p3", a.Item.ProductID)

	assert.True(t, l.CanUndo())
	assert.False(t, l.CanRedo())
}

func TestLog_RecordDiscardsRedoBranch(t *testing.T) {
	l := New(0)
	l.Record(addAction("p1"))
	l.Record(addAction("p2"))

	_, ok := l.Undo()
	require.True(t, ok)
	require.True(t, l.CanRedo())

	l.Record(addAction("p9"))

	assert.False(t, l.CanRedo())
	_, ok = l.Redo()
	assert.False(t, ok, "discarded future must not resurrect")

	a, ok := l.Undo()
	require.True(t, ok)
	assert.Equal(t, "p9", a.Item.ProductID)
}

func TestLog_Clear(t *testing.T) {
	l := New(0)
	l.Record(addAction("p1"))
	l.Record(addAction("p2"))
	l.Undo()

	l.Clear()

	assert.False(t, l.CanUndo())
	assert.False(t, l.CanRedo())
}

// ============================================================================
// Limits and isolation
// ============================================================================

func TestLog_LimitDropsOldest(t *testing.T) {
	l := New(2)
	l.Record(addAction("p1"))
	l.Record(addAction("p2"))
	l.Record(addAction("p3"))

	past, _ := l.Depth()
	assert.Equal(t, 2, past)

	a, _ := l.Undo()
	assert.Equal(t, "p3", a.Item.ProductID)
	a, _ = l.Undo()
	assert.Equal(t, "p2", a.Item.ProductID)
	_, ok := l.Undo()
	assert.False(t, ok)
}

func TestLog_ZeroValueIsUsable(t *testing.T) {
	var l Log
	l.Record(addAction("p1"))
	assert.True(t, l.CanUndo())
}

func TestLog_RecordCopiesAction(t *testing.T) {
	l := New(0)
	item := &domain.LineItem{ProductID: "p1", Quantity: 1}
	items := []domain.LineItem{{ProductID: "p2", Quantity: 3}}
	l.Record(domain.HistoryAction{Type: domain.ActionClear, Item: item, Items: items})

	item.Quantity = 42
	items[0].Quantity = 42

	a, ok := l.Undo()
	require.True(t, ok)
	assert.Equal(t, 1, a.Item.Quantity)
	assert.Equal(t, 3, a.Items[0].Quantity)
}
