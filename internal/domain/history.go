package domain

// ActionType names the intent recorded in the history log.
type ActionType string

const (
	ActionAdd    ActionType = "add"
	ActionRemove ActionType = "remove"
	ActionUpdate ActionType = "update"
	ActionClear  ActionType = "clear"
)

// HistoryAction records the intent of one cart mutation, not a full state snapshot.
//
// Item is the affected line item as it looked after an add or update, or
// before a remove. PreviousQuantity is the quantity before the mutation (0
// when the product was not in the cart). Position is the index the item
// occupied, so restoring it keeps the cart order. Items holds the cart
// contents wiped by a clear.
type HistoryAction struct {
	Type             ActionType `json:"type"`
	Item             *LineItem  `json:"item,omitempty"`
	PreviousQuantity int        `json:"previous_quantity,omitempty"`
	Position         int        `json:"position,omitempty"`
	Items            []LineItem `json:"items,omitempty"`
}
