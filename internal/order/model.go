package order

import (
	"time"

	"storekeep/internal/api"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// next maps each status to its forward transition in the fixed
// progression pending → confirmed → processing → delivered.
var next = map[Status]Status{
	StatusPending:    StatusConfirmed,
	StatusConfirmed:  StatusProcessing,
	StatusProcessing: StatusDelivered,
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// IsValid reports whether s is one of the fixed status set.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from one status to
// another: one step forward along the progression, or to cancelled
// from any non-terminal status.
func CanTransition(from, to Status) bool {
	if !from.IsValid() || !to.IsValid() {
		return false
	}
	if from.IsTerminal() {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	return next[from] == to
}

// Transitions lists the statuses reachable from the given one, in the
// order they are presented to the owner.
func Transitions(from Status) []Status {
	if from.IsTerminal() || !from.IsValid() {
		return nil
	}
	return []Status{next[from], StatusCancelled}
}

// LineItem is one product-and-quantity entry, enriched with resolved
// product details.
type LineItem struct {
	ProductID string
	Quantity  int
	Name      string
	Price     float64
}

// Order is a fully-enriched customer order. Total is only defined once
// every line item's product details have resolved; partially enriched
// orders are never constructed.
type Order struct {
	ID        string
	Status    Status
	CreatedAt time.Time
	StoreID   string
	StoreName string
	Customer  api.UserRef
	Items     []LineItem
	Total     float64
}

// CallResult is the outcome of a call-customer side action.
type CallResult struct {
	Called  bool
	Phone   string
	Message string
}
