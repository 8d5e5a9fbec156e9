// Package queue defines the reservation lifecycle events exchanged over
// the message broker and the background consumer that records them.
package queue

// Reservation event actions.
const (
	ActionConfirmed = "confirmed"
	ActionCancelled = "cancelled"
)

// ReservationEvent is published after a reservation is confirmed or
// cancelled.  It carries enough context for downstream consumers to
// log or notify without querying the primary database.
type ReservationEvent struct {
	Action        string `json:"action"` // "confirmed" or "cancelled"
	ReservationID uint64 `json:"reservation_id"`
	UserID        uint64 `json:"user_id"`
	ConcertID     uint64 `json:"concert_id"`
	ConcertName   string `json:"concert_name,omitempty"`
	RemainSeat    uint32 `json:"remain_seat"`
	OccurredAt    string `json:"occurred_at"` // RFC3339 UTC
}
