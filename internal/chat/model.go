package chat

import "time"

const (
	// KindUser marks a message typed by staff.
	KindUser = "user"
	// KindSystem marks an automated notice (registration confirmations).
	KindSystem = "system"
)

// Message is one chat room entry.
type Message struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"roomId"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}
