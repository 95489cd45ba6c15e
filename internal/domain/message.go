package domain

import "time"

// MessageTypeCount is the number of predefined message kinds (1..6).
const MessageTypeCount = 6

// Message is a one-way notification between users, carrying up to six
// predefined message kinds and an optional reference to a danger object.
type Message struct {
	ID            int64      `json:"id" db:"id"`
	SenderUUID    string     `json:"sender_uuid" db:"sender_uuid"`
	RecipientUUID string     `json:"recipient_uuid" db:"recipient_uuid"`
	DangerObjID   *int64     `json:"danger_obj_id" db:"danger_obj_id"`
	Types         [MessageTypeCount]bool `json:"-"`
	IsRead        bool       `json:"is_read" db:"is_read"`
	ReadAt        *time.Time `json:"read_at" db:"read_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

// SetType marks message kind n (1-based). Out-of-range values are invalid.
func (m *Message) SetType(n int) bool {
	if n < 1 || n > MessageTypeCount {
		return false
	}
	m.Types[n-1] = true
	return true
}

// TypeList returns the marked kinds as 1-based numbers.
func (m *Message) TypeList() []int {
	var types []int
	for i, set := range m.Types {
		if set {
			types = append(types, i+1)
		}
	}
	return types
}
