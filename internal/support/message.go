package support

import "time"

// Message is a single support-chat utterance. A conversation is the ordered
// set of all messages sharing one UserID (the non-admin participant); it is
// never stored as its own entity. Messages are immutable after insert and
// deleted only in bulk when a whole conversation is removed.
type Message struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Content   string    `bson:"content" json:"content"`
	IsAdmin   bool      `bson:"is_admin" json:"is_admin"`
	UserEmail string    `bson:"user_email,omitempty" json:"user_email,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// RecencyWindow is the lookback used for both the admin urgency marker and
// the end-user unread count.
const RecencyWindow = 24 * time.Hour
