package messaging

import (
	"fmt"
	"time"

	"jobmatrimony/domain"
)

// MaxContentRunes bounds a single message body.
const MaxContentRunes = 4000

// Message is one entry of the append-only log between two identities.
type Message struct {
	ID        string          `json:"id"`
	Seq       int64           `json:"seq"`
	From      domain.Identity `json:"from" validate:"required"`
	To        domain.Identity `json:"to" validate:"required"`
	Content   string          `json:"content" validate:"required,max=4000"`
	Timestamp time.Time       `json:"timestamp"`
}

// Less orders messages by timestamp, breaking ties by insertion sequence.
func Less(a, b Message) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	return a.Seq < b.Seq
}

// ErrParticipantRequired signals a conversation lookup with an empty side.
var ErrParticipantRequired = fmt.Errorf("messaging: both participants required: %w", domain.ErrInvalidInput)
