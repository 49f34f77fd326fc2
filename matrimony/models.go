package matrimony

import (
	"time"

	"jobmatrimony/domain"
)

type InterestStatus string

const (
	InterestPending  InterestStatus = "pending"
	InterestAccepted InterestStatus = "accepted"
	InterestRejected InterestStatus = "rejected"
)

// Interest is a directed expression of interest. Only the recipient may
// answer it, and only while it is pending.
type Interest struct {
	ID          int64           `json:"id"`
	Sender      domain.Identity `json:"sender"`
	Recipient   domain.Identity `json:"recipient"`
	Status      InterestStatus  `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	RespondedAt *time.Time      `json:"respondedAt,omitempty"`
}

// Match is a confirmed pairing. User1 and User2 are stored in canonical
// order, so one unordered pair has exactly one key.
type Match struct {
	ID                 int64           `json:"id"`
	User1              domain.Identity `json:"user1"`
	User2              domain.Identity `json:"user2"`
	CompatibilityScore int             `json:"compatibilityScore"`
	CreatedAt          time.Time       `json:"createdAt"`
}

// NewMatch builds a match for the unordered pair {a, b}.
func NewMatch(a, b domain.Identity, score int, at time.Time) Match {
	u1, u2 := domain.Pair(a, b)
	return Match{User1: u1, User2: u2, CompatibilityScore: score, CreatedAt: at}
}

// Involves reports whether id is one side of the match.
func (m Match) Involves(id domain.Identity) bool {
	return m.User1 == id || m.User2 == id
}

// Other returns the side of the match that is not id.
func (m Match) Other(id domain.Identity) domain.Identity {
	if m.User1 == id {
		return m.User2
	}
	return m.User1
}

// AcceptResult reports the outcome of accepting an interest. MatchCreated is
// false when the pair was already matched and the existing match was kept.
type AcceptResult struct {
	Interest     Interest
	Match        Match
	MatchCreated bool
}

// CheckRespond applies the answer preconditions to a loaded interest:
// the actor must be the recipient and the interest must still be pending.
func CheckRespond(in Interest, actor domain.Identity) error {
	if in.Recipient != actor {
		return ErrNotRecipient
	}
	if in.Status != InterestPending {
		return ErrInterestNotPending
	}
	return nil
}

// ValidScore reports whether score lies within the compatibility scale.
func ValidScore(score int) bool {
	return score >= 0 && score <= 100
}
