package matrimony

import (
	"fmt"

	"jobmatrimony/domain"
)

var (
	ErrInterestNotFound        = fmt.Errorf("matrimony: interest not found: %w", domain.ErrNotFound)
	ErrNotRecipient            = fmt.Errorf("matrimony: only the recipient may respond: %w", domain.ErrUnauthorized)
	ErrInterestNotPending      = fmt.Errorf("matrimony: interest is not pending: %w", domain.ErrInvalidState)
	ErrSelfInterest            = fmt.Errorf("matrimony: cannot send interest to self: %w", domain.ErrConflict)
	ErrDuplicateInterest       = fmt.Errorf("matrimony: pending interest already exists: %w", domain.ErrConflict)
	ErrRecipientWithoutProfile = fmt.Errorf("matrimony: recipient has no matrimonial profile: %w", domain.ErrConflict)
	ErrRecipientRequired       = fmt.Errorf("matrimony: recipient required: %w", domain.ErrInvalidInput)
	ErrMatchExists             = fmt.Errorf("matrimony: pair already matched: %w", domain.ErrConflict)
	ErrInvalidMatch            = fmt.Errorf("matrimony: invalid match: %w", domain.ErrInvalidInput)
)
