package messaging

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobmatrimony/domain"
	"jobmatrimony/logging"
)

type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
	idGen  func() string
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		logger: logger.Named("messaging"),
		now:    time.Now,
		idGen:  func() string { return uuid.NewString() },
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) WithIDGenerator(gen func() string) *Service {
	s.idGen = gen
	return s
}

// Send appends a message from one identity to another. Messaging oneself is
// allowed. Content is stored trimmed and the rune limit applies to the
// trimmed text.
func (s *Service) Send(ctx context.Context, from, to domain.Identity, content string) (Message, error) {
	m := Message{
		ID:        s.idGen(),
		From:      domain.Identity(strings.TrimSpace(string(from))),
		To:        domain.Identity(strings.TrimSpace(string(to))),
		Content:   strings.TrimSpace(content),
		Timestamp: s.now().UTC(),
	}
	if err := domain.Validate(m); err != nil {
		return Message{}, err
	}

	stored, err := s.repo.Append(ctx, m)
	if err != nil {
		return Message{}, err
	}
	s.logger.Debug("message appended",
		zap.String("message_id", stored.ID),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
		zap.String("preview", logging.Truncate(stored.Content, 32)),
	)
	return stored, nil
}

// Between returns the conversation of the unordered pair {a, b}.
func (s *Service) Between(ctx context.Context, a, b domain.Identity) ([]Message, error) {
	if a.IsAnonymous() || b.IsAnonymous() {
		return nil, ErrParticipantRequired
	}
	return s.repo.ListBetween(ctx, a, b)
}
