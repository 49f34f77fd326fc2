package platform

import (
	"context"

	"jobmatrimony/access"
	"jobmatrimony/domain"
	"jobmatrimony/events"
	"jobmatrimony/messaging"
)

func (s *Service) SendMessage(ctx context.Context, caller, to domain.Identity, content string) (messaging.Message, error) {
	m, err := call(ctx, s, caller, access.OpSendMessage, exclusive, func(access.Role) (messaging.Message, error) {
		return s.messages.Send(ctx, caller, to, content)
	})
	if err != nil {
		return messaging.Message{}, err
	}
	s.emit(ctx, events.New(events.TypeMessageSent, caller, m.Timestamp, map[string]any{
		"messageId": m.ID,
		"to":        m.To.String(),
	}))
	return m, nil
}

// GetMessages returns the conversation between a and b. Only the two
// participants and admins may read it.
func (s *Service) GetMessages(ctx context.Context, caller, a, b domain.Identity) ([]messaging.Message, error) {
	return call(ctx, s, caller, access.OpReadMessages, shared, func(role access.Role) ([]messaging.Message, error) {
		if caller != a && caller != b && role != access.RoleAdmin {
			return nil, ErrNotOwner
		}
		return s.messages.Between(ctx, a, b)
	})
}

func (s *Service) GetCallerMessages(ctx context.Context, caller, other domain.Identity) ([]messaging.Message, error) {
	return call(ctx, s, caller, access.OpReadMessages, shared, func(access.Role) ([]messaging.Message, error) {
		return s.messages.Between(ctx, caller, other)
	})
}
