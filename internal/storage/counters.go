package storage

import (
	"errors"

	"github.com/redis/go-redis/v9"
)

func unreadKey(chatID string) string { return "chat:unread:" + chatID }

// IncrementUnread bumps the per-chat unread counter in Redis.
func (s *Service) IncrementUnread(chatID string) error {
	return s.Redis.Incr(s.Ctx, unreadKey(chatID)).Err()
}

// GetUnreadCount returns the per-chat unread counter. A missing key counts
// as zero.
func (s *Service) GetUnreadCount(chatID string) (int64, error) {
	n, err := s.Redis.Get(s.Ctx, unreadKey(chatID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

// ResetUnread clears the per-chat unread counter.
func (s *Service) ResetUnread(chatID string) error {
	return s.Redis.Del(s.Ctx, unreadKey(chatID)).Err()
}
