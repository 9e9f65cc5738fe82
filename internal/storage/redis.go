package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shahmeerabdul/GIKomplain/internal/models"
)

const (
	revokedTokenPrefix = "revoked_token:"
	// AllComplaintsChannel receives every complaint event.
	AllComplaintsChannel = "complaints:all"
)

// ComplaintChannel is the pub/sub channel of one complaint.
func ComplaintChannel(id string) string {
	return "complaint:" + id
}

// TokenDenyList remembers revoked token ids until they would have expired.
type TokenDenyList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// Cache is a byte cache with per-key TTL. A miss is (nil, false, nil).
type Cache interface {
	CacheGet(ctx context.Context, key string) ([]byte, bool, error)
	CacheSet(ctx context.Context, key string, value []byte, ttl time.Duration) error
	CacheDelete(ctx context.Context, key string) error
}

// EventBus carries complaint events between API instances.
type EventBus interface {
	PublishEvent(ctx context.Context, ev models.ComplaintEvent) error
	// SubscribeComplaint streams the events of one complaint until cancel is
	// called or ctx ends. The channel is closed afterwards.
	SubscribeComplaint(ctx context.Context, complaintID string) (<-chan models.ComplaintEvent, func(), error)
}

var (
	_ TokenDenyList = (*Service)(nil)
	_ Cache         = (*Service)(nil)
	_ EventBus      = (*Service)(nil)
)

// RevokeToken stores jti until ttl elapses.
func (s *Service) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if s.Redis == nil {
		return ErrUnavailable
	}
	if ttl <= 0 {
		return nil
	}
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.Redis.Set(ctx, revokedTokenPrefix+jti, "1", ttl).Err()
	})
	if err != nil {
		s.log.Error().Err(err).Msg("failed to revoke token")
	}
	return err
}

// IsTokenRevoked reports whether jti was revoked. Without Redis nothing is
// ever revoked.
func (s *Service) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	if s.Redis == nil {
		return false, nil
	}
	res, err := s.cb.Execute(func() (interface{}, error) {
		return s.Redis.Exists(ctx, revokedTokenPrefix+jti).Result()
	})
	if err != nil {
		return false, err
	}
	return res.(int64) > 0, nil
}

func (s *Service) CacheGet(ctx context.Context, key string) ([]byte, bool, error) {
	if s.Redis == nil {
		return nil, false, nil
	}
	res, err := s.cb.Execute(func() (interface{}, error) {
		b, err := s.Redis.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return []byte(nil), nil
		}
		return b, err
	})
	if err != nil {
		return nil, false, err
	}
	b := res.([]byte)
	return b, b != nil, nil
}

func (s *Service) CacheSet(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.Redis == nil {
		return nil
	}
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.Redis.Set(ctx, key, value, ttl).Err()
	})
	return err
}

func (s *Service) CacheDelete(ctx context.Context, key string) error {
	if s.Redis == nil {
		return nil
	}
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.Redis.Del(ctx, key).Err()
	})
	return err
}

// PublishEvent sends ev to the complaint's channel and to AllComplaintsChannel.
func (s *Service) PublishEvent(ctx context.Context, ev models.ComplaintEvent) error {
	if s.Redis == nil {
		return ErrUnavailable
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = s.cb.Execute(func() (interface{}, error) {
		pipe := s.Redis.Pipeline()
		pipe.Publish(ctx, ComplaintChannel(ev.ComplaintID), payload)
		pipe.Publish(ctx, AllComplaintsChannel, payload)
		_, err := pipe.Exec(ctx)
		return nil, err
	})
	if err != nil {
		s.log.Error().Err(err).Str("complaint_id", ev.ComplaintID).Msg("failed to publish event")
	}
	return err
}

func (s *Service) SubscribeComplaint(ctx context.Context, complaintID string) (<-chan models.ComplaintEvent, func(), error) {
	if s.Redis == nil {
		return nil, nil, ErrUnavailable
	}
	ps := s.Redis.Subscribe(ctx, ComplaintChannel(complaintID))
	// Wait for the subscription to be confirmed so no event is missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, err
	}

	out := make(chan models.ComplaintEvent, 16)
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		defer close(out)
		defer ps.Close()
		ch := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev models.ComplaintEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					s.log.Warn().Err(err).Str("channel", msg.Channel).Msg("dropping malformed event")
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, cancel, nil
}
