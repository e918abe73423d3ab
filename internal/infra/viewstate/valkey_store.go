package viewstate

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/billing-dashboard/internal/domain/billing"
)

// ValkeyStore shares view generations across service instances.
type ValkeyStore struct {
	client valkey.Client
	prefix string
	ttl    time.Duration
}

// NewValkeyStore constructs a store backed by Valkey. Keys idle for ttl expire.
func NewValkeyStore(client valkey.Client, prefix string, ttl time.Duration) *ValkeyStore {
	if prefix == "" {
		prefix = "billing"
	}
	return &ValkeyStore{client: client, prefix: prefix, ttl: ttl}
}

// Begin increments and returns the view's generation.
func (s *ValkeyStore) Begin(ctx context.Context, viewKey string) (uint64, error) {
	key := s.key(viewKey)
	generation, err := s.client.Do(ctx, s.client.B().Incr().Key(key).Build()).AsInt64()
	if err != nil {
		return 0, err
	}
	if s.ttl > 0 {
		ttl := s.ttl
		if ttl < time.Second {
			ttl = time.Second
		}
		_ = s.client.Do(ctx, s.client.B().Expire().Key(key).Seconds(int64(ttl.Seconds())).Build()).Error()
	}
	return uint64(generation), nil
}

// Current reads the view's generation; an absent key is generation zero.
func (s *ValkeyStore) Current(ctx context.Context, viewKey string) (uint64, error) {
	generation, err := s.client.Do(ctx, s.client.B().Get().Key(s.key(viewKey)).Build()).AsInt64()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return 0, nil
		}
		return 0, err
	}
	return uint64(generation), nil
}

func (s *ValkeyStore) key(viewKey string) string {
	return fmt.Sprintf("%s:view:%s", s.prefix, viewKey)
}

var _ billing.ViewTracker = (*ValkeyStore)(nil)
