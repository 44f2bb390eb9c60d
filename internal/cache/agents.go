package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/support-desk/internal/domain"
)

const (
	agentsKey        = "support-desk:agents:active"
	agentsVersionKey = "support-desk:agents:version"
)

// cachedAgent is the stored form of an agent; it never carries the password hash.
type cachedAgent struct {
	ID        int64             `json:"id"`
	Name      string            `json:"nombre"`
	Email     string            `json:"correo"`
	Role      domain.Role       `json:"rol"`
	Status    domain.UserStatus `json:"estado"`
	CreatedAt time.Time         `json:"fecha_creacion"`
}

type agentsEntry struct {
	Version int64         `json:"version"`
	Agents  []cachedAgent `json:"agents"`
}

// AgentCache keeps the active support agent list in Redis. Every
// invalidation bumps a version counter; a list is only stored while the
// version it was loaded under is still current.
type AgentCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAgentCache builds a cache with the given entry lifetime.
func NewAgentCache(client *redis.Client, ttl time.Duration) *AgentCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &AgentCache{client: client, ttl: ttl}
}

// Get returns the cached list and the current version. ok is false on a
// miss; the version is still valid and should be passed to Set.
func (c *AgentCache) Get(ctx context.Context) (agents []domain.User, version int64, ok bool, err error) {
	vals, err := c.client.MGet(ctx, agentsVersionKey, agentsKey).Result()
	if err != nil {
		return nil, 0, false, err
	}
	version, err = parseVersion(vals[0])
	if err != nil {
		return nil, 0, false, err
	}
	raw, isString := vals[1].(string)
	if !isString {
		return nil, version, false, nil
	}

	var entry agentsEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, version, false, err
	}
	if entry.Version != version {
		return nil, version, false, nil
	}
	agents = make([]domain.User, 0, len(entry.Agents))
	for _, a := range entry.Agents {
		agents = append(agents, domain.User{
			ID:        a.ID,
			Name:      a.Name,
			Email:     a.Email,
			Role:      a.Role,
			Status:    a.Status,
			CreatedAt: a.CreatedAt,
		})
	}
	return agents, version, true, nil
}

// Set stores agents as loaded under version. The write is skipped when an
// invalidation happened since that version was read.
func (c *AgentCache) Set(ctx context.Context, version int64, agents []domain.User) error {
	entry := agentsEntry{Version: version, Agents: make([]cachedAgent, 0, len(agents))}
	for _, a := range agents {
		entry.Agents = append(entry.Agents, cachedAgent{
			ID:        a.ID,
			Name:      a.Name,
			Email:     a.Email,
			Role:      a.Role,
			Status:    a.Status,
			CreatedAt: a.CreatedAt,
		})
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, agentsVersionKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, agentsKey, raw, c.ttl)
			return nil
		})
		return err
	}, agentsVersionKey)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

// Invalidate drops the cached list and bumps the version.
func (c *AgentCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, agentsVersionKey)
		pipe.Del(ctx, agentsKey)
		return nil
	})
	return err
}

func parseVersion(v any) (int64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}
