package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix  = "session:"
	DefaultSessionTTL = 1 * time.Hour
)

// Store keeps checkpoints of running sessions so a reloaded page, or a
// restarted server, can resume them
type Store interface {
	SaveSession(ctx context.Context, session *SessionData) error
	GetSession(ctx context.Context, sessionID string) (*SessionData, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// SessionData is the serializable checkpoint of a running game
type SessionData struct {
	ID             string       `json:"id"`
	GridSize       int          `json:"gridSize"`
	CurrentPlayer  int          `json:"currentPlayer"`
	FlipCount      int          `json:"flipCount"`
	ElapsedSeconds int          `json:"elapsedSeconds"`
	Players        []PlayerData `json:"players"`
	Cards          []CardData   `json:"cards"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// PlayerData is the serializable player state
type PlayerData struct {
	Name       string `json:"name"`
	Score      int    `json:"score"`
	BonusRound bool   `json:"bonusRound"`
}

// CardData is the serializable card state
type CardData struct {
	Face    string `json:"face"`
	FaceUp  bool   `json:"faceUp"`
	Removed bool   `json:"removed"`
}

// RedisStore implements Store using Redis
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to the Redis instance at redisURL (redis://host:port/db)
func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// SaveSession writes the checkpoint and refreshes its TTL
func (s *RedisStore) SaveSession(ctx context.Context, session *SessionData) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(session.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// GetSession returns nil, nil when no checkpoint exists
func (s *RedisStore) GetSession(ctx context.Context, sessionID string) (*SessionData, error) {
	data, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session SessionData
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// DeleteSession removes the checkpoint
func (s *RedisStore) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

// MemoryStore implements Store using in-memory maps (for testing/simple deployments)
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*SessionData
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*SessionData),
	}
}

func (s *MemoryStore) SaveSession(ctx context.Context, session *SessionData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = session
	return nil
}

func (s *MemoryStore) GetSession(ctx context.Context, sessionID string) (*SessionData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sessions[sessionID], nil
}

func (s *MemoryStore) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}

// Len returns the number of stored checkpoints
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
