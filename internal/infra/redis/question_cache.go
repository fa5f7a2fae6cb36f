package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"timed-quiz-service/internal/domain"
)

// DefaultKey is where the question set is cached.
const DefaultKey = "quiz:questions"

// QuestionLoader fetches the question set from a backing store (e.g., Postgres).
type QuestionLoader interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// QuestionCache caches the full question set as one JSON value and falls back to a loader on miss.
// Concurrent misses share a single load. Redis errors degrade to the loader instead of failing.
type QuestionCache struct {
	client *redis.Client
	loader QuestionLoader
	key    string
	ttl    time.Duration
	log    zerolog.Logger
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionCache(client *redis.Client, loader QuestionLoader, ttl time.Duration, log zerolog.Logger) *QuestionCache {
	return &QuestionCache{
		client: client,
		loader: loader,
		key:    DefaultKey,
		ttl:    ttl,
		log:    log.With().Str("component", "question_cache").Logger(),
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	if questions, ok := c.cached(ctx); ok {
		return questions, nil
	}

	result, err, _ := c.sf.Do(c.key, func() (interface{}, error) {
		// Another caller may have filled the cache while we waited.
		if questions, ok := c.cached(ctx); ok {
			return questions, nil
		}

		questions, err := c.loader.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}
		c.store(ctx, questions)
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	shared := result.([]domain.Question)
	out := make([]domain.Question, len(shared))
	copy(out, shared)
	return out, nil
}

// Invalidate drops the cached set so the next load reads through.
func (c *QuestionCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}

func (c *QuestionCache) cached(ctx context.Context) ([]domain.Question, bool) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Msg("cache read failed")
		}
		return nil, false
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil || len(questions) == 0 {
		c.log.Warn().Err(err).Msg("discarding unreadable cache entry")
		return nil, false
	}
	return questions, true
}

func (c *QuestionCache) store(ctx context.Context, questions []domain.Question) {
	raw, err := json.Marshal(questions)
	if err != nil {
		c.log.Warn().Err(err).Msg("encode questions for cache")
		return
	}
	if err := c.client.Set(ctx, c.key, raw, c.ttlWithJitter()).Err(); err != nil {
		c.log.Warn().Err(err).Msg("cache write failed")
	}
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
