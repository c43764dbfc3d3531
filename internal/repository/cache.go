package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/deppfellow/bctw-api/internal/model"
)

// CodeCache holds pages of codes keyed by user, header and page. get_code
// decides per user what is visible, so a page is never shared between users.
// Implementations swallow their own failures: a broken cache degrades to a
// miss.
type CodeCache interface {
	Get(ctx context.Context, user, header string, page int) ([]model.Code, bool)
	Set(ctx context.Context, user, header string, page int, codes []model.Code)
	// Invalidate drops every user's pages of the given headers, or of all
	// headers when none are given.
	Invalidate(ctx context.Context, headers ...string)
}

const codeKeyPrefix = "bctw:codes:"

func codeKey(user, header string, page int) string {
	return fmt.Sprintf("%s%s:%s:%d", codeKeyPrefix, user, header, page)
}

// codeHeaderPattern matches the pages of header for every user.
func codeHeaderPattern(header string) string {
	return codeKeyPrefix + "*:" + globEscaper.Replace(header) + ":*"
}

var globEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

type RedisCodeCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zerolog.Logger
}

func NewRedisCodeCache(client *redis.Client, ttl time.Duration, logger *zerolog.Logger) *RedisCodeCache {
	return &RedisCodeCache{client: client, ttl: ttl, logger: logger}
}

func (c *RedisCodeCache) Get(ctx context.Context, user, header string, page int) ([]model.Code, bool) {
	raw, err := c.client.Get(ctx, codeKey(user, header, page)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("code_header", header).Msg("code cache read failed")
		}
		return nil, false
	}

	var codes []model.Code
	if err := json.Unmarshal(raw, &codes); err != nil {
		c.logger.Warn().Err(err).Str("code_header", header).Msg("discarding malformed cached codes")
		return nil, false
	}
	return codes, true
}

func (c *RedisCodeCache) Set(ctx context.Context, user, header string, page int, codes []model.Code) {
	raw, err := json.Marshal(codes)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, codeKey(user, header, page), raw, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("code_header", header).Msg("code cache write failed")
	}
}

func (c *RedisCodeCache) Invalidate(ctx context.Context, headers ...string) {
	patterns := []string{codeKeyPrefix + "*"}
	if len(headers) > 0 {
		patterns = patterns[:0]
		for _, h := range headers {
			patterns = append(patterns, codeHeaderPattern(h))
		}
	}

	var keys []string
	for _, pattern := range patterns {
		iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			c.logger.Warn().Err(err).Str("pattern", pattern).Msg("code cache scan failed")
			return
		}
	}
	if len(keys) == 0 {
		return
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn().Err(err).Int("keys", len(keys)).Msg("code cache invalidation failed")
	}
}
