package ratelimit

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/richxcame/waste-chat/pkg/config"
)

// tokenBucketScript refills the bucket for the elapsed time, then takes one token.
// Returns {allowed, tokens, retry_after_seconds, reset_after_seconds}.
const tokenBucketScript = `
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local state = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(state[1])
local ts = tonumber(state[2])
if tokens == nil or ts == nil then
  tokens = capacity
  ts = now
end

tokens = math.min(capacity, tokens + math.max(0, now - ts) * rate)

local allowed = 0
local retry = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
else
  retry = (1 - tokens) / rate
end

redis.call("HSET", KEYS[1], "tokens", tostring(tokens), "ts", tostring(now))
redis.call("EXPIRE", KEYS[1], ttl)

return {allowed, tostring(tokens), tostring(retry), tostring((capacity - tokens) / rate)}
`

// Rule is a token bucket: Limit tokens per Window plus Burst extra capacity.
type Rule struct {
	Limit  int
	Burst  int
	Window time.Duration
}

// Result describes one rate limit decision.
type Result struct {
	Allowed    bool
	Remaining  int
	Limit      int
	Window     time.Duration
	RetryAfter time.Duration
	ResetAfter time.Duration
	Key        string
}

// Limiter is a Redis-backed token bucket shared by every server instance.
type Limiter struct {
	client redis.Scripter
	script *redis.Script
	cfg    config.RateLimitConfig
	now    func() time.Time
}

// NewLimiter creates a limiter storing buckets in client.
func NewLimiter(client redis.Scripter, cfg config.RateLimitConfig) *Limiter {
	return &Limiter{
		client: client,
		script: redis.NewScript(tokenBucketScript),
		cfg:    cfg,
		now:    time.Now,
	}
}

// WithNow replaces the clock.
func (l *Limiter) WithNow(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// ScriptHash returns the SHA1 the bucket script is invoked by.
func (l *Limiter) ScriptHash() string {
	return l.script.Hash()
}

// Rule returns the configured rule.
func (l *Limiter) Rule() Rule {
	burst := l.cfg.Burst
	if burst < 0 {
		burst = 0
	}
	return Rule{Limit: l.cfg.Limit, Burst: burst, Window: l.cfg.Window()}
}

// Allow takes one token from identity's bucket.
// A disabled limiter or a non-positive limit always allows.
func (l *Limiter) Allow(ctx context.Context, identity string) (Result, error) {
	rule := l.Rule()
	result := Result{
		Allowed:   true,
		Remaining: rule.Limit,
		Limit:     rule.Limit,
		Window:    rule.Window,
		Key:       identity,
	}
	if !l.cfg.Enabled || rule.Limit <= 0 {
		return result, nil
	}

	capacity := float64(rule.Limit + rule.Burst)
	rate := float64(rule.Limit) / rule.Window.Seconds()
	ttl := int(math.Ceil(capacity/rate)) + 1
	now := float64(l.now().UnixNano()) / float64(time.Second)

	raw, err := l.script.Run(ctx, l.client, []string{l.key(identity)},
		formatFloat(capacity), formatFloat(rate), formatFloat(now), ttl,
	).Slice()
	if err != nil {
		return result, fmt.Errorf("rate limit script: %w", err)
	}
	if len(raw) != 4 {
		return result, fmt.Errorf("rate limit script: unexpected reply %v", raw)
	}

	result.Allowed = toInt(raw[0]) == 1
	result.Remaining = int(math.Floor(toFloat(raw[1])))
	result.RetryAfter = seconds(toFloat(raw[2]))
	result.ResetAfter = seconds(toFloat(raw[3]))
	return result, nil
}

func (l *Limiter) key(identity string) string {
	if l.cfg.RedisPrefix == "" {
		return identity
	}
	return l.cfg.RedisPrefix + ":" + identity
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 10, 64)
}

func toInt(v interface{}) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
