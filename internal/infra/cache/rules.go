package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/m04kA/SMC-BeautyBooking/internal/domain"
	"github.com/m04kA/SMC-BeautyBooking/pkg/types"
)

const (
	rulesKeyPrefix   = "availability:rules:"
	versionKeyPrefix = "availability:rules-version:"

	// DefaultTTL время жизни правил в кэше по умолчанию
	DefaultTTL = 5 * time.Minute
)

// setIfVersion записывает правила, только если версия мастера не менялась с момента чтения.
// KEYS[1] - правила, KEYS[2] - версия; ARGV: версия, данные, TTL в миллисекундах.
var setIfVersion = redis.NewScript(`
if (redis.call("GET", KEYS[2]) or "0") ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

// RulesCache кэш списка правил доступности мастера в redis.
// Каждая инвалидация увеличивает версию мастера, и запись с устаревшей версией отбрасывается.
type RulesCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRulesCache создает кэш правил
func NewRulesCache(client redis.Cmdable, ttl time.Duration) *RulesCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RulesCache{client: client, ttl: ttl}
}

type cachedRule struct {
	ID         int64            `json:"id"`
	ProviderID int64            `json:"providerId"`
	DayOfWeek  int              `json:"dayOfWeek"`
	StartTime  types.TimeString `json:"startTime"`
	EndTime    types.TimeString `json:"endTime"`
	IsActive   bool             `json:"isActive"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

func rulesKey(providerID int64) string {
	return fmt.Sprintf("%s%d", rulesKeyPrefix, providerID)
}

func versionKey(providerID int64) string {
	return fmt.Sprintf("%s%d", versionKeyPrefix, providerID)
}

// GetRules возвращает правила мастера и текущую версию.
// При промахе возвращается ErrCacheMiss вместе с версией, которую нужно передать в SetRules.
func (c *RulesCache) GetRules(ctx context.Context, providerID int64) ([]*domain.AvailabilityRule, int64, error) {
	var rulesCmd, versionCmd *redis.StringCmd
	_, err := c.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		rulesCmd = p.Get(ctx, rulesKey(providerID))
		versionCmd = p.Get(ctx, versionKey(providerID))
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, fmt.Errorf("%w: get: %v", ErrCache, err)
	}

	version, err := versionCmd.Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, fmt.Errorf("%w: version: %v", ErrCache, err)
	}

	data, err := rulesCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, version, ErrCacheMiss
	}
	if err != nil {
		return nil, 0, fmt.Errorf("%w: get: %v", ErrCache, err)
	}

	rules, err := decodeRules(data)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: decode: %v", ErrCache, err)
	}
	return rules, version, nil
}

// SetRules сохраняет правила мастера с TTL, если версия совпадает с прочитанной в GetRules.
// Если правила изменились после чтения, возвращает ErrStaleVersion и ничего не пишет.
func (c *RulesCache) SetRules(ctx context.Context, providerID, version int64, rules []*domain.AvailabilityRule) error {
	data, err := encodeRules(rules)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrCache, err)
	}

	applied, err := setIfVersion.Run(ctx, c.client,
		[]string{rulesKey(providerID), versionKey(providerID)},
		strconv.FormatInt(version, 10), data, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return fmt.Errorf("%w: set: %v", ErrCache, err)
	}
	if applied == 0 {
		return ErrStaleVersion
	}
	return nil
}

// Invalidate удаляет правила мастера из кэша и увеличивает его версию
func (c *RulesCache) Invalidate(ctx context.Context, providerID int64) error {
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, versionKey(providerID))
		p.Del(ctx, rulesKey(providerID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: invalidate: %v", ErrCache, err)
	}
	return nil
}

func encodeRules(rules []*domain.AvailabilityRule) ([]byte, error) {
	out := make([]cachedRule, 0, len(rules))
	for _, r := range rules {
		out = append(out, cachedRule{
			ID:         r.ID,
			ProviderID: r.ProviderID,
			DayOfWeek:  int(r.DayOfWeek),
			StartTime:  r.StartTime,
			EndTime:    r.EndTime,
			IsActive:   r.IsActive,
			CreatedAt:  r.CreatedAt,
			UpdatedAt:  r.UpdatedAt,
		})
	}
	return json.Marshal(out)
}

func decodeRules(data []byte) ([]*domain.AvailabilityRule, error) {
	var in []cachedRule
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}

	rules := make([]*domain.AvailabilityRule, 0, len(in))
	for _, r := range in {
		rules = append(rules, &domain.AvailabilityRule{
			ID:         r.ID,
			ProviderID: r.ProviderID,
			DayOfWeek:  time.Weekday(r.DayOfWeek),
			StartTime:  r.StartTime,
			EndTime:    r.EndTime,
			IsActive:   r.IsActive,
			CreatedAt:  r.CreatedAt,
			UpdatedAt:  r.UpdatedAt,
		})
	}
	return rules, nil
}
