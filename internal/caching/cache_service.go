package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"trainhub/internal/models"
)

// ErrCacheMiss is returned when a key is absent; callers fall through to the
// store.
var ErrCacheMiss = errors.New("cache miss")

type CacheService interface {
	// Company caching
	GetCompany(ctx context.Context, companyID uuid.UUID) (*models.Company, error)
	SetCompany(ctx context.Context, company *models.Company, ttl time.Duration) error
	DeleteCompany(ctx context.Context, companyID uuid.UUID) error

	// Profile caching
	GetProfile(ctx context.Context, profileID uuid.UUID) (*models.Profile, error)
	SetProfile(ctx context.Context, profile *models.Profile, ttl time.Duration) error
	DeleteProfile(ctx context.Context, profileID uuid.UUID) error

	// Session management
	SetSession(ctx context.Context, sessionID, profileID string, ttl time.Duration) error
	GetSession(ctx context.Context, sessionID string) (string, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Rate limiting (signup abuse control)
	IsRateLimited(ctx context.Context, key string, limit int) (bool, error)
	IncrementRateLimit(ctx context.Context, key string, window time.Duration) error

	// Generic string operations
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisCacheService{client: client}
}

func companyKey(id uuid.UUID) string { return fmt.Sprintf("trainhub:company:%s", id) }
func profileKey(id uuid.UUID) string { return fmt.Sprintf("trainhub:profile:%s", id) }
func sessionKey(id string) string    { return fmt.Sprintf("trainhub:session:%s", id) }
func rateKey(key string) string      { return fmt.Sprintf("trainhub:ratelimit:%s", key) }

func (r *redisCacheService) GetCompany(ctx context.Context, companyID uuid.UUID) (*models.Company, error) {
	data, err := r.client.Get(ctx, companyKey(companyID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	company := &models.Company{}
	if err := json.Unmarshal(data, company); err != nil {
		return nil, err
	}
	return company, nil
}

func (r *redisCacheService) SetCompany(ctx context.Context, company *models.Company, ttl time.Duration) error {
	data, err := json.Marshal(company)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, companyKey(company.ID), data, ttl).Err()
}

func (r *redisCacheService) DeleteCompany(ctx context.Context, companyID uuid.UUID) error {
	return r.client.Del(ctx, companyKey(companyID)).Err()
}

func (r *redisCacheService) GetProfile(ctx context.Context, profileID uuid.UUID) (*models.Profile, error) {
	data, err := r.client.Get(ctx, profileKey(profileID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	profile := &models.Profile{}
	if err := json.Unmarshal(data, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *redisCacheService) SetProfile(ctx context.Context, profile *models.Profile, ttl time.Duration) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, profileKey(profile.ID), data, ttl).Err()
}

func (r *redisCacheService) DeleteProfile(ctx context.Context, profileID uuid.UUID) error {
	return r.client.Del(ctx, profileKey(profileID)).Err()
}

func (r *redisCacheService) SetSession(ctx context.Context, sessionID, profileID string, ttl time.Duration) error {
	return r.client.Set(ctx, sessionKey(sessionID), profileID, ttl).Err()
}

func (r *redisCacheService) GetSession(ctx context.Context, sessionID string) (string, error) {
	val, err := r.client.Get(ctx, sessionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return val, err
}

func (r *redisCacheService) DeleteSession(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, sessionKey(sessionID)).Err()
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int) (bool, error) {
	count, err := r.client.Get(ctx, rateKey(key)).Int()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return count >= limit, nil
}

func (r *redisCacheService) IncrementRateLimit(ctx context.Context, key string, window time.Duration) error {
	pipe := r.client.TxPipeline()
	pipe.Incr(ctx, rateKey(key))
	pipe.Expire(ctx, rateKey(key), window)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return val, err
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
