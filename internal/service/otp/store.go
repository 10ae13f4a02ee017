package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store holds one active OTP per email. A second Set overwrites the prior
// code; Verify consumes the code on success.
type Store interface {
	Set(ctx context.Context, email, code string, ttl time.Duration) error
	Verify(ctx context.Context, email, code string) (bool, error)
}

// RedisStore keeps OTPs in Redis with a per-key TTL so the auth service can
// scale horizontally.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func otpKey(email string) string {
	return "otp:" + email
}

func (s *RedisStore) Set(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, otpKey(email), code, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}
	return nil
}

// verifyScript compares and deletes in one step. A separate GET then DEL
// would let two concurrent verifies both consume the same code.
var verifyScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	redis.call("DEL", KEYS[1])
	return 1
end
return 0
`)

// Verify returns true and deletes the entry iff the stored code matches and
// has not expired. A mismatch leaves the stored code in place.
func (s *RedisStore) Verify(ctx context.Context, email, code string) (bool, error) {
	res, err := verifyScript.Run(ctx, s.rdb, []string{otpKey(email)}, code).Int()
	if err != nil {
		return false, fmt.Errorf("failed to verify otp: %w", err)
	}
	return res == 1, nil
}

// GenerateCode returns a 6-digit numeric code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
