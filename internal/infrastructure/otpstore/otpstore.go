package otpstore

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "otp:"

// Store keeps short-lived one-time codes keyed by contact identifier.
// Backed by Redis so codes survive restarts and are shared across instances.
type Store struct {
	Rdb *redis.Client
	TTL time.Duration
}

// GenerateCode returns a random 6-digit code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Put stores code for contact, replacing any previous code and resetting expiry.
func (s *Store) Put(ctx context.Context, contact, code string) error {
	return s.Rdb.Set(ctx, keyPrefix+contact, code, s.TTL).Err()
}

// Verify consumes the code for contact. A stored code is single-use: it is
// removed whether or not it matched, so a correct retry after a wrong guess
// requires a fresh code.
func (s *Store) Verify(ctx context.Context, contact, code string) (bool, error) {
	stored, err := s.Rdb.GetDel(ctx, keyPrefix+contact).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return stored == code, nil
}
