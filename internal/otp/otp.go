// Package otp holds single-use, time-boxed verification codes keyed by the
// contact channel they were sent to. A record is the only durable state
// between "unverified registration intent" and "identity exists", so it
// carries everything needed to materialize the identity later.
package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// Channel identifies which contact path a code is bound to.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPhone Channel = "phone"
)

// Record is one live code. ExpiresAt is the logical expiry, checked at
// verification time; the store additionally evicts the record physically
// once its TTL lapses, so an expired record may simply be gone.
type Record struct {
	FullName  string    `json:"full_name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Code      string    `json:"code"`
	Channel   Channel   `json:"channel"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Key returns the identifying value for the record's channel.
func (r Record) Key() string {
	if r.Channel == ChannelPhone {
		return r.Phone
	}
	return r.Email
}

// Store is the contract for OTP persistence. At most one live record exists
// per (channel, key): Issue deletes any prior record first, so creation
// always succeeds and a superseded code can never verify again.
type Store interface {
	Issue(ctx context.Context, rec Record, ttl time.Duration) error
	Find(ctx context.Context, channel Channel, key string) (Record, bool, error)
	Consume(ctx context.Context, channel Channel, key string) error
}

// codeSpan covers the six-digit range [100000, 999999].
const (
	codeMin  = 100000
	codeSpan = 900000
)

// GenerateCode returns a uniform random 6-digit decimal code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", fmt.Errorf("otp: generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}

// NormalizeEmail lowercases and trims an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
