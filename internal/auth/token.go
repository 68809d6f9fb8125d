// Package auth provides the signed session-token codec, session cookie
// handling, and the authentication middleware.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// DefaultTTL is how long an issued session token stays valid.
const DefaultTTL = 365 * 24 * time.Hour

// Codec issues and verifies self-contained session tokens of the form
//
//	user_id:expiry_unix:signature
//
// where signature = HMAC-SHA256(secret, "user_id:expiry_unix") hex-encoded.
// Tokens are stateless: there is no server-side session store and no
// revocation list. Callers must re-fetch the user by id after Verify so a
// deleted account is locked out even while its signature is still valid.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time // injectable clock for testing
}

// NewCodec creates a Codec signing with secret. A zero ttl falls back to
// DefaultTTL.
func NewCodec(secret string, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Codec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL returns the configured token lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue creates a signed token for userID expiring ttl from now.
func (c *Codec) Issue(userID string) string {
	expiresAt := c.now().Unix() + int64(c.ttl/time.Second)
	payload := userID + ":" + strconv.FormatInt(expiresAt, 10)
	return payload + ":" + c.sign(payload)
}

// Verify checks the token structure, signature, and expiry. It returns the
// embedded user id only when all checks pass. The signature comparison is
// constant-time.
func (c *Codec) Verify(token string) (string, bool) {
	parts := strings.Split(token, ":")
	if len(parts) != 3 {
		return "", false
	}

	userID, expiryField, signature := parts[0], parts[1], parts[2]
	expected := c.sign(userID + ":" + expiryField)
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return "", false
	}

	expiresAt, err := strconv.ParseInt(expiryField, 10, 64)
	if err != nil {
		return "", false
	}
	if expiresAt < c.now().Unix() {
		return "", false
	}

	return userID, true
}

func (c *Codec) sign(payload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
