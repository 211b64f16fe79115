package license

import (
	"crypto/rand"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	keyAlphabet  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	keyGroups    = 4
	keyGroupSize = 4
)

// MaxKeyAttempts bounds regeneration after a uniqueness conflict
const MaxKeyAttempts = 5

// largest multiple of 36 that fits in a byte; bytes above it are rejected
const keyByteLimit = 252

var generatedKeyPattern = regexp.MustCompile(`^[0-9A-Z]{4}(-[0-9A-Z]{4}){3}$`)

// ErrKeySpaceExhausted is returned when every generated key collided
var ErrKeySpaceExhausted = errors.New("license key generation exhausted its retries")

// KeyGenerator produces candidate license keys
type KeyGenerator func() (string, error)

// GenerateKey returns a key like A1B2-C3D4-E5F6-G7H8 drawn from crypto/rand
func GenerateKey() (string, error) {
	const n = keyGroups * keyGroupSize
	out := make([]byte, 0, n)
	buf := make([]byte, 32)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if b >= keyByteLimit {
				continue
			}
			out = append(out, keyAlphabet[int(b)%len(keyAlphabet)])
			if len(out) == n {
				break
			}
		}
	}

	groups := make([]string, keyGroups)
	for i := range groups {
		groups[i] = string(out[i*keyGroupSize : (i+1)*keyGroupSize])
	}
	return strings.Join(groups, "-"), nil
}

// IsGeneratedKey reports whether key has the generator's format
func IsGeneratedKey(key string) bool {
	return generatedKeyPattern.MatchString(key)
}

// IssueWithRetry calls insert with freshly generated keys until one is
// accepted by the uniqueness constraint. insert must return an error wrapping
// ErrDuplicateKey on a key conflict; any other error stops the loop.
func IssueWithRetry(gen KeyGenerator, attempts int, insert func(key string) error, onCollision func()) (string, error) {
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		key, err := gen()
		if err != nil {
			return "", err
		}
		err = insert(key)
		if err == nil {
			return key, nil
		}
		if !errors.Is(err, ErrDuplicateKey) {
			return "", err
		}
		if onCollision != nil {
			onCollision()
		}
	}
	return "", ErrKeySpaceExhausted
}

// MaskKey hides all but the first two groups of a key for logging
func MaskKey(key string) string {
	parts := strings.Split(key, "-")
	if len(parts) < 3 {
		if len(key) <= 4 {
			return "****"
		}
		return key[:4] + "****"
	}
	for i := 2; i < len(parts); i++ {
		parts[i] = "****"
	}
	return strings.Join(parts, "-")
}
