package passhash

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// Hashes use the passlib "pbkdf2-sha256" modular format:
//
//	$pbkdf2-sha256$<rounds>$<salt>$<checksum>
//
// salt and checksum are unpadded base64 with '.' in place of '+'.
const (
	scheme         = "pbkdf2-sha256"
	DefaultRounds  = 29000
	saltLength     = 32
	checksumLength = 32
)

func Hash(password string) (string, error) {
	return HashWithRounds(password, DefaultRounds)
}

func HashWithRounds(password string, rounds int) (string, error) {
	if rounds <= 0 {
		return "", fmt.Errorf("rounds must be positive")
	}
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}
	sum := pbkdf2.Key([]byte(password), salt, rounds, checksumLength, sha256.New)
	return fmt.Sprintf("$%s$%d$%s$%s", scheme, rounds, ab64Encode(salt), ab64Encode(sum)), nil
}

// Verify reports whether password matches the encoded hash. Malformed hashes
// never match.
func Verify(password, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 5 || parts[0] != "" || parts[1] != scheme {
		return false
	}
	rounds, err := strconv.Atoi(parts[2])
	if err != nil || rounds <= 0 {
		return false
	}
	salt, err := ab64Decode(parts[3])
	if err != nil {
		return false
	}
	want, err := ab64Decode(parts[4])
	if err != nil || len(want) == 0 {
		return false
	}
	got := pbkdf2.Key([]byte(password), salt, rounds, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}

func ab64Encode(b []byte) string {
	return strings.ReplaceAll(base64.RawStdEncoding.EncodeToString(b), "+", ".")
}

func ab64Decode(s string) ([]byte, error) {
	s = strings.TrimRight(strings.ReplaceAll(s, ".", "+"), "=")
	return base64.RawStdEncoding.DecodeString(s)
}
