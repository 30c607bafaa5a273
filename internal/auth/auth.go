package auth

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashToken hashes an upload token for at-rest storage; only the hash
// is persisted with the portfolio row.
func HashToken(tok string) string {
	sum := sha256.Sum256([]byte(tok))
	return hex.EncodeToString(sum[:])
}
