package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash is the content address of a service document or a serialized layout.
// It is the hex SHA-256 of data, 64 characters long.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey derives "<kind>:<sha256>" from the hash of the document being
// cached and the options that change its derived value. Options are encoded
// as JSON, so their field order fixes the key.
func hashKey(kind, docHash string, opts any) string {
	input, _ := json.Marshal(struct {
		Doc  string `json:"doc"`
		Opts any    `json:"opts"`
	}{docHash, opts})
	return kind + ":" + Hash(input)
}
