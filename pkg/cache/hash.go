package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey builds a namespaced key: prefix plus the sha256 of the JSON
// encoding of parts. The keyer feeds it the map hash and the layout
// settings, so any change to either lands on a different key.
func hashKey(prefix string, parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// Hash returns the hex sha256 of data. The CLI hashes a map's canonical
// JSON serialization with it, making the serialized form the cache
// identity of the map.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
