package redis

import "fmt"

const (
	// KeyPrefixObject is the prefix for stored objects
	KeyPrefixObject = "awesome:object:"
)

// ObjectKey returns the Redis key for an object key
func ObjectKey(key string) string {
	return KeyPrefixObject + key
}

// ExtractObjectKey extracts the object key from a Redis key
func ExtractObjectKey(redisKey string) (string, error) {
	if len(redisKey) <= len(KeyPrefixObject) {
		return "", fmt.Errorf("invalid object key: %s", redisKey)
	}
	return redisKey[len(KeyPrefixObject):], nil
}
