package cache

import "time"

type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, data []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

const (
	AttachmentTTL = 10 * time.Minute
	SearchTTL     = time.Hour
)

func AttachmentKey(url string) string {
	return MemoryOnlyPrefix + "attachment:" + url
}

func SearchKey(provider, query string) string {
	return PersistentPrefix + "search:" + provider + ":" + query
}
