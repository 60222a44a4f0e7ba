package repositories

import "errors"

// ErrKeyNotFound is returned by key-value repositories for missing or expired keys.
var ErrKeyNotFound = errors.New("key not found")
