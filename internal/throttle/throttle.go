// Package throttle slows down password guessing: failed login
// attempts are counted per (client host, username) and once the limit
// is reached further submissions are refused before the credential
// check even runs. Counters live in an evicting cache, so a block
// expires on its own after the window passes.
package throttle

import (
	"encoding/binary"
	"fmt"
	"net"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/cespare/xxhash/v2"
)

type (
	Limiter struct {
		cache *bigcache.BigCache
		max   uint32
	}

	xxHasher struct{}
)

func (xxHasher) Sum64(key string) uint64 {
	return xxhash.Sum64String(key)
}

func New(window time.Duration, maxFailures int) (*Limiter, error) {
	cfg := bigcache.DefaultConfig(window)
	cfg.Hasher = xxHasher{}
	cache, err := bigcache.NewBigCache(cfg)
	if err != nil {
		return nil, fmt.Errorf("throttle: unable to create attempt cache, cause %w", err)
	}
	return &Limiter{cache: cache, max: uint32(maxFailures)}, nil
}

// Key folds the client address and the claimed username into a single
// counter key. The port is discarded, every connection from the same
// host shares one budget.
func Key(remoteAddr, username string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	return host + "|" + username
}

func (l *Limiter) Blocked(key string) bool {
	buf, err := l.cache.Get(key)
	if err != nil || len(buf) != 4 {
		return false
	}
	return binary.LittleEndian.Uint32(buf) >= l.max
}

func (l *Limiter) RecordFailure(key string) {
	var count uint32
	if buf, err := l.cache.Get(key); err == nil && len(buf) == 4 {
		count = binary.LittleEndian.Uint32(buf)
	}
	count++
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], count)
	l.cache.Set(key, buf[:])
}

// Reset clears the counter after a successful login.
func (l *Limiter) Reset(key string) {
	l.cache.Delete(key)
}
