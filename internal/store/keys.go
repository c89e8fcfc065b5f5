package store

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

const processingMarker = ":processing:"

// Key is a parsed store key. Pool keys hold available items; processing
// keys hold the items one worker has claimed from Pool.
type Key struct {
	Raw        string
	Pool       string
	Processing bool
	Worker     string
}

// Keyspace builds and parses the keys under one prefix.
//
//	<prefix>:<pool>                          available items
//	<prefix>:<pool>:processing:<worker-id>   one worker's claims
type Keyspace struct {
	Prefix string
}

func (ks Keyspace) Pool(pool string) string {
	return ks.Prefix + ":" + pool
}

func (ks Keyspace) Processing(pool, worker string) string {
	return ks.Pool(pool) + processingMarker + worker
}

// Pattern matches every key owned by this keyspace.
func (ks Keyspace) Pattern() string {
	return ks.Prefix + ":*"
}

// Parse splits a raw key. ok is false for keys outside the prefix.
func (ks Keyspace) Parse(raw string) (Key, bool) {
	rest, found := strings.CutPrefix(raw, ks.Prefix+":")
	if !found || rest == "" {
		return Key{}, false
	}
	if pool, worker, isProc := strings.Cut(rest, processingMarker); isProc {
		return Key{Raw: raw, Pool: pool, Processing: true, Worker: worker}, true
	}
	return Key{Raw: raw, Pool: rest}, true
}

// NewWorkerID returns an identifier unique to this process.
func NewWorkerID() string {
	return fmt.Sprintf("worker:%d:%s", os.Getpid(), uuid.NewString())
}
