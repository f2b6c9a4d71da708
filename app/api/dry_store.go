package api

import (
	"strings"
	"time"

	"github.com/bckpockets/droppy-scraper/app/metrics"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultDryTTL  = 300 * time.Second
	DefaultDrySize = 10000
)

// DryStore keeps short-lived text responses keyed by lower-cased, trimmed
// name. Entries expire after the store's TTL.
type DryStore struct {
	lru *expirable.LRU[string, string]
}

func NewDryStore(size int, ttl time.Duration) *DryStore {
	return &DryStore{
		lru: expirable.NewLRU[string, string](size, nil, ttl),
	}
}

func dryKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Put stores response under name. It reports false when name or response
// is empty.
func (d *DryStore) Put(name, response string) bool {
	key := dryKey(name)
	if key == "" || response == "" {
		return false
	}
	d.lru.Add(key, response)
	metrics.DryResponsesInStore.Set(float64(d.lru.Len()))
	return true
}

func (d *DryStore) Get(name string) (string, bool) {
	key := dryKey(name)
	if key == "" {
		return "", false
	}
	return d.lru.Get(key)
}

func (d *DryStore) Len() int {
	return d.lru.Len()
}
