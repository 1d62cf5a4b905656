// Package lrustore is the in-process response cache tier: a fixed-size
// LRU with per-entry deadlines. It never fails, so every error return is
// nil; the signatures exist to satisfy the shared cache contract.
package lrustore

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/starcat-io/starfov/internal/observability"
)

type entry struct {
	val []byte
	exp time.Time
}

type Store struct {
	lru *lru.Cache[string, entry]
}

// New builds a store holding at most size entries.
func New(size int) (*Store, error) {
	c, err := lru.New[string, entry](size)
	if err != nil {
		return nil, err
	}
	return &Store{lru: c}, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	e, ok := s.lru.Get(key)
	if ok && !e.exp.IsZero() && time.Now().After(e.exp) {
		s.lru.Remove(key)
		ok = false
	}
	if !ok {
		observability.IncCacheMiss("lru")
		return nil, false, nil
	}
	observability.IncCacheHit("lru")
	return e.val, true, nil
}

// Set stores val under key. A non-positive ttl stores it without a
// deadline, leaving eviction to capacity pressure alone.
func (s *Store) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	e := entry{val: val}
	if ttl > 0 {
		e.exp = time.Now().Add(ttl)
	}
	s.lru.Add(key, e)
	return nil
}

func (s *Store) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		s.lru.Remove(k)
	}
	return nil
}

// Purge drops every entry.
func (s *Store) Purge() { s.lru.Purge() }

// Len reports the live entry count, expired entries included until read.
func (s *Store) Len() int { return s.lru.Len() }
