// Package store holds the in-memory domain collections.
//
// Every collection is replaced wholesale on mutation; a slice handed out by a
// read is a snapshot that later mutations never touch. Mutators never fail:
// an id that matches nothing leaves the collection as it was and reports
// false.
package store

import (
	"errors"
	"slices"
	"time"

	"somadev/internal/events"
)

// ErrNotFound is returned by single-entity reads for unknown ids.
var ErrNotFound = errors.New("not found")

// Clock supplies timestamps for updated_at style fields.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

func publisher(p events.Publisher) events.Publisher {
	if p == nil {
		return events.Discard
	}
	return p
}

// updateWhere returns a new slice with fn applied to every item matching id.
// When nothing matches it returns the original slice and false.
func updateWhere[T any](items []T, key func(T) string, id string, fn func(T) T) ([]T, bool) {
	idx := slices.IndexFunc(items, func(v T) bool { return key(v) == id })
	if idx < 0 {
		return items, false
	}
	out := make([]T, len(items))
	for i, v := range items {
		if key(v) == id {
			v = fn(v)
		}
		out[i] = v
	}
	return out, true
}

// deleteWhere returns a new slice without the items matching id.
func deleteWhere[T any](items []T, key func(T) string, id string) ([]T, bool) {
	if !slices.ContainsFunc(items, func(v T) bool { return key(v) == id }) {
		return items, false
	}
	out := make([]T, 0, len(items))
	for _, v := range items {
		if key(v) != id {
			out = append(out, v)
		}
	}
	return out, true
}

func findWhere[T any](items []T, key func(T) string, id string) (T, error) {
	for _, v := range items {
		if key(v) == id {
			return v, nil
		}
	}
	var zero T
	return zero, ErrNotFound
}

func appendCopy[T any](items []T, add ...T) []T {
	out := make([]T, 0, len(items)+len(add))
	out = append(out, items...)
	return append(out, add...)
}
