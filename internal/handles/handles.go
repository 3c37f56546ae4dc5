// Package handles provides a thread-safe ownership registry for native
// identifiers.
//
// A native identifier may be wrapped by any number of borrowed views but by
// at most one owner, since the owner is the one that releases it. Owners
// claim an identifier here before taking responsibility for it and give the
// claim back after releasing it. Finalizers run on their own goroutine, so
// every operation is guarded.
//
// Identifiers are scoped by the runtime that issued them: two runtimes may
// hand out the same integer. Scopes must be comparable (pointers in
// practice).
package handles

import (
	"sync"
)

// Key identifies one native identifier within one runtime.
type Key struct {
	Scope any
	ID    int64
}

var (
	mu     sync.RWMutex
	owners = make(map[Key]struct{})
)

// Claim records that scope/id now has an owner.
// It returns false if the identifier is already owned.
//
// Thread-safe.
func Claim(scope any, id int64) bool {
	k := Key{Scope: scope, ID: id}
	mu.Lock()
	defer mu.Unlock()
	if _, ok := owners[k]; ok {
		return false
	}
	owners[k] = struct{}{}
	return true
}

// Owned reports whether scope/id currently has an owner.
//
// Thread-safe.
func Owned(scope any, id int64) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := owners[Key{Scope: scope, ID: id}]
	return ok
}

// Unclaim drops the ownership record for scope/id. It returns false if
// there was none. Should be called once the identifier has been released
// or handed over.
//
// Thread-safe.
func Unclaim(scope any, id int64) bool {
	k := Key{Scope: scope, ID: id}
	mu.Lock()
	defer mu.Unlock()
	if _, ok := owners[k]; !ok {
		return false
	}
	delete(owners, k)
	return true
}

// Count returns the number of currently owned identifiers across all scopes.
// Useful for debugging and testing leaks.
//
// Thread-safe.
func Count() int {
	mu.RLock()
	defer mu.RUnlock()
	return len(owners)
}

// CountScope returns the number of identifiers owned within one scope.
//
// Thread-safe.
func CountScope(scope any) int {
	mu.RLock()
	defer mu.RUnlock()
	n := 0
	for k := range owners {
		if k.Scope == scope {
			n++
		}
	}
	return n
}
