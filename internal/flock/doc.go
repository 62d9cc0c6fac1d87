// Package flock provides cross-platform file locking utilities.
//
// The ledger assumes at most one writer process at a time. An exclusive,
// non-blocking lock on .taskledger/ledger.lock enforces that rule: the store
// acquires it on open and holds it until close. Acquire wraps the raw lock
// primitives with a retry loop and timeout for callers that prefer to wait
// briefly instead of failing immediately.
//
// Usage:
//
//	file, _ := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
//	if err := flock.Exclusive(file.Fd()); err != nil {
//	    // Lock not acquired - another process holds the ledger
//	}
//	defer flock.Unlock(file.Fd())
package flock
