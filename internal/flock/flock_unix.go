//go:build unix

package flock

import "syscall"

// Exclusive takes a non-blocking exclusive lock on the descriptor. It fails
// immediately when another process already holds the ledger lock.
func Exclusive(fd uintptr) error {
	return syscall.Flock(int(fd), syscall.LOCK_EX|syscall.LOCK_NB)
}

// Unlock releases a lock taken with Exclusive.
func Unlock(fd uintptr) error {
	return syscall.Flock(int(fd), syscall.LOCK_UN)
}
