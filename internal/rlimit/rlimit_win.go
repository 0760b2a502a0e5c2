//go:build windows

// Package rlimit contains a function to raise the process resource limits.
package rlimit

// Raise is a no-op on windows.
func Raise() error {
	return nil
}
