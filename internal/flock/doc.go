// Package flock provides cross-platform file locking for the
// single-instance guard: two questline processes driving the same
// keyboard and mouse would corrupt each other's chains, so the run
// command holds an exclusive lock file for the duration of a schedule.
//
// Usage:
//
//	lock, err := flock.Acquire(path)
//	if err != nil {
//	    // Another instance is running
//	}
//	defer lock.Release()
package flock
