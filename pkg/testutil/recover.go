package testutil

// Recover calls f and returns what it panicked with, or nil if it returned
// normally.
func Recover(f func()) (r any) {
	defer func() { r = recover() }()
	f()
	return nil
}
