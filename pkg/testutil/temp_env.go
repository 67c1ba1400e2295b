package testutil

import "os"

// Setenv sets an environment variable for the duration of a test, and
// returns value.
func Setenv(c Cleanuper, name, value string) string {
	SaveEnv(c, name)
	os.Setenv(name, value)
	return value
}

// Unsetenv unsets an environment variable for the duration of a test.
func Unsetenv(c Cleanuper, name string) {
	SaveEnv(c, name)
	os.Unsetenv(name)
}

// SaveEnv arranges for an environment variable to be restored to its current
// state, set or unset, when a test finishes.
func SaveEnv(c Cleanuper, name string) {
	if old, ok := os.LookupEnv(name); ok {
		c.Cleanup(func() { os.Setenv(name, old) })
	} else {
		c.Cleanup(func() { os.Unsetenv(name) })
	}
}
