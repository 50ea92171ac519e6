package domain

import "path/filepath"

// Test identifies one test case inside one executable.
type Test struct {
	Executable string // Path of the test binary
	Adapter    string // Name of the framework adapter that claimed the binary
	ID         string // Test identifier as listed by the adapter
}

// Key returns a string unique across executables.
func (t Test) Key() string {
	return TestKey(t.Executable, t.ID)
}

// TestKey builds the key used to match stored failures against tests.
func TestKey(executable, id string) string {
	if abs, err := filepath.Abs(executable); err == nil {
		executable = abs
	}
	return filepath.ToSlash(executable) + "::" + id
}
