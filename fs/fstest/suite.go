// Package fstest provides a conformance test suite for fs.Filesystem
// implementations.
//
// Example usage:
//
//	func TestMyProvider(t *testing.T) {
//	    fstest.TestSuite(t, func() (fs.Filesystem, string) {
//	        return myprovider.New(), "/"
//	    })
//	}
package fstest

import (
	"testing"

	"github.com/luis1ribeiro/SROS2-Utilities/fs"
)

// NewFunc returns a fresh, empty filesystem and the root directory the
// tests work under.
type NewFunc func() (fs.Filesystem, string)

// TestSuite runs all conformance tests against a filesystem.
func TestSuite(t *testing.T, newFS NewFunc) {
	TestSuiteWithSkip(t, newFS, nil)
}

// TestSuiteWithSkip runs the conformance tests, skipping the named groups
// ("ReadFS" or "WriteFS").
func TestSuiteWithSkip(t *testing.T, newFS NewFunc, skipTests []string) {
	shouldSkip := func(testName string) bool {
		for _, skip := range skipTests {
			if skip == testName {
				return true
			}
		}
		return false
	}

	t.Run("ReadFS", func(t *testing.T) {
		if shouldSkip("ReadFS") {
			t.Skip("Skipped by provider configuration")
			return
		}
		TestReadFS(t, newFS)
	})

	t.Run("WriteFS", func(t *testing.T) {
		if shouldSkip("WriteFS") {
			t.Skip("Skipped by provider configuration")
			return
		}
		TestWriteFS(t, newFS)
	})
}
