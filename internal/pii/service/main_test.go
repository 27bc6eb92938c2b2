package service

import (
	"testing"

	"go.uber.org/goleak"
)

// The batch decryption path fans out one goroutine per entity; verify no test
// leaves any of them behind.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
