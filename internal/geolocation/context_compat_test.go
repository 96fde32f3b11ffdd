package geolocation_test

import (
	"context"
	"testing"
)

// testContext mirrors testing.T.Context (Go 1.24+): a context canceled
// when the test finishes, for toolchains that predate it.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
