package testutil

import "testing"

// Given, When and Then run fn as a named subtest so a ledger scenario reads
// as its steps in `go test -v` output. A failed step does not stop the
// steps after it; guard dependent steps with require in the earlier one.
func Given(t *testing.T, desc string, fn func(t *testing.T)) bool {
	t.Helper()
	return step(t, "Given", desc, fn)
}

func When(t *testing.T, desc string, fn func(t *testing.T)) bool {
	t.Helper()
	return step(t, "When", desc, fn)
}

func Then(t *testing.T, desc string, fn func(t *testing.T)) bool {
	t.Helper()
	return step(t, "Then", desc, fn)
}

func step(t *testing.T, kind, desc string, fn func(t *testing.T)) bool {
	t.Helper()
	return t.Run(kind+" "+desc, fn)
}
