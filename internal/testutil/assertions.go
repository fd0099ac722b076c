package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// AssertOrdered asserts that every item appears in text, each after the
// previous one.
func AssertOrdered(t testing.TB, text string, items ...string) bool {
	t.Helper()

	offset := 0
	for _, item := range items {
		idx := strings.Index(text[offset:], item)
		if idx < 0 {
			return assert.Fail(t, "item missing or out of order",
				"expected %q after offset %d in:\n%s", item, offset, text)
		}
		offset += idx + len(item)
	}
	return true
}

// AssertCommandOrder asserts that commands contains each wanted command,
// in order. Other commands may appear in between.
func AssertCommandOrder(t testing.TB, commands []string, want ...string) bool {
	t.Helper()

	i := 0
	for _, cmd := range commands {
		if i < len(want) && cmd == want[i] {
			i++
		}
	}
	if i < len(want) {
		return assert.Fail(t, "command missing or out of order",
			"expected %q in order, got:\n%s", want[i], strings.Join(commands, "\n"))
	}
	return true
}
