package router

import "strings"

// splitArgs does a minimal comma-split of a handler-supplied
// configuration string for live_reconfigure. It intentionally does not
// reuse routerconfig's full tokenizer (quoting, nested parens) to avoid
// an import cycle (routerconfig imports router for Element/ErrorHandler);
// live_reconfigure values handled this way are expected to be simple.
func splitArgs(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
