// Package loader registers all built-in cache drivers.
// Import it for side effects from the main package.
package loader

import (
	_ "github.com/vaadly/vaadly/internal/cache/memory"
	_ "github.com/vaadly/vaadly/internal/cache/valkey"
)
