// Package loader registers all built-in store drivers.
// Import it for side effects from the main package.
package loader

import (
	_ "github.com/vaadly/vaadly/internal/store/sqlite"
)
