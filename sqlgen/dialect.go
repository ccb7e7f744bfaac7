// Package sqlgen renders queries and schema operations into
// dialect-specific SQL text with bound parameters.
package sqlgen

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sssemil/butane/schema"
)

// Dialect captures the syntactic and type-naming rules of one backend.
// Backends are selected at runtime through the registry; the engine never
// special-cases a backend outside its Dialect.
type Dialect interface {
	// Name is the provider identifier ("postgres", "mysql", "sqlite").
	Name() string

	// QuoteIdent quotes an identifier when the dialect requires it.
	QuoteIdent(ident string) string

	// Placeholder returns the parameter marker for the 1-based position n.
	Placeholder(n int) string

	// TypeName returns the canonical SQL type for a concrete column type.
	TypeName(t schema.ColumnType) (string, error)

	// BoolLiteral encodes a boolean inside DDL default clauses.
	BoolLiteral(v bool) string

	// SupportsAlterColumnType reports whether ALTER TABLE can change a
	// column definition in place. When false the renderer emits a
	// recreate-and-copy sequence instead.
	SupportsAlterColumnType() bool

	// SupportsDeferredFK reports whether foreign-key checks can be
	// deferred to commit time.
	SupportsDeferredFK() bool
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Dialect{}
)

// Register makes a dialect available by name. Aliases may be registered
// by calling Register more than once.
func Register(name string, d Dialect) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = d
}

// Get returns the dialect registered under name.
func Get(name string) (Dialect, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := registry[name]
	if !ok {
		names := make([]string, 0, len(registry))
		for n := range registry {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("sqlgen: unknown dialect %q (registered: %s)", name, strings.Join(names, ", "))
	}
	return d, nil
}

func init() {
	Register("postgres", PostgresDialect{})
	Register("postgresql", PostgresDialect{})
	Register("mysql", MySQLDialect{})
	Register("sqlite", SQLiteDialect{})
	Register("sqlite3", SQLiteDialect{})
}

// Identifiers that are plain lowercase names stay unquoted unless they
// collide with a keyword, matching the SQL most humans write by hand.
var reservedIdents = map[string]bool{
	"select": true, "from": true, "where": true, "table": true,
	"index": true, "order": true, "group": true, "by": true,
	"insert": true, "update": true, "delete": true, "join": true,
	"user": true, "default": true, "primary": true, "key": true,
	"references": true, "not": true, "null": true, "and": true,
	"or": true, "in": true, "is": true, "like": true, "limit": true,
	"offset": true, "create": true, "drop": true, "alter": true,
}

func needsQuoting(ident string) bool {
	if reservedIdents[strings.ToLower(ident)] {
		return true
	}
	for i, r := range ident {
		switch {
		case r >= 'a' && r <= 'z':
		case r == '_':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return true
		}
	}
	return len(ident) == 0
}

func quoteWith(ident string, quote byte) string {
	if !needsQuoting(ident) {
		return ident
	}
	q := string(quote)
	return q + strings.ReplaceAll(ident, q, q+q) + q
}
