// Package migrate generates, persists, and applies schema migrations.
// Migrations are produced by diffing two schema snapshots, stored as
// one directory per migration under the store root, and applied inside
// a transaction with an idempotence check against the in-database
// history table.
package migrate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sssemil/butane/schema"
)

// Migration is a named, ordered, immutable batch of operations bridging
// two schema snapshots. Names look like "0003_add_email" where the
// prefix is the sequence number.
type Migration struct {
	Name     string `json:"name"`
	FromName string `json:"from_name,omitempty"`
	FromHash string `json:"from_hash"`
	ToHash   string `json:"to_hash"`

	// Operations transform the from-snapshot into the to-snapshot.
	Operations []schema.Operation `json:"operations"`

	// DownOperations reverse the migration.
	DownOperations []schema.Operation `json:"down_operations,omitempty"`

	// Schema is the to-snapshot, embedded so that later diffs do not
	// need to replay the whole chain.
	Schema *schema.Schema `json:"schema"`
}

// Sequence extracts the migration's sequence number from its name.
func (m *Migration) Sequence() int {
	seq, _ := splitName(m.Name)
	return seq
}

// Destructive reports whether any operation can discard data.
func (m *Migration) Destructive() bool {
	for _, op := range m.Operations {
		if op.Destructive() {
			return true
		}
	}
	return false
}

var slugRe = regexp.MustCompile(`^[a-z0-9_]+$`)

// FormatName builds a migration name from sequence number and slug.
func FormatName(seq int, slug string) (string, error) {
	slug = strings.TrimSpace(strings.ToLower(slug))
	slug = strings.ReplaceAll(slug, " ", "_")
	slug = strings.ReplaceAll(slug, "-", "_")
	if !slugRe.MatchString(slug) {
		return "", fmt.Errorf("migrate: invalid migration slug %q", slug)
	}
	return fmt.Sprintf("%04d_%s", seq, slug), nil
}

func splitName(name string) (int, string) {
	parts := strings.SplitN(name, "_", 2)
	if len(parts) != 2 {
		return 0, ""
	}
	seq, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, ""
	}
	return seq, parts[1]
}

// validName reports whether name has the NNNN_slug shape.
func validName(name string) bool {
	seq, slug := splitName(name)
	return seq > 0 && slugRe.MatchString(slug)
}
