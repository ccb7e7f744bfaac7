package migrate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	"github.com/sssemil/butane/internal/debug"
	"github.com/sssemil/butane/schema"
)

const (
	migrationFile = "migration.json"
	stateFile     = "state.json"
)

// Store persists migrations under a root directory, one subdirectory
// per migration. The filesystem is abstracted behind afero so tests run
// against an in-memory tree.
type Store struct {
	fs   afero.Fs
	root string
}

// NewStore opens a migration store rooted at dir on the OS filesystem.
func NewStore(dir string) *Store {
	return NewStoreFs(afero.NewOsFs(), dir)
}

// NewStoreFs opens a migration store on an explicit filesystem.
func NewStoreFs(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, root: dir}
}

type storeState struct {
	Latest string `json:"latest,omitempty"`
}

// Create diffs the latest stored snapshot (or the empty schema) against
// `to` and persists the resulting migration under the next sequence
// number. It returns nil without writing anything when the snapshots
// are identical.
func (s *Store) Create(slug string, to *schema.Schema) (*Migration, error) {
	if err := to.Validate(); err != nil {
		return nil, err
	}

	latest, err := s.Latest()
	if err != nil {
		return nil, err
	}

	from := schema.Empty()
	fromName := ""
	seq := 1
	if latest != nil {
		from = latest.Schema
		fromName = latest.Name
		seq = latest.Sequence() + 1
	}

	ops, err := schema.Diff(from, to)
	if err != nil {
		return nil, err
	}
	if len(ops) == 0 {
		return nil, nil
	}
	down, err := schema.Diff(to, from)
	if err != nil {
		return nil, err
	}

	name, err := FormatName(seq, slug)
	if err != nil {
		return nil, err
	}

	m := &Migration{
		Name:           name,
		FromName:       fromName,
		FromHash:       from.Hash(),
		ToHash:         to.Hash(),
		Operations:     ops,
		DownOperations: down,
		Schema:         to,
	}
	if err := s.write(m); err != nil {
		return nil, err
	}
	if err := s.saveState(storeState{Latest: name}); err != nil {
		return nil, err
	}
	debug.Info("created migration", "name", name, "operations", len(ops))
	return m, nil
}

// Get loads a migration by name.
func (s *Store) Get(name string) (*Migration, error) {
	path := filepath.Join(s.root, name, migrationFile)
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &MigrationError{Code: CodeNotFound, Migration: name, Message: "migration not found"}
		}
		return nil, err
	}
	var m Migration
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &MigrationError{Code: CodeCorrupt, Migration: name, Message: "unreadable migration file", Cause: err}
	}
	if m.Schema == nil || m.Schema.Hash() != m.ToHash {
		return nil, &MigrationError{Code: CodeCorrupt, Migration: name, Message: "snapshot does not match recorded hash"}
	}
	return &m, nil
}

// List returns all stored migrations in ascending sequence order.
func (s *Store) List() ([]*Migration, error) {
	entries, err := afero.ReadDir(s.fs, s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && validName(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := make([]*Migration, 0, len(names))
	for _, name := range names {
		m, err := s.Get(name)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Latest returns the most recently created migration, or nil when the
// store is empty.
func (s *Store) Latest() (*Migration, error) {
	state, err := s.loadState()
	if err != nil {
		return nil, err
	}
	if state.Latest == "" {
		return nil, nil
	}
	return s.Get(state.Latest)
}

func (s *Store) write(m *Migration) error {
	dir := filepath.Join(s.root, m.Name)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return afero.WriteFile(s.fs, filepath.Join(dir, migrationFile), data, 0o644)
}

func (s *Store) loadState() (storeState, error) {
	var state storeState
	data, err := afero.ReadFile(s.fs, filepath.Join(s.root, stateFile))
	if err != nil {
		if os.IsNotExist(err) {
			return state, nil
		}
		return state, err
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return state, &MigrationError{Code: CodeCorrupt, Message: "unreadable store state", Cause: err}
	}
	return state, nil
}

func (s *Store) saveState(state storeState) error {
	if err := s.fs.MkdirAll(s.root, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return afero.WriteFile(s.fs, filepath.Join(s.root, stateFile), data, 0o644)
}
