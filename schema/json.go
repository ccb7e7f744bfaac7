package schema

import "encoding/json"

// MarshalJSON serializes the snapshot in canonical form: tables sorted
// by name, columns sorted by name. The encoding is stable so snapshots
// embedded in migration files round-trip byte-for-byte.
func (s *Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.canonical())
}

// UnmarshalJSON restores a snapshot from its canonical form.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var c canonical
	if err := json.Unmarshal(data, &c); err != nil {
		return err
	}
	tables := make(map[string]Table, len(c.Tables))
	for _, ct := range c.Tables {
		tables[ct.Name] = Table{Name: ct.Name, Columns: ct.Columns, Indexes: ct.Indexes}
	}
	s.tables = tables
	return nil
}
