package sqlgen_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/sssemil/butane/query"
	"github.com/sssemil/butane/sqlgen"
	"github.com/sssemil/butane/sqlval"
)

// The SQL text of a rendered statement must depend only on the query
// shape, never on the values: every caller-supplied value travels as a
// bound parameter. That makes injection structurally impossible, so the
// property is checked over arbitrary strings rather than a blocklist.
func TestProperty_ValuesNeverChangeSQLText(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	s := testSchema()
	d, err := sqlgen.Get("postgres")
	if err != nil {
		t.Fatal(err)
	}

	reference, err := sqlgen.RenderQuery(
		query.New("users").Filter(query.Eq("name", sqlval.Text("baseline"))), s, d)
	if err != nil {
		t.Fatal(err)
	}

	properties.Property("filter values appear only in Args", prop.ForAll(
		func(value string) bool {
			q := query.New("users").Filter(query.Eq("name", sqlval.Text(value)))
			stmt, err := sqlgen.RenderQuery(q, s, d)
			if err != nil {
				return false
			}
			if stmt.SQL != reference.SQL {
				return false
			}
			if len(stmt.Args) != 1 {
				return false
			}
			got, _ := stmt.Args[0].TextValue()
			return got == value
		},
		gen.AnyString(),
	))

	properties.Property("insert values appear only in Args", prop.ForAll(
		func(id int64, name string) bool {
			stmt, err := sqlgen.RenderInsert(s, "users",
				[]string{"id", "name"},
				[]sqlval.Value{sqlval.Int(id), sqlval.Text(name)}, d)
			if err != nil {
				return false
			}
			return stmt.SQL == "INSERT INTO users (id, name) VALUES ($1, $2)" &&
				len(stmt.Args) == 2
		},
		gen.Int64(),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
