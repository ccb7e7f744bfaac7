package schema

import (
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genSchema builds small random schemas out of a fixed name pool so that
// pairs of generated schemas overlap and exercise every diff phase.
func genSchema() gopter.Gen {
	tableNames := []string{"alpha", "beta", "gamma", "delta"}
	columnNames := []string{"one", "two", "three", "four", "five"}
	kinds := []TypeKind{TypeBool, TypeInt, TypeBigInt, TypeReal, TypeText, TypeBlob, TypeTimestamp, TypeUuid}

	return gen.SliceOfN(len(tableNames), gen.UInt64()).Map(func(seeds []uint64) *Schema {
		s := Empty()
		for i, name := range tableNames {
			seed := seeds[i]
			if seed%3 == 0 {
				continue // table absent from this schema
			}
			t := Table{Name: name}
			t.Columns = append(t.Columns, Column{
				Name:       "id",
				Type:       Type(TypeBigInt),
				PrimaryKey: true,
			})
			for j, col := range columnNames {
				bits := seed >> (4 * (j + 1))
				if bits%2 == 0 {
					continue
				}
				t.Columns = append(t.Columns, Column{
					Name:     col,
					Type:     Type(kinds[bits%uint64(len(kinds))]),
					Nullable: bits%4 == 1,
				})
			}
			if seed%5 == 0 && len(t.Columns) > 1 {
				t.Indexes = append(t.Indexes, Index{
					Columns: []string{t.Columns[1].Name},
					Unique:  seed%2 == 0,
				})
			}
			s = s.WithTable(t)
		}
		return s
	})
}

func TestProperty_DiffIsDeterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("repeated diffs of the same snapshots serialize identically", prop.ForAll(
		func(from, to *Schema) bool {
			first, err := Diff(from, to)
			if err != nil {
				return false
			}
			second, err := Diff(from, to)
			if err != nil {
				return false
			}
			a, _ := json.Marshal(first)
			b, _ := json.Marshal(second)
			return string(a) == string(b)
		},
		genSchema(),
		genSchema(),
	))

	properties.Property("diffing a schema against itself yields no operations", prop.ForAll(
		func(s *Schema) bool {
			ops, err := Diff(s, s)
			return err == nil && len(ops) == 0
		},
		genSchema(),
	))

	properties.TestingRun(t)
}

func TestProperty_ApplyingDiffReachesTarget(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("apply(from, diff(from, to)) equals to", prop.ForAll(
		func(from, to *Schema) bool {
			ops, err := Diff(from, to)
			if err != nil {
				return false
			}
			got, err := from.Apply(ops...)
			if err != nil {
				return false
			}
			return got.Equal(to) && got.Hash() == to.Hash()
		},
		genSchema(),
		genSchema(),
	))

	properties.TestingRun(t)
}
