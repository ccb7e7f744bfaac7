package dsl_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sssemil/butane/schema"
	"github.com/sssemil/butane/schema/dsl"
	"github.com/sssemil/butane/sqlval"
)

const sample = `
// people
model users {
    id         bigint    @id
    name       text
    email      text?
    age        int       @default(0)
    active     bool      @default(true)
    created_at timestamp
    @@index([name])
    @@unique([email])
}

model posts {
    id     bigint @id
    author fk(users)
    title  text
}
`

func TestParse_FullFile(t *testing.T) {
	s, err := dsl.ParseString("models.butane", sample)
	require.NoError(t, err)

	users, ok := s.Table("users")
	require.True(t, ok)
	require.Len(t, users.Columns, 6)

	id, _ := users.Column("id")
	assert.True(t, id.PrimaryKey)
	assert.Equal(t, schema.TypeBigInt, id.Type.Kind)

	email, _ := users.Column("email")
	assert.True(t, email.Nullable)

	age, _ := users.Column("age")
	require.NotNil(t, age.Default)
	assert.True(t, age.Default.Equal(sqlval.Int(0)))

	active, _ := users.Column("active")
	require.NotNil(t, active.Default)
	assert.True(t, active.Default.Equal(sqlval.Bool(true)))

	require.Len(t, users.Indexes, 2)
	assert.Equal(t, []string{"name"}, users.Indexes[0].Columns)
	assert.False(t, users.Indexes[0].Unique)
	assert.Equal(t, []string{"email"}, users.Indexes[1].Columns)
	assert.True(t, users.Indexes[1].Unique)

	posts, ok := s.Table("posts")
	require.True(t, ok)
	author, _ := posts.Column("author")
	assert.Equal(t, schema.TypeForeignKey, author.Type.Kind)
	assert.Equal(t, "users", author.Type.References)
}

func TestParse_FieldUniqueAttr(t *testing.T) {
	s, err := dsl.ParseString("m.butane", `
model tags {
    id    int  @id
    label text @unique
}
`)
	require.NoError(t, err)
	tags, _ := s.Table("tags")
	require.Len(t, tags.Indexes, 1)
	assert.True(t, tags.Indexes[0].Unique)
	assert.Equal(t, []string{"label"}, tags.Indexes[0].Columns)
}

func TestParse_StringDefault(t *testing.T) {
	s, err := dsl.ParseString("m.butane", `
model notes {
    id   int  @id
    body text @default("nothing to see")
}
`)
	require.NoError(t, err)
	notes, _ := s.Table("notes")
	body, _ := notes.Column("body")
	require.NotNil(t, body.Default)
	assert.True(t, body.Default.Equal(sqlval.Text("nothing to see")))
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := dsl.ParseString("m.butane", `model { broken`)
	require.Error(t, err)
}

func TestParse_UnknownType(t *testing.T) {
	_, err := dsl.ParseString("m.butane", `
model t {
    id int @id
    x  varchar
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown type varchar")
}

func TestParse_FkWithoutTable(t *testing.T) {
	_, err := dsl.ParseString("m.butane", `
model t {
    id int @id
    u  fk
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fk needs a referenced table")
}

func TestParse_DefaultKindMismatch(t *testing.T) {
	_, err := dsl.ParseString("m.butane", `
model t {
    id int @id
    n  int @default("nope")
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not fit")
}

func TestParse_DuplicateModel(t *testing.T) {
	src := `
model users {
    id   int @id
    name text
}

model users {
    id    int @id
    email text
}
`
	_, err := dsl.ParseString("m.butane", src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model users is defined more than once")

	file, perr := dsl.ParseFile("m.butane", strings.NewReader(src))
	require.NoError(t, perr)
	s, diags := dsl.ConvertFile(file)
	require.True(t, diags.HasErrors())
	assert.Equal(t, 7, diags.Errors()[0].Pos.Line)

	// The first definition wins; the repeat is never silently merged in.
	tbl, ok := s.Table("users")
	require.True(t, ok)
	_, hasName := tbl.Column("name")
	_, hasEmail := tbl.Column("email")
	assert.True(t, hasName)
	assert.False(t, hasEmail)
}

func TestParse_CollectsAllErrors(t *testing.T) {
	src := `
model t {
    id int @id
    a  varchar
    b  blorb
}
`
	file, err := dsl.ParseFile("m.butane", strings.NewReader(src))
	require.NoError(t, err)
	_, diags := dsl.ConvertFile(file)
	require.True(t, diags.HasErrors())
	assert.Len(t, diags.Errors(), 2)

	var out strings.Builder
	diags.PrettyPrint(&out, src)
	assert.Contains(t, out.String(), "varchar")
	assert.Contains(t, out.String(), "blorb")
}

func TestParse_SchemaValidationRuns(t *testing.T) {
	_, err := dsl.ParseString("m.butane", `
model t {
    id int @id
    u  fk(missing)
}
`)
	var serr *schema.SchemaError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, schema.CodeUnknownReferenced, serr.Code)
}
