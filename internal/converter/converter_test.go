package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/apigraph/internal/casing"
	"github.com/roach88/apigraph/internal/filecontext"
	"github.com/roach88/apigraph/internal/ir"
	"github.com/roach88/apigraph/internal/resolver"
	"github.com/roach88/apigraph/internal/testutil"
	"github.com/roach88/apigraph/internal/workspace"
)

type fixture struct {
	ws *workspace.Workspace
	r  *resolver.Resolvers
}

func newFixture(t *testing.T, files map[string]string) fixture {
	t.Helper()
	ws := testutil.Workspace(t, files)
	return fixture{ws: ws, r: resolver.New(ws, casing.New(casing.LanguageNone))}
}

func (f fixture) context(t *testing.T, p string) *filecontext.Context {
	t.Helper()
	c, ok := f.r.Index.Context(p)
	require.True(t, ok)
	return c
}

func (f fixture) convertType(t *testing.T, file, name string) ConvertedType {
	t.Helper()
	decl, ok := f.ws.DefinitionFiles[file].Types.Get(name)
	require.True(t, ok, "no type %s in %s", name, file)
	out, err := ConvertTypeDeclaration(name, decl, f.context(t, file), f.r)
	require.NoError(t, err)
	return out
}

const nestedYAML = `types:
  A: string
  B: string
  C: string
  D: string
  E: string
  F: string
  G: string
  Parent:
    properties:
      p: string
  Wrapper: optional<list<map<A, set<B>>>>
  Obj:
    extends: Parent
    properties:
      c: C
      d: optional<D>
  Variant:
    properties:
      x: string
  U:
    discriminant: kind
    base-properties:
      e: E
    union:
      v: Variant
      f:
        type: list<F>
        key: items
      nothing: {}
  Loose:
    union:
      - G
      - integer
`

func TestTypeEdgesWalkEveryPosition(t *testing.T) {
	f := newFixture(t, map[string]string{"n.yml": nestedYAML})

	wrapper := f.convertType(t, "n.yml", "Wrapper")
	assert.Equal(t, []ir.TypeID{"type_n:A", "type_n:B"}, wrapper.Declaration.ReferencedTypes)
	assert.Equal(t, ir.ShapeAlias, wrapper.Declaration.Shape.Kind)

	obj := f.convertType(t, "n.yml", "Obj")
	assert.Equal(t, []ir.TypeID{"type_n:C", "type_n:D", "type_n:Parent"}, obj.Declaration.ReferencedTypes)
	require.Len(t, obj.Declaration.Shape.Object.Extends, 1)
	assert.Equal(t, ir.TypeID("type_n:Parent"), obj.Declaration.Shape.Object.Extends[0].TypeID)

	u := f.convertType(t, "n.yml", "U")
	assert.Equal(t, []ir.TypeID{"type_n:E", "type_n:F", "type_n:Variant"}, u.Declaration.ReferencedTypes)
	union := u.Declaration.Shape.Union
	require.NotNil(t, union)
	assert.Equal(t, "kind", union.Discriminant.WireValue)
	require.Len(t, union.Types, 3)
	assert.Equal(t, ir.SingleUnionSamePropertiesAsObject, union.Types[0].Shape.Kind)
	assert.Equal(t, ir.SingleUnionSingleProperty, union.Types[1].Shape.Kind)
	assert.Equal(t, "items", union.Types[1].Shape.SingleProperty.Name.WireValue)
	assert.Equal(t, ir.SingleUnionNoProperties, union.Types[2].Shape.Kind)

	loose := f.convertType(t, "n.yml", "Loose")
	assert.Equal(t, []ir.TypeID{"type_n:G"}, loose.Declaration.ReferencedTypes)
	assert.Len(t, loose.Declaration.Shape.UndiscriminatedUnion.Members, 2)
}

func TestTypeConversionIsDeterministic(t *testing.T) {
	f := newFixture(t, map[string]string{"n.yml": nestedYAML})
	first := f.convertType(t, "n.yml", "U")
	second := f.convertType(t, "n.yml", "U")
	assert.Equal(t, first, second)
}

func TestExamplesAreAnnotatedOrDropped(t *testing.T) {
	f := newFixture(t, map[string]string{"m.yml": `types:
  Money:
    properties:
      amount: double
    examples:
      - name: good
        value:
          amount: 10
      - name: bad
        value:
          amount: ten
`})
	money := f.convertType(t, "m.yml", "Money")
	require.Len(t, money.Declaration.Examples, 1)
	ex := money.Declaration.Examples[0]
	assert.Equal(t, "good", ex.Name)
	assert.JSONEq(t, `{"amount":10}`, string(ex.JSONExample))
	assert.Len(t, ex.ID, 64)
	assert.Equal(t, ir.ExampleObject, ex.Shape.Kind)

	require.Len(t, money.Warnings, 1)
	assert.Equal(t, "m.yml", money.Warnings[0].File)
	assert.Contains(t, money.Warnings[0].Message, "$.amount")
}

func TestEnumAndPropertyNames(t *testing.T) {
	f := newFixture(t, map[string]string{"e.yml": `types:
  Status:
    enum:
      - value: in-progress
        name: InProgress
      - done
  Row:
    properties:
      created_at:
        type: datetime
        name: createdAt
`})
	status := f.convertType(t, "e.yml", "Status")
	values := status.Declaration.Shape.Enum.Values
	require.Len(t, values, 2)
	assert.Equal(t, "in-progress", values[0].Name.WireValue)
	assert.Equal(t, "InProgress", values[0].Name.Name.PascalCase.UnsafeName)

	row := f.convertType(t, "e.yml", "Row")
	prop := row.Declaration.Shape.Object.Properties[0]
	assert.Equal(t, "created_at", prop.Name.WireValue)
	assert.Equal(t, "createdAt", prop.Name.Name.OriginalName)
}

func TestConvertErrorDeclaration(t *testing.T) {
	f := newFixture(t, testutil.MoviesAPI())
	decl, _ := f.ws.DefinitionFiles["imdb.yml"].Errors.Get("NotFoundError")
	out, err := ConvertErrorDeclaration("NotFoundError", decl, f.context(t, "imdb.yml"), f.r)
	require.NoError(t, err)
	assert.Equal(t, ir.ErrorID("error_imdb:NotFoundError"), out.Declaration.Name.ErrorID)
	assert.Equal(t, 404, out.Declaration.StatusCode)
	assert.Equal(t, []ir.TypeID{"type_imdb:MovieId"}, out.Declaration.ReferencedTypes)
	assert.Equal(t, "NotFoundError", out.Declaration.DiscriminantValue.WireValue)
}
