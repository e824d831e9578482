package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/apigraph/internal/ir"
)

func TestConstructHTTPPath(t *testing.T) {
	tests := []struct {
		in   string
		want ir.HTTPPath
	}{
		{"", ir.HTTPPath{Parts: []ir.HTTPPathPart{}}},
		{"/movies", ir.HTTPPath{Head: "/movies", Parts: []ir.HTTPPathPart{}}},
		{"/users/{id}/posts", ir.HTTPPath{Head: "/users/", Parts: []ir.HTTPPathPart{{PathParameter: "id", Tail: "/posts"}}}},
		{"/{a}{b}", ir.HTTPPath{Head: "/", Parts: []ir.HTTPPathPart{{PathParameter: "a"}, {PathParameter: "b"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ConstructHTTPPath(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	for _, bad := range []string{"/{", "/{}", "/a}", "/{a}/b}"} {
		_, err := ConstructHTTPPath(bad)
		assert.Error(t, err, bad)
	}
}

func TestJoinPaths(t *testing.T) {
	assert.Equal(t, "/api/movies/{id}", joinPaths("/api/", "/movies", "/{id}"))
	assert.Equal(t, "/movies", joinPaths("", "/movies", ""))
}

func TestConvertRootParts(t *testing.T) {
	f := newFixture(t, map[string]string{
		"api.yml": `name: x
auth:
  any: [bearer, ApiKey]
auth-schemes:
  ApiKey:
    header: X-API-Key
    name: apiKey
    prefix: Key
environments:
  Production: https://api.example.com
  Staging:
    url: https://staging.example.com
default-environment: Production
error-discrimination:
  strategy: property
  property-name: error
  content-property: body
variables:
  tenant: string
`,
	})
	root := f.r.Index.Root()
	rootFile := &f.ws.RootAPIFile

	auth, err := ConvertAPIAuth(rootFile, root)
	require.NoError(t, err)
	assert.Equal(t, ir.AuthRequirementAny, auth.Requirement)
	require.Len(t, auth.Schemes, 2)
	assert.Equal(t, ir.AuthSchemeBearer, auth.Schemes[0].Kind)
	assert.Equal(t, ir.AuthSchemeHeader, auth.Schemes[1].Kind)
	assert.Equal(t, "X-API-Key", auth.Schemes[1].Header.Name.WireValue)
	assert.Equal(t, "apiKey", auth.Schemes[1].Header.Name.Name.OriginalName)

	envs, err := ConvertEnvironments(rootFile, root)
	require.NoError(t, err)
	require.NotNil(t, envs)
	require.NotNil(t, envs.DefaultEnvironment)
	assert.Equal(t, ir.EnvironmentID("Production"), *envs.DefaultEnvironment)
	assert.Len(t, envs.Environments, 2)

	strategy, err := ConvertErrorDiscriminationStrategy(rootFile, root)
	require.NoError(t, err)
	assert.Equal(t, ir.ErrorDiscriminationByProperty, strategy.Kind)
	assert.Equal(t, "body", strategy.Property.ContentProperty.WireValue)

	vars, err := ConvertVariables(rootFile, root)
	require.NoError(t, err)
	require.Len(t, vars, 1)
	assert.Equal(t, ir.VariableID("tenant"), vars[0].ID)
}

func TestConvertRootPartsErrors(t *testing.T) {
	f := newFixture(t, map[string]string{
		"api.yml": "name: x\nauth: oauth\nenvironments:\n  A: https://a\ndefault-environment: B\n",
	})
	root := f.r.Index.Root()
	_, err := ConvertAPIAuth(&f.ws.RootAPIFile, root)
	assert.ErrorIs(t, err, ErrStructural)
	_, err = ConvertEnvironments(&f.ws.RootAPIFile, root)
	assert.ErrorIs(t, err, ErrStructural)

	strategy, err := ConvertErrorDiscriminationStrategy(&f.ws.RootAPIFile, root)
	require.NoError(t, err)
	assert.Nil(t, strategy)
}
