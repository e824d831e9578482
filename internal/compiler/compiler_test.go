package compiler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/apigraph/internal/graph"
	"github.com/roach88/apigraph/internal/ir"
	"github.com/roach88/apigraph/internal/testutil"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func compile(t *testing.T, files map[string]string, audiences ...string) *Result {
	t.Helper()
	ws := testutil.Workspace(t, files)
	res, err := GenerateIR(context.Background(), ws, Options{Audiences: audiences, Logger: quiet()})
	require.NoError(t, err)
	return res
}

func compileErr(t *testing.T, files map[string]string, audiences ...string) error {
	t.Helper()
	ws := testutil.Workspace(t, files)
	_, err := GenerateIR(context.Background(), ws, Options{Audiences: audiences, Logger: quiet()})
	require.Error(t, err)
	return err
}

// pricingAPI has an untagged Money reachable only from an endpoint tagged
// for external callers.
func pricingAPI() map[string]string {
	return map[string]string{
		"api.yml": "name: pricing\n",
		"a.yml": `types:
  Money:
    properties:
      amount: integer
`,
		"b.yml": `imports:
  a: a.yml
service:
  base-path: /prices
  endpoints:
    getPrice:
      method: GET
      path: ""
      audiences: [external]
      response: a.Money
`,
	}
}

// sharedAPI has Foo used by two services and Bar used by one.
func sharedAPI() map[string]string {
	return map[string]string{
		"api.yml": "name: shared\n",
		"common.yml": `types:
  Foo:
    properties:
      id: string
`,
		"s1.yml": `imports:
  common: common.yml
types:
  Bar:
    properties:
      foo: common.Foo
service:
  endpoints:
    getFoo:
      method: GET
      path: /s1/foo
      response: common.Foo
    getBar:
      method: GET
      path: /s1/bar
      response: Bar
`,
		"s2.yml": `imports:
  common: common.yml
service:
  endpoints:
    getFoo:
      method: GET
      path: /s2/foo
      response: common.Foo
`,
	}
}

func TestGenerateIRUnfiltered(t *testing.T) {
	res := compile(t, testutil.MoviesAPI())

	assert.Same(t, res.Unfiltered, res.IR, "no audiences means no projection")
	assert.Nil(t, res.Filtered)
	assert.Len(t, res.IR.Types, 4)
	assert.Len(t, res.IR.Errors, 2)
	require.Len(t, res.IR.Services, 1)
	assert.Len(t, res.IR.Services["service_imdb"].Endpoints, 2)
	assert.Len(t, res.Fingerprint, 64)
	assert.Empty(t, res.Warnings)
	assert.Empty(t, Validate(res.IR))

	assert.Equal(t, "movies", res.IR.APIName.OriginalName)
	assert.Equal(t, "errorInstanceId", res.IR.Constants.ErrorInstanceIDKey.WireValue)
	assert.Equal(t,
		[]ir.SubpackageID{"subpackage_commons", "subpackage_imdb"},
		res.IR.RootPackage.Subpackages,
	)
	imdb := res.IR.Subpackages["subpackage_imdb"]
	require.NotNil(t, imdb.Service)
	assert.Equal(t, ir.ServiceID("service_imdb"), *imdb.Service)
	assert.True(t, imdb.HasEndpointsInTree)
	assert.False(t, res.IR.Subpackages["subpackage_commons"].HasEndpointsInTree)
}

func TestGenerateIRAudienceProjection(t *testing.T) {
	public := compile(t, testutil.MoviesAPI(), "public")
	require.NotNil(t, public.Filtered)
	assert.ElementsMatch(t,
		[]ir.TypeID{"type_commons:Money", "type_imdb:Movie", "type_imdb:MovieId"},
		keysOf(public.IR.Types),
	)
	assert.Len(t, public.IR.Errors, 2)
	eps := public.IR.Services["service_imdb"].Endpoints
	require.Len(t, eps, 1, "createMovie is internal only")
	assert.Equal(t, "getMovie", eps[0].Name.OriginalName)
	assert.Len(t, public.Unfiltered.Types, 4, "the unfiltered document is untouched")
	assert.Empty(t, Validate(public.IR))

	internal := compile(t, testutil.MoviesAPI(), "internal")
	assert.Len(t, internal.IR.Types, 4)
	assert.Len(t, internal.IR.Services["service_imdb"].Endpoints, 2, "getMovie has no audience and ships everywhere")
	assert.NotEqual(t, public.Fingerprint, internal.Fingerprint)
}

func TestGenerateIRReachabilityFromTaggedEndpoint(t *testing.T) {
	external := compile(t, pricingAPI(), "external")
	assert.Contains(t, external.IR.Types, ir.TypeID("type_a:Money"))
	assert.Contains(t, external.IR.Services, ir.ServiceID("service_b"))
	assert.ElementsMatch(t,
		[]ir.SubpackageID{"subpackage_a", "subpackage_b"},
		external.IR.RootPackage.Subpackages,
	)

	internal := compile(t, pricingAPI(), "internal")
	assert.Empty(t, internal.IR.Types, "Money is untagged and unreachable")
	assert.Empty(t, internal.IR.Services)
	assert.Empty(t, internal.IR.Subpackages)
	assert.Empty(t, internal.IR.RootPackage.Subpackages)
	assert.Empty(t, Validate(internal.IR))
}

func TestGenerateIRServiceTypeReferenceInfo(t *testing.T) {
	res := compile(t, sharedAPI())
	info := res.IR.ServiceTypeReferenceInfo

	assert.Equal(t, []ir.TypeID{"type_common:Foo"}, info.SharedTypes)
	assert.Equal(t, []ir.TypeID{"type_s1:Bar"}, info.TypesReferencedOnlyByService["service_s1"])
	assert.Empty(t, info.TypesReferencedOnlyByService["service_s2"])
}

func TestGenerateIRErrorsWithoutDiscrimination(t *testing.T) {
	err := compileErr(t, map[string]string{
		"api.yml": "name: test\n",
		"errs.yml": `errors:
  NotFoundError:
    status-code: 404
`,
	})
	require.ErrorIs(t, err, ErrStructural)
	var se *StructuralError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "errs.yml", se.File)
	assert.Equal(t, "NotFoundError", se.Declaration)
	assert.Contains(t, se.Message, "error-discrimination")
}

func TestGenerateIRAliasCycle(t *testing.T) {
	err := compileErr(t, map[string]string{
		"types.yml": `types:
  A: B
  B: A
`,
	})
	require.ErrorIs(t, err, ErrStructural)
	assert.Contains(t, err.Error(), "types.yml")
	assert.Contains(t, err.Error(), "type_types:A -> type_types:B -> type_types:A")
}

func TestGenerateIRAliasCycleWithExample(t *testing.T) {
	err := compileErr(t, map[string]string{
		"types.yml": `types:
  A:
    type: B
    examples:
      - value: 1
  B: A
`,
	})
	require.ErrorIs(t, err, ErrStructural)
	assert.Contains(t, err.Error(), "type_types:A -> type_types:B -> type_types:A")
}

func TestGenerateIRSelfReferencingUnionExamples(t *testing.T) {
	res := compile(t, map[string]string{
		"types.yml": `types:
  U:
    union:
      - U
      - string
    examples:
      - value: hello
      - value: 1
`,
	})
	u := res.IR.Types["type_types:U"]
	require.Len(t, u.Examples, 1)
	assert.JSONEq(t, `"hello"`, string(u.Examples[0].JSONExample))
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0].Message, "no matching union member")
}

func TestGenerateIRRejectsInvalidOptions(t *testing.T) {
	ws := testutil.Workspace(t, testutil.MoviesAPI())
	tests := []struct {
		name string
		opts Options
	}{
		{"empty audience", Options{Audiences: []string{"public", ""}}},
		{"unknown language", Options{Language: "cobol"}},
		{"negative concurrency", Options{Concurrency: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateIR(context.Background(), ws, tt.opts)
			assert.ErrorIs(t, err, ErrInvalidOptions)
		})
	}
}

func TestGenerateIRHonorsCancellation(t *testing.T) {
	ws := testutil.Workspace(t, testutil.MoviesAPI())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := GenerateIR(ctx, ws, Options{Logger: quiet()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateIRIsDeterministic(t *testing.T) {
	ws := testutil.Workspace(t, sharedAPI())
	var fingerprints []string
	for _, n := range []int{1, 2, 8, 1} {
		res, err := GenerateIR(context.Background(), ws, Options{Concurrency: n, Logger: quiet()})
		require.NoError(t, err)
		fingerprints = append(fingerprints, res.Fingerprint)
	}
	for _, fp := range fingerprints[1:] {
		assert.Equal(t, fingerprints[0], fp)
	}
}

func TestRefilterMatchesGenerateIR(t *testing.T) {
	all := compile(t, testutil.MoviesAPI())
	snapshot := all.Graph.Snapshot()

	for _, audience := range []string{"public", "internal"} {
		t.Run(audience, func(t *testing.T) {
			direct := compile(t, testutil.MoviesAPI(), audience)
			re, err := Refilter(all.Unfiltered, snapshot, graph.ForAudiences(audience))
			require.NoError(t, err)
			assert.Equal(t, direct.Fingerprint, re.Fingerprint)
			require.NotNil(t, re.Filtered)
			assert.True(t, direct.Filtered.Equal(*re.Filtered))
		})
	}
}

func TestSDKConfig(t *testing.T) {
	movies := compile(t, testutil.MoviesAPI())
	cfg := movies.IR.SDKConfig
	assert.True(t, cfg.IsAuthMandatory, "root auth and every endpoint requires it")
	assert.False(t, cfg.HasStreamingEndpoints)
	assert.Equal(t, "X-SDK-Language", cfg.PlatformHeaders.Language)
	assert.Equal(t, "X-SDK-Name", cfg.PlatformHeaders.SDKName)
	assert.Equal(t, "X-SDK-Version", cfg.PlatformHeaders.SDKVersion)

	files := compile(t, map[string]string{
		"files.yml": `service:
  endpoints:
    download:
      method: GET
      path: /download
      response: file
    stream:
      method: GET
      path: /stream
      response-stream:
        type: string
`,
	})
	cfg = files.IR.SDKConfig
	assert.False(t, cfg.IsAuthMandatory)
	assert.True(t, cfg.HasStreamingEndpoints)
	assert.True(t, cfg.HasFileDownloadEndpoints)
}

func TestPackageMarkers(t *testing.T) {
	files := map[string]string{
		"__package__.yml": "navigation:\n  - zeta\n",
		"alpha.yml":       "types:\n  A: string\n",
		"zeta/__package__.yml": `docs: Everything about zeta.
navigation: one
`,
		"zeta/one.yml": "types:\n  Z: string\n",
	}
	res := compile(t, files)

	assert.Equal(t,
		[]ir.SubpackageID{"subpackage_zeta", "subpackage_alpha"},
		res.IR.RootPackage.Subpackages,
	)
	zeta := res.IR.Subpackages["subpackage_zeta"]
	assert.Equal(t, "Everything about zeta.", zeta.Docs)
	require.NotNil(t, zeta.NavigationConfig)
	assert.Equal(t, ir.SubpackageID("subpackage_zeta/one"), zeta.NavigationConfig.PointsTo)
	assert.Empty(t, Validate(res.IR))

	files["__package__.yml"] = "navigation:\n  - missing\n"
	err := compileErr(t, files)
	var se *StructuralError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "__package__.yml", se.File)
}

func keysOf[K comparable, V any](m map[K]V) []K {
	out := make([]K, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
