package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/apigraph/internal/ir"
	"github.com/roach88/apigraph/internal/testutil"
)

func TestIRCommandText(t *testing.T) {
	dir := writeDefinition(t, testutil.MoviesAPI())

	out, err := execute(t, "ir", dir, "--audience", "public")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Built movies for public")
	assert.Contains(t, out, "1 service(s), 1 endpoint(s)")
	assert.Contains(t, out, "fingerprint ")
	assert.NotContains(t, out, "Stored build")
}

func TestIRCommandJSON(t *testing.T) {
	dir := writeDefinition(t, testutil.MoviesAPI())

	out, err := execute(t, "--format", "json", "ir", dir)
	require.NoError(t, err)

	var result IRResult
	resp := decodeData(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "movies", result.APIName)
	assert.Empty(t, result.Audiences)
	assert.Len(t, result.Fingerprint, 64)
	assert.Equal(t, 2, result.Endpoints)
	require.NotNil(t, result.IR, "without --output the envelope carries the document")
	assert.Len(t, result.IR.Types, 4)
}

func TestIRCommandOutputFile(t *testing.T) {
	dir := writeDefinition(t, testutil.MoviesAPI())
	output := filepath.Join(t.TempDir(), "ir.json")

	out, err := execute(t, "--format", "json", "ir", dir, "-a", "public", "-o", output)
	require.NoError(t, err)

	var result IRResult
	decodeData(t, out, &result)
	assert.Nil(t, result.IR)
	assert.Equal(t, output, result.Output)
	assert.Equal(t, []string{"public"}, result.Audiences)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var doc ir.IntermediateRepresentation
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "movies", doc.APIName.OriginalName)
	assert.Len(t, doc.Services["service_imdb"].Endpoints, 1)

	fp, err := ir.Fingerprint(&doc)
	require.NoError(t, err)
	assert.Equal(t, result.Fingerprint, fp)
}

func TestIRStoreFilterAndBuilds(t *testing.T) {
	dir := writeDefinition(t, testutil.MoviesAPI())
	db := filepath.Join(t.TempDir(), "builds.db")

	out, err := execute(t, "--format", "json", "ir", dir, "--store", db)
	require.NoError(t, err)
	var built IRResult
	decodeData(t, out, &built)
	require.NotEmpty(t, built.BuildID)
	require.NotEmpty(t, built.RunID)

	// Same definition again: same build, new run.
	out, err = execute(t, "--format", "json", "ir", dir, "--store", db, "-a", "public")
	require.NoError(t, err)
	var public IRResult
	decodeData(t, out, &public)
	assert.Equal(t, built.BuildID, public.BuildID)
	assert.NotEqual(t, built.RunID, public.RunID)

	out, err = execute(t, "--format", "json", "filter", "--api", "movies", "--store", db, "-a", "public")
	require.NoError(t, err)
	var filtered IRResult
	decodeData(t, out, &filtered)
	assert.Equal(t, built.BuildID, filtered.BuildID)
	assert.Equal(t, public.Fingerprint, filtered.Fingerprint, "stored build projects like a fresh compile")
	assert.Equal(t, 1, filtered.Endpoints)

	out, err = execute(t, "filter", built.BuildID, "--store", db)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Built movies for all audiences")
	assert.Contains(t, out, "Stored build "+built.BuildID)

	out, err = execute(t, "--format", "json", "builds", "--store", db)
	require.NoError(t, err)
	var listed BuildsResult
	decodeData(t, out, &listed)
	require.Len(t, listed.Builds, 1)
	b := listed.Builds[0]
	assert.Equal(t, built.BuildID, b.ID)
	assert.Equal(t, "movies", b.APIName)
	require.Len(t, b.Runs, 4)
	assert.Equal(t, []string{}, b.Runs[0].Audiences)
	assert.Equal(t, []string{"public"}, b.Runs[1].Audiences)
	assert.Equal(t, built.Fingerprint, b.Runs[3].Fingerprint)

	out, err = execute(t, "builds", "--store", db)
	require.NoError(t, err)
	assert.Contains(t, out, "1  movies  "+built.BuildID)
	assert.Contains(t, out, "audiences=public")
}

func TestIRCommandErrors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		args  []string
		code  string
	}{
		{
			name: "missing directory",
			args: []string{"ir", "/nonexistent/definition"},
			code: ErrCodeNotFound,
		},
		{
			name:  "no root file",
			files: map[string]string{"a.yml": "types: {}\n"},
			code:  ErrCodeLoadFailed,
		},
		{
			name:  "unresolved reference",
			files: map[string]string{"api.yml": "name: x\n", "a.yml": "types:\n  A:\n    properties:\n      b: Missing\n"},
			code:  ErrCodeResolution,
		},
		{
			name:  "structural",
			files: map[string]string{"api.yml": "name: x\n", "errs.yml": missingDiscrimination},
			code:  ErrCodeStructural,
		},
		{
			name:  "bad language",
			files: testutil.MoviesAPI(),
			args:  []string{"--language", "cobol"},
			code:  ErrCodeInvalidOptions,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := tt.args
			if tt.files != nil {
				args = append([]string{"ir", writeDefinition(t, tt.files)}, tt.args...)
			}
			out, err := execute(t, args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.code)
			assert.Contains(t, out, "Error ["+tt.code+"]")
		})
	}
}

func TestFilterCommandErrors(t *testing.T) {
	db := filepath.Join(t.TempDir(), "builds.db")

	_, err := execute(t, "filter", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store")

	_, err = execute(t, "filter", "abc", "--store", db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeNotFound)
	_, statErr := os.Stat(db)
	assert.True(t, os.IsNotExist(statErr), "reading commands do not create the database")

	dir := writeDefinition(t, testutil.MoviesAPI())
	_, err = execute(t, "ir", dir, "--store", db)
	require.NoError(t, err)

	_, err = execute(t, "filter", "--store", db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a build id or --api is required")

	_, err = execute(t, "filter", "abc", "--api", "movies", "--store", db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")

	out, err := execute(t, "--format", "json", "filter", "abc", "--store", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	resp := decodeData(t, out, nil)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeBuildNotFound, resp.Error.Code)

	_, err = execute(t, "filter", "--api", "shows", "--store", db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeBuildNotFound)
}

func TestBuildsCommandMissingStore(t *testing.T) {
	db := filepath.Join(t.TempDir(), "builds.db")

	_, err := execute(t, "builds", "--store", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "database not found")
}
