package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/dukex/sdsprotocol/pkg/models"
	"github.com/dukex/sdsprotocol/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeArtifacts creates the scaffold workflow outputs and returns them as command line arguments.
func writeArtifacts(t *testing.T) []string {
	t.Helper()

	dir := t.TempDir()

	var args []string
	for _, name := range []string{"scaffold.json", "viewer.json", "webgl.json", "thumbnail.json"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))

		args = append(args, path)
	}

	webgl := filepath.Join(dir, "webgl")
	require.NoError(t, os.Mkdir(webgl, 0o750))

	provenance := filepath.Join(dir, "provenance.json")
	require.NoError(t, os.WriteFile(provenance, []byte(`{"version": "0.1.0"}`), 0o600))

	return append(args, webgl, "@"+provenance)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	root := newRootCommand()
	root.Writer = &out

	err := root.Run(context.Background(), append([]string{"sdsprotocol", "--log-level", "error"}, args...))

	return out.String(), err
}

func TestListCommand(t *testing.T) {
	out, err := run(t, "list")
	require.NoError(t, err)
	assert.Equal(t, "SimpleScaffold\t0.1.0\tcomputational\n", out)
}

func TestDescribeCommand(t *testing.T) {
	out, err := run(t, "describe", "SimpleScaffold")
	require.NoError(t, err)
	assert.Contains(t, out, "# SimpleScaffold\n")

	_, err = run(t, "describe", "ComplexScaffold")
	assert.Error(t, err)

	_, err = run(t, "describe")
	assert.ErrorIs(t, err, errMissingArgument)
}

func TestMatchCommand(t *testing.T) {
	artifacts := writeArtifacts(t)

	out, err := run(t, append([]string{"match", "--protocol", "SimpleScaffold"}, artifacts...)...)
	require.NoError(t, err)

	var p models.Protocol
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	require.Len(t, p.Inputs, 6)
	assert.Equal(t, artifacts[0], p.Inputs[0].Value)
	assert.Equal(t, map[string]any{"version": "0.1.0"}, p.Inputs[5].Value)

	_, err = run(t, append([]string{"match", "--protocol", "SimpleScaffold"}, artifacts[:5]...)...)
	assert.Error(t, err)
}

func TestStepCommands(t *testing.T) {
	store := t.TempDir()
	artifacts := writeArtifacts(t)

	_, err := run(t, "--store", store, "step", "save", "--identifier", "scaffold-sds", "--protocol", "SimpleScaffold")
	require.NoError(t, err)

	_, err = run(t, "--store", store, "step", "save", "--identifier", "draft")
	assert.Error(t, err, "unconfigured steps cannot be saved")

	out, err := run(t, "--store", store, "step", "list")
	require.NoError(t, err)
	assert.Equal(t, "scaffold-sds\tSimpleScaffold\n", out)

	out, err = run(t, append([]string{"--store", store, "step", "run", "scaffold-sds"}, artifacts...)...)
	require.NoError(t, err)

	var result workflow.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 6, result.Assignment.Len())

	_, err = run(t, "--store", store, "step", "run", "scaffold-sds", artifacts[0])
	assert.ErrorIs(t, err, workflow.ErrLocationsRejected)

	_, err = run(t, "--store", store, "step", "delete", "scaffold-sds")
	require.NoError(t, err)

	out, err = run(t, "--store", store, "step", "list")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestStepImportCommand(t *testing.T) {
	store := t.TempDir()
	file := filepath.Join(t.TempDir(), "steps.yaml")
	require.NoError(t, os.WriteFile(file, []byte("steps:\n  - identifier: a\n    protocol_name: SimpleScaffold\n  - identifier: b\n    protocol_name: SimpleScaffold\n"), 0o600))

	_, err := run(t, "--store", store, "step", "import", file)
	require.NoError(t, err)

	out, err := run(t, "--store", store, "step", "list")
	require.NoError(t, err)
	assert.Equal(t, "a\tSimpleScaffold\nb\tSimpleScaffold\n", out)
}
