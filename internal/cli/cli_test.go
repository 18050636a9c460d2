package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	var out bytes.Buffer
	cfg, exit, err := Parse([]string{"graph.yaml"}, &out)
	require.NoError(t, err)
	require.False(t, exit)

	assert.Equal(t, "graph.yaml", cfg.GraphPath)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.ValidateOnly)
	assert.Empty(t, cfg.Params)
}

func TestParse_ParamsKeepYAMLTypes(t *testing.T) {
	var out bytes.Buffer
	cfg, exit, err := Parse([]string{
		"--param", "rng_seed=42",
		"--param", "ratio=0.5",
		"--param", "verbose=true",
		"--param", "label=plain",
		"graph.yaml",
	}, &out)
	require.NoError(t, err)
	require.False(t, exit)

	assert.Equal(t, 42, cfg.Params["rng_seed"])
	assert.Equal(t, 0.5, cfg.Params["ratio"])
	assert.Equal(t, true, cfg.Params["verbose"])
	assert.Equal(t, "plain", cfg.Params["label"])
}

func TestParse_ValidateFlag(t *testing.T) {
	var out bytes.Buffer
	cfg, _, err := Parse([]string{"--validate", "graph.yaml"}, &out)
	require.NoError(t, err)
	assert.True(t, cfg.ValidateOnly)
}

func TestParse_NoPathPrintsUsage(t *testing.T) {
	var out bytes.Buffer
	cfg, exit, err := Parse(nil, &out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParse_Errors(t *testing.T) {
	cases := [][]string{
		{"--param", "novalue", "graph.yaml"},
		{"--log-format", "xml", "graph.yaml"},
		{"--log-level", "loud", "graph.yaml"},
		{"one.yaml", "two.yaml"},
	}
	for _, args := range cases {
		var out bytes.Buffer
		_, _, err := Parse(args, &out)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr, "args %v", args)
		assert.Equal(t, 2, exitErr.Code, "args %v", args)
	}
}
