package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/openclaw-adapter/internal/config"
	"github.com/yourusername/openclaw-adapter/internal/models"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "adapter.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func lookup(vals map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vals[k]
		return v, ok
	}
}

func resetFlags(t *testing.T) {
	t.Helper()
	gatewayURL, timeout, debugMode = "", 0, false
	t.Cleanup(func() { gatewayURL, timeout, debugMode = "", 0, false })
}

func TestLoadConfigPrecedence(t *testing.T) {
	resetFlags(t)
	path := writeConfig(t, "gateway:\n  url: http://file.test:1\n  timeoutSeconds: 2\n")

	cfg, err := loadConfig(path, lookup(nil))
	require.NoError(t, err)
	assert.Equal(t, "http://file.test:1", cfg.BaseURL())
	assert.Equal(t, 2*time.Second, cfg.Timeout())

	cfg, err = loadConfig(path, lookup(map[string]string{
		config.EnvGatewayURL: "http://env.test:2/",
		config.EnvToken:      "tok",
	}))
	require.NoError(t, err)
	assert.Equal(t, "http://env.test:2", cfg.BaseURL())
	assert.Equal(t, "tok", cfg.Gateway.Token)

	gatewayURL = "http://flag.test:3"
	timeout = 500 * time.Millisecond
	cfg, err = loadConfig(path, lookup(map[string]string{config.EnvGatewayURL: "http://env.test:2"}))
	require.NoError(t, err)
	assert.Equal(t, "http://flag.test:3", cfg.BaseURL())
	assert.Equal(t, 500*time.Millisecond, cfg.Timeout())
}

func TestLoadConfigPathFromEnv(t *testing.T) {
	resetFlags(t)
	path := writeConfig(t, "gateway:\n  url: http://viaenv.test\n")

	cfg, err := loadConfig("", lookup(map[string]string{config.EnvConfigPath: path}))
	require.NoError(t, err)
	assert.Equal(t, "http://viaenv.test", cfg.BaseURL())
}

func TestLoadConfigErrorsStillReturnConfig(t *testing.T) {
	resetFlags(t)

	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"), lookup(nil))
	assert.Error(t, err)
	require.NotNil(t, cfg)

	path := writeConfig(t, "gateway:\n  url: http://ok.test\n")
	cfg, err = loadConfig(path, lookup(map[string]string{config.EnvGatewayURL: "ftp://nope"}))
	assert.Error(t, err)
	require.NotNil(t, cfg)
}

func TestDebugFlagForcesLevel(t *testing.T) {
	resetFlags(t)
	debugMode = true
	cfg, err := loadConfig(writeConfig(t, "logging:\n  level: warn\n"), lookup(nil))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestParseParams(t *testing.T) {
	params, err := parseParams("")
	require.NoError(t, err)
	assert.Empty(t, params)

	params, err = parseParams(`{"limit":5,"sessionID":"main"}`)
	require.NoError(t, err)
	assert.Equal(t, 5.0, params["limit"])
	assert.Equal(t, "main", params["sessionID"])

	params, err = parseParams("null")
	require.NoError(t, err)
	assert.NotNil(t, params)

	_, err = parseParams(`[1,2]`)
	assert.Error(t, err)
	_, err = parseParams(`{bad`)
	assert.Error(t, err)
}

func TestWriteInvocationError(t *testing.T) {
	resetFlags(t)
	rootCmd.SetArgs([]string{"stray-argument"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	cmd, err := rootCmd.ExecuteC()
	require.Error(t, err)
	assert.Same(t, rootCmd, cmd)

	var buf bytes.Buffer
	require.NoError(t, writeInvocationError(&buf, err))

	line := buf.String()
	assert.Equal(t, 1, strings.Count(line, "\n"))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &decoded))
	assert.Equal(t, false, decoded["ok"])
	assert.Equal(t, "unknown", decoded["id"])
	e := decoded["error"].(map[string]any)
	assert.Equal(t, models.CodeBadRequestJSON, e["code"])
	assert.Contains(t, e["message"], "invalid_invocation:")
}
