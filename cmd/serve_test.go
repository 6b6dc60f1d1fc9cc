package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otherjamesbrown/moodsense/config"
	"github.com/otherjamesbrown/moodsense/pkg/cache"
	"github.com/otherjamesbrown/moodsense/pkg/envelope"
	"github.com/otherjamesbrown/moodsense/pkg/logging"
)

func TestServeCommand(t *testing.T) {
	cmd := NewServeCommand(testDeps(t))
	assert.Equal(t, "serve", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("addr"))
	assert.NotNil(t, cmd.Flags().Lookup("key-source"))
}

func TestServe_StopsOnCancel(t *testing.T) {
	kp, err := envelope.GenerateKeyPair()
	require.NoError(t, err)
	t.Setenv(envelope.EnvPrivateKey, kp.PrivateKey)

	deps := testDeps(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := NewServeCommand(deps)
	cmd.SetArgs([]string{"--addr", "127.0.0.1:0", "--key-source", envelope.SourceEnv})
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancellation")
	}
	assert.Equal(t, "127.0.0.1:0", deps.Config.Server.Addr)
}

func TestServe_InvalidKeySource(t *testing.T) {
	_, err := execute(t, NewServeCommand(testDeps(t)), "--key-source", "vault")
	assert.Error(t, err)
}

func TestOpenCache_Disabled(t *testing.T) {
	c, closeFn := openCache(context.Background(), config.DefaultConfig(), logging.NewNopLogger())
	assert.IsType(t, cache.Nop{}, c)
	assert.NoError(t, closeFn())
}

func TestOpenCache_UnreachableFallsBack(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Redis.Addr = "127.0.0.1:1"

	c, closeFn := openCache(context.Background(), cfg, logging.NewNopLogger())
	assert.IsType(t, cache.Nop{}, c)
	assert.NoError(t, closeFn())
}

func TestLoadDotEnv(t *testing.T) {
	const key = "MOODSENSE_DOTENV_TEST_VALUE"
	t.Cleanup(func() { os.Unsetenv(key) })

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=from-file\n"), 0600))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "from-file", os.Getenv(key))

	t.Setenv(key, "from-env")
	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-env", os.Getenv(key), "existing variables win")
}

func TestLoadDotEnv_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BAD$KEY=1\n"), 0600))
	assert.Error(t, LoadDotEnv(path))
}
