package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otherjamesbrown/moodsense/pkg/envelope"
)

func TestKeygen_JSON(t *testing.T) {
	out, err := execute(t, NewKeygenCommand(testDeps(t)), "-o", "json")
	require.NoError(t, err)

	var got KeygenOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.NotEmpty(t, got.PrivateKey)
	assert.Empty(t, got.StoredIn)

	d, err := envelope.NewDecrypter(got.PrivateKey)
	require.NoError(t, err)
	assert.Equal(t, got.PublicKey, d.PublicKeyB64())
}

func TestKeygen_Text(t *testing.T) {
	out, err := execute(t, NewKeygenCommand(testDeps(t)))
	require.NoError(t, err)
	assert.Contains(t, out, envelope.EnvPrivateKey+"=")
	assert.Contains(t, out, "# public key: ")
}

func TestKeygen_StoreKeyring(t *testing.T) {
	deps := testDeps(t)
	store := &fakeKeyStore{}
	deps.Keyring = store

	out, err := execute(t, NewKeygenCommand(deps), "--store-keyring", "-o", "json")
	require.NoError(t, err)

	var got KeygenOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Empty(t, got.PrivateKey)
	assert.Equal(t, "test keyring", got.StoredIn)
	require.Len(t, store.stored, 1)

	d, err := envelope.NewDecrypter(store.stored[0])
	require.NoError(t, err)
	assert.Equal(t, got.PublicKey, d.PublicKeyB64())
}

func TestKeygen_StoreFails(t *testing.T) {
	deps := testDeps(t)
	deps.Keyring = &fakeKeyStore{err: errors.New("locked")}
	_, err := execute(t, NewKeygenCommand(deps), "--store-keyring")
	assert.ErrorContains(t, err, "locked")
}

func TestKeygen_TerminalWarning(t *testing.T) {
	deps := testDeps(t)
	deps.IsTerminal = func(int) bool { return true }

	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer f.Close()

	var stderr bytes.Buffer
	cmd := NewKeygenCommand(deps)
	cmd.SetOut(f)
	cmd.SetErr(&stderr)
	cmd.SetArgs(nil)
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Contains(t, stderr.String(), "Warning: the private key is printed below")
}
