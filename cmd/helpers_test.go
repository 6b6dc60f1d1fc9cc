package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/otherjamesbrown/moodsense/config"
	"github.com/otherjamesbrown/moodsense/pkg/cache"
	"github.com/otherjamesbrown/moodsense/pkg/logging"
)

const sampleExport = `11/10/2024, 14:23 - Mario Rossi: Ciao! 😀
11/10/2024, 14:25 - Anna: Tutto bene? Sono felice oggi
11/10/2024, 14:30 - Anna: Anna added Luca
12/10/2024, 09:00 - Mario Rossi: <Media omitted>
12/10/2024, 09:05 - Anna: Perfetto 😀😀
ci vediamo domani
`

// fakeKeyStore records stored keys.
type fakeKeyStore struct {
	stored []string
	err    error
}

func (f *fakeKeyStore) Store(key string) error {
	if f.err != nil {
		return f.err
	}
	f.stored = append(f.stored, key)
	return nil
}

func (f *fakeKeyStore) Description() string { return "test keyring" }

func testDeps(t *testing.T) *Deps {
	t.Helper()
	return &Deps{
		Config: config.DefaultConfig(),
		Logger: logging.NewNopLogger(),
		OpenCache: func(context.Context, *config.Config, logging.Logger) (cache.Cache, func() error) {
			return cache.Nop{}, func() error { return nil }
		},
		Keyring:    &fakeKeyStore{},
		IsTerminal: func(int) bool { return false },
	}
}

func writeExport(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chat.txt")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

// execute runs c with args and returns what it wrote to stdout.
func execute(t *testing.T, c *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	c.SetOut(&out)
	c.SetErr(&errOut)
	c.SetArgs(args)
	err := c.ExecuteContext(context.Background())
	return out.String(), err
}
