package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/moodsense/pkg/envelope"
)

// KeygenOutput is the machine-readable result of 'keygen'.
type KeygenOutput struct {
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key,omitempty"`
	StoredIn   string `json:"stored_in,omitempty"`
}

// NewKeygenCommand creates the 'keygen' command.
func NewKeygenCommand(deps *Deps) *cobra.Command {
	if deps == nil {
		deps = DefaultDeps()
	}
	var output string
	var storeKeyring bool

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a server key pair for encrypted uploads",
		Long: `Generate a fresh X25519 key pair for the encrypted upload route.

By default both keys are printed, the private key in the form the server
reads from its environment (` + envelope.EnvPrivateKey + `). With --store-keyring the private
key is written to the system keyring instead and only the public key is
printed.`,
		Example: `  # Print a key pair for a .env file
  moodsense keygen >> .env

  # Keep the private key in the system keyring
  moodsense keygen --store-keyring`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.config()
			if err != nil {
				return err
			}
			format, err := resolveFormat(output, cfg)
			if err != nil {
				return err
			}

			kp, err := envelope.GenerateKeyPair()
			if err != nil {
				return fmt.Errorf("generating key pair: %w", err)
			}

			out := KeygenOutput{PublicKey: kp.PublicKey, PrivateKey: kp.PrivateKey}
			if storeKeyring {
				if deps.Keyring == nil {
					return fmt.Errorf("no keyring available")
				}
				if err := deps.Keyring.Store(kp.PrivateKey); err != nil {
					return fmt.Errorf("storing private key: %w", err)
				}
				out.PrivateKey = ""
				out.StoredIn = deps.Keyring.Description()
			}

			stdout := cmd.OutOrStdout()
			if out.PrivateKey != "" && deps.isTerminal(stdout) {
				fmt.Fprintln(cmd.ErrOrStderr(), "Warning: the private key is printed below. Keep it out of shell history and logs.")
			}

			return writeOutput(stdout, format, out, func(w io.Writer) error {
				if out.PrivateKey != "" {
					fmt.Fprintf(w, "%s=%s\n", envelope.EnvPrivateKey, out.PrivateKey)
				} else {
					fmt.Fprintf(w, "# private key stored in %s\n", out.StoredIn)
				}
				fmt.Fprintf(w, "# public key: %s\n", out.PublicKey)
				return nil
			})
		},
	}

	outputFlag(cmd, &output)
	cmd.Flags().BoolVar(&storeKeyring, "store-keyring", false, "Store the private key in the system keyring")

	return cmd
}
