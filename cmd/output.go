package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/otherjamesbrown/moodsense/config"
)

// outputFlag registers -o/--output on cmd, bound to dst.
func outputFlag(cmd *cobra.Command, dst *string) {
	cmd.Flags().StringVarP(dst, "output", "o", "", "Output format: text, json, yaml (default from config)")
}

// resolveFormat picks the flag value when set, otherwise the configured format.
func resolveFormat(flag string, cfg *config.Config) (config.OutputFormat, error) {
	if flag == "" {
		return cfg.Output, nil
	}
	f := config.OutputFormat(flag)
	if !f.IsValid() {
		return "", fmt.Errorf("invalid output format: %q (must be text, json, or yaml)", flag)
	}
	return f, nil
}

// writeOutput renders v in format. Text output is delegated to text.
func writeOutput(w io.Writer, format config.OutputFormat, v interface{}, text func(io.Writer) error) error {
	switch format {
	case config.OutputFormatJSON:
		return outputJSONIndent(w, v)
	case config.OutputFormatYAML:
		return outputYAMLDoc(w, v)
	default:
		return text(w)
	}
}

func outputJSONIndent(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func outputYAMLDoc(w io.Writer, v interface{}) error {
	// JSON round-trip so YAML keys and custom marshalers match the JSON form.
	jdata, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var obj interface{}
	if err := json.Unmarshal(jdata, &obj); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(obj); err != nil {
		return err
	}
	return enc.Close()
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
