package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/moodsense/pkg/chat"
	"github.com/otherjamesbrown/moodsense/pkg/logging"
	"github.com/otherjamesbrown/moodsense/pkg/textnorm"
)

const dateFlagLayout = "2006-01-02"

type parseFlags struct {
	output     string
	keepSystem bool
	dropMedia  bool
	user       string
	from       string
	to         string
	limit      int
}

// ParseOutput is the machine-readable result of 'parse'.
type ParseOutput struct {
	Metadata chat.Metadata   `json:"metadata"`
	Stats    chat.ParseStats `json:"parse_stats"`
	Messages []chat.Message  `json:"messages"`
}

// NewParseCommand creates the 'parse' command.
func NewParseCommand(deps *Deps) *cobra.Command {
	if deps == nil {
		deps = DefaultDeps()
	}
	var f parseFlags

	cmd := &cobra.Command{
		Use:   "parse <export.txt>",
		Short: "Parse a chat export without scoring it",
		Long: `Parse a WhatsApp text export and print the structured messages.

Header lines start a message, other lines continue the previous one. Dates
are read day first unless only the month-first reading is a real date, and
both 24-hour and AM/PM clocks are accepted. No emotion scoring is done.

Use --user, --from and --to to narrow the listing. Dates are YYYY-MM-DD and
--to includes the whole day.`,
		Example: `  # List every message
  moodsense parse chat.txt

  # Messages from one participant in January, as JSON
  moodsense parse chat.txt --user "Mario Rossi" --from 2024-01-01 --to 2024-01-31 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, deps, &f, args[0])
		},
	}

	outputFlag(cmd, &f.output)
	cmd.Flags().BoolVar(&f.keepSystem, "keep-system", false, "Keep system notices")
	cmd.Flags().BoolVar(&f.dropMedia, "drop-media", false, "Drop media placeholder messages")
	cmd.Flags().StringVar(&f.user, "user", "", "Only messages from this participant")
	cmd.Flags().StringVar(&f.from, "from", "", "Only messages on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "Only messages on or before this date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "Maximum messages to print in text output (0 for all)")

	return cmd
}

func runParse(cmd *cobra.Command, deps *Deps, f *parseFlags, path string) error {
	cfg, err := deps.config()
	if err != nil {
		return err
	}
	format, err := resolveFormat(f.output, cfg)
	if err != nil {
		return err
	}
	from, to, err := parseDateRange(f.from, f.to)
	if err != nil {
		return err
	}

	opts := cfg.ParseOptions()
	if cmd.Flags().Changed("keep-system") {
		opts.SkipSystemMessages = !f.keepSystem
	}
	if cmd.Flags().Changed("drop-media") {
		opts.PreserveMediaMessages = !f.dropMedia
	}

	raw, err := readExport(path, cmd.InOrStdin())
	if err != nil {
		return err
	}
	text, err := textnorm.Decode(raw)
	if err != nil {
		return err
	}

	res := chat.Parse(text, opts)
	msgs := res.Messages
	if f.user != "" {
		msgs = chat.FilterByUser(msgs, f.user)
	}
	if from != nil || to != nil {
		msgs = chat.FilterByDateRange(msgs, from, to)
	}

	deps.logger().Debug("Parsed export",
		logging.F("lines", res.Stats.Lines),
		logging.F("messages", len(res.Messages)),
		logging.F("selected", len(msgs)),
		logging.F("unresolved_timestamps", res.Stats.UnresolvedTimestamps))

	out := ParseOutput{
		Metadata: chat.ExtractMetadata(msgs),
		Stats:    res.Stats,
		Messages: msgs,
	}
	return writeOutput(cmd.OutOrStdout(), format, out, func(w io.Writer) error {
		return printMessages(w, out, f.limit)
	})
}

// parseDateRange turns the --from/--to flags into bounds. to covers its
// whole day.
func parseDateRange(fromStr, toStr string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if fromStr != "" {
		t, err := time.Parse(dateFlagLayout, fromStr)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid --from date %q (want YYYY-MM-DD)", fromStr)
		}
		from = &t
	}
	if toStr != "" {
		t, err := time.Parse(dateFlagLayout, toStr)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid --to date %q (want YYYY-MM-DD)", toStr)
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, nil, fmt.Errorf("--from %s is after --to %s", fromStr, toStr)
	}
	return from, to, nil
}

func printMessages(w io.Writer, out ParseOutput, limit int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tUSER\tKIND\tMESSAGE")
	fmt.Fprintln(tw, "----\t----\t----\t-------")

	shown := 0
	for _, m := range out.Messages {
		if limit > 0 && shown == limit {
			break
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			m.Timestamp.Format("2006-01-02 15:04"),
			truncate(m.User, 20),
			messageKind(m),
			truncate(firstLine(m.Body), 60),
		)
		shown++
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d messages from %d participants", len(out.Messages), out.Metadata.NumUsers())
	if shown < len(out.Messages) {
		fmt.Fprintf(w, " (%d shown)", shown)
	}
	fmt.Fprintln(w)
	if n := out.Stats.UnresolvedTimestamps; n > 0 {
		fmt.Fprintf(w, "%d header lines had unreadable timestamps.\n", n)
	}
	return nil
}

func messageKind(m chat.Message) string {
	switch {
	case m.IsSystem:
		return "system"
	case m.IsMedia && m.MediaType != "":
		return string(m.MediaType)
	case m.IsMedia:
		return "media"
	default:
		return "text"
	}
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i] + " ..."
		}
	}
	return s
}
