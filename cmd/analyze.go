package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/moodsense/pkg/analysis"
	"github.com/otherjamesbrown/moodsense/pkg/enrichment"
	"github.com/otherjamesbrown/moodsense/pkg/stats"
	"github.com/otherjamesbrown/moodsense/pkg/textnorm"
)

type analyzeFlags struct {
	output          string
	includeMessages bool
	keepSystem      bool
	dropMedia       bool
	topEmojis       int
	topWords        int
}

// NewAnalyzeCommand creates the 'analyze' command.
func NewAnalyzeCommand(deps *Deps) *cobra.Command {
	if deps == nil {
		deps = DefaultDeps()
	}
	var f analyzeFlags

	cmd := &cobra.Command{
		Use:   "analyze <export.txt>",
		Short: "Analyze a chat export",
		Long: `Parse a WhatsApp text export, score every message for emotion and
sentiment, and print the conversation report.

The report covers metadata (participants, period, media), per-user emotion
statistics, activity by hour and weekday, the longest streak of days on
which at least two participants wrote, and per-user emoji and word rankings.

Pass "-" to read the export from stdin. When a Redis cache is configured,
repeated analyses of the same export are served from it.`,
		Example: `  # Summary of a chat
  moodsense analyze chat.txt

  # Full report as JSON, including every scored message
  moodsense analyze chat.txt -o json --include-messages

  # Keep system notices and drop media placeholders
  moodsense analyze chat.txt --keep-system --drop-media`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, deps, &f, args[0])
		},
	}

	outputFlag(cmd, &f.output)
	cmd.Flags().BoolVar(&f.includeMessages, "include-messages", false, "Include every scored message in the report")
	cmd.Flags().BoolVar(&f.keepSystem, "keep-system", false, "Keep system notices (joins, encryption notice, ...)")
	cmd.Flags().BoolVar(&f.dropMedia, "drop-media", false, "Drop media placeholder messages")
	cmd.Flags().IntVar(&f.topEmojis, "top-emojis", 0, "Emojis ranked per user (default from config)")
	cmd.Flags().IntVar(&f.topWords, "top-words", 0, "Words ranked per user (default from config)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, deps *Deps, f *analyzeFlags, path string) error {
	base, err := deps.config()
	if err != nil {
		return err
	}
	format, err := resolveFormat(f.output, base)
	if err != nil {
		return err
	}

	cfg := *base
	flags := cmd.Flags()
	if flags.Changed("include-messages") {
		cfg.Analysis.IncludeMessages = f.includeMessages
	}
	if flags.Changed("keep-system") {
		cfg.Analysis.SkipSystemMessages = !f.keepSystem
	}
	if flags.Changed("drop-media") {
		cfg.Analysis.PreserveMediaMessages = !f.dropMedia
	}
	if f.topEmojis > 0 {
		cfg.Analysis.TopEmojis = f.topEmojis
	}
	if f.topWords > 0 {
		cfg.Analysis.TopWords = f.topWords
	}

	raw, err := readExport(path, cmd.InOrStdin())
	if err != nil {
		return err
	}
	text, err := textnorm.Decode(raw)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	c, closeCache := deps.openCache(ctx, &cfg)
	defer func() { _ = closeCache() }()

	report, err := newAnalyzer(&cfg, deps.logger(), c, nil).Analyze(ctx, text)
	if err != nil {
		return err
	}

	return writeOutput(cmd.OutOrStdout(), format, report, func(w io.Writer) error {
		return printReport(w, report)
	})
}

func printReport(w io.Writer, r *analysis.Report) error {
	meta := r.Metadata

	cached := ""
	if r.Cached {
		cached = " (cached)"
	}
	fmt.Fprintf(w, "Analysis %s%s\n\n", r.ID, cached)

	if meta.TotalMessages == 0 {
		fmt.Fprintln(w, "No messages found.")
		if r.ParseStats.UnresolvedTimestamps > 0 {
			fmt.Fprintf(w, "%d header lines had unreadable timestamps.\n", r.ParseStats.UnresolvedTimestamps)
		}
		return nil
	}

	fmt.Fprintf(w, "  Messages:       %d (%d media)\n", meta.TotalMessages, meta.TotalMedia)
	fmt.Fprintf(w, "  Participants:   %s\n", strings.Join(meta.Users, ", "))
	if meta.Start != nil && meta.End != nil {
		fmt.Fprintf(w, "  Period:         %s to %s\n", meta.Start.Format("2006-01-02"), meta.End.Format("2006-01-02"))
	}
	fmt.Fprintf(w, "  Messages/day:   %.2f\n", r.MessagesPerDay)
	fmt.Fprintf(w, "  Sentiment:      %+.3f\n", r.OverallSentimentAvg)
	if s := r.LongestStreak; s.Days > 0 && s.Start != nil && s.End != nil {
		fmt.Fprintf(w, "  Longest streak: %d days (%s to %s)\n", s.Days, s.Start, s.End)
	} else {
		fmt.Fprintln(w, "  Longest streak: none")
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PARTICIPANT\tMESSAGES\tAVG LENGTH\tEMOTION\tEMOJIS\tWORDS")
	fmt.Fprintln(tw, "-----------\t--------\t----------\t-------\t------\t-----")
	for _, user := range meta.Users {
		fmt.Fprintf(tw, "%s\t%d\t%.1f\t%s\t%s\t%s\n",
			truncate(user, 24),
			r.MessagesPerUser[user],
			r.AvgMessageLengthPerUser[user],
			topEmotion(r.UserEmotionStats[user]),
			joinEmojis(r.TopEmojisPerUser[user], 5),
			joinWords(r.TopWordsPerUser[user], 5),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if r.ParseStats.UnresolvedTimestamps > 0 {
		fmt.Fprintf(w, "\n%d header lines had unreadable timestamps and were skipped.\n", r.ParseStats.UnresolvedTimestamps)
	}
	return nil
}

// topEmotion is the label most often dominant, or "-" when none was.
func topEmotion(st map[enrichment.Label]stats.EmotionStat) string {
	best, bestN := "-", 0
	for _, label := range enrichment.Labels {
		if n := st[label].Frequency; n > bestN {
			best, bestN = string(label), n
		}
	}
	if bestN == 0 {
		return best
	}
	return fmt.Sprintf("%s (%.0f%%)", best, st[enrichment.Label(best)].Percentage)
}

func joinEmojis(list []stats.EmojiCount, n int) string {
	if len(list) == 0 {
		return "-"
	}
	parts := make([]string, 0, n)
	for i, e := range list {
		if i == n {
			break
		}
		parts = append(parts, e.Emoji)
	}
	return strings.Join(parts, " ")
}

func joinWords(list []stats.WordCount, n int) string {
	if len(list) == 0 {
		return "-"
	}
	parts := make([]string, 0, n)
	for i, wc := range list {
		if i == n {
			break
		}
		parts = append(parts, wc.Word)
	}
	return strings.Join(parts, ", ")
}
