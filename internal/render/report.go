package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Zuo-Peng/chatlens/internal/aggregate"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws the 24 hourly buckets, one block per hour.
func Sparkline(hours [24]int) string {
	peak := lo.Max(hours[:])
	var b strings.Builder
	for _, c := range hours {
		if peak == 0 || c == 0 {
			b.WriteRune(' ')
			continue
		}
		idx := c * (len(sparkBlocks) - 1) / peak
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}

func joinCounted(items []aggregate.Counted) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(lo.Map(items, func(c aggregate.Counted, _ int) string {
		return fmt.Sprintf("%s (%d)", c.Key, c.Count)
	}), ", ")
}

func statsLines(s aggregate.Stats, top int) []string {
	lines := []string{
		fmt.Sprintf("  messages:   %d (avg %.1f chars, %d initiations)", s.TotalMessages, s.AverageLength, s.Initiations),
		fmt.Sprintf("  caps/?/!/.: %d / %d / %d / %d", s.CapsLockCount, s.QuestionMarkCount, s.ExclamationCount, s.DotsEndCount),
		fmt.Sprintf("  top words:  %s", joinCounted(s.TopWordsN(top))),
		fmt.Sprintf("  top emoji:  %s", joinCounted(s.TopEmojiN(top))),
		fmt.Sprintf("  hours:      |%s| peak %02d:00", Sparkline(s.MessagesByHour), s.PeakHour()),
	}
	if len(s.PhraseCount) > 0 {
		lines = append(lines, fmt.Sprintf("  phrases:    %s", joinCounted(aggregate.TopN(s.PhraseCount, 0))))
	}
	if !s.FirstMessage.IsZero() {
		lines = append(lines, fmt.Sprintf("  active:     %s .. %s",
			s.FirstMessage.Format("2006-01-02"), s.LastMessage.Format("2006-01-02")))
	}
	return lines
}

// Summary is a one-line description of an author.
func Summary(name string, s aggregate.Stats) string {
	words := lo.Map(s.TopWordsN(3), func(c aggregate.Counted, _ int) string { return c.Key })
	line := fmt.Sprintf("%s: %d messages, avg %.1f chars, peak %02d:00", name, s.TotalMessages, s.AverageLength, s.PeakHour())
	if len(words) > 0 {
		line += ", top words: " + strings.Join(words, ", ")
	}
	if s.Language != "" {
		line += ", lang " + s.Language
	}
	return line
}

type ReportOptions struct {
	Top int // entries per top-N list, 0 = 5
}

// RenderReport writes a per-author table followed by each author's
// details.
func RenderReport(w io.Writer, ds *aggregate.Dataset, opts ReportOptions) error {
	top := opts.Top
	if top <= 0 {
		top = 5
	}
	authors := ds.Authors()

	if _, err := fmt.Fprintf(w, "%s (%s, %d files, %d messages, %d authors) run %s\n\n",
		ds.ChatName, ds.Format, len(ds.Files), ds.MessageCount(), len(authors), shortID(ds.RunID)); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Author", "Msgs", "Avg len", "Caps", "?", "!", "Ends .", "Init", "Lang", "Peak"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for _, name := range authors {
		s := ds.Users[name].Stats
		table.Append([]string{
			name,
			strconv.Itoa(s.TotalMessages),
			strconv.FormatFloat(s.AverageLength, 'f', 1, 64),
			strconv.Itoa(s.CapsLockCount),
			strconv.Itoa(s.QuestionMarkCount),
			strconv.Itoa(s.ExclamationCount),
			strconv.Itoa(s.DotsEndCount),
			strconv.Itoa(s.Initiations),
			lo.Ternary(s.Language == "", "-", s.Language),
			fmt.Sprintf("%02d:00", s.PeakHour()),
		})
	}
	table.Render()

	for _, name := range authors {
		if _, err := fmt.Fprintf(w, "\n%s\n%s\n", name, strings.Join(statsLines(ds.Users[name].Stats, top), "\n")); err != nil {
			return err
		}
	}
	return nil
}

// Export encodes the dataset as "json" or "yaml".
func Export(w io.Writer, ds *aggregate.Dataset, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ds)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(ds); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown export format: %s", format)
	}
}
