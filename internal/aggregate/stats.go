package aggregate

import (
	"cmp"
	"slices"
	"time"

	"github.com/Zuo-Peng/chatlens/internal/parse"
	"github.com/samber/lo"
)

// Stats is the per-author aggregate. AverageLength is only filled in once the
// whole timeline has been walked.
type Stats struct {
	TotalMessages     int            `json:"total_messages" yaml:"total_messages"`
	AverageLength     float64        `json:"average_length" yaml:"average_length"`
	CapsLockCount     int            `json:"caps_lock_count" yaml:"caps_lock_count"`
	QuestionMarkCount int            `json:"question_mark_count" yaml:"question_mark_count"`
	ExclamationCount  int            `json:"exclamation_count" yaml:"exclamation_count"`
	DotsEndCount      int            `json:"dots_end_count" yaml:"dots_end_count"`
	EmojiCount        map[string]int `json:"emoji_count" yaml:"emoji_count"`
	TopWords          map[string]int `json:"top_words" yaml:"top_words"`
	MessagesByHour    [24]int        `json:"messages_by_hour" yaml:"messages_by_hour"`
	Initiations       int            `json:"initiations" yaml:"initiations"`
	PhraseCount       map[string]int `json:"phrase_count,omitempty" yaml:"phrase_count,omitempty"`
	Language          string         `json:"language,omitempty" yaml:"language,omitempty"`
	FirstMessage      time.Time      `json:"first_message" yaml:"first_message"`
	LastMessage       time.Time      `json:"last_message" yaml:"last_message"`

	totalLength int
}

func newStats() Stats {
	return Stats{
		EmojiCount: make(map[string]int),
		TopWords:   make(map[string]int),
	}
}

// Counted is one entry of a frequency map.
type Counted struct {
	Key   string `json:"key" yaml:"key"`
	Count int    `json:"count" yaml:"count"`
}

// TopWordsN returns the n most frequent words, ties broken alphabetically.
// n <= 0 returns all of them.
func (s Stats) TopWordsN(n int) []Counted {
	return TopN(s.TopWords, n)
}

// TopEmojiN returns the n most frequent emoji.
func (s Stats) TopEmojiN(n int) []Counted {
	return TopN(s.EmojiCount, n)
}

// PeakHour is the busiest hour of day, the earliest one on ties.
func (s Stats) PeakHour() int {
	peak := 0
	for h, c := range s.MessagesByHour {
		if c > s.MessagesByHour[peak] {
			peak = h
		}
	}
	return peak
}

// TopN sorts a frequency map by count, then key, and keeps n entries.
func TopN(m map[string]int, n int) []Counted {
	entries := lo.Map(lo.Entries(m), func(e lo.Entry[string, int], _ int) Counted {
		return Counted{Key: e.Key, Count: e.Value}
	})
	slices.SortFunc(entries, func(a, b Counted) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// UserProfile bundles one author's timeline with its statistics.
type UserProfile struct {
	Name     string          `json:"name" yaml:"name"`
	Stats    Stats           `json:"stats" yaml:"stats"`
	Messages []parse.Message `json:"messages" yaml:"messages"`
}

// Dataset is the result of one ingestion run.
type Dataset struct {
	RunID    string                  `json:"run_id" yaml:"run_id"`
	ChatName string                  `json:"chat_name" yaml:"chat_name"`
	Format   parse.Format            `json:"format" yaml:"format"`
	Files    []string                `json:"files" yaml:"files"`
	Users    map[string]*UserProfile `json:"users" yaml:"users"`
}

// Authors returns the author names, most active first, then by name.
func (d *Dataset) Authors() []string {
	names := lo.Keys(d.Users)
	slices.SortFunc(names, func(a, b string) int {
		if c := cmp.Compare(d.Users[b].Stats.TotalMessages, d.Users[a].Stats.TotalMessages); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return names
}

// Lookup returns the profile for name.
func (d *Dataset) Lookup(name string) (*UserProfile, bool) {
	u, ok := d.Users[name]
	return u, ok
}

// MessageCount is the size of the canonical timeline.
func (d *Dataset) MessageCount() int {
	return lo.SumBy(lo.Values(d.Users), func(u *UserProfile) int { return u.Stats.TotalMessages })
}
