package aggregate

import (
	"testing"
	"time"
	"unicode/utf8"

	"github.com/Zuo-Peng/chatlens/internal/parse"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func msg(offset time.Duration, author, content string) parse.Message {
	return parse.Message{Timestamp: base.Add(offset), Author: author, Content: content}
}

func TestAggregate_BasicCounts(t *testing.T) {
	req := require.New(t)

	timeline := []parse.Message{
		msg(0, "Alice", "HELLO WORLD"),
		msg(time.Minute, "Bob", "are you there?"),
		msg(2*time.Minute, "Alice", "yes! see you soon."),
		msg(3*time.Minute, "Bob", "12345"),
		msg(4*time.Minute, "Bob", "😀"),
	}

	var agg Aggregator
	ds := agg.Aggregate("Chat", timeline)

	req.NotEmpty(ds.RunID)
	req.Equal("Chat", ds.ChatName)
	req.Len(ds.Users, 2)

	alice, ok := ds.Lookup("Alice")
	req.True(ok)
	req.Equal(2, alice.Stats.TotalMessages)
	req.Equal(1, alice.Stats.CapsLockCount)
	req.Equal(1, alice.Stats.ExclamationCount)
	req.Equal(1, alice.Stats.DotsEndCount)
	req.Equal(0, alice.Stats.QuestionMarkCount)

	bob, ok := ds.Lookup("Bob")
	req.True(ok)
	req.Equal(3, bob.Stats.TotalMessages)
	req.Equal(0, bob.Stats.CapsLockCount)
	req.Equal(1, bob.Stats.QuestionMarkCount)
	req.Equal(map[string]int{"😀": 1}, bob.Stats.EmojiCount)

	_, ok = ds.Lookup("Carol")
	req.False(ok)
	req.Equal(5, ds.MessageCount())
	req.Equal([]string{"Bob", "Alice"}, ds.Authors())
}

func TestAggregate_HourSumAndAverageLength(t *testing.T) {
	req := require.New(t)

	timeline := []parse.Message{
		msg(0, "Alice", "short"),
		msg(3*time.Hour, "Alice", "привет, как дела"),
		msg(14*time.Hour, "Alice", "a slightly longer message here"),
		msg(20*time.Hour, "Alice", ""),
	}

	ds := (&Aggregator{}).Aggregate("c", timeline)
	s := ds.Users["Alice"].Stats

	sum := 0
	for _, c := range s.MessagesByHour {
		sum += c
	}
	req.Equal(s.TotalMessages, sum)
	req.Equal(1, s.MessagesByHour[9])
	req.Equal(1, s.MessagesByHour[12])
	req.Equal(1, s.MessagesByHour[23])
	req.Equal(1, s.MessagesByHour[5])

	total := 0
	for _, m := range timeline {
		total += utf8.RuneCountInString(m.Content)
	}
	req.InDelta(float64(total), s.AverageLength*float64(s.TotalMessages), 1e-9)
	req.Equal(base, s.FirstMessage)
	req.Equal(base.Add(20*time.Hour), s.LastMessage)
}

func TestAggregate_HourUsesMessageLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	m := parse.Message{Timestamp: time.Date(2024, 1, 1, 23, 30, 0, 0, loc), Author: "A", Content: "x"}

	ds := (&Aggregator{}).Aggregate("c", []parse.Message{m})
	require.Equal(t, 1, ds.Users["A"].Stats.MessagesByHour[23])
}

func TestAggregate_Words(t *testing.T) {
	ds := (&Aggregator{}).Aggregate("c", []parse.Message{msg(0, "A", "the cat and the dog")})
	require.Equal(t, map[string]int{"cat": 1, "dog": 1}, ds.Users["A"].Stats.TopWords)
}

func TestAggregate_Initiations(t *testing.T) {
	req := require.New(t)

	timeline := []parse.Message{
		msg(0, "Alice", "morning"),
		msg(time.Minute, "Bob", "hey"),
		msg(7*time.Hour, "Bob", "anyone?"),
		msg(7*time.Hour+time.Minute, "Alice", "here"),
		msg(20*time.Hour, "Alice", "night"),
	}

	ds := (&Aggregator{}).Aggregate("c", timeline)
	req.Equal(2, ds.Users["Alice"].Stats.Initiations)
	req.Equal(1, ds.Users["Bob"].Stats.Initiations)

	ds = (&Aggregator{InitiationGap: 24 * time.Hour}).Aggregate("c", timeline)
	req.Equal(1, ds.Users["Alice"].Stats.Initiations)
	req.Equal(0, ds.Users["Bob"].Stats.Initiations)
}

func TestAggregate_TrackedPhrases(t *testing.T) {
	req := require.New(t)

	pm, err := NewPhraseMatcher([]string{"Good Morning", "  ", "thanks"})
	req.NoError(err)

	timeline := []parse.Message{
		msg(0, "A", "good morning! GOOD MORNING"),
		msg(time.Minute, "A", "thanks a lot"),
		msg(2*time.Minute, "B", "nothing here"),
	}
	ds := (&Aggregator{Phrases: pm}).Aggregate("c", timeline)

	req.Equal(map[string]int{"good morning": 2, "thanks": 1}, ds.Users["A"].Stats.PhraseCount)
	req.Nil(ds.Users["B"].Stats.PhraseCount)
}

func TestAggregate_Language(t *testing.T) {
	text := "Привет! Сегодня отличная погода, давай встретимся вечером в парке и обсудим наши планы на выходные."
	ds := (&Aggregator{}).Aggregate("c", []parse.Message{msg(0, "A", text)})
	require.Equal(t, "ru", ds.Users["A"].Stats.Language)

	ds = (&Aggregator{LanguageSample: -1}).Aggregate("c", []parse.Message{msg(0, "A", text)})
	require.Empty(t, ds.Users["A"].Stats.Language)
}

func TestAggregate_EmptyTimeline(t *testing.T) {
	ds := (*Aggregator)(nil).Aggregate("c", nil)
	require.Empty(t, ds.Users)
}

func TestStats_TopN(t *testing.T) {
	req := require.New(t)
	s := Stats{
		TopWords:   map[string]int{"b": 2, "a": 2, "c": 5, "d": 1},
		EmojiCount: map[string]int{"😀": 1},
	}
	req.Equal([]Counted{{"c", 5}, {"a", 2}, {"b", 2}}, s.TopWordsN(3))
	req.Len(s.TopWordsN(0), 4)
	req.Equal([]Counted{{"😀", 1}}, s.TopEmojiN(5))
}

func TestStats_PeakHour(t *testing.T) {
	var s Stats
	s.MessagesByHour[4] = 3
	s.MessagesByHour[18] = 3
	s.MessagesByHour[7] = 1
	require.Equal(t, 4, s.PeakHour())
}
