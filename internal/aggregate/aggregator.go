package aggregate

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Zuo-Peng/chatlens/internal/parse"
	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"
)

const (
	DefaultInitiationGap  = 6 * time.Hour
	DefaultLanguageSample = 64 * 1024 // bytes of text per author
)

// Aggregator folds a merged timeline into per-author statistics.
type Aggregator struct {
	// InitiationGap is the silence after which a message opens a new
	// conversation. Zero means DefaultInitiationGap.
	InitiationGap time.Duration
	// Phrases is optional.
	Phrases *PhraseMatcher
	// LanguageSample caps the text fed to language detection. Zero means
	// DefaultLanguageSample; negative disables detection.
	LanguageSample int
}

func (a *Aggregator) gap() time.Duration {
	if a == nil || a.InitiationGap <= 0 {
		return DefaultInitiationGap
	}
	return a.InitiationGap
}

func (a *Aggregator) sampleSize() int {
	if a == nil || a.LanguageSample == 0 {
		return DefaultLanguageSample
	}
	return a.LanguageSample
}

// Aggregate walks timeline, which must already be merged and sorted, once.
// The dataset gets a fresh run id; Format and Files are left for the caller.
func (a *Aggregator) Aggregate(chatName string, timeline []parse.Message) *Dataset {
	ds := &Dataset{
		RunID:    uuid.NewString(),
		ChatName: chatName,
		Users:    make(map[string]*UserProfile),
	}

	var phrases *PhraseMatcher
	if a != nil {
		phrases = a.Phrases
	}
	gap := a.gap()
	sampleSize := a.sampleSize()
	samples := make(map[string]*strings.Builder)

	var prev time.Time
	for i, msg := range timeline {
		user, ok := ds.Users[msg.Author]
		if !ok {
			user = &UserProfile{Name: msg.Author, Stats: newStats()}
			ds.Users[msg.Author] = user
		}
		user.Messages = append(user.Messages, msg)

		s := &user.Stats
		s.TotalMessages++
		s.totalLength += utf8.RuneCountInString(msg.Content)
		s.MessagesByHour[msg.Timestamp.Hour()]++
		if s.FirstMessage.IsZero() {
			s.FirstMessage = msg.Timestamp
		}
		s.LastMessage = msg.Timestamp

		if i == 0 || msg.Timestamp.Sub(prev) >= gap {
			s.Initiations++
		}
		prev = msg.Timestamp

		countContent(s, msg.Content)

		for phrase, n := range phrases.Count(msg.Content) {
			if s.PhraseCount == nil {
				s.PhraseCount = make(map[string]int)
			}
			s.PhraseCount[phrase] += n
		}

		if sampleSize > 0 {
			b, ok := samples[msg.Author]
			if !ok {
				b = new(strings.Builder)
				samples[msg.Author] = b
			}
			if b.Len() < sampleSize {
				b.WriteString(msg.Content)
				b.WriteByte('\n')
			}
		}
	}

	for name, user := range ds.Users {
		s := &user.Stats
		s.AverageLength = float64(s.totalLength) / float64(max(s.TotalMessages, 1))
		if b, ok := samples[name]; ok {
			s.Language = detectLanguage(b.String())
		}
	}

	return ds
}

func countContent(s *Stats, content string) {
	trimmed := strings.TrimSpace(content)

	if isShout(trimmed) {
		s.CapsLockCount++
	}
	if strings.Contains(content, "?") {
		s.QuestionMarkCount++
	}
	if strings.Contains(content, "!") {
		s.ExclamationCount++
	}
	if strings.HasSuffix(trimmed, ".") {
		s.DotsEndCount++
	}

	for _, r := range content {
		if isEmoji(r) {
			s.EmojiCount[string(r)]++
		}
	}
	for _, w := range words(content) {
		s.TopWords[w]++
	}
}

// detectLanguage returns the ISO 639-1 code, or "" when whatlanggo is not
// confident.
func detectLanguage(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}
