package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/Zuo-Peng/chatlens/internal/aggregate"
	"github.com/Zuo-Peng/chatlens/internal/errs"
	"github.com/Zuo-Peng/chatlens/internal/parse"
)

const (
	sampleLimit = 20000
	sampleHead  = 2000
	sampleTail  = 4000
)

// Analyst asks a language model for personality portraits. There are no
// retries: a failed call is returned to the caller as is.
type Analyst struct {
	Client Chatter
	Model  string
	// Language is the language the model is asked to answer in. Empty means
	// English.
	Language string
	Log      *slog.Logger
}

func (a *Analyst) logger() *slog.Logger {
	if a.Log != nil {
		return a.Log
	}
	return slog.New(slog.DiscardHandler)
}

func (a *Analyst) language() string {
	if a.Language == "" {
		return "English"
	}
	return a.Language
}

// AnalyzeUser builds a profile from a sample of the author's messages.
func (a *Analyst) AnalyzeUser(ctx context.Context, user *aggregate.UserProfile, chatName string) (Profile, error) {
	sample := sampleMessages(user.Messages)

	var lines strings.Builder
	for i, m := range sample {
		if i > 0 {
			lines.WriteByte('\n')
		}
		fmt.Fprintf(&lines, "[%s] %s", m.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z"), m.Content)
	}

	prompt := fmt.Sprintf(profilePrompt, user.Name, chatName, len(sample), user.Name, lines.String(), a.language())

	a.logger().Debug("analyze user", "author", user.Name, "sampled", len(sample), "total", len(user.Messages))
	data, err := a.ask(ctx, prompt)
	if err != nil {
		return Profile{}, fmt.Errorf("analyze %s: %w", user.Name, err)
	}
	return sanitizeProfile(data), nil
}

// Compare rates how well two profiled authors get along.
func (a *Analyst) Compare(ctx context.Context, ua *aggregate.UserProfile, pa Profile, ub *aggregate.UserProfile, pb Profile) (Compatibility, error) {
	prompt := fmt.Sprintf(comparePrompt, describe(ua.Name, pa), describe(ub.Name, pb), a.language())

	a.logger().Debug("compare users", "a", ua.Name, "b", ub.Name)
	data, err := a.ask(ctx, prompt)
	if err != nil {
		return Compatibility{}, fmt.Errorf("compare %s and %s: %w", ua.Name, ub.Name, err)
	}
	return sanitizeCompatibility(data), nil
}

func (a *Analyst) ask(ctx context.Context, prompt string) (object, error) {
	resp, err := a.Client.Chat(ctx, Request{
		Model:     a.Model,
		Messages:  []Message{{Role: "user", Content: prompt}},
		ForceJSON: true,
	})
	if err != nil {
		return nil, err
	}
	a.logger().Debug("analyst response", "tokens", resp.Usage.TotalTokens, "duration", resp.Duration)

	text := stripCodeFence(resp.Text)
	if text == "" {
		return nil, errs.ErrEmptyResponse
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return data, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// sampleMessages keeps at most sampleLimit messages: the oldest sampleHead,
// the newest sampleTail and an evenly strided pick from the middle.
func sampleMessages(msgs []parse.Message) []parse.Message {
	if len(msgs) <= sampleLimit {
		return slices.Clone(msgs)
	}

	out := make([]parse.Message, 0, sampleLimit)
	out = append(out, msgs[:sampleHead]...)

	slots := sampleLimit - sampleHead - sampleTail
	middle := msgs[sampleHead : len(msgs)-sampleTail]
	step := max(1, len(middle)/slots)
	picked := 0
	for i := 0; i < len(middle) && picked < slots; i += step {
		out = append(out, middle[i])
		picked++
	}

	out = append(out, msgs[len(msgs)-sampleTail:]...)
	slices.SortStableFunc(out, func(x, y parse.Message) int { return x.Timestamp.Compare(y.Timestamp) })
	return out
}

func describe(name string, p Profile) string {
	style, _ := json.Marshal(p.CommunicationStyle)
	return fmt.Sprintf(`%s (%s, %s)
Traits: %s
Style: %s
Big Five scores:
Openness: %d
Conscientiousness: %d
Extraversion: %d
Agreeableness: %d
Neuroticism: %d`,
		name, p.Archetype, p.MBTI,
		strings.Join(p.PersonalityTraits, ", "),
		style,
		p.BigFive.Openness.Score,
		p.BigFive.Conscientiousness.Score,
		p.BigFive.Extraversion.Score,
		p.BigFive.Agreeableness.Score,
		p.BigFive.Neuroticism.Score)
}

const profilePrompt = `Goal: write an in-depth psychological portrait of the user %q.
Data: chat log %q (a sample of %d messages).

Messages from %s:
%s

Tasks:
1. Analyze speech style, vocabulary, emoji use and punctuation.
2. Estimate the MBTI type.
3. Rate each Big Five trait (openness, conscientiousness, extraversion, agreeableness, neuroticism) with
   "score" (number 0-100) and "explanation" (one sentence on what that level means for this person).
4. Identify hidden drives.
5. Detailed toxicity analysis: score 0-100, a short level label, traits, an explanation and
   "specificForms" with direct quotes for passive aggression, sarcasm and similar.
6. Write a system prompt that would let an assistant imitate this person.

Answer strictly as a JSON object in %s with the keys: archetype, archetypeDescription,
personalityTraits (array of strings), mbti, bigFive {openness, conscientiousness, extraversion,
agreeableness, neuroticism: {score, explanation}}, communicationStyle {tone, speed, complexity,
vocabulary}, emotionalProfile {positivity, toxicity, empathy: 0-100}, toxicityAnalysis {score,
level, traits, explanation, specificForms: [{form, example}]}, hiddenDrives (array of strings),
summary, systemInstruction.`

const comparePrompt = `Compare two users based on their profiles.

A: %s

B: %s

Task: rate their compatibility (0-100), their synergy and their conflicts.
Answer strictly as a JSON object in %s with the keys: score (0-100), relationshipHeader (a short
creative title), synergy (array of strings), conflicts (array of strings), summary.`
