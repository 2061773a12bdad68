package profile_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Zuo-Peng/chatlens/internal/aggregate"
	"github.com/Zuo-Peng/chatlens/internal/errs"
	"github.com/Zuo-Peng/chatlens/internal/mocks"
	"github.com/Zuo-Peng/chatlens/internal/parse"
	"github.com/Zuo-Peng/chatlens/internal/profile"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func user(name string, n int) *aggregate.UserProfile {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	msgs := make([]parse.Message, n)
	for i := range msgs {
		msgs[i] = parse.Message{Timestamp: base.Add(time.Duration(i) * time.Minute), Author: name, Content: fmt.Sprintf("msg %d", i)}
	}
	return &aggregate.UserProfile{Name: name, Messages: msgs}
}

func TestAnalyzeUser(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	chatter := mocks.NewMockChatter(ctrl)

	chatter.EXPECT().Chat(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, r profile.Request) (profile.Response, error) {
			req.Equal("test-model", r.Model)
			req.True(r.ForceJSON)
			req.Len(r.Messages, 1)
			prompt := r.Messages[0].Content
			req.Contains(prompt, `"Alice"`)
			req.Contains(prompt, `"Book Club"`)
			req.Contains(prompt, "[2024-01-01T00:00:00.000Z] msg 0")
			req.Contains(prompt, "[2024-01-01T00:02:00.000Z] msg 2")
			return profile.Response{Text: "```json\n{\"archetype\":\"The Host\",\"mbti\":\"ENFJ\",\"emotionalProfile\":{\"empathy\":0.9}}\n```"}, nil
		}).Times(1)

	a := &profile.Analyst{Client: chatter, Model: "test-model"}
	p, err := a.AnalyzeUser(context.Background(), user("Alice", 3), "Book Club")
	req.NoError(err)
	req.Equal("The Host", p.Archetype)
	req.Equal("ENFJ", p.MBTI)
	req.Equal(90, p.EmotionalProfile.Empathy)
}

func TestAnalyzeUser_SamplesLargeHistories(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	chatter := mocks.NewMockChatter(ctrl)

	chatter.EXPECT().Chat(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, r profile.Request) (profile.Response, error) {
			prompt := r.Messages[0].Content
			req.Contains(prompt, "a sample of 20000 messages")
			req.Contains(prompt, "] msg 0\n")
			req.Contains(prompt, "] msg 1999\n")
			req.Contains(prompt, "] msg 29999")
			return profile.Response{Text: "{}"}, nil
		})

	a := &profile.Analyst{Client: chatter, Model: "m"}
	_, err := a.AnalyzeUser(context.Background(), user("Bob", 30000), "c")
	req.NoError(err)
}

func TestAnalyzeUser_Errors(t *testing.T) {
	ctrl := gomock.NewController(t)
	chatter := mocks.NewMockChatter(ctrl)
	a := &profile.Analyst{Client: chatter, Model: "m"}

	chatter.EXPECT().Chat(gomock.Any(), gomock.Any()).Return(profile.Response{Text: "  "}, nil)
	_, err := a.AnalyzeUser(context.Background(), user("A", 1), "c")
	require.ErrorIs(t, err, errs.ErrEmptyResponse)

	boom := errors.New("boom")
	chatter.EXPECT().Chat(gomock.Any(), gomock.Any()).Return(profile.Response{}, boom)
	_, err = a.AnalyzeUser(context.Background(), user("A", 1), "c")
	require.ErrorIs(t, err, boom)

	chatter.EXPECT().Chat(gomock.Any(), gomock.Any()).Return(profile.Response{Text: "not json"}, nil)
	_, err = a.AnalyzeUser(context.Background(), user("A", 1), "c")
	require.ErrorContains(t, err, "decode response")
}

func TestCompare(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	chatter := mocks.NewMockChatter(ctrl)

	pa := profile.Profile{Archetype: "The Host", MBTI: "ENFJ", PersonalityTraits: []string{"warm", "chatty"}}
	pa.BigFive.Openness.Score = 81
	pb := profile.Profile{Archetype: "The Critic", MBTI: "INTP"}

	chatter.EXPECT().Chat(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, r profile.Request) (profile.Response, error) {
			prompt := r.Messages[0].Content
			req.Contains(prompt, "Alice (The Host, ENFJ)")
			req.Contains(prompt, "Traits: warm, chatty")
			req.Contains(prompt, "Openness: 81")
			req.Contains(prompt, "Bob (The Critic, INTP)")
			req.True(strings.Contains(prompt, `"tone"`))
			return profile.Response{Text: `{"score":0.64,"relationshipHeader":"Fire and Ice","synergy":["banter"],"conflicts":[],"summary":"ok"}`}, nil
		})

	a := &profile.Analyst{Client: chatter, Model: "m"}
	c, err := a.Compare(context.Background(), user("Alice", 1), pa, user("Bob", 1), pb)
	req.NoError(err)
	req.Equal(64, c.Score)
	req.Equal("Fire and Ice", c.RelationshipHeader)
	req.Equal([]string{"banter"}, c.Synergy)
	req.Empty(c.Conflicts)
}
