package parse

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Zuo-Peng/chatlens/internal/errs"
)

const defaultTelegramChatName = "Telegram Chat"

type telegramExport struct {
	Name     string            `json:"name"`
	Messages []telegramMessage `json:"messages"`
}

type telegramMessage struct {
	ID           int             `json:"id"`
	Type         string          `json:"type"`
	Date         string          `json:"date"`
	DateUnixtime json.RawMessage `json:"date_unixtime"`
	From         *string         `json:"from"`
	Text         json.RawMessage `json:"text"` // string or array of fragments
}

type telegramTextEntity struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ParseTelegramJSON parses a Telegram "result.json" export. A document that
// is not valid JSON fails the whole run.
func ParseTelegramJSON(in Input, opts Options) (Result, error) {
	log := opts.logger()

	var doc telegramExport
	if err := json.Unmarshal(in.Data, &doc); err != nil {
		return Result{}, fmt.Errorf("%w: %s: %v", errs.ErrInvalidJSON, in.Name, err)
	}

	result := Result{ChatName: doc.Name}
	if result.ChatName == "" {
		result.ChatName = defaultTelegramChatName
	}

	for _, m := range doc.Messages {
		if m.Type != "message" || m.From == nil || *m.From == "" {
			continue
		}
		content := extractTelegramText(m.Text)
		if content == "" {
			continue
		}
		ts, ok := telegramTimestamp(m, opts)
		if !ok {
			log.Debug("skip message without usable date", "file", in.Name, "id", m.ID)
			continue
		}
		result.Messages = append(result.Messages, Message{
			Timestamp:  ts,
			Author:     *m.From,
			Content:    content,
			SourceFile: in.Name,
		})
	}

	return result, nil
}

func extractTelegramText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	// try string first
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	// then array of plain strings and entity objects
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return ""
	}
	var b strings.Builder
	for _, p := range parts {
		var plain string
		if err := json.Unmarshal(p, &plain); err == nil {
			b.WriteString(plain)
			continue
		}
		var entity telegramTextEntity
		if err := json.Unmarshal(p, &entity); err == nil {
			b.WriteString(entity.Text)
		}
	}
	return b.String()
}

// telegramTimestamp prefers date_unixtime, which exports write as a string.
func telegramTimestamp(m telegramMessage, opts Options) (time.Time, bool) {
	if secs, ok := unixSeconds(m.DateUnixtime); ok {
		return time.UnixMilli(secs * 1000).In(opts.Dates.location()), true
	}
	if m.Date == "" {
		return time.Time{}, false
	}
	ts, err := opts.Dates.Normalize(m.Date)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

func unixSeconds(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if v, err := n.Int64(); err == nil {
			return v, true
		}
		return 0, false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
