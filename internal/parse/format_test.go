package parse

import (
	"testing"

	"github.com/Zuo-Peng/chatlens/internal/errs"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	req := require.New(t)
	req.Equal(FormatTelegramHTML, DetectFormat([]string{".html", ".html"}))
	req.Equal(FormatTelegramJSON, DetectFormat([]string{".JSON"}))
	req.Equal(FormatWhatsApp, DetectFormat([]string{".txt"}))
	req.Equal(FormatWhatsApp, DetectFormat([]string{".log"}))
	req.Equal(FormatWhatsApp, DetectFormat(nil))
}

func TestSortByNumericSuffix(t *testing.T) {
	names := []string{"export/messages10.html", "export/messages2.html", "export/messages.html", "export/b.html"}
	SortByNumericSuffix(names, func(s string) string { return s })
	require.Equal(t, []string{"export/messages.html", "export/b.html", "export/messages2.html", "export/messages10.html"}, names)
}

func TestNumericSuffix(t *testing.T) {
	require.Equal(t, 0, NumericSuffix("messages.html"))
	require.Equal(t, 12, NumericSuffix("/tmp/2024/messages12.html"))
}

func TestSelect(t *testing.T) {
	req := require.New(t)

	p, err := Select(FormatTelegramJSON)
	req.NoError(err)
	req.IsType(TelegramJSONParser{}, p)

	_, err = Select(Format("irc"))
	req.ErrorIs(err, errs.ErrUnknownFormat)
}

func TestWhatsAppParser_ConcatenatesTextFiles(t *testing.T) {
	req := require.New(t)

	result, err := WhatsAppParser{}.Parse([]Input{
		{Name: "part1.txt", Data: []byte("01.01.2024, 10:00 - Alice: one\n")},
		{Name: "notes.md", Data: []byte("01.01.2024, 10:01 - Mallory: ignored\n")},
		{Name: "part2.txt", Data: []byte("01.01.2024, 10:02 - Bob: two\n")},
	}, testOptions())
	req.NoError(err)
	req.Len(result.Messages, 2)
	req.Equal("Alice", result.Messages[0].Author)
	req.Equal("Bob", result.Messages[1].Author)
}

func TestTelegramJSONParser_FirstFileOnly(t *testing.T) {
	req := require.New(t)

	result, err := TelegramJSONParser{}.Parse([]Input{
		{Name: "result.json", Data: []byte(`{"name":"A","messages":[{"type":"message","date":"2024-01-01T10:00:00","from":"Alice","text":"hi"}]}`)},
		{Name: "result2.json", Data: []byte(`not json`)},
	}, testOptions())
	req.NoError(err)
	req.Equal("A", result.ChatName)
	req.Len(result.Messages, 1)
}

func TestChatNameFromFile(t *testing.T) {
	require.Equal(t, "WhatsApp Chat with Bob", ChatNameFromFile("/x/WhatsApp Chat with Bob.txt"))
}
