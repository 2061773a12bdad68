package parse

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Zuo-Peng/chatlens/internal/errs"
)

type Format string

const (
	FormatWhatsApp     Format = "whatsapp"
	FormatTelegramHTML Format = "telegram_html"
	FormatTelegramJSON Format = "telegram_json"
)

// Parser turns the raw files of one export into messages.
type Parser interface {
	Parse(inputs []Input, opts Options) (Result, error)
}

type WhatsAppParser struct{}

// Parse concatenates every .txt input in the given order. WhatsApp exports
// carry no chat title.
func (WhatsAppParser) Parse(inputs []Input, opts Options) (Result, error) {
	var result Result
	for _, in := range inputs {
		if in.ext() != ".txt" {
			continue
		}
		msgs, err := ParseWhatsApp(in, opts)
		if err != nil {
			return Result{}, fmt.Errorf("parse %s: %w", in.Name, err)
		}
		result.Messages = append(result.Messages, msgs...)
	}
	return result, nil
}

type TelegramHTMLParser struct{}

func (TelegramHTMLParser) Parse(inputs []Input, opts Options) (Result, error) {
	var htmlInputs []Input
	for _, in := range inputs {
		if in.ext() == ".html" {
			htmlInputs = append(htmlInputs, in)
		}
	}
	return ParseTelegramHTML(htmlInputs, opts)
}

type TelegramJSONParser struct{}

// Parse uses the first .json input only; split JSON archives are not
// supported.
func (TelegramJSONParser) Parse(inputs []Input, opts Options) (Result, error) {
	for _, in := range inputs {
		if in.ext() == ".json" {
			return ParseTelegramJSON(in, opts)
		}
	}
	return Result{}, nil
}

// Select returns the parser variant for format.
func Select(format Format) (Parser, error) {
	switch format {
	case FormatWhatsApp:
		return WhatsAppParser{}, nil
	case FormatTelegramHTML:
		return TelegramHTMLParser{}, nil
	case FormatTelegramJSON:
		return TelegramJSONParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", errs.ErrUnknownFormat, format)
	}
}

// DetectFormat looks at the first extension (".html", ".json", ...). The
// files must already be sorted with SortByNumericSuffix. Anything that is
// neither HTML nor JSON is treated as a WhatsApp text export.
func DetectFormat(exts []string) Format {
	if len(exts) == 0 {
		return FormatWhatsApp
	}
	switch strings.ToLower(exts[0]) {
	case ".html":
		return FormatTelegramHTML
	case ".json":
		return FormatTelegramJSON
	default:
		return FormatWhatsApp
	}
}

// Ext returns the lower-cased extension of name.
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

var digitsRe = regexp.MustCompile(`\d+`)

// NumericSuffix is the first run of digits in the base name of name, or 0.
// messages.html -> 0, messages2.html -> 2.
func NumericSuffix(name string) int {
	d := digitsRe.FindString(filepath.Base(name))
	if d == "" {
		return 0
	}
	n, err := strconv.Atoi(d)
	if err != nil {
		return 0
	}
	return n
}

// SortByNumericSuffix orders items by the NumericSuffix of their name,
// keeping the original order for ties.
func SortByNumericSuffix[T any](items []T, name func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		return NumericSuffix(name(items[i])) < NumericSuffix(name(items[j]))
	})
}

// ChatNameFromFile derives a fallback chat name from an export file name.
func ChatNameFromFile(name string) string {
	base := filepath.Base(name)
	for _, ext := range []string{".txt", ".json", ".html"} {
		base = strings.Replace(base, ext, "", 1)
	}
	return base
}
