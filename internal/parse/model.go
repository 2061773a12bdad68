package parse

import (
	"log/slog"
	"strings"
	"time"
)

// Message is one chat record. Content is only rewritten while a text parser
// merges continuation lines; after parsing it is treated as immutable.
type Message struct {
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
	Author     string    `json:"author" yaml:"author"`
	Content    string    `json:"content" yaml:"content"`
	SourceFile string    `json:"source_file,omitempty" yaml:"source_file,omitempty"`
	Line       int       `json:"line,omitempty" yaml:"line,omitempty"` // 1-based line in SourceFile, 0 if unknown
}

// Input is one raw export file handed to a parser. Ext overrides the
// extension of Name when the kind was sniffed from the content.
type Input struct {
	Name string
	Ext  string
	Data []byte
}

func (in Input) ext() string {
	if in.Ext != "" {
		return strings.ToLower(in.Ext)
	}
	return Ext(in.Name)
}

// Result is what every parser variant produces. ChatName is empty when the
// export carries no title.
type Result struct {
	ChatName string
	Messages []Message
}

// DatePolicy decides what happens to a text-export record whose date cannot
// be normalized.
type DatePolicy string

const (
	// DateNow keeps the record and stamps it with the current time.
	DateNow DatePolicy = "now"
	// DateDrop discards the record.
	DateDrop DatePolicy = "drop"
)

type Options struct {
	Dates      DateNormalizer
	DatePolicy DatePolicy
	Now        func() time.Time
	Log        *slog.Logger
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now().In(o.Dates.location())
}

func (o Options) logger() *slog.Logger {
	if o.Log != nil {
		return o.Log
	}
	return slog.New(slog.DiscardHandler)
}
