// Package merge builds the canonical timeline: every parsed message of a run,
// sorted by time, with re-ingested duplicates removed.
package merge

import (
	"slices"
	"strconv"
	"unicode/utf8"

	"github.com/Zuo-Peng/chatlens/internal/parse"
	"github.com/cespare/xxhash/v2"
)

// Signer computes the deduplication key of a message. Two messages with the
// same signature are treated as the same record.
type Signer interface {
	Signature(m parse.Message) string
}

// LengthSigner keys on (unix millis, author, content length). Distinct
// messages by the same author in the same millisecond with equal length
// collapse into one; that is an accepted limit of the heuristic.
type LengthSigner struct{}

func (LengthSigner) Signature(m parse.Message) string {
	return strconv.FormatInt(m.Timestamp.UnixMilli(), 10) + "-" + m.Author + "-" + strconv.Itoa(utf8.RuneCountInString(m.Content))
}

// ContentHashSigner keys on (unix millis, author, xxhash of content).
type ContentHashSigner struct{}

func (ContentHashSigner) Signature(m parse.Message) string {
	return strconv.FormatInt(m.Timestamp.UnixMilli(), 10) + "-" + m.Author + "-" + strconv.FormatUint(xxhash.Sum64String(m.Content), 16)
}

// SignerFor maps a config name to a Signer; unknown names get LengthSigner.
func SignerFor(name string) Signer {
	if name == "content" {
		return ContentHashSigner{}
	}
	return LengthSigner{}
}

// Merge stable-sorts msgs by timestamp and keeps the first message of each
// signature. msgs is not modified.
func Merge(msgs []parse.Message, signer Signer) []parse.Message {
	if signer == nil {
		signer = LengthSigner{}
	}

	sorted := slices.Clone(msgs)
	slices.SortStableFunc(sorted, func(a, b parse.Message) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	seen := make(map[string]struct{}, len(sorted))
	out := make([]parse.Message, 0, len(sorted))
	for _, m := range sorted {
		sig := signer.Signature(m)
		if _, ok := seen[sig]; ok {
			continue
		}
		seen[sig] = struct{}{}
		out = append(out, m)
	}
	return out
}
