package parse

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"
)

const maxLineSize = 10 * 1024 * 1024 // 10MB

// waStrictRe: [dd.mm.yy, hh:mm:ss] Author: Message, or the same header with
// a " - " separator before the author.
var waStrictRe = regexp.MustCompile(`^\[?(\d{1,2}[./]\d{1,2}[./]\d{2,4}),?\s(\d{1,2}:\d{2}(?::\d{2})?)\]?\s(?:-\s)?(.*?):\s(.*)$`)

// waLooseRe: dd/mm/yyyy, hh:mm - Author: Message
var waLooseRe = regexp.MustCompile(`^(\d{1,2}[./]\d{1,2}[./]\d{2,4}),?\s(\d{1,2}:\d{2})\s-\s(.*?):\s(.*)$`)

// ParseWhatsApp reads one WhatsApp text export. Lines without a header are
// appended to the previous message; lines before the first header are
// ignored.
func ParseWhatsApp(in Input, opts Options) ([]Message, error) {
	log := opts.logger()
	data := bytes.TrimPrefix(in.Data, []byte("\xef\xbb\xbf"))

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var msgs []Message
	lineNum := 0
	// dropped is true while continuation lines belong to a record discarded
	// by the drop policy.
	dropped := false

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		m := waStrictRe.FindStringSubmatch(line)
		if m == nil {
			m = waLooseRe.FindStringSubmatch(line)
		}

		if m == nil {
			if len(msgs) > 0 && !dropped {
				msgs[len(msgs)-1].Content += "\n" + line
			}
			continue
		}

		dateStr := m[1] + " " + m[2]
		dateStr = strings.ReplaceAll(dateStr, ".", "/")
		dateStr = strings.ReplaceAll(dateStr, ",", "")

		ts, err := opts.Dates.Normalize(dateStr)
		if err != nil {
			if opts.DatePolicy == DateDrop {
				log.Debug("drop line with unparseable date", "file", in.Name, "line", lineNum, "date", dateStr)
				dropped = true
				continue
			}
			ts = opts.now()
			log.Warn("unparseable date, using current time", "file", in.Name, "line", lineNum, "date", dateStr)
		}
		dropped = false

		msgs = append(msgs, Message{
			Timestamp:  ts,
			Author:     m[3],
			Content:    m[4],
			SourceFile: in.Name,
			Line:       lineNum,
		})
	}

	return msgs, scanner.Err()
}
