package parse

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

const unknownAuthor = "Unknown"

// mediaPlaceholders are checked in order when a message has no text.
var mediaPlaceholders = []struct {
	class string
	label string
}{
	{"media_photo", "[Photo]"},
	{"media_video", "[Video]"},
	{"media_voice_message", "[Voice Message]"},
	{"media_file", "[File]"},
	{"sticker", "[Sticker]"},
}

// htmlAccumulator is carried from one export file into the next. Telegram
// omits the sender on consecutive messages, so the running author must
// survive file boundaries.
type htmlAccumulator struct {
	ChatName string
	Author   string
	Messages []Message
}

// ParseTelegramHTML parses the numbered HTML files of one Telegram Desktop
// export. inputs must already be in numeric-suffix order.
func ParseTelegramHTML(inputs []Input, opts Options) (Result, error) {
	acc := htmlAccumulator{Author: unknownAuthor}
	for _, in := range inputs {
		var err error
		acc, err = parseHTMLFile(in, acc, opts)
		if err != nil {
			return Result{}, fmt.Errorf("parse %s: %w", in.Name, err)
		}
	}
	return Result{ChatName: acc.ChatName, Messages: acc.Messages}, nil
}

func parseHTMLFile(in Input, acc htmlAccumulator, opts Options) (htmlAccumulator, error) {
	log := opts.logger()

	root, err := html.Parse(bytes.NewReader(in.Data))
	if err != nil {
		return acc, err
	}

	if acc.ChatName == "" {
		acc.ChatName = findChatTitle(root)
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "message") && hasClass(n, "default") {
			if hasClass(n, "service") {
				return
			}

			if from := findFirst(n, func(c *html.Node) bool { return hasClass(c, "from_name") }); from != nil {
				if name := strings.TrimSpace(textContent(from)); name != "" {
					acc.Author = name
				}
			}

			dateNode := findFirst(n, func(c *html.Node) bool { return hasClass(c, "date") && hasClass(c, "details") })
			title := attr(dateNode, "title")
			if title == "" {
				log.Debug("skip message without date", "file", in.Name, "id", attr(n, "id"))
				return
			}
			ts, err := opts.Dates.Normalize(title)
			if err != nil {
				log.Debug("skip message with unparseable date", "file", in.Name, "id", attr(n, "id"), "date", title)
				return
			}

			acc.Messages = append(acc.Messages, Message{
				Timestamp:  ts,
				Author:     acc.Author,
				Content:    messageContent(n),
				SourceFile: in.Name,
			})
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return acc, nil
}

// findChatTitle returns the bold header text: <div class="page_header"> ...
// <div class="text bold">Chat Name</div>.
func findChatTitle(root *html.Node) string {
	var title string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && hasClass(n, "page_header") {
			if t := findFirst(n, func(c *html.Node) bool { return hasClass(c, "text") && hasClass(c, "bold") }); t != nil {
				title = strings.TrimSpace(textContent(t))
			}
		}
		for c := n.FirstChild; c != nil && title == ""; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return title
}

func messageContent(n *html.Node) string {
	if textNode := findFirst(n, func(c *html.Node) bool { return hasClass(c, "text") }); textNode != nil {
		if content := strings.TrimSpace(textContent(textNode)); content != "" {
			return content
		}
	}
	for _, p := range mediaPlaceholders {
		class := p.class
		if findFirst(n, func(c *html.Node) bool { return hasClass(c, class) }) != nil {
			return p.label
		}
	}
	return "[Unknown Attachment]"
}

// findFirst returns the first descendant of n (document order, n excluded)
// that is an element satisfying match.
func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && match(c) {
			return c
		}
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, f := range strings.Fields(attr(n, "class")) {
		if f == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
