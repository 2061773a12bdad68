package search

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/Zuo-Peng/chatlens/internal/aggregate"
	"github.com/Zuo-Peng/chatlens/internal/index"
)

type Result struct {
	RunID     string
	MsgID     int
	ChatName  string
	Author    string
	Timestamp string
	Snippet   string
	Rank      float64
	Count     int              // messages by Author, set by ListAuthors
	Stats     *aggregate.Stats // set by ListAuthors
}

type Options struct {
	Query  string
	RunID  string // "" = all runs
	Author string // "" = all authors
	Since  string // "" = no filter, e.g. "2024-01-01"
	Limit  int
	// PerAuthor keeps only the best hit per run and author.
	PerAuthor bool
}

// containsCJK returns true if the string contains any CJK Unified Ideograph.
// unicode61 does not split Han text into words, so those queries use LIKE.
func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// makeSnippet extracts a snippet around the first occurrence of query in text.
func makeSnippet(text, query string, contextChars int) string {
	runes := []rune(text)
	lowerRunes := []rune(strings.ToLower(text))
	qRunes := []rune(strings.ToLower(query))

	runePos := indexRunes(lowerRunes, qRunes)
	if runePos < 0 || len(lowerRunes) != len(runes) {
		// no match, return head
		if len(runes) > contextChars*2 {
			return string(runes[:contextChars*2]) + "..."
		}
		return text
	}
	start := max(runePos-contextChars, 0)
	end := min(runePos+len(qRunes)+contextChars, len(runes))
	prefix := ""
	suffix := ""
	if start > 0 {
		prefix = "..."
	}
	if end < len(runes) {
		suffix = "..."
	}
	// wrap the matched part with markers
	snippet := string(runes[start:runePos]) +
		">>>" + string(runes[runePos:runePos+len(qRunes)]) + "<<<" +
		string(runes[runePos+len(qRunes):end])
	return prefix + snippet + suffix
}

func indexRunes(s, sub []rune) int {
	if len(sub) == 0 {
		return -1
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		if string(s[i:i+len(sub)]) == string(sub) {
			return i
		}
	}
	return -1
}

func Search(db *index.DB, opts Options) ([]Result, error) {
	if strings.TrimSpace(opts.Query) == "" {
		return nil, fmt.Errorf("empty query")
	}
	if opts.Limit <= 0 {
		opts.Limit = 100
	}

	// Fetch more results before dedup so we still have enough after
	origLimit := opts.Limit
	if opts.PerAuthor {
		opts.Limit = origLimit * 3
	}

	var results []Result
	var err error
	if containsCJK(opts.Query) {
		results, err = searchLike(db, opts)
	} else {
		results, err = searchFTS(db, opts)
	}
	if err != nil {
		return nil, err
	}
	if !opts.PerAuthor {
		return results, nil
	}

	seen := make(map[string]bool)
	var deduped []Result
	for _, r := range results {
		key := r.RunID + "\x00" + r.Author
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, r)
		if len(deduped) >= origLimit {
			break
		}
	}
	return deduped, nil
}

func filters(opts Options) ([]string, []any) {
	var conditions []string
	var args []any

	if opts.RunID != "" {
		conditions = append(conditions, "m.run_id = ?")
		args = append(args, opts.RunID)
	}
	if opts.Author != "" {
		conditions = append(conditions, "m.author = ?")
		args = append(args, opts.Author)
	}
	if opts.Since != "" {
		conditions = append(conditions, "m.ts >= ?")
		args = append(args, opts.Since)
	}
	return conditions, args
}

// ftsQuery quotes every term so punctuation in chat text is not read as
// FTS5 syntax. Terms are ANDed.
func ftsQuery(q string) string {
	fields := strings.Fields(q)
	for i, f := range fields {
		fields[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(fields, " ")
}

func searchFTS(db *index.DB, opts Options) ([]Result, error) {
	conditions, args := filters(opts)
	conditions = append([]string{"messages_fts MATCH ?"}, conditions...)
	args = append([]any{ftsQuery(opts.Query)}, args...)

	query := fmt.Sprintf(`
		SELECT
			m.run_id,
			m.msg_id,
			r.chat_name,
			m.author,
			m.ts,
			snippet(messages_fts, 0, '>>>','<<<', '...', 24) as snip,
			bm25(messages_fts) as rank
		FROM messages_fts
		JOIN messages m ON messages_fts.rowid = m.rowid
		JOIN runs r ON m.run_id = r.run_id
		WHERE %s
		ORDER BY rank
		LIMIT ?
	`, strings.Join(conditions, " AND "))

	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

func searchLike(db *index.DB, opts Options) ([]Result, error) {
	conditions, args := filters(opts)
	// LIKE match for CJK substring search
	conditions = append([]string{"m.content LIKE ?"}, conditions...)
	args = append([]any{"%" + opts.Query + "%"}, args...)

	query := fmt.Sprintf(`
		SELECT
			m.run_id,
			m.msg_id,
			r.chat_name,
			m.author,
			m.ts,
			m.content
		FROM messages m
		JOIN runs r ON m.run_id = r.run_id
		WHERE %s
		ORDER BY r.created_at DESC, m.msg_id
		LIMIT ?
	`, strings.Join(conditions, " AND "))

	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var fullText string
		if err := rows.Scan(&r.RunID, &r.MsgID, &r.ChatName, &r.Author, &r.Timestamp, &fullText); err != nil {
			return nil, err
		}
		r.Snippet = makeSnippet(fullText, opts.Query, 30)
		results = append(results, r)
	}
	return results, rows.Err()
}

func scanResults(rows *sql.Rows) ([]Result, error) {
	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.RunID, &r.MsgID, &r.ChatName, &r.Author, &r.Timestamp, &r.Snippet, &r.Rank); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ListAuthors lists the authors of a run, most active first. A non-empty
// filter keeps authors whose name contains it, ignoring case. MsgID is -1
// because the entries are not message hits.
func ListAuthors(db *index.DB, runID, filter string) ([]Result, error) {
	run, err := db.GetRun(runID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	authors, err := db.ListAuthors(run.RunID)
	if err != nil {
		return nil, err
	}
	stats, err := db.AllAuthorStats(run.RunID)
	if err != nil {
		return nil, err
	}

	filter = strings.ToLower(strings.TrimSpace(filter))
	var results []Result
	for _, a := range authors {
		if filter != "" && !strings.Contains(strings.ToLower(a.Author), filter) {
			continue
		}
		results = append(results, Result{
			RunID:    run.RunID,
			MsgID:    -1,
			ChatName: run.ChatName,
			Author:   a.Author,
			Snippet:  fmt.Sprintf("%d messages", a.Total),
			Count:    a.Total,
			Stats:    stats[a.Author],
		})
	}
	return results, nil
}
