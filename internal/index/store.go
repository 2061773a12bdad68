package index

import (
	"cmp"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Zuo-Peng/chatlens/internal/aggregate"
	"github.com/Zuo-Peng/chatlens/internal/errs"
	"github.com/Zuo-Peng/chatlens/internal/parse"
)

const tsLayout = time.RFC3339

type RunRow struct {
	RunID        string
	ChatName     string
	Format       string
	Files        []string
	CreatedAt    time.Time
	MessageCount int
}

type AuthorRow struct {
	Author string
	Total  int
}

type MessageRow struct {
	RunID      string
	MsgID      int
	Timestamp  time.Time
	Author     string
	Content    string
	SourceFile string
	LineNumber int
}

// SaveDataset stores one ingestion run. Messages are numbered in timeline
// order across all authors.
func (d *DB) SaveDataset(ds *aggregate.Dataset, createdAt time.Time) error {
	var timeline []parse.Message
	for _, u := range ds.Users {
		timeline = append(timeline, u.Messages...)
	}
	slices.SortStableFunc(timeline, func(a, b parse.Message) int {
		if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.Author, b.Author)
	})

	files, err := json.Marshal(ds.Files)
	if err != nil {
		return err
	}

	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, chat_name, format, files, created_at, message_count)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ds.RunID, ds.ChatName, string(ds.Format), string(files),
		createdAt.UTC().Format(tsLayout), len(timeline),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	msgStmt, err := tx.Prepare(
		`INSERT INTO messages (run_id, msg_id, ts, author, content, source_file, line_number)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer msgStmt.Close()

	for i, m := range timeline {
		if _, err := msgStmt.Exec(ds.RunID, i, m.Timestamp.Format(tsLayout), m.Author, m.Content, m.SourceFile, m.Line); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
	}

	statStmt, err := tx.Prepare(`INSERT INTO author_stats (run_id, author, total, stats) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer statStmt.Close()

	for name, u := range ds.Users {
		raw, err := json.Marshal(u.Stats)
		if err != nil {
			return err
		}
		if _, err := statStmt.Exec(ds.RunID, name, u.Stats.TotalMessages, string(raw)); err != nil {
			return fmt.Errorf("insert stats: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	d.log.Debug("saved run", "run", ds.RunID, "messages", len(timeline), "authors", len(ds.Users))
	return nil
}

const runColumns = "run_id, chat_name, format, files, created_at, message_count"

func scanRun(row interface{ Scan(...any) error }) (*RunRow, error) {
	var r RunRow
	var files, created string
	if err := row.Scan(&r.RunID, &r.ChatName, &r.Format, &files, &created, &r.MessageCount); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(files), &r.Files); err != nil {
		return nil, fmt.Errorf("run %s files: %w", r.RunID, err)
	}
	t, err := time.Parse(tsLayout, created)
	if err != nil {
		return nil, fmt.Errorf("run %s created_at: %w", r.RunID, err)
	}
	r.CreatedAt = t
	return &r, nil
}

// LatestRun returns the newest run, or nil when the store is empty.
func (d *DB) LatestRun() (*RunRow, error) {
	r, err := scanRun(d.db.QueryRow("SELECT " + runColumns + " FROM runs ORDER BY created_at DESC, rowid DESC LIMIT 1"))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return r, err
}

// GetRun looks a run up by id or unique id prefix. It returns nil when
// nothing matches.
func (d *DB) GetRun(id string) (*RunRow, error) {
	rows, err := d.db.Query(
		"SELECT "+runColumns+" FROM runs WHERE run_id = ? OR run_id LIKE ? ORDER BY run_id = ? DESC, created_at DESC LIMIT 2",
		id, id+"%", id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var found []*RunRow
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		if r.RunID == id {
			return r, nil
		}
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("run prefix %q is ambiguous", id)
	}
}

// ListRuns returns all runs, newest first.
func (d *DB) ListRuns() ([]RunRow, error) {
	rows, err := d.db.Query("SELECT " + runColumns + " FROM runs ORDER BY created_at DESC, rowid DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunRow
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// ListAuthors returns the authors of a run, most active first.
func (d *DB) ListAuthors(runID string) ([]AuthorRow, error) {
	rows, err := d.db.Query(
		"SELECT author, total FROM author_stats WHERE run_id = ? ORDER BY total DESC, author",
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var authors []AuthorRow
	for rows.Next() {
		var a AuthorRow
		if err := rows.Scan(&a.Author, &a.Total); err != nil {
			return nil, err
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

// AllAuthorStats returns the stats of every author of a run, keyed by name.
func (d *DB) AllAuthorStats(runID string) (map[string]*aggregate.Stats, error) {
	rows, err := d.db.Query("SELECT author, stats FROM author_stats WHERE run_id = ?", runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	all := make(map[string]*aggregate.Stats)
	for rows.Next() {
		var author, raw string
		if err := rows.Scan(&author, &raw); err != nil {
			return nil, err
		}
		var s aggregate.Stats
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return nil, fmt.Errorf("decode stats for %s: %w", author, err)
		}
		all[author] = &s
	}
	return all, rows.Err()
}

func (d *DB) GetAuthorStats(runID, author string) (*aggregate.Stats, error) {
	var raw string
	err := d.db.QueryRow(
		"SELECT stats FROM author_stats WHERE run_id = ? AND author = ?",
		runID, author,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", errs.ErrAuthorNotFound, author)
	}
	if err != nil {
		return nil, err
	}
	var s aggregate.Stats
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("decode stats for %s: %w", author, err)
	}
	return &s, nil
}

// GetMessage returns one stored message, or nil.
func (d *DB) GetMessage(runID string, msgID int) (*MessageRow, error) {
	rows, err := d.db.Query(
		"SELECT "+messageColumns+" FROM messages WHERE run_id = ? AND msg_id = ?",
		runID, msgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs, err := scanMessages(rows)
	if err != nil || len(msgs) == 0 {
		return nil, err
	}
	return &msgs[0], nil
}

const messageColumns = "run_id, msg_id, ts, author, content, source_file, line_number"

func scanMessages(rows *sql.Rows) ([]MessageRow, error) {
	var out []MessageRow
	for rows.Next() {
		var m MessageRow
		var ts string
		if err := rows.Scan(&m.RunID, &m.MsgID, &ts, &m.Author, &m.Content, &m.SourceFile, &m.LineNumber); err != nil {
			return nil, err
		}
		t, err := time.Parse(tsLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("message %d ts: %w", m.MsgID, err)
		}
		m.Timestamp = t
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetMessagesWindow returns a window of an author's messages around a hit
// message. An empty author means every author. When hitMsgID is negative or
// not found the whole timeline is returned. startPos is the number of
// messages before the window and totalCount the size of the timeline.
func (d *DB) GetMessagesWindow(runID, author string, hitMsgID, context int) (msgs []MessageRow, hitIdx int, startPos int, totalCount int, err error) {
	filter := "run_id = ?"
	args := []any{runID}
	if author != "" {
		filter += " AND author = ?"
		args = append(args, author)
	}

	err = d.db.QueryRow("SELECT COUNT(*) FROM messages WHERE "+filter, args...).Scan(&totalCount)
	if err != nil {
		return nil, -1, 0, 0, err
	}

	// find the row_number (0-based position) of the hit message
	hitPos := -1
	if hitMsgID >= 0 {
		err = d.db.QueryRow(`
			SELECT pos FROM (
				SELECT msg_id, ROW_NUMBER() OVER (ORDER BY msg_id) - 1 AS pos
				FROM messages WHERE `+filter+`
			) WHERE msg_id = ?`,
			append(slices.Clone(args), hitMsgID)...,
		).Scan(&hitPos)
		if errors.Is(err, sql.ErrNoRows) {
			hitPos = -1
			err = nil
		} else if err != nil {
			return nil, -1, 0, 0, err
		}
	}

	startPos = 0
	limit := totalCount
	if hitPos >= 0 {
		startPos = max(hitPos-context, 0)
		endPos := min(hitPos+context+1, totalCount)
		limit = endPos - startPos
	}

	rows, err := d.db.Query(
		"SELECT "+messageColumns+" FROM messages WHERE "+filter+" ORDER BY msg_id LIMIT ? OFFSET ?",
		append(slices.Clone(args), limit, startPos)...,
	)
	if err != nil {
		return nil, -1, 0, 0, err
	}
	defer rows.Close()

	msgs, err = scanMessages(rows)
	if err != nil {
		return nil, -1, 0, 0, err
	}
	hitIdx = slices.IndexFunc(msgs, func(m MessageRow) bool { return m.MsgID == hitMsgID })
	return msgs, hitIdx, startPos, totalCount, nil
}

func (d *DB) RunCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&n)
	return n, err
}

func (d *DB) MessageCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&n)
	return n, err
}

func (d *DB) DeleteRun(runID string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM messages WHERE run_id = ?",
		"DELETE FROM author_stats WHERE run_id = ?",
		"DELETE FROM runs WHERE run_id = ?",
	} {
		if _, err := tx.Exec(q, runID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// PruneRuns keeps the newest keep runs and deletes the rest. keep <= 0
// keeps everything.
func (d *DB) PruneRuns(keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	runs, err := d.ListRuns()
	if err != nil {
		return 0, err
	}
	pruned := 0
	for _, r := range runs[min(keep, len(runs)):] {
		if err := d.DeleteRun(r.RunID); err != nil {
			return pruned, err
		}
		pruned++
	}
	if pruned > 0 {
		d.log.Debug("pruned runs", "count", pruned)
	}
	return pruned, nil
}
