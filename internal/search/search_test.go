package search

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Zuo-Peng/chatlens/internal/aggregate"
	"github.com/Zuo-Peng/chatlens/internal/index"
	"github.com/Zuo-Peng/chatlens/internal/parse"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.OpenDB(filepath.Join(t.TempDir(), "lens.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	timeline := []parse.Message{
		{Timestamp: base, Author: "Alice", Content: "Pizza tonight?"},
		{Timestamp: base.Add(time.Minute), Author: "Bob", Content: "pizza again... fine"},
		{Timestamp: base.Add(2 * time.Minute), Author: "Alice", Content: "I'll order the pizza"},
		{Timestamp: base.Add(3 * time.Minute), Author: "Chen", Content: "我们明天见面吧"},
	}
	ds := (&aggregate.Aggregator{LanguageSample: -1}).Aggregate("Dinner", timeline)
	ds.RunID = "run-1"
	ds.Format = parse.FormatWhatsApp
	require.NoError(t, db.SaveDataset(ds, base))
	return db
}

func TestSearch_FTS(t *testing.T) {
	req := require.New(t)
	db := seed(t)

	results, err := Search(db, Options{Query: "pizza"})
	req.NoError(err)
	req.Len(results, 3)
	for _, r := range results {
		req.Equal("Dinner", r.ChatName)
		req.Contains(r.Snippet, ">>>")
	}

	results, err = Search(db, Options{Query: "pizza", Author: "Bob"})
	req.NoError(err)
	req.Len(results, 1)
	req.Equal(1, results[0].MsgID)

	results, err = Search(db, Options{Query: "pizza", PerAuthor: true})
	req.NoError(err)
	req.Len(results, 2)

	results, err = Search(db, Options{Query: `again..."`})
	req.NoError(err)
	req.Len(results, 1)
}

func TestSearch_CJKUsesLike(t *testing.T) {
	req := require.New(t)
	db := seed(t)

	results, err := Search(db, Options{Query: "明天"})
	req.NoError(err)
	req.Len(results, 1)
	req.Equal("Chen", results[0].Author)
	req.Equal("我们>>>明天<<<见面吧", results[0].Snippet)
}

func TestSearch_EmptyQuery(t *testing.T) {
	_, err := Search(seed(t), Options{Query: "  "})
	require.Error(t, err)
}

func TestMakeSnippet(t *testing.T) {
	require.Equal(t, "...ab >>>Key<<< cd...", makeSnippet("xxxxab Key cdxxxx", "key", 3))
	require.Equal(t, "abcd...", makeSnippet("abcdefgh", "zz", 2))
}

func TestListAuthors(t *testing.T) {
	req := require.New(t)
	db := seed(t)

	results, err := ListAuthors(db, "run-1", "")
	req.NoError(err)
	req.Len(results, 3)
	req.Equal("Alice", results[0].Author)
	req.Equal(2, results[0].Count)
	req.Equal(-1, results[0].MsgID)
	req.NotNil(results[0].Stats)
	req.Equal(2, results[0].Stats.TotalMessages)
	req.Equal(10, results[0].Stats.PeakHour())

	results, err = ListAuthors(db, "run", "CH")
	req.NoError(err)
	req.Len(results, 1)
	req.Equal("Chen", results[0].Author)

	_, err = ListAuthors(db, "nope", "")
	req.Error(err)
}
