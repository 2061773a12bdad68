package index

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Zuo-Peng/chatlens/internal/aggregate"
	"github.com/Zuo-Peng/chatlens/internal/errs"
	"github.com/Zuo-Peng/chatlens/internal/parse"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("UTC+3", 3*3600))

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "lens.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testDataset(runID string) *aggregate.Dataset {
	timeline := []parse.Message{
		{Timestamp: t0, Author: "Alice", Content: "good morning everyone", SourceFile: "chat.txt", Line: 1},
		{Timestamp: t0.Add(time.Minute), Author: "Bob", Content: "morning! coffee?", SourceFile: "chat.txt", Line: 2},
		{Timestamp: t0.Add(2 * time.Minute), Author: "Alice", Content: "yes please", SourceFile: "chat.txt", Line: 3},
		{Timestamp: t0.Add(3 * time.Minute), Author: "Alice", Content: "see you at the café", SourceFile: "chat.txt", Line: 5},
	}
	ds := (&aggregate.Aggregator{LanguageSample: -1}).Aggregate("Friends", timeline)
	ds.RunID = runID
	ds.Format = parse.FormatWhatsApp
	ds.Files = []string{"chat.txt"}
	return ds
}

func TestSaveDataset_RoundTrip(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	req.NoError(db.SaveDataset(testDataset("run-1"), t0))

	run, err := db.LatestRun()
	req.NoError(err)
	req.NotNil(run)
	req.Equal("run-1", run.RunID)
	req.Equal("Friends", run.ChatName)
	req.Equal("whatsapp", run.Format)
	req.Equal([]string{"chat.txt"}, run.Files)
	req.Equal(4, run.MessageCount)
	req.True(t0.Equal(run.CreatedAt))

	authors, err := db.ListAuthors("run-1")
	req.NoError(err)
	req.Equal([]AuthorRow{{"Alice", 3}, {"Bob", 1}}, authors)

	stats, err := db.GetAuthorStats("run-1", "Bob")
	req.NoError(err)
	req.Equal(1, stats.TotalMessages)
	req.Equal(1, stats.QuestionMarkCount)
	req.Equal(1, stats.MessagesByHour[10])

	all, err := db.AllAuthorStats("run-1")
	req.NoError(err)
	req.Len(all, 2)
	req.Equal(3, all["Alice"].TotalMessages)
	req.Equal(*stats, *all["Bob"])

	_, err = db.GetAuthorStats("run-1", "Zed")
	req.ErrorIs(err, errs.ErrAuthorNotFound)

	msg, err := db.GetMessage("run-1", 3)
	req.NoError(err)
	req.Equal("see you at the café", msg.Content)
	req.Equal(5, msg.LineNumber)
	req.True(t0.Add(3 * time.Minute).Equal(msg.Timestamp))
	_, offset := msg.Timestamp.Zone()
	req.Equal(3*3600, offset)

	n, err := db.MessageCount()
	req.NoError(err)
	req.Equal(4, n)
}

func TestGetMessagesWindow(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	req.NoError(db.SaveDataset(testDataset("run-1"), t0))

	// Alice's messages are msg 0, 2 and 3.
	msgs, hitIdx, start, total, err := db.GetMessagesWindow("run-1", "Alice", 2, 0)
	req.NoError(err)
	req.Equal(3, total)
	req.Equal(1, start)
	req.Equal(0, hitIdx)
	req.Len(msgs, 1)
	req.Equal("yes please", msgs[0].Content)

	msgs, hitIdx, start, total, err = db.GetMessagesWindow("run-1", "", 1, 1)
	req.NoError(err)
	req.Equal(4, total)
	req.Equal(0, start)
	req.Equal(1, hitIdx)
	req.Len(msgs, 3)

	msgs, hitIdx, _, _, err = db.GetMessagesWindow("run-1", "Bob", -1, 5)
	req.NoError(err)
	req.Equal(-1, hitIdx)
	req.Len(msgs, 1)
}

func TestRuns_LookupAndPrune(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	req.NoError(db.SaveDataset(testDataset("aaaa-1"), t0))
	req.NoError(db.SaveDataset(testDataset("aaab-2"), t0.Add(time.Hour)))
	req.NoError(db.SaveDataset(testDataset("bbbb-3"), t0.Add(2*time.Hour)))

	run, err := db.GetRun("bbbb")
	req.NoError(err)
	req.Equal("bbbb-3", run.RunID)

	run, err = db.GetRun("aaaa-1")
	req.NoError(err)
	req.Equal("aaaa-1", run.RunID)

	_, err = db.GetRun("aaa")
	req.ErrorContains(err, "ambiguous")

	run, err = db.GetRun("zzz")
	req.NoError(err)
	req.Nil(run)

	pruned, err := db.PruneRuns(1)
	req.NoError(err)
	req.Equal(2, pruned)

	count, err := db.RunCount()
	req.NoError(err)
	req.Equal(1, count)
	n, err := db.MessageCount()
	req.NoError(err)
	req.Equal(4, n)

	latest, err := db.LatestRun()
	req.NoError(err)
	req.Equal("bbbb-3", latest.RunID)
}

func TestLatestRun_Empty(t *testing.T) {
	run, err := openTestDB(t).LatestRun()
	require.NoError(t, err)
	require.Nil(t, run)
}
