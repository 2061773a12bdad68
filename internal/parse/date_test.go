package parse

import (
	"testing"
	"time"

	"github.com/Zuo-Peng/chatlens/internal/errs"
	"github.com/stretchr/testify/require"
)

func TestNormalize_ISO(t *testing.T) {
	req := require.New(t)
	d := DateNormalizer{Location: time.UTC}

	ts, err := d.Normalize("2023-01-02T10:11:12")
	req.NoError(err)
	req.Equal(time.Date(2023, 1, 2, 10, 11, 12, 0, time.UTC), ts)

	ts, err = d.Normalize("2023-01-02T10:11:12+03:00")
	req.NoError(err)
	req.Equal(7, ts.Hour())
	req.Equal(time.UTC, ts.Location())

	ts, err = d.Normalize("2023-01-02")
	req.NoError(err)
	req.Equal(time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), ts)
}

func TestNormalize_DayMonthYear(t *testing.T) {
	d := DateNormalizer{Location: time.UTC}

	cases := []struct {
		in   string
		want time.Time
	}{
		{"18.12.2025 23:19:05", time.Date(2025, 12, 18, 23, 19, 5, 0, time.UTC)},
		{"18.12.2025 23:19:05 UTC+03:00", time.Date(2025, 12, 18, 23, 19, 5, 0, time.UTC)},
		{"1/2/2024 9:05", time.Date(2024, 2, 1, 9, 5, 0, 0, time.UTC)},
		{"3-4-2022", time.Date(2022, 4, 3, 0, 0, 0, 0, time.UTC)},
		// two-digit years are not widened to a century
		{"01/01/23 10:00", time.Date(23, 1, 1, 10, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			ts, err := d.Normalize(c.in)
			require.NoError(t, err)
			require.True(t, c.want.Equal(ts), "got %s", ts)
		})
	}
}

func TestNormalize_Failure(t *testing.T) {
	d := DateNormalizer{Location: time.UTC}

	for _, in := range []string{"", "yesterday", "32.13.2024 10:00", "12/31"} {
		_, err := d.Normalize(in)
		require.ErrorIs(t, err, errs.ErrDateParse, in)
	}
}
