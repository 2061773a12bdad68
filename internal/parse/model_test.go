package parse

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOptions_Defaults(t *testing.T) {
	req := require.New(t)

	var opts Options
	req.Equal(slog.DiscardHandler, opts.logger().Handler())

	opts.Log = slog.Default()
	req.Same(slog.Default(), opts.logger())

	fixed := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	opts.Now = func() time.Time { return fixed }
	req.Equal(fixed, opts.now())
}
