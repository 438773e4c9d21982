package util_test

import (
	"testing"
	"time"

	"github.com/atlasmaps/atlas/mods/util"
	"github.com/stretchr/testify/require"
)

func TestHumanizeNumber(t *testing.T) {
	require.Equal(t, "0", util.HumanizeNumber(0))
	require.Equal(t, "1,234", util.HumanizeNumber(1234))
	require.Equal(t, "1,234,567,890", util.HumanizeNumber(int64(1234567890)))
}

func TestHumanizeByteCount(t *testing.T) {
	require.Equal(t, "999 B", util.HumanizeByteCount(999))
	require.Equal(t, "1.0 kB", util.HumanizeByteCount(1000))
	require.Equal(t, "1.5 MB", util.HumanizeByteCount(1_500_000))
	require.Equal(t, "2.0 GB", util.HumanizeByteCount(uint64(2_000_000_000)))
}

func TestHumanizeDuration(t *testing.T) {
	require.Equal(t, "0s", util.HumanizeDuration(500*time.Millisecond))
	require.Equal(t, "42s", util.HumanizeDuration(42*time.Second))
	require.Equal(t, "3m 5s", util.HumanizeDuration(3*time.Minute+5*time.Second))
	require.Equal(t, "1h 0m 1s", util.HumanizeDuration(time.Hour+time.Second))
	require.Equal(t, "2d 0h 4m 0s", util.HumanizeDuration(48*time.Hour+4*time.Minute))
	require.Equal(t, "42s", util.HumanizeDuration(-42*time.Second))
}
