package util

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/exp/constraints"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// HumanizeNumber groups digits for log readability, e.g. 1234567 -> "1,234,567".
func HumanizeNumber[T constraints.Integer](n T) string {
	return message.NewPrinter(language.English).Sprint(n)
}

// HumanizeByteCount renders a byte count in SI units with one decimal,
// e.g. 1500000 -> "1.5 MB".
func HumanizeByteCount[T constraints.Integer](b T) string {
	n := uint64(b)
	const unit = 1000
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "kMGTPE"[exp])
}

// HumanizeDuration renders a duration as "2d 3h 4m 5s", omitting leading
// zero units. Anything under a second renders as "0s".
func HumanizeDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	sec := int(d.Seconds())
	parts := []struct {
		n    int
		unit string
	}{
		{sec / 86400, "d"},
		{sec / 3600 % 24, "h"},
		{sec / 60 % 60, "m"},
		{sec % 60, "s"},
	}
	sb := &strings.Builder{}
	for i, p := range parts {
		if p.n == 0 && sb.Len() == 0 && i < len(parts)-1 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(sb, "%d%s", p.n, p.unit)
	}
	return sb.String()
}
