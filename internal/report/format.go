package report

import (
	"fmt"
	"strings"
	"time"
)

// FormatDuration renders a duration the way the usage views show it:
// "3h 24m", "12m 5s", "45s". Values are rounded to whole seconds first.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	case m > 0 && s > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// Bar renders a proportional bar of at most width cells. A non-zero value
// always gets at least one cell so small days remain visible.
func Bar(value, max time.Duration, width int) string {
	if width <= 0 || max <= 0 || value <= 0 {
		return ""
	}
	n := int(int64(width) * int64(value) / int64(max))
	if n < 1 {
		n = 1
	}
	if n > width {
		n = width
	}
	return strings.Repeat("█", n)
}
