package formatter

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
	timeLayout  = "2006-01-02 15:04"
)

// Timestamp renders an optional time, or a dim dash when it is unset.
func Timestamp(t *time.Time) string {
	if t == nil {
		return Dim("-")
	}
	return t.Format(timeLayout)
}

// RelativeDateFrom returns a human-friendly distance from now to t.
func RelativeDateFrom(t, now time.Time) string {
	days := int(math.Round(t.Sub(now).Hours() / 24))
	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days == -1:
		return "Yesterday"
	case days > 0 && days < 14:
		return fmt.Sprintf("In %dd", days)
	case days > 0:
		return fmt.Sprintf("In %dw", days/7)
	case days > -14:
		return fmt.Sprintf("%dd ago", -days)
	default:
		return fmt.Sprintf("%dw ago", -days/7)
	}
}

// Delta renders a positive duration as whole days and hours, e.g. 1d12h.
// Anything under an hour renders in minutes.
func Delta(d time.Duration) string {
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	days := int(d / (24 * time.Hour))
	hours := int((d % (24 * time.Hour)) / time.Hour)
	switch {
	case days == 0:
		return fmt.Sprintf("%dh", hours)
	case hours == 0:
		return fmt.Sprintf("%dd", days)
	default:
		return fmt.Sprintf("%dd%dh", days, hours)
	}
}

// DueStyled renders a due date with its relative distance, colored by
// urgency.
func DueStyled(t *time.Time, now time.Time) string {
	if t == nil {
		return Dim("-")
	}
	rel := RelativeDateFrom(*t, now)
	hours := t.Sub(now).Hours()
	style := StyleFg
	switch {
	case hours < 0:
		style = StyleDim
	case hours <= 48:
		style = StyleRed
	case hours <= 7*24:
		style = StyleYellow
	}
	return fmt.Sprintf("%s %s", t.Format(timeLayout), style.Render("("+rel+")"))
}

// RenderProgress renders a progress bar like [████░░░░]  45%.
func RenderProgress(pct float64, width int) string {
	pct = math.Max(0, math.Min(1, pct))
	width = max(width, 2)

	filled := min(int(pct*float64(width)), width)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	if pct < 0.33 {
		style = StyleRed
	} else if pct < 0.66 {
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %3.0f%%", style.Render(bar), pct*100)
}
