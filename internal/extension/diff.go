package extension

import (
	"time"

	"github.com/alexanderramin/scopesync/internal/domain"
)

const dateLayout = "2006-01-02T15:04"

// Schedule is the baseline an override is computed against.
type Schedule struct {
	ReleaseDate *time.Time
	DueDate     *time.Time
	HardDueDate *time.Time
	TimeLimit   *float64 // minutes
}

// ScheduleOf returns an assignment's baseline. The hard due date falls back to
// the due date so an unset hard due date is not reported as a change.
// Keep the fallback: comparing against a nil hard due date would put
// hard_due_date into every diff and lock it on the remote.
func ScheduleOf(a domain.Assignment) Schedule {
	return Schedule{
		ReleaseDate: a.ReleaseDate,
		DueDate:     a.DueDate,
		HardDueDate: a.EffectiveHardDue(),
		TimeLimit:   a.TimeLimit,
	}
}

// DateValue is the remote representation of an absolute timestamp.
type DateValue struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// FormatDate returns the absolute timestamp structure for t.
func FormatDate(t time.Time) *DateValue {
	return &DateValue{Type: "absolute", Value: t.Format(dateLayout)}
}

// Diff holds only the fields whose effective value differs from the baseline.
type Diff struct {
	ReleaseDate      *DateValue `json:"release_date,omitempty"`
	DueDate          *DateValue `json:"due_date,omitempty"`
	HardDueDate      *DateValue `json:"hard_due_date,omitempty"`
	TimeLimitMinutes *float64   `json:"time_limit_minutes,omitempty"`
}

// Empty reports whether every field inherits the baseline.
func (d Diff) Empty() bool {
	return d == Diff{}
}

// Compute resolves ov against base and returns the minimal diff.
func Compute(base Schedule, ov Override) Diff {
	eff := Effective(base, ov)

	var d Diff
	if !sameTime(eff.ReleaseDate, base.ReleaseDate) {
		d.ReleaseDate = FormatDate(*eff.ReleaseDate)
	}
	if !sameTime(eff.DueDate, base.DueDate) {
		d.DueDate = FormatDate(*eff.DueDate)
	}
	if !sameTime(eff.HardDueDate, base.HardDueDate) {
		d.HardDueDate = FormatDate(*eff.HardDueDate)
	}
	if !sameNumber(eff.TimeLimit, base.TimeLimit) {
		d.TimeLimitMinutes = eff.TimeLimit
	}
	return d
}

// Effective returns the schedule after absolute overrides and then deltas are
// applied. A missing date or time limit stays missing under a delta or
// multiplier.
func Effective(base Schedule, ov Override) Schedule {
	eff := Schedule{
		ReleaseDate: pick(ov.ReleaseDate, base.ReleaseDate),
		DueDate:     pick(ov.DueDate, base.DueDate),
		HardDueDate: pick(ov.LateDueDate, base.HardDueDate),
		TimeLimit:   pick(ov.TimeLimitMinutes, base.TimeLimit),
	}
	eff.ReleaseDate = shift(eff.ReleaseDate, ov.ReleaseDelta)
	eff.DueDate = shift(eff.DueDate, ov.DueDelta)
	eff.HardDueDate = shift(eff.HardDueDate, ov.LateDueDelta)
	if ov.LimitMultiplier != nil && eff.TimeLimit != nil {
		scaled := *eff.TimeLimit * *ov.LimitMultiplier
		eff.TimeLimit = &scaled
	}
	return eff
}

func pick[T any](override, base *T) *T {
	if override != nil {
		return override
	}
	return base
}

func shift(t *time.Time, delta *time.Duration) *time.Time {
	if t == nil || delta == nil {
		return t
	}
	shifted := t.Add(*delta)
	return &shifted
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func sameNumber(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Settings is the override settings document sent to the remote service.
type Settings struct {
	Visible bool `json:"visible"`
	Diff
}

// Payload is the complete override request body.
type Payload struct {
	Override PayloadOverride `json:"override"`
}

type PayloadOverride struct {
	Settings Settings `json:"settings"`
	UserID   string   `json:"user_id"`
}

// NewPayload builds the request body applying ov to the remote student
// userID. An empty override sends no fields, so every field inherits the
// baseline and the student's extension is effectively removed.
func NewPayload(base Schedule, ov Override, userID string) Payload {
	return Payload{Override: PayloadOverride{
		Settings: Settings{Visible: true, Diff: Compute(base, ov)},
		UserID:   userID,
	}}
}
