// Package extension computes per-student schedule overrides for an
// assignment. Only fields whose final value differs from the assignment's
// baseline are emitted; an omitted field inherits the baseline remotely.
package extension

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidOverride indicates an unknown override key or a value whose type
// does not match the key's declared type.
var ErrInvalidOverride = errors.New("invalid extension override")

// Key names one override field.
type Key string

const (
	KeyReleaseDate      Key = "release_date"
	KeyDueDate          Key = "due_date"
	KeyLateDueDate      Key = "late_due_date"
	KeyTimeLimitMinutes Key = "time_limit_minutes"
	KeyReleaseDelta     Key = "release_delta"
	KeyDueDelta         Key = "due_delta"
	KeyLateDueDelta     Key = "late_due_delta"
	KeyLimitMultiplier  Key = "limit_multiplier"
)

type valueKind int

const (
	kindDate valueKind = iota
	kindNumber
	kindDuration
)

func (k valueKind) String() string {
	switch k {
	case kindDate:
		return "absolute timestamp"
	case kindDuration:
		return "duration"
	default:
		return "number"
	}
}

var keyKinds = map[Key]valueKind{
	KeyReleaseDate:      kindDate,
	KeyDueDate:          kindDate,
	KeyLateDueDate:      kindDate,
	KeyTimeLimitMinutes: kindNumber,
	KeyReleaseDelta:     kindDuration,
	KeyDueDelta:         kindDuration,
	KeyLateDueDelta:     kindDuration,
	KeyLimitMultiplier:  kindNumber,
}

// keyAliases maps externally used names onto canonical keys.
var keyAliases = map[string]Key{
	"hard_due_date":   KeyLateDueDate,
	"limit_multipler": KeyLimitMultiplier,
}

func canonicalKey(raw string) (Key, bool) {
	if k, ok := keyAliases[raw]; ok {
		return k, true
	}
	k := Key(raw)
	_, ok := keyKinds[k]
	return k, ok
}

// Keys returns every accepted canonical key, sorted.
func Keys() []string {
	out := make([]string, 0, len(keyKinds))
	for k := range keyKinds {
		out = append(out, string(k))
	}
	sort.Strings(out)
	return out
}

// Override is a validated set of per-student schedule overrides. Absolute
// fields replace the baseline; delta fields compose after the absolute value
// is resolved.
type Override struct {
	ReleaseDate      *time.Time
	DueDate          *time.Time
	LateDueDate      *time.Time
	TimeLimitMinutes *float64
	ReleaseDelta     *time.Duration
	DueDelta         *time.Duration
	LateDueDelta     *time.Duration
	LimitMultiplier  *float64
}

// Parse builds an Override from a string-keyed field set, checking each key
// against the declared key table and each value against the key's type.
// Dates take time.Time, deltas take time.Duration, numbers take any Go
// integer or float.
func Parse(fields map[string]any) (Override, error) {
	var ov Override
	var problems []string
	for _, raw := range sortedKeys(fields) {
		key, ok := canonicalKey(raw)
		if !ok {
			problems = append(problems, fmt.Sprintf("unknown key %q", raw))
			continue
		}
		if err := ov.set(key, fields[raw]); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if len(problems) > 0 {
		return Override{}, fmt.Errorf("%w: %s", ErrInvalidOverride, strings.Join(problems, "; "))
	}
	return ov, nil
}

// ParseStrings is Parse for textual input such as command-line flags or
// fixture files. Dates are RFC 3339 or "2006-01-02T15:04", deltas use Go
// duration syntax with an optional "d" day suffix ("36h", "2d").
func ParseStrings(fields map[string]string) (Override, error) {
	typed := make(map[string]any, len(fields))
	var problems []string
	for _, raw := range sortedKeys(fields) {
		key, ok := canonicalKey(raw)
		if !ok {
			problems = append(problems, fmt.Sprintf("unknown key %q", raw))
			continue
		}
		v, err := parseText(keyKinds[key], fields[raw])
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", raw, err))
			continue
		}
		typed[raw] = v
	}
	if len(problems) > 0 {
		return Override{}, fmt.Errorf("%w: %s", ErrInvalidOverride, strings.Join(problems, "; "))
	}
	return Parse(typed)
}

func (ov *Override) set(key Key, v any) error {
	kind := keyKinds[key]
	mismatch := fmt.Errorf("%s: expected %s, got %T", key, kind, v)
	switch kind {
	case kindDate:
		t, ok := v.(time.Time)
		if !ok {
			return mismatch
		}
		switch key {
		case KeyReleaseDate:
			ov.ReleaseDate = &t
		case KeyDueDate:
			ov.DueDate = &t
		case KeyLateDueDate:
			ov.LateDueDate = &t
		}
	case kindDuration:
		d, ok := v.(time.Duration)
		if !ok {
			return mismatch
		}
		switch key {
		case KeyReleaseDelta:
			ov.ReleaseDelta = &d
		case KeyDueDelta:
			ov.DueDelta = &d
		case KeyLateDueDelta:
			ov.LateDueDelta = &d
		}
	case kindNumber:
		n, ok := toFloat(v)
		if !ok {
			return mismatch
		}
		switch key {
		case KeyTimeLimitMinutes:
			ov.TimeLimitMinutes = &n
		case KeyLimitMultiplier:
			ov.LimitMultiplier = &n
		}
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func parseText(kind valueKind, s string) (any, error) {
	s = strings.TrimSpace(s)
	switch kind {
	case kindDate:
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t, nil
		}
		return time.Parse(dateLayout, s)
	case kindDuration:
		if days, ok := strings.CutSuffix(s, "d"); ok {
			n, err := strconv.ParseFloat(days, 64)
			if err != nil {
				return nil, err
			}
			return time.Duration(n * float64(24*time.Hour)), nil
		}
		return time.ParseDuration(s)
	default:
		return strconv.ParseFloat(s, 64)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsZero reports whether no override field is set.
func (ov Override) IsZero() bool {
	return ov == Override{}
}

// MaxDelta returns the larger of the due and late-due deltas, or zero.
func (ov Override) MaxDelta() time.Duration {
	var d time.Duration
	if ov.DueDelta != nil && *ov.DueDelta > d {
		d = *ov.DueDelta
	}
	if ov.LateDueDelta != nil && *ov.LateDueDelta > d {
		d = *ov.LateDueDelta
	}
	return d
}
