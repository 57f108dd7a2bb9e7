// Package scoring holds the pure pick and slip helpers: odds parsing, pick
// points, the weekly eligibility window and slip lock/finalize rules.
package scoring

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/go-go-golems/pickem/pkg/models"
	"github.com/pkg/errors"
)

// Stake is the notional amount every pick risks.
const Stake = 100.0

type Result string

const (
	Win     Result = "win"
	Loss    Result = "loss"
	Push    Result = "push"
	Pending Result = "pending"
)

type Category string

const (
	Open   Category = "open"
	Locked Category = "locked"
	Graded Category = "graded"
)

// ParseAmericanOdds parses "+150", "-110", "150" or "EVEN"/"EV" (+100).
func ParseAmericanOdds(s string) (int, error) {
	v := strings.TrimSpace(strings.ToUpper(s))
	switch v {
	case "":
		return 0, errors.New("empty odds")
	case "EVEN", "EV":
		return 100, nil
	}
	n, err := strconv.Atoi(strings.TrimPrefix(v, "+"))
	if err != nil {
		return 0, errors.Wrapf(err, "parse odds %q", s)
	}
	if n > -100 && n < 100 {
		return 0, errors.Errorf("odds %q out of range", s)
	}
	return n, nil
}

func NormalizePickResult(s string) Result {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "w", "win", "won":
		return Win
	case "l", "loss", "lose", "lost":
		return Loss
	case "p", "push", "pushed", "void", "tie":
		return Push
	default:
		return Pending
	}
}

// GetPickPoints scores a graded pick against Stake. Pending picks and picks
// with unreadable odds that won score zero.
func GetPickPoints(p models.Pick) float64 {
	switch NormalizePickResult(p.Result) {
	case Win:
		odds, err := ParseAmericanOdds(p.Odds)
		if err != nil {
			return 0
		}
		var profit float64
		if odds > 0 {
			profit = Stake * float64(odds) / 100
		} else {
			profit = Stake * 100 / float64(-odds)
		}
		return round2(profit)
	case Loss:
		return -Stake
	default:
		return 0
	}
}

func SlipPoints(s models.Slip) float64 {
	total := 0.0
	for _, p := range s.Picks {
		total += GetPickPoints(p)
	}
	return round2(total)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// EligibleWindowEnd is the next Tuesday 00:00 in loc strictly after now,
// the boundary of an NFL week.
func EligibleWindowEnd(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t := now.In(loc)
	days := (int(time.Tuesday) - int(t.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	y, m, d := t.Date()
	return time.Date(y, m, d+days, 0, 0, 0, 0, loc)
}

// EventStart parses a pick's start time in any common layout.
func EventStart(p models.Pick) (time.Time, bool) {
	if strings.TrimSpace(p.EventStart) == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(p.EventStart)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsSlipTimeLocked reports whether any pick's event has started.
func IsSlipTimeLocked(s models.Slip, now time.Time) bool {
	for _, p := range s.Picks {
		if start, ok := EventStart(p); ok && !start.After(now) {
			return true
		}
	}
	return false
}

func allGraded(s models.Slip) bool {
	if len(s.Picks) == 0 {
		return false
	}
	for _, p := range s.Picks {
		if NormalizePickResult(p.Result) == Pending {
			return false
		}
	}
	return true
}

func IsSlipFinal(s models.Slip) bool {
	return s.Finalized || s.Status == "finalized" || s.Status == "graded" || allGraded(s)
}

// effectiveLimit prefers an explicit limit, then the slip's own; 0 is unlimited.
func effectiveLimit(s models.Slip, limit int) int {
	if limit > 0 {
		return limit
	}
	if s.PickLimit > 0 {
		return s.PickLimit
	}
	return 0
}

func CanFinalize(s models.Slip, now time.Time, limit int) bool {
	n := len(s.Picks)
	if n == 0 {
		return false
	}
	if l := effectiveLimit(s, limit); l > 0 && n > l {
		return false
	}
	return !IsSlipFinal(s) && !IsSlipTimeLocked(s, now)
}

// PickLimitRemaining returns how many picks can still be added, or -1 when
// the slip is unlimited.
func PickLimitRemaining(s models.Slip, limit int) int {
	l := effectiveLimit(s, limit)
	if l == 0 {
		return -1
	}
	if r := l - len(s.Picks); r > 0 {
		return r
	}
	return 0
}

func SlipCategory(s models.Slip, now time.Time) Category {
	switch {
	case s.Status == "graded" || allGraded(s):
		return Graded
	case IsSlipFinal(s) || IsSlipTimeLocked(s, now):
		return Locked
	default:
		return Open
	}
}
