package goal

import "time"

// Status classifies a savings goal
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusAtRisk    Status = "atRisk"
)

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusAtRisk:
		return true
	}
	return false
}

// ParseStatus converts a raw string into a Status
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// RiskThreshold is the fraction of expected linear progress a goal must
// hold to stay active. With a threshold of 0.9, a goal halfway through
// its window needs at least 45% of the target amount.
const RiskThreshold = 0.9

// DeriveStatus classifies a goal from its numeric and date attributes.
// It is pure: no I/O, no clock access, deterministic for identical
// inputs. Rules are evaluated in order, first match wins:
//
//  1. no target, or target met: completed
//  2. no deadline: active (a goal without a deadline is never at risk)
//  3. deadline passed, or the window from creation to deadline is not
//     positive: atRisk
//  4. actual progress below RiskThreshold of expected linear progress:
//     atRisk
//  5. otherwise: active
func DeriveStatus(amount, target int64, targetDate *time.Time, createdAt, now time.Time) Status {
	if target <= 0 || amount >= target {
		return StatusCompleted
	}
	if targetDate == nil {
		return StatusActive
	}
	if now.After(*targetDate) {
		return StatusAtRisk
	}

	window := targetDate.Sub(createdAt)
	if window <= 0 {
		return StatusAtRisk
	}

	expected := float64(now.Sub(createdAt)) / float64(window)
	if expected < 0 {
		expected = 0
	}
	if expected > 1 {
		expected = 1
	}

	actual := float64(amount) / float64(target)
	if actual < expected*RiskThreshold {
		return StatusAtRisk
	}
	return StatusActive
}
