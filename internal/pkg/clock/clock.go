package clock

import "time"

// Challenge periods are anchored to Korea Standard Time regardless of where
// the server runs. time.FixedZone avoids a dependency on the host tzdata.
var seoul = time.FixedZone("Asia/Seoul", 9*60*60)

// Period identifies one challenge month.
type Period struct {
	Year  int
	Month time.Month
}

// Clock provides the current time. Injected so tests can pin a period.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System returns a Clock backed by the wall clock.
func System() Clock {
	return systemClock{}
}

// Fixed returns a Clock frozen at t.
func Fixed(t time.Time) Clock {
	return fixedClock{t: t}
}

type fixedClock struct {
	t time.Time
}

func (f fixedClock) Now() time.Time { return f.t }

// PeriodOf maps an instant to its challenge period in Korea Standard Time.
func PeriodOf(t time.Time) Period {
	kst := t.In(seoul)
	return Period{Year: kst.Year(), Month: kst.Month()}
}

// CurrentPeriod returns the challenge period the clock currently sits in.
func CurrentPeriod(c Clock) Period {
	return PeriodOf(c.Now())
}

// StartOfDay truncates t to midnight in Korea Standard Time. Subscription day
// math is date-only, so both sides of a comparison go through this first.
func StartOfDay(t time.Time) time.Time {
	kst := t.In(seoul)
	return time.Date(kst.Year(), kst.Month(), kst.Day(), 0, 0, 0, 0, seoul)
}
