package timeutils

import (
	"fmt"
	"time"
)

// SecondsUntilNextCutoff returns whole seconds from now until the next
// occurrence of hour:minute local wall-clock time in the named zone.
// now may carry any zone or offset. The result is truncated toward
// zero and is always in (0, 86400] on DST-free days; around DST
// transitions the wall-clock comparison, not fixed-offset arithmetic,
// decides which instant the cutoff lands on.
func SecondsUntilNextCutoff(now time.Time, tzName string, hour, minute int) (int, error) {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return 0, fmt.Errorf("unknown time zone %q: %w", tzName, err)
	}

	localNow := now.In(loc)
	cutoff := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), hour, minute, 0, 0, loc)
	if !localNow.Before(cutoff) {
		cutoff = time.Date(localNow.Year(), localNow.Month(), localNow.Day()+1, hour, minute, 0, 0, loc)
	}
	return int(cutoff.Sub(localNow).Seconds()), nil
}
