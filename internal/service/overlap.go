package service

import "time"

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) share an instant.
// Back-to-back ranges, where one ends exactly when the other starts, do not.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
