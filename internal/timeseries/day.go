package timeseries

import "time"

// StartOfDay returns the Unix timestamp (seconds) of the first instant of the
// calendar day that ts falls on in loc. That is midnight, unless a DST
// transition skips midnight, in which case it is the first wall-clock hour
// that exists. A nil loc means UTC. Negative or out-of-range input is not
// validated.
func StartOfDay(ts int64, loc *time.Location) int64 {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := time.Unix(ts, 0).In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	for range 24 {
		if sy, sm, sd := start.Date(); sy == y && sm == m && sd == d {
			break
		}
		start = start.Add(time.Hour)
	}
	return start.Unix()
}

// DayKeyFromMillis maps a millisecond timestamp to its day key. The
// millisecond part is dropped before normalizing.
func DayKeyFromMillis(ms int64, loc *time.Location) int64 {
	return StartOfDay(floorDiv(ms, 1000), loc)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
