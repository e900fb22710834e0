package timeseries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOfDay_UTC(t *testing.T) {
	// 2023-11-14 22:13:20 UTC
	got := StartOfDay(1700000000, time.UTC)
	assert.Equal(t, int64(1699920000), got)
	assert.Equal(t, "2023-11-14T00:00:00Z", time.Unix(got, 0).UTC().Format(time.RFC3339))
}

func TestStartOfDay_NilLocationIsUTC(t *testing.T) {
	assert.Equal(t, StartOfDay(1700000000, time.UTC), StartOfDay(1700000000, nil))
}

func TestStartOfDay_Properties(t *testing.T) {
	locs := []*time.Location{time.UTC, time.FixedZone("UTC+3", 3*3600), time.FixedZone("UTC-8", -8*3600)}
	stamps := []int64{0, 86399, 86400, 1700000000, 1705276800, 1705363199, 1735689599}

	for _, loc := range locs {
		for _, ts := range stamps {
			day := StartOfDay(ts, loc)
			assert.LessOrEqual(t, day, ts, "%s %d", loc, ts)
			assert.Less(t, ts-day, int64(86400), "%s %d", loc, ts)
			assert.Equal(t, day, StartOfDay(day, loc), "idempotent %s %d", loc, ts)

			_, offset := time.Unix(day, 0).In(loc).Zone()
			assert.Zero(t, (day+int64(offset))%86400, "whole day offset %s %d", loc, ts)
		}
	}

	// DST zones: the day key stays on the same calendar day and is stable.
	for _, name := range []string{"America/Sao_Paulo", "America/New_York", "Europe/Berlin"} {
		loc, err := time.LoadLocation(name)
		if err != nil {
			continue
		}
		for _, ts := range []int64{
			time.Date(2018, 11, 4, 12, 0, 0, 0, loc).Unix(),
			time.Date(2024, 3, 10, 12, 0, 0, 0, loc).Unix(),
			time.Date(2024, 3, 31, 12, 0, 0, 0, loc).Unix(),
			time.Date(2024, 11, 3, 12, 0, 0, 0, loc).Unix(),
		} {
			day := StartOfDay(ts, loc)
			assert.LessOrEqual(t, day, ts, "%s %d", name, ts)
			assert.Equal(t, day, StartOfDay(day, loc), "idempotent %s %d", name, ts)

			wy, wm, wd := time.Unix(ts, 0).In(loc).Date()
			gy, gm, gd := time.Unix(day, 0).In(loc).Date()
			assert.Equal(t, []int{wy, int(wm), wd}, []int{gy, int(gm), gd}, "same day %s %d", name, ts)
		}
	}
}

func TestStartOfDay_SkippedMidnight(t *testing.T) {
	// Clocks in Sao Paulo jumped from 00:00 to 01:00 on 2018-11-04.
	sp, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Skip("tzdata not available")
	}

	for _, hour := range []int{1, 9, 12, 23} {
		ts := time.Date(2018, 11, 4, hour, 30, 0, 0, sp).Unix()
		day := StartOfDay(ts, sp)

		start := time.Unix(day, 0).In(sp)
		assert.Equal(t, "2018-11-04 01:00", start.Format("2006-01-02 15:04"), "hour %d", hour)
		assert.LessOrEqual(t, day, ts)
		assert.Equal(t, day, StartOfDay(day, sp), "idempotent at hour %d", hour)
	}

	// neighbouring days still start at midnight
	prev := time.Unix(StartOfDay(time.Date(2018, 11, 3, 12, 0, 0, 0, sp).Unix(), sp), 0).In(sp)
	assert.Equal(t, "2018-11-03 00:00", prev.Format("2006-01-02 15:04"))
	next := time.Unix(StartOfDay(time.Date(2018, 11, 5, 12, 0, 0, 0, sp).Unix(), sp), 0).In(sp)
	assert.Equal(t, "2018-11-05 00:00", next.Format("2006-01-02 15:04"))
}

func TestStartOfDay_Monotonic(t *testing.T) {
	loc := time.FixedZone("UTC+5:30", 5*3600+1800)
	prev := StartOfDay(1700000000, loc)
	for ts := int64(1700000000); ts < 1700000000+10*86400; ts += 3607 {
		cur := StartOfDay(ts, loc)
		require.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestStartOfDay_LocationShiftsDay(t *testing.T) {
	// 2024-01-15 01:00 UTC is still 2024-01-14 in New York.
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	ts := time.Date(2024, 1, 15, 1, 0, 0, 0, time.UTC).Unix()
	day := time.Unix(StartOfDay(ts, ny), 0).In(ny)
	assert.Equal(t, 14, day.Day())
	assert.Equal(t, 0, day.Hour())
}

func TestDayKeyFromMillis(t *testing.T) {
	assert.Equal(t, int64(1699920000), DayKeyFromMillis(1700000000000, time.UTC))
	assert.Equal(t, int64(1699920000), DayKeyFromMillis(1700000000999, time.UTC))
	assert.Equal(t, int64(-86400), DayKeyFromMillis(-1, time.UTC))
}
