package domain

import "time"

// TimeValue is a write-time value. When Server is set the value is a deferred
// marker that the backend resolves to its own clock at commit, and Millis is ignored.
type TimeValue struct {
	Millis Millis
	Server bool
}

func ServerTime() TimeValue {
	return TimeValue{Server: true}
}

func WallClock(t time.Time) TimeValue {
	return TimeValue{Millis: t.UnixMilli()}
}

// Resolve returns the concrete millis, using now for a server marker.
func (v TimeValue) Resolve(now func() time.Time) Millis {
	if v.Server {
		return now().UnixMilli()
	}
	return v.Millis
}

// Time converts stored millis to time.Time; ok is false when no time is known.
func Time(ms Millis) (t time.Time, ok bool) {
	if ms <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}
