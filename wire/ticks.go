package wire

import "time"

// Ticks is a 64-bit count of 100-nanosecond intervals since the magtape
// epoch (2001-01-01T00:00:00Z, chosen arbitrarily but fixed for the life of
// the format -- any portable epoch constant works so long as every
// implementation agrees on it).
type Ticks int64

const ticksPerSecond = int64(time.Second / 100)

var epoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

// ToTicks converts a time.Time to the wire tick representation.
func ToTicks(t time.Time) Ticks {
	d := t.UTC().Sub(epoch)
	return Ticks(d.Nanoseconds() / 100)
}

// Time converts a wire tick count back to a time.Time in UTC.
func (t Ticks) Time() time.Time {
	return epoch.Add(time.Duration(t) * 100)
}
