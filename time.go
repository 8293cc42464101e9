package htlc

import (
	"encoding/json"
	"time"

	"github.com/iov-one/htlc/errors"
)

// UnixTime represents a point in time as POSIX time with seconds precision.
// Deadlines and creation timestamps use it so that the identifier derivation
// works on a fixed width integer.
type UnixTime uint64

// Time returns a time.Time structure that represents the same moment in time.
func (t UnixTime) Time() time.Time {
	return time.Unix(int64(t), 0).UTC()
}

// IsZero returns true if this time represents a zero value.
func (t UnixTime) IsZero() bool {
	return t == 0
}

// Add modifies this UNIX time by given duration. This is compatible with
// time.Time.Add method. Going below the epoch results in zero.
func (t UnixTime) Add(d time.Duration) UnixTime {
	secs := int64(d / time.Second)
	if secs < 0 && UnixTime(-secs) > t {
		return 0
	}
	return UnixTime(int64(t) + secs)
}

// Before returns true if t is strictly before u.
func (t UnixTime) Before(u UnixTime) bool {
	return t < u
}

// AsUnixTime converts given Time structure into its UNIX time representation.
// Times before the epoch are represented as zero.
func AsUnixTime(t time.Time) UnixTime {
	if t.Unix() < 0 {
		return 0
	}
	return UnixTime(t.Unix())
}

// UnmarshalJSON supports unmarshaling both as time.Time and from a number.
// Usually a number is used as a representation of this time in JSON but it is
// convinient to use a string format in configurations (ie genesis file).
func (t *UnixTime) UnmarshalJSON(raw []byte) error {
	var unix uint64
	if err := json.Unmarshal(raw, &unix); err == nil {
		*t = UnixTime(unix)
		return nil
	}
	var signed int64
	if err := json.Unmarshal(raw, &signed); err == nil && signed < 0 {
		return errors.Wrap(errors.ErrInput, "time before epoch")
	}

	var stdtime time.Time
	if err := json.Unmarshal(raw, &stdtime); err == nil {
		if stdtime.Unix() < 0 {
			return errors.Wrap(errors.ErrInput, "time before epoch")
		}
		*t = UnixTime(stdtime.Unix())
		return nil
	}

	return errors.Wrap(errors.ErrInput, "invalid time format")
}

// String returns the usual string representation of this time as the time.Time
// structure would.
func (t UnixTime) String() string {
	return t.Time().String()
}
