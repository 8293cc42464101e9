package htlc

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/iov-one/htlc/errors"
)

func TestUnixTimeUnmarshal(t *testing.T) {
	cases := map[string]struct {
		raw      string
		wantTime UnixTime
		wantErr  *errors.Error
	}{
		"zero time as number": {
			raw:      "0",
			wantTime: 0,
		},
		"zero time as string": {
			raw:      `"1970-01-01T01:00:00+01:00"`,
			wantTime: 0,
		},
		"a time as string": {
			raw:      `"2019-04-04T11:35:40.89181085+02:00"`,
			wantTime: 1554370540,
		},
		"a time as number": {
			raw:      "1554370540",
			wantTime: 1554370540,
		},
		"beyond int64": {
			raw:      "18446744073709551615",
			wantTime: UnixTime(^uint64(0)),
		},
		"negative number": {
			raw:     "-1",
			wantErr: errors.ErrInput,
		},
		"negative time as string": {
			raw:     `"1950-01-01T01:00:00+01:00"`,
			wantErr: errors.ErrInput,
		},
		"invalid string": {
			raw:     `"not a time string"`,
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var got UnixTime
			err := json.Unmarshal([]byte(tc.raw), &got)
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %+v error, got %+v", tc.wantErr, err)
			}
			if tc.wantErr == nil && got != tc.wantTime {
				t.Fatalf("want %d time, got %d", tc.wantTime, got)
			}
		})
	}
}

func TestUnixTimeAdd(t *testing.T) {
	cases := map[string]struct {
		base  UnixTime
		delta time.Duration
		want  UnixTime
	}{
		"zero delta":            {base: 10, delta: 0, want: 10},
		"one hour":              {base: 100, delta: time.Hour, want: 3700},
		"sub second is dropped": {base: 5, delta: 999 * time.Millisecond, want: 5},
		"negative delta":        {base: 100, delta: -time.Minute, want: 40},
		"below epoch is zero":   {base: 10, delta: -time.Minute, want: 0},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := tc.base.Add(tc.delta); got != tc.want {
				t.Fatalf("want %d, got %d", tc.want, got)
			}
		})
	}
}

func TestAsUnixTime(t *testing.T) {
	now := time.Now()
	if got := AsUnixTime(now); got.Time().Unix() != now.Unix() {
		t.Fatalf("unexpected conversion result: %s", got)
	}
	if got := AsUnixTime(time.Unix(-10, 0)); !got.IsZero() {
		t.Fatalf("time before epoch must be zero, got %d", got)
	}
	if !UnixTime(1).Before(2) || UnixTime(2).Before(2) {
		t.Fatal("Before must be strict")
	}
}
