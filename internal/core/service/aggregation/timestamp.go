package aggregation

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMalformedTimestamp marks a position report whose time field could not
// be parsed. The event is dropped; the stream keeps going.
var ErrMalformedTimestamp = errors.New("malformed timestamp")

const feedTimeLayout = "2006-01-02 15:04:05.999999 -0700"

// ParseFeedTime parses the aisstream time_utc format, for example
// "2025-12-29 15:54:06.743205339 +0000 UTC". The fractional part carries up
// to nine digits; everything past microseconds is truncated before parsing,
// never rounded. A trailing "UTC" marker is stripped, the numeric offset is
// required.
func ParseFeedTime(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, "UTC")
	s = strings.TrimSpace(s)

	// Split the numeric offset off the end so the fraction can be
	// truncated in isolation.
	idx := strings.LastIndex(s, " ")
	if idx < 0 {
		return time.Time{}, fmt.Errorf("%w: %q has no offset", ErrMalformedTimestamp, raw)
	}
	datetime, offset := s[:idx], s[idx+1:]

	if dot := strings.Index(datetime, "."); dot >= 0 {
		frac := datetime[dot+1:]
		if len(frac) > 6 {
			frac = frac[:6]
		}
		datetime = datetime[:dot+1] + frac
	}

	t, err := time.Parse(feedTimeLayout, datetime+" "+offset)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrMalformedTimestamp, err)
	}
	return t, nil
}
