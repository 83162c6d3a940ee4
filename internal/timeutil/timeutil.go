// Package timeutil formats event timestamps for display.
package timeutil

import "time"

// Timestamps at or above this value are taken to be epoch milliseconds,
// below it epoch seconds.
const millisThreshold = 1e10

var utcPlus8 = time.FixedZone("UTC+8", 8*60*60)

// FormatUTCPlus8 renders an epoch timestamp as "YYYY-MM-DD HH:MM:SS" civil
// time in UTC+8. Second- and millisecond-precision inputs for the same
// instant produce the same string.
func FormatUTCPlus8(timestamp int64) string {
	seconds := timestamp
	if timestamp >= millisThreshold {
		seconds = timestamp / 1000
	}
	return time.Unix(seconds, 0).In(utcPlus8).Format("2006-01-02 15:04:05")
}
