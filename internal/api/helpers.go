package api

import "time"

// timeNowUTC is the single clock handlers call, so every timestamp a
// mutation stamps is UTC and trivially swappable for tests later.
func timeNowUTC() time.Time {
	return time.Now().UTC()
}
