package process

import "time"

func OverloadTimeNow(overload func() time.Time) func() {
	timeNowRef := timeNow
	timeNow = overload
	return func() { timeNow = timeNowRef }
}
