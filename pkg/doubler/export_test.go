package doubler

import (
	"time"

	"github.com/tauraamui/camdoubler/pkg/database/models"
)

type SessionStore interface {
	Create(*models.Session) error
}

func OverloadOpenSessionStore(overload func() (SessionStore, func() error, error)) func() {
	openSessionStoreRef := openSessionStore
	openSessionStore = func() (sessionStore, func() error, error) {
		return overload()
	}
	return func() { openSessionStore = openSessionStoreRef }
}

func OverloadTimeNow(overload func() time.Time) func() {
	timeNowRef := timeNow
	timeNow = overload
	return func() { timeNow = timeNowRef }
}
