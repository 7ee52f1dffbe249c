package doubler_test

import "github.com/tauraamui/camdoubler/pkg/log"

func overloadInfoLog(overload func(string, ...interface{})) func() {
	logInfoRef := log.Info
	log.Info = overload
	return func() { log.Info = logInfoRef }
}

func overloadErrorLog(overload func(string, ...interface{})) func() {
	logErrorRef := log.Error
	log.Error = overload
	return func() { log.Error = logErrorRef }
}
