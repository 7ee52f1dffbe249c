package camera

import (
	"io"
	"time"
)

func NewStdinPlainReader(readFrom io.Reader) stdinPlainReader {
	return stdinPlainReader{
		readFrom: readFrom,
	}
}

func OverloadPlainPromptReader(overload plainReader) func() {
	plainPromptReaderRef := plainPromptReader
	plainPromptReader = overload
	return func() { plainPromptReader = plainPromptReaderRef }
}

func OverloadIsTerminal(overload func() bool) func() {
	isTerminalRef := isTerminal
	isTerminal = overload
	return func() { isTerminal = isTerminalRef }
}

func OverloadTimeNow(overload func() time.Time) func() {
	timeNowRef := timeNow
	timeNow = overload
	return func() { timeNow = timeNowRef }
}
