// Package util provides miscellaneous utility functions.
package util

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// LogRecover helps ensure any unhandled errors are logged.
// Useful as a `defer` function immediately upon entering a goroutine.
func LogRecover() {
	if r := recover(); r != nil {
		var err error
		if e, ok := r.(error); ok {
			// wrap because most panics do not carry a stacktrace
			err = errors.Wrap(e, "recovered error")
		} else {
			err = errors.New(fmt.Sprint(r))
		}
		log.Error().Stack().Err(err).Msg("")
	}
}
