package main

import (
	"io"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func newLogger(out io.Writer, scope string) zerolog.Logger {
	if gin.Mode() != gin.ReleaseMode {
		out = zerolog.ConsoleWriter{Out: out, NoColor: !isTerminal(out)}
	}
	return zerolog.
		New(out).
		With().
		Timestamp().
		Str("scope", scope).
		Logger()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
