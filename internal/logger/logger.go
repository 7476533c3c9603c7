package logger

import (
	"io"
	"log"
	"os"
)

var (
	// Default logger writes to stderr
	std = log.New(os.Stderr, "[lwdt] ", log.LstdFlags)
)

func SetOutput(output io.Writer) {
	std.SetOutput(output)
}

// SetQuiet drops the timestamp and prefix, so issue listings can be piped
// and compared line by line.
func SetQuiet(quiet bool) {
	if quiet {
		std.SetFlags(0)
		std.SetPrefix("")
		return
	}
	std.SetFlags(log.LstdFlags)
	std.SetPrefix("[lwdt] ")
}

func Printf(format string, v ...interface{}) {
	std.Printf(format, v...)
}

func Println(v ...interface{}) {
	std.Println(v...)
}

func Fatalf(format string, v ...interface{}) {
	std.Fatalf(format, v...)
}
