package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestQuietDropsPrefix(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	Printf("first %d", 1)
	if !strings.HasPrefix(buf.String(), "[lwdt] ") {
		t.Errorf("Expected the prefix, got %q", buf.String())
	}

	buf.Reset()
	SetQuiet(true)
	defer SetQuiet(false)
	Println("second")
	if buf.String() != "second\n" {
		t.Errorf("Expected a bare line, got %q", buf.String())
	}
}
