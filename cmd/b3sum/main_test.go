package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/BLAKE3-team/BLAKE3/internal/testdata"
)

// run RootCmd against the given stdin/args, capturing stdout, after resetting
// its flag variables to their defaults.
func execute(t *testing.T, stdin *bytes.Buffer, args ...string) (string, error) {
	t.Helper()

	keyHex, deriveCtx, lengthArg = "", "", "32"

	out := &bytes.Buffer{}
	RootCmd.SetIn(stdin)
	RootCmd.SetOut(out)
	RootCmd.SetArgs(args)

	err := RootCmd.Execute()
	return out.String(), err
}

func TestRunHashesStdin(t *testing.T) {
	got, err := execute(t, bytes.NewBufferString("hello"))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(strings.TrimSpace(got)) != 64 {
		t.Fatalf("got %q, want 64 lowercase hex chars", got)
	}
}

// TestRunStdinReadFailure exercises the IoError boundary: a stdin that
// always errors must surface that error rather than hashing a partial read.
func TestRunStdinReadFailure(t *testing.T) {
	wantErr := errors.New("disk on fire")
	r := &testdata.ErrReader{Err: wantErr}

	keyHex, deriveCtx, lengthArg = "", "", "32"
	RootCmd.SetIn(r)
	RootCmd.SetOut(&bytes.Buffer{})
	RootCmd.SetArgs([]string{})

	err := RootCmd.Execute()
	if err == nil || !errors.Is(err, wantErr) {
		t.Fatalf("Execute() = %v, want wrapped %v", err, wantErr)
	}
}

// TestRunStdoutWriteFailure exercises the same IoError boundary on the
// output side: a writer that always errors must surface that error.
func TestRunStdoutWriteFailure(t *testing.T) {
	wantErr := errors.New("pipe closed")
	w := &testdata.ErrWriter{Err: wantErr}

	keyHex, deriveCtx, lengthArg = "", "", "32"
	RootCmd.SetIn(bytes.NewBufferString("hello"))
	RootCmd.SetOut(w)
	RootCmd.SetArgs([]string{})

	err := RootCmd.Execute()
	if err == nil || !errors.Is(err, wantErr) {
		t.Fatalf("Execute() = %v, want wrapped %v", err, wantErr)
	}
}

func TestRunRejectsBadKeyHex(t *testing.T) {
	_, err := execute(t, bytes.NewBufferString("hello"), "--keyed", "not-hex")
	if !errors.Is(err, errInvalidKeyHex) {
		t.Fatalf("Execute() = %v, want errInvalidKeyHex", err)
	}
}

func TestRunRejectsBadLength(t *testing.T) {
	_, err := execute(t, bytes.NewBufferString("hello"), "--length", "-1")
	if !errors.Is(err, errInvalidLength) {
		t.Fatalf("Execute() = %v, want errInvalidLength", err)
	}
}

func TestRunRejectsConflictingModes(t *testing.T) {
	_, err := execute(t, bytes.NewBufferString("hello"),
		"--keyed", strings.Repeat("ab", 32), "--derive-key", "ctx")
	if !errors.Is(err, errInvalidMode) {
		t.Fatalf("Execute() = %v, want errInvalidMode", err)
	}
}
