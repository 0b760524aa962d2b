package pipeline

import (
	"errors"
	"testing"
)

func TestIsWhitespaceOnly(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"", true},
		{"   \t\n  ", true},
		{"hello", false},
		{"  x  ", false},
	}
	for _, c := range cases {
		if got := isWhitespaceOnly(c.text); got != c.want {
			t.Errorf("isWhitespaceOnly(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}

func TestShouldRetryStageErrorRespectsKind(t *testing.T) {
	if !shouldRetryStageError(StorageTransient("load", errors.New("timeout"))) {
		t.Error("expected StorageTransient to be retryable")
	}
	if shouldRetryStageError(UnsupportedFormat("load", errors.New("bad mime"))) {
		t.Error("expected UnsupportedFormat to not be retryable")
	}
	if !shouldRetryStageError(errors.New("plain error")) {
		t.Error("expected a non-StageError to default to retryable")
	}
}
