package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestDatabaseErrorCode(t *testing.T) {
	err := DatabaseError("connection reset")
	if GetCode(err) != CodeDatabaseError {
		t.Errorf("code = %s, want %s", GetCode(err), CodeDatabaseError)
	}
}

func TestWrapPreservesCode(t *testing.T) {
	// the pattern the adapters use: a coded error wrapped with call-site context
	err := Wrap(DatabaseError("connection reset"), "failed to create assessment")
	if GetCode(err) != CodeDatabaseError {
		t.Errorf("code after wrap = %s, want %s", GetCode(err), CodeDatabaseError)
	}
	if msg := err.Error(); !strings.Contains(msg, "failed to create assessment") || !strings.Contains(msg, "connection reset") {
		t.Errorf("message lost context or cause: %q", msg)
	}
}

func TestWrapfDefaultsToInternal(t *testing.T) {
	cause := stderrors.New("unexpected end of JSON input")
	err := Wrapf(cause, "failed to unmarshal %s", "solution")
	if GetCode(err) != CodeInternalError {
		t.Errorf("code = %s, want %s", GetCode(err), CodeInternalError)
	}
	if !stderrors.Is(err, cause) {
		t.Error("wrapped error must unwrap to its cause")
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("wrapping nil must stay nil")
	}
	if Wrapf(nil, "context %d", 1) != nil {
		t.Error("wrapping nil must stay nil")
	}
}

func TestGetCodeFallback(t *testing.T) {
	if got := GetCode(stderrors.New("plain")); got != "UNKNOWN" {
		t.Errorf("code for plain error = %s, want UNKNOWN", got)
	}
}
