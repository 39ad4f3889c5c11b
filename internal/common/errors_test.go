package common

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestConversionErrorKinds(t *testing.T) {
	kinds := []error{ErrInputRejected, ErrDecodeFailed, ErrEnvelopeUnsatisfiable, ErrUnsupportedFormat}

	for _, kind := range kinds {
		t.Run(kind.Error(), func(t *testing.T) {
			err := NewConversionError(kind, "decode", "photo.jpg", errors.New("boom"))

			if !errors.Is(err, kind) {
				t.Errorf("Expected error to match kind %v", kind)
			}
			for _, other := range kinds {
				if other != kind && errors.Is(err, other) {
					t.Errorf("Expected error not to match kind %v", other)
				}
			}

			wrapped := fmt.Errorf("outer: %w", err)
			if !errors.Is(wrapped, kind) {
				t.Error("Expected wrapped error to keep its kind")
			}

			if UserMessage(wrapped) == UserMessage(errors.New("other")) {
				t.Error("Expected a kind specific user message")
			}
		})
	}
}

func TestConversionErrorMessage(t *testing.T) {
	cause := errors.New("bad header")
	err := NewConversionError(ErrDecodeFailed, "decode", "scan.pdf", cause)

	msg := err.Error()
	if !strings.Contains(msg, "scan.pdf") || !strings.Contains(msg, "bad header") {
		t.Errorf("Expected message to mention file and cause, got %q", msg)
	}
	if !errors.Is(err, cause) {
		t.Error("Expected cause to be reachable through Unwrap")
	}

	noFile := NewConversionError(ErrUnsupportedFormat, "encode", "", nil)
	if noFile.Error() != "encode failed: unsupported format" {
		t.Errorf("Unexpected message %q", noFile.Error())
	}
}

func TestRejectf(t *testing.T) {
	err := Rejectf("validate", "media type %q not allowed", "text/plain")
	if !errors.Is(err, ErrInputRejected) {
		t.Error("Expected ErrInputRejected")
	}
	if !strings.Contains(err.Error(), "text/plain") {
		t.Errorf("Expected formatted cause in message, got %q", err.Error())
	}
}

func TestUserMessageNil(t *testing.T) {
	if UserMessage(nil) != "" {
		t.Error("Expected empty message for nil error")
	}
}
