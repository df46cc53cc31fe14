package errors

import (
	"errors"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseOpen,
				Kind:   KindOpenFailed,
				Source: "/data/poly.gpkg",
				Driver: "sqlite",
				Detail: "ping failed",
			},
			contains: []string{"[open]", "open_failed", "/data/poly.gpkg", "driver sqlite", "ping failed"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseEnumerate,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[enumerate]", "out_of_bounds"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseRelease,
				Kind:   KindCloseFailed,
				Detail: "flush",
				Cause:  errors.New("disk full"),
			},
			contains: []string{"[release]", "close_failed", "flush", "caused by", "disk full"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !containsSubstring(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := OpenFailed("/tmp/a.db", "sqlite", cause)

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase:  PhaseOpen,
		Kind:   KindOpenFailed,
		Source: "foo",
	}

	if !err.Is(&Error{Phase: PhaseOpen, Kind: KindOpenFailed}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseRelease, Kind: KindOpenFailed}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseOpen, Kind: KindClosed}) {
		t.Error("Is should not match different kind")
	}
	if !errors.Is(err, ErrOpen) {
		t.Error("errors.Is should match ErrOpen")
	}
}

func TestSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel *Error
	}{
		{"double release", InvariantViolation(PhaseRelease, "a", "refcount already zero"), ErrInvariant},
		{"reference closed", InvariantViolation(PhaseReference, "a", "closed handle"), ErrInvariant},
		{"index", IndexOutOfRange(5, 2), ErrOutOfRange},
		{"closed", Closed(PhaseOpen, "registry"), ErrClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.sentinel)
			}
		})
	}

	if errors.Is(IndexOutOfRange(1, 0), ErrInvariant) {
		t.Error("out of range should not match invariant sentinel")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseOpen, KindUnsupported).
		Source("/data/x.wasm").
		Driver("wasm").
		Value(42).
		Cause(cause).
		Detail("access %s not supported", "update").
		Build()

	if err.Phase != PhaseOpen {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseOpen)
	}
	if err.Kind != KindUnsupported {
		t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
	}
	if err.Source != "/data/x.wasm" {
		t.Errorf("Source = %v, want /data/x.wasm", err.Source)
	}
	if err.Driver != "wasm" {
		t.Errorf("Driver = %v, want wasm", err.Driver)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "access update not supported" {
		t.Errorf("Detail = %v, want 'access update not supported'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("IndexOutOfRange", func(t *testing.T) {
		err := IndexOutOfRange(10, 5)
		if err.Kind != KindOutOfBounds {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
		}
		if err.Value != 10 {
			t.Errorf("Value = %v, want 10", err.Value)
		}
		if !containsSubstring(err.Detail, "[0, 5)") {
			t.Errorf("Detail = %v, should contain range", err.Detail)
		}
	})

	t.Run("CloseFailed", func(t *testing.T) {
		err := CloseFailed(PhaseClose, "/a", errors.New("busy"))
		if err.Kind != KindCloseFailed || err.Phase != PhaseClose {
			t.Errorf("got %v/%v", err.Phase, err.Kind)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported(PhaseOpen, "/a.bin", "no driver")
		if err.Kind != KindUnsupported {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseConfig, "driver", "shape")
		if !containsSubstring(err.Error(), `driver "shape" not found`) {
			t.Errorf("unexpected message %q", err.Error())
		}
	})

	t.Run("ParseFailed", func(t *testing.T) {
		err := ParseFailed("config", errors.New("bad yaml"))
		if err.Phase != PhaseConfig || err.Kind != KindInvalidData {
			t.Errorf("got %v/%v", err.Phase, err.Kind)
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		cause := errors.New("inner")
		err := Wrap(PhaseClose, KindCloseFailed, cause, "shutdown")
		if !errors.Is(err, cause) {
			t.Error("Wrap should keep the cause")
		}
	})
}

func TestAsOpenFailed(t *testing.T) {
	plain := errors.New("permission denied")
	unsupported := Unsupported(PhaseOpen, "", "directories cannot be opened for update")

	tests := []struct {
		name       string
		err        error
		driver     string
		wantDriver string
		wantCause  error
	}{
		{"plain error", plain, "file", "file", plain},
		{"driver kind", unsupported, "file", "file", unsupported},
		{"driver kind keeps its driver", &Error{Phase: PhaseOpen, Kind: KindInvalidData, Driver: "wasm"}, "", "wasm", nil},
		{"open failure copied", &Error{Phase: PhaseOpen, Kind: KindOpenFailed, Cause: plain}, "sqlite", "sqlite", plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AsOpenFailed("/data/poly.gpkg", tt.driver, tt.err)
			if !errors.Is(got, ErrOpen) {
				t.Fatalf("Expected open failure, got %v", got)
			}
			if got.Source != "/data/poly.gpkg" || got.Driver != tt.wantDriver {
				t.Errorf("Source=%q Driver=%q", got.Source, got.Driver)
			}
			if tt.wantCause != nil && !errors.Is(got, tt.wantCause) {
				t.Errorf("Expected cause %v in chain of %v", tt.wantCause, got)
			}
		})
	}
}

func TestAsOpenFailed_LeavesSentinelUntouched(t *testing.T) {
	got := AsOpenFailed("/data/poly.gpkg", "sqlite", ErrOpen)
	if got == ErrOpen {
		t.Fatal("Expected a copy of the sentinel")
	}
	if ErrOpen.Source != "" || ErrOpen.Driver != "" {
		t.Fatalf("sentinel modified: %+v", ErrOpen)
	}
	if got.Source != "/data/poly.gpkg" || got.Driver != "sqlite" {
		t.Fatalf("Source=%q Driver=%q", got.Source, got.Driver)
	}
}

func containsSubstring(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(substr) == 0 ||
		(len(s) > 0 && containsSubstringHelper(s, substr)))
}

func containsSubstringHelper(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
