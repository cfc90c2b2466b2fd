package capture

import (
	"errors"
	"io"
	"testing"
)

func TestMockSourceServesScript(t *testing.T) {
	src := NewMockSource([][]float32{
		{1, 2},
		{3, 4},
	})
	if err := src.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	buf := make([]float32, 2)
	if err := src.Read(buf); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if buf[0] != 1 || buf[1] != 2 {
		t.Errorf("first chunk = %v, want [1 2]", buf)
	}
	if src.Remaining() != 1 {
		t.Errorf("Remaining = %d, want 1", src.Remaining())
	}

	if err := src.Read(buf); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if err := src.Read(buf); !errors.Is(err, io.EOF) {
		t.Errorf("Read past script = %v, want io.EOF", err)
	}
}

func TestMockSourceTransientError(t *testing.T) {
	src := NewMockSource([][]float32{{1}})
	src.Start()
	src.ReadErr = errors.New("hiccup")

	buf := make([]float32, 1)
	if err := src.Read(buf); err == nil {
		t.Fatal("injected error not returned")
	}
	// Error is one-shot; the next read serves the chunk
	if err := src.Read(buf); err != nil {
		t.Fatalf("Read after transient error: %v", err)
	}
}

func TestMockSourceCloseIsIdempotent(t *testing.T) {
	src := NewMockSource(nil)
	if err := src.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := src.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestSilentSourceServesZeros(t *testing.T) {
	src := NewSilentSource(4, 2)
	src.Start()

	buf := []float32{9, 9, 9, 9}
	if err := src.Read(buf); err != nil {
		t.Fatalf("Read: %v", err)
	}
	for i, v := range buf {
		if v != 0 {
			t.Errorf("buf[%d] = %v, want 0", i, v)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		msg  string
		want ErrorCategory
	}{
		{"access denied by system policy", CategoryPermission},
		{"no default input device", CategoryDeviceNotFound},
		{"invalid sample rate", CategoryFormatUnsupported},
		{"something else entirely", CategoryUnknown},
	}

	for _, tt := range tests {
		if got := classify(errors.New(tt.msg)); got != tt.want {
			t.Errorf("classify(%q) = %v, want %v", tt.msg, got, tt.want)
		}
	}
	if got := classify(nil); got != CategoryUnknown {
		t.Errorf("classify(nil) = %v, want unknown", got)
	}
}

func TestDeviceErrorAdvice(t *testing.T) {
	for _, cat := range []ErrorCategory{
		CategoryPermission, CategoryDeviceNotFound, CategoryFormatUnsupported, CategoryUnknown,
	} {
		e := &DeviceError{Category: cat, Op: "open", Err: errors.New("x")}
		if e.Advice() == "" {
			t.Errorf("no advice for category %v", cat)
		}
		if e.Error() == "" {
			t.Errorf("no message for category %v", cat)
		}
	}
}

func TestDeviceErrorUnwrap(t *testing.T) {
	inner := errors.New("inner")
	e := &DeviceError{Category: CategoryUnknown, Op: "start", Err: inner}
	if !errors.Is(e, inner) {
		t.Error("Unwrap does not expose the inner error")
	}
}
