package mempool

import (
	"testing"
)

func TestSizeClass(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 1024},
		{1, 1024},
		{1024, 1024},
		{1025, 2048},
		{3000, 3072},
		{56 * 56, 4096},
	}
	for _, tt := range tests {
		if got := sizeClass(tt.n); got != tt.want {
			t.Errorf("sizeClass(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestGetFloat32Length(t *testing.T) {
	buf := GetFloat32(100)
	if len(buf) != 100 {
		t.Fatalf("len = %d, want 100", len(buf))
	}
	if cap(buf) < 100 {
		t.Fatalf("cap = %d, want >= 100", cap(buf))
	}
	PutFloat32(buf)
}

func TestFloat32Reuse(t *testing.T) {
	buf := GetFloat32(500)
	for i := range buf {
		buf[i] = float32(i)
	}
	PutFloat32(buf)

	again := GetFloat32(500)
	if len(again) != 500 {
		t.Fatalf("len = %d, want 500", len(again))
	}
	PutFloat32(again)
}

func TestGetBoolZeroed(t *testing.T) {
	buf := GetBool(256)
	for i := range buf {
		buf[i] = true
	}
	PutBool(buf)

	again := GetBool(256)
	for i, v := range again {
		if v {
			t.Fatalf("index %d not zeroed after reuse", i)
		}
	}
	PutBool(again)
}

func TestPutNilIsSafe(t *testing.T) {
	PutFloat32(nil)
	PutBool(nil)
}

func BenchmarkGetPutFloat32(b *testing.B) {
	for range b.N {
		buf := GetFloat32(56 * 56)
		PutFloat32(buf)
	}
}
