package utils

import (
	"testing"
)

func TestDilateExpandsBrightRegion(t *testing.T) {
	g := NewGray32(5, 5)
	g.Set(2, 2, 255)

	result := Dilate(g, 3)

	for y := 1; y <= 3; y++ {
		for x := 1; x <= 3; x++ {
			if result.At(x, y) != 255 {
				t.Errorf("expected dilated value 255 at (%d,%d), got %f", x, y, result.At(x, y))
			}
		}
	}
	if result.At(0, 0) != 0 || result.At(4, 4) != 0 {
		t.Error("corner pixels should remain 0 after dilation")
	}
}

func TestErodeShrinksBrightRegion(t *testing.T) {
	g := NewGray32(5, 5)
	for y := 1; y <= 3; y++ {
		for x := 1; x <= 3; x++ {
			g.Set(x, y, 255)
		}
	}

	result := Erode(g, 3)

	if result.At(2, 2) != 255 {
		t.Errorf("center should survive erosion, got %f", result.At(2, 2))
	}
	if result.At(1, 1) != 0 {
		t.Errorf("block edge should be eroded to 0, got %f", result.At(1, 1))
	}
}

func TestCloseFillsSmallGap(t *testing.T) {
	// Two bright columns with a one-pixel gap between them.
	g := NewGray32(7, 5)
	for y := range 5 {
		g.Set(2, y, 255)
		g.Set(4, y, 255)
	}

	result := Close(g, 3)

	for y := range 5 {
		if result.At(3, y) != 255 {
			t.Errorf("gap at (3,%d) not closed: %f", y, result.At(3, y))
		}
	}
}

func TestKernelSizeOneIsIdentity(t *testing.T) {
	g := rampPlane(6, 6)
	for i, v := range Dilate(g, 1).Pix {
		if v != g.Pix[i] {
			t.Fatalf("dilate kernel 1 changed pixel %d", i)
		}
	}
	for i, v := range Erode(g, 1).Pix {
		if v != g.Pix[i] {
			t.Fatalf("erode kernel 1 changed pixel %d", i)
		}
	}
}

func TestCloseNeverShrinksBrightMass(t *testing.T) {
	g := NewGray32(10, 10)
	for y := 3; y <= 6; y++ {
		for x := 3; x <= 6; x++ {
			g.Set(x, y, 255)
		}
	}

	result := Close(g, 3)

	for y := 3; y <= 6; y++ {
		for x := 3; x <= 6; x++ {
			if result.At(x, y) != 255 {
				t.Errorf("closing removed bright pixel at (%d,%d)", x, y)
			}
		}
	}
}
