package algorithms

import (
	"testing"

	"gocv.io/x/gocv"
)

func grayFromFunc(rows, cols int, f func(y, x int) uint8) gocv.Mat {
	m := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8UC1)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			m.SetUCharAt(y, x, f(y, x))
		}
	}
	return m
}

// bgrFromFunc builds a 3-channel image from a per-pixel (b, g, r) function.
func bgrFromFunc(rows, cols int, f func(y, x int) (uint8, uint8, uint8)) gocv.Mat {
	m := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8UC3)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			b, g, r := f(y, x)
			m.SetUCharAt(y, x*3, b)
			m.SetUCharAt(y, x*3+1, g)
			m.SetUCharAt(y, x*3+2, r)
		}
	}
	return m
}

// maxAbsDiff compares two images of equal geometry sample by sample.
func maxAbsDiff(t *testing.T, a, b gocv.Mat) int {
	t.Helper()
	if a.Rows() != b.Rows() || a.Cols() != b.Cols() || a.Channels() != b.Channels() {
		t.Fatalf("geometry differs: %dx%dx%d vs %dx%dx%d",
			a.Cols(), a.Rows(), a.Channels(), b.Cols(), b.Rows(), b.Channels())
	}
	worst := 0
	width := a.Cols() * a.Channels()
	for y := 0; y < a.Rows(); y++ {
		for x := 0; x < width; x++ {
			d := int(a.GetUCharAt(y, x)) - int(b.GetUCharAt(y, x))
			if d < 0 {
				d = -d
			}
			worst = max(worst, d)
		}
	}
	return worst
}
