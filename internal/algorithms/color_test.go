package algorithms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// patches returns an image made of colours that survive an 8-bit HSV round
// trip exactly.
func patches() gocv.Mat {
	colours := [][3]uint8{
		{255, 0, 0}, {0, 255, 0}, {0, 0, 255},
		{128, 128, 128}, {0, 0, 0}, {255, 255, 255},
	}
	return bgrFromFunc(12, 60, func(_, x int) (uint8, uint8, uint8) {
		c := colours[x/10]
		return c[0], c[1], c[2]
	})
}

func TestEqualizeGrayIsSingleChannel(t *testing.T) {
	src := bgrFromFunc(20, 30, func(y, x int) (uint8, uint8, uint8) {
		return uint8(x), uint8(y), uint8(x + y)
	})
	defer src.Close()

	out, err := EqualizeGray(src)
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, 1, out.Channels())
	assert.Equal(t, src.Cols(), out.Cols())
	assert.Equal(t, src.Rows(), out.Rows())
}

func TestEqualizeGrayStretchesNarrowRange(t *testing.T) {
	src := grayFromFunc(32, 64, func(_, x int) uint8 { return uint8(100 + x%32) })
	defer src.Close()

	out, err := EqualizeGray(src)
	require.NoError(t, err)
	defer out.Close()

	minVal, maxVal, _, _ := gocv.MinMaxLoc(out)
	assert.Less(t, float64(minVal), 100.0)
	assert.Equal(t, float32(255), maxVal)
}

func TestEqualizeGrayRejectsEmpty(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	_, err := EqualizeGray(empty)
	assert.Error(t, err)
}

func TestBoostSaturationZeroIsIdentity(t *testing.T) {
	src := patches()
	defer src.Close()

	out, err := BoostSaturation(src, 0)
	require.NoError(t, err)
	defer out.Close()

	assert.LessOrEqual(t, maxAbsDiff(t, src, out), 2)
}

func TestScaleChannelNeverDecreases(t *testing.T) {
	plane := grayFromFunc(16, 16, func(y, x int) uint8 { return uint8(y*16 + x) })
	defer plane.Close()

	scaled := ScaleChannel(plane, 1.3)
	defer scaled.Close()

	for y := 0; y < plane.Rows(); y++ {
		for x := 0; x < plane.Cols(); x++ {
			in := plane.GetUCharAt(y, x)
			got := scaled.GetUCharAt(y, x)
			require.GreaterOrEqual(t, got, in, "sample (%d,%d)", x, y)
			if float64(in)*1.3 >= 255 {
				require.Equal(t, uint8(255), got)
			}
		}
	}
}

func TestBoostSaturationRaisesSaturation(t *testing.T) {
	src := bgrFromFunc(8, 8, func(y, x int) (uint8, uint8, uint8) {
		return 100, uint8(120 + 4*x), uint8(160 + 4*y)
	})
	defer src.Close()

	out, err := BoostSaturation(src, 30)
	require.NoError(t, err)
	defer out.Close()

	before := gocv.NewMat()
	defer before.Close()
	after := gocv.NewMat()
	defer after.Close()
	gocv.CvtColor(src, &before, gocv.ColorBGRToHSV)
	gocv.CvtColor(out, &after, gocv.ColorBGRToHSV)

	for y := 0; y < src.Rows(); y++ {
		for x := 0; x < src.Cols(); x++ {
			assert.GreaterOrEqual(t, after.GetUCharAt(y, x*3+1), before.GetUCharAt(y, x*3+1))
		}
	}
}

func TestBoostSaturationRejectsBelowMinusHundred(t *testing.T) {
	src := patches()
	defer src.Close()

	_, err := BoostSaturation(src, -150)
	assert.Error(t, err)
}

func TestAdjustContrastBrightness(t *testing.T) {
	cases := []struct {
		name        string
		alpha, beta float64
		want        [3]uint8
	}{
		{"identity", 1, 0, [3]uint8{0, 128, 255}},
		{"reference", 1.2, 50, [3]uint8{50, 204, 255}},
		{"darken", 1.5, -100, [3]uint8{0, 92, 255}},
		{"flatten", 0, 10, [3]uint8{10, 10, 10}},
	}

	samples := [3]uint8{0, 128, 255}
	src := grayFromFunc(1, 3, func(_, x int) uint8 { return samples[x] })
	defer src.Close()

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out, err := AdjustContrastBrightness(src, c.alpha, c.beta)
			require.NoError(t, err)
			defer out.Close()

			for x, want := range c.want {
				assert.Equal(t, want, out.GetUCharAt(0, x), "sample %d", samples[x])
			}
		})
	}
}

func TestAdjustContrastBrightnessKeepsChannels(t *testing.T) {
	src := patches()
	defer src.Close()

	out, err := AdjustContrastBrightness(src, 1, 0)
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, 3, out.Channels())
	assert.Equal(t, 0, maxAbsDiff(t, src, out))
}
