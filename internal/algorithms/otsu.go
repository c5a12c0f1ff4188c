// Histogram utilities and global Otsu binarization
package algorithms

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Histogram counts the occurrences of each intensity in an 8-bit
// single-channel image.
func Histogram(gray gocv.Mat) ([256]int, error) {
	var hist [256]int
	if gray.Empty() {
		return hist, fmt.Errorf("histogram: input image is empty")
	}
	if gray.Channels() != 1 {
		return hist, fmt.Errorf("histogram: expected 1 channel, got %d", gray.Channels())
	}

	if gray.Type() != gocv.MatTypeCV8UC1 {
		return hist, fmt.Errorf("histogram: expected 8-bit samples, got type %v", gray.Type())
	}

	// ROI views are not contiguous in memory
	data := gray
	if !gray.IsContinuous() {
		data = gray.Clone()
		defer data.Close()
	}

	for _, v := range data.ToBytes() {
		hist[v]++
	}
	return hist, nil
}

// OtsuThreshold picks the cutoff t that maximises the between-class variance
// of the populations {<= t} and {> t}, which is the same as minimising their
// combined intra-class variance. Ties keep the lowest t. A histogram with a
// single occupied level yields 0.
func OtsuThreshold(hist [256]int) int {
	total := 0
	sum := 0.0
	for i, count := range hist {
		total += count
		sum += float64(i) * float64(count)
	}

	sumB := 0.0
	wB := 0
	maximum := 0.0
	level := 0

	for t := 0; t < 256; t++ {
		wB += hist[t]
		if wB == 0 {
			continue
		}

		wF := total - wB
		if wF == 0 {
			break
		}

		sumB += float64(t) * float64(hist[t])
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)

		between := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if between > maximum {
			level = t
			maximum = between
		}
	}

	return level
}

// BinarizeOtsu maps every sample above the Otsu threshold of src to 255 and
// the rest to 0. Multi-channel input is converted to luminance first. The
// chosen threshold is returned alongside the image.
func BinarizeOtsu(src gocv.Mat) (gocv.Mat, int, error) {
	gray, err := ToGray(src)
	if err != nil {
		return gocv.NewMat(), 0, fmt.Errorf("otsu: %w", err)
	}
	defer gray.Close()

	hist, err := Histogram(gray)
	if err != nil {
		return gocv.NewMat(), 0, fmt.Errorf("otsu: %w", err)
	}
	threshold := OtsuThreshold(hist)

	out := gocv.NewMat()
	gocv.Threshold(gray, &out, float32(threshold), 255, gocv.ThresholdBinary)
	return out, threshold, nil
}
