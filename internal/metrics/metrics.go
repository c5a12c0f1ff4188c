// Diagnostic measurements recorded for every stage output
package metrics

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"

	"image-transform-pipeline/internal/algorithms"
)

// PSNR computes the peak signal-to-noise ratio between two images of equal
// size, compared on luminance. Identical images yield +Inf.
func PSNR(original, processed gocv.Mat) (float64, error) {
	if original.Empty() || processed.Empty() {
		return 0, fmt.Errorf("psnr: empty images")
	}
	if original.Rows() != processed.Rows() || original.Cols() != processed.Cols() {
		return 0, fmt.Errorf("psnr: image dimensions mismatch")
	}

	gray1, err := algorithms.ToGray(original)
	if err != nil {
		return 0, fmt.Errorf("psnr: %w", err)
	}
	defer gray1.Close()

	gray2, err := algorithms.ToGray(processed)
	if err != nil {
		return 0, fmt.Errorf("psnr: %w", err)
	}
	defer gray2.Close()

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(gray1, gray2, &diff)

	norm := gocv.Norm(diff, gocv.NormL2)
	mse := norm * norm / float64(diff.Total())
	if mse == 0 {
		return math.Inf(1), nil
	}
	return 20 * math.Log10(255.0/math.Sqrt(mse)), nil
}

// HistogramUniformity returns the largest gap between the cumulative
// intensity distribution of gray and the uniform distribution over 0..255.
// 0 is perfectly flat, values near 1 mean all mass sits at one end.
func HistogramUniformity(gray gocv.Mat) (float64, error) {
	hist, err := algorithms.Histogram(gray)
	if err != nil {
		return 0, fmt.Errorf("uniformity: %w", err)
	}
	return uniformity(hist), nil
}

func uniformity(hist [256]int) float64 {
	total := 0
	for _, count := range hist {
		total += count
	}
	if total == 0 {
		return 0
	}

	worst := 0.0
	cumulative := 0
	for level, count := range hist {
		cumulative += count
		gap := math.Abs(float64(cumulative)/float64(total) - float64(level+1)/256)
		worst = math.Max(worst, gap)
	}
	return worst
}

// BinaryFraction is the share of samples of a single-channel image that are
// exactly 0 or 255.
func BinaryFraction(gray gocv.Mat) (float64, error) {
	hist, err := algorithms.Histogram(gray)
	if err != nil {
		return 0, fmt.Errorf("binary fraction: %w", err)
	}
	total := 0
	for _, count := range hist {
		total += count
	}
	if total == 0 {
		return 0, nil
	}
	return float64(hist[0]+hist[255]) / float64(total), nil
}

// Evaluator computes the diagnostic set attached to each stage artifact.
type Evaluator struct{}

func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// EvaluateStage measures after against the image it was produced from.
// Measurements that do not apply to the pair are left out.
func (e *Evaluator) EvaluateStage(before, after gocv.Mat) map[string]float64 {
	results := make(map[string]float64)
	if after.Empty() {
		return results
	}

	results["mean"] = meanIntensity(after)

	if !before.Empty() {
		if psnr, err := PSNR(before, after); err == nil && !math.IsInf(psnr, 1) {
			results["psnr"] = psnr
		}
	}

	if after.Channels() == 1 {
		if u, err := HistogramUniformity(after); err == nil {
			results["uniformity"] = u
		}
		if f, err := BinaryFraction(after); err == nil {
			results["binary_fraction"] = f
		}
	}

	return results
}

func meanIntensity(m gocv.Mat) float64 {
	s := m.Mean()
	switch m.Channels() {
	case 1:
		return s.Val1
	case 3:
		return (s.Val1 + s.Val2 + s.Val3) / 3
	default:
		return (s.Val1 + s.Val2 + s.Val3 + s.Val4) / 4
	}
}
