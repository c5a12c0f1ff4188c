// Colour-space transforms: grayscale equalization, saturation and gain/offset
package algorithms

import (
	"fmt"

	"gocv.io/x/gocv"
)

// ToGray returns a single-channel luminance copy of src.
func ToGray(src gocv.Mat) (gocv.Mat, error) {
	if err := requireInput(src, "grayscale"); err != nil {
		return gocv.NewMat(), err
	}

	gray := gocv.NewMat()
	switch src.Channels() {
	case 1:
		src.CopyTo(&gray)
	case 3:
		gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	case 4:
		gocv.CvtColor(src, &gray, gocv.ColorBGRAToGray)
	default:
		gray.Close()
		return gocv.NewMat(), fmt.Errorf("grayscale: unsupported channel count %d", src.Channels())
	}
	return gray, nil
}

// EqualizeGray converts src to luminance and flattens its cumulative
// intensity distribution.
func EqualizeGray(src gocv.Mat) (gocv.Mat, error) {
	gray, err := ToGray(src)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("equalize: %w", err)
	}
	defer gray.Close()

	equalized := gocv.NewMat()
	gocv.EqualizeHist(gray, &equalized)
	return equalized, nil
}

// ToBGR returns a 3-channel copy of src.
func ToBGR(src gocv.Mat) (gocv.Mat, error) {
	if err := requireInput(src, "bgr"); err != nil {
		return gocv.NewMat(), err
	}

	bgr := gocv.NewMat()
	switch src.Channels() {
	case 1:
		gocv.CvtColor(src, &bgr, gocv.ColorGrayToBGR)
	case 3:
		src.CopyTo(&bgr)
	case 4:
		gocv.CvtColor(src, &bgr, gocv.ColorBGRAToBGR)
	default:
		bgr.Close()
		return gocv.NewMat(), fmt.Errorf("bgr: unsupported channel count %d", src.Channels())
	}
	return bgr, nil
}

// ScaleChannel multiplies every sample of an 8-bit plane by factor,
// saturating at 0 and 255.
func ScaleChannel(plane gocv.Mat, factor float64) gocv.Mat {
	scaled := gocv.NewMat()
	plane.ConvertToWithParams(&scaled, gocv.MatTypeCV8U, float32(factor), 0)
	return scaled
}

// BoostSaturation scales the HSV saturation of src by (1 + percent/100).
// A percent of 0 leaves the image unchanged up to HSV round-trip rounding.
func BoostSaturation(src gocv.Mat, percent float64) (gocv.Mat, error) {
	if percent < -100 {
		return gocv.NewMat(), fmt.Errorf("saturation: percent %.2f below -100", percent)
	}

	bgr, err := ToBGR(src)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("saturation: %w", err)
	}
	defer bgr.Close()

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(bgr, &hsv, gocv.ColorBGRToHSV)

	planes := gocv.Split(hsv)
	defer func() {
		for _, p := range planes {
			p.Close()
		}
	}()
	if len(planes) != 3 {
		return gocv.NewMat(), fmt.Errorf("saturation: expected 3 HSV planes, got %d", len(planes))
	}

	saturated := ScaleChannel(planes[1], 1+percent/100)
	planes[1].Close()
	planes[1] = saturated

	merged := gocv.NewMat()
	defer merged.Close()
	gocv.Merge(planes, &merged)

	out := gocv.NewMat()
	gocv.CvtColor(merged, &out, gocv.ColorHSVToBGR)
	return out, nil
}

// AdjustContrastBrightness computes clamp(alpha*x + beta, 0, 255) for every
// sample of src. Negative results clamp to 0.
func AdjustContrastBrightness(src gocv.Mat, alpha, beta float64) (gocv.Mat, error) {
	if err := requireInput(src, "contrast"); err != nil {
		return gocv.NewMat(), err
	}

	out := gocv.NewMat()
	src.ConvertToWithParams(&out, gocv.MatTypeCV8U, float32(alpha), float32(beta))
	return out, nil
}

func requireInput(src gocv.Mat, op string) error {
	if src.Empty() {
		return fmt.Errorf("%s: input image is empty", op)
	}
	return nil
}
