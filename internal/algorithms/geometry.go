// Geometric transforms: resize, rotation, mirroring and cropping
package algorithms

import (
	"fmt"
	"image"
	"math"
	"strings"

	"gocv.io/x/gocv"
)

var interpolations = map[string]gocv.InterpolationFlags{
	"nearest":  gocv.InterpolationNearestNeighbor,
	"linear":   gocv.InterpolationLinear,
	"cubic":    gocv.InterpolationCubic,
	"area":     gocv.InterpolationArea,
	"lanczos4": gocv.InterpolationLanczos4,
}

// ParseInterpolation maps a configuration name onto an OpenCV interpolation
// flag.
func ParseInterpolation(name string) (gocv.InterpolationFlags, error) {
	flag, ok := interpolations[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown interpolation %q", name)
	}
	return flag, nil
}

// ScaledSize returns floor(width*scale) x floor(height*scale), never smaller
// than 1x1.
func ScaledSize(width, height int, scale float64) image.Point {
	w := int(math.Floor(float64(width) * scale))
	h := int(math.Floor(float64(height) * scale))
	return image.Pt(max(w, 1), max(h, 1))
}

// Resize scales both dimensions of src by the same factor.
func Resize(src gocv.Mat, scale float64, interp gocv.InterpolationFlags) (gocv.Mat, error) {
	if err := requireInput(src, "resize"); err != nil {
		return gocv.NewMat(), err
	}
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return gocv.NewMat(), fmt.Errorf("resize: invalid scale %v", scale)
	}

	out := gocv.NewMat()
	gocv.Resize(src, &out, ScaledSize(src.Cols(), src.Rows(), scale), 0, 0, interp)
	return out, nil
}

// Rotate turns src by angle degrees (counter-clockwise) about its center.
// The canvas keeps the input size, so corners are clipped.
func Rotate(src gocv.Mat, angle float64) (gocv.Mat, error) {
	if err := requireInput(src, "rotate"); err != nil {
		return gocv.NewMat(), err
	}

	width, height := src.Cols(), src.Rows()
	matrix := gocv.GetRotationMatrix2D(image.Pt(width/2, height/2), angle, 1.0)
	defer matrix.Close()

	out := gocv.NewMat()
	gocv.WarpAffine(src, &out, matrix, image.Pt(width, height))
	return out, nil
}

// Mirror reverses the column order of src.
func Mirror(src gocv.Mat) (gocv.Mat, error) {
	if err := requireInput(src, "mirror"); err != nil {
		return gocv.NewMat(), err
	}

	out := gocv.NewMat()
	gocv.Flip(src, &out, 1)
	return out, nil
}

// CenterCropRect returns the crop window for a width x height request on an
// imgWidth x imgHeight image. The origin is clamped to >= 0 and the far edge
// to the image bounds, so the window may be smaller than requested.
func CenterCropRect(imgWidth, imgHeight, width, height int) image.Rectangle {
	x := max(imgWidth/2-width/2, 0)
	y := max(imgHeight/2-height/2, 0)
	return image.Rect(x, y, min(x+width, imgWidth), min(y+height, imgHeight))
}

// CenterCrop copies the centered width x height window out of src.
func CenterCrop(src gocv.Mat, width, height int) (gocv.Mat, error) {
	if err := requireInput(src, "crop"); err != nil {
		return gocv.NewMat(), err
	}
	if width <= 0 || height <= 0 {
		return gocv.NewMat(), fmt.Errorf("crop: invalid size %dx%d", width, height)
	}

	rect := CenterCropRect(src.Cols(), src.Rows(), width, height)
	region := src.Region(rect)
	defer region.Close()

	return region.Clone(), nil
}
