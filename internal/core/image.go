// Image metadata and validation helpers
package core

import (
	"fmt"

	"gocv.io/x/gocv"
)

// maxDimension guards against decoding images that would exhaust memory
// once the double-size stage runs.
const maxDimension = 16384

// ImageMetadata contains image information
type ImageMetadata struct {
	Width    int
	Height   int
	Channels int
	Type     gocv.MatType
}

// MetadataOf describes mat.
func MetadataOf(mat gocv.Mat) ImageMetadata {
	if mat.Empty() {
		return ImageMetadata{}
	}
	return ImageMetadata{
		Width:    mat.Cols(),
		Height:   mat.Rows(),
		Channels: mat.Channels(),
		Type:     mat.Type(),
	}
}

func (m ImageMetadata) String() string {
	return fmt.Sprintf("%dx%dx%d", m.Width, m.Height, m.Channels)
}

// ValidateImage validates an OpenCV Mat for basic requirements
func ValidateImage(mat gocv.Mat) error {
	if mat.Empty() {
		return fmt.Errorf("image is empty")
	}

	if mat.Cols() <= 0 || mat.Rows() <= 0 {
		return fmt.Errorf("invalid dimensions: %dx%d", mat.Cols(), mat.Rows())
	}

	channels := mat.Channels()
	if channels != 1 && channels != 3 && channels != 4 {
		return fmt.Errorf("unsupported channel count: %d", channels)
	}

	if mat.Cols() > maxDimension || mat.Rows() > maxDimension {
		return fmt.Errorf("image too large: %dx%d (max: %d)", mat.Cols(), mat.Rows(), maxDimension)
	}

	return nil
}
