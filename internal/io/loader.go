// Image loading and saving on top of OpenCV codecs
package io

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// OutputDirStage is the stage name carried by a WriteError raised while
// preparing the output directory.
const OutputDirStage = "output_dir"

var supportedFormats = []string{".jpg", ".jpeg", ".png", ".tiff", ".tif", ".bmp"}

// ImageLoader handles image file operations
type ImageLoader struct {
	logger logrus.FieldLogger
}

func NewImageLoader(logger logrus.FieldLogger) *ImageLoader {
	return &ImageLoader{
		logger: logger,
	}
}

// LoadImage decodes path as a 3-channel BGR image. Any format the OpenCV
// decoder recognises by content is accepted, whatever the file extension.
func (il *ImageLoader) LoadImage(path string) (gocv.Mat, error) {
	il.logger.WithField("filepath", path).Debug("Loading image")

	info, err := os.Stat(path)
	if err != nil {
		return gocv.NewMat(), &LoadError{Path: path, Err: err}
	}
	if info.IsDir() {
		return gocv.NewMat(), &LoadError{Path: path, Err: errors.New("path is a directory")}
	}

	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		mat.Close()
		return gocv.NewMat(), &LoadError{Path: path, Err: errors.New("file could not be decoded")}
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    mat.Cols(),
		"height":   mat.Rows(),
		"channels": mat.Channels(),
	}).Info("Image loaded successfully")

	return mat, nil
}

// SaveImage encodes mat to path on behalf of stage. The format follows the
// file extension.
func (il *ImageLoader) SaveImage(stage string, mat gocv.Mat, path string) error {
	il.logger.WithFields(logrus.Fields{"stage": stage, "filepath": path}).Debug("Saving image")

	if mat.Empty() {
		return &WriteError{Stage: stage, Path: path, Err: errors.New("cannot save empty image")}
	}

	if !il.IsSupportedImageFormat(path) {
		return &WriteError{Stage: stage, Path: path, Err: fmt.Errorf("unsupported image format %q", filepath.Ext(path))}
	}

	if ok := gocv.IMWrite(path, mat); !ok {
		return &WriteError{Stage: stage, Path: path, Err: errors.New("encoder rejected image")}
	}

	info, err := os.Stat(path)
	if err != nil {
		return &WriteError{Stage: stage, Path: path, Err: err}
	}
	if info.Size() == 0 {
		return &WriteError{Stage: stage, Path: path, Err: errors.New("written file is empty")}
	}

	il.logger.WithFields(logrus.Fields{
		"stage":    stage,
		"filepath": path,
		"width":    mat.Cols(),
		"height":   mat.Rows(),
		"channels": mat.Channels(),
		"bytes":    info.Size(),
	}).Info("Image saved successfully")

	return nil
}

// EnsureOutputDir creates dir and its parents. An existing directory is not
// an error.
func (il *ImageLoader) EnsureOutputDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &WriteError{Stage: OutputDirStage, Path: dir, Err: err}
	}
	il.logger.WithField("dir", dir).Debug("Output directory ready")
	return nil
}

// IsSupportedImageFormat reports whether the encoder can be selected from
// the extension of path.
func (il *ImageLoader) IsSupportedImageFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range supportedFormats {
		if ext == format {
			return true
		}
	}
	return false
}
