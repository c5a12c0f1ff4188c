// Package display shows images on screen while a run is in progress.
package display

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Viewer presents an image to the operator. Implementations must not
// modify img.
type Viewer interface {
	Show(title string, img gocv.Mat) error
}

// NopViewer discards every image.
type NopViewer struct{}

func (NopViewer) Show(string, gocv.Mat) error { return nil }

// WindowViewer opens a highgui window per image and blocks until a key is
// pressed, then closes it.
type WindowViewer struct {
	// Delay is passed to WaitKey in milliseconds; 0 waits forever.
	Delay int
}

func (v WindowViewer) Show(title string, img gocv.Mat) error {
	if img.Empty() {
		return fmt.Errorf("display: cannot show empty image %q", title)
	}

	window := gocv.NewWindow(title)
	defer window.Close()

	window.IMShow(img)
	window.WaitKey(v.Delay)
	return nil
}

// New returns a WindowViewer when enabled, otherwise a NopViewer.
func New(enabled bool) Viewer {
	if enabled {
		return WindowViewer{}
	}
	return NopViewer{}
}
