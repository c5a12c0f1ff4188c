package core

import (
	"fmt"

	"gocv.io/x/gocv"

	"image-transform-pipeline/internal/algorithms"
	"image-transform-pipeline/internal/config"
)

// Stage names, in run order.
const (
	StageOriginal     = "original"
	StageEqualize     = "equalize"
	StageSaturation   = "saturation"
	StageContrast     = "contrast_brightness"
	StageResizeHalf   = "resize_half"
	StageResizeDouble = "resize_double"
	StageRotate       = "rotate"
	StageMirror       = "mirror"
	StageCrop         = "center_crop"
	StageOtsu         = "otsu"
)

// Output file names. Downstream consumers depend on them, so they do not
// follow the stage parameters.
const (
	FileOriginal     = "imagem_original.jpg"
	FileEqualize     = "imagem_equalizada_pre_processamento.jpg"
	FileSaturation   = "imagem_saturada.jpg"
	FileContrast     = "imagem_ajustada_brilho_contraste.jpg"
	FileResizeHalf   = "imagem_redimensionada_50.jpg"
	FileResizeDouble = "imagem_redimensionada_200.jpg"
	FileRotate       = "imagem_rotacionada_45.jpg"
	FileMirror       = "imagem_espelhada.jpg"
	FileCrop         = "imagem_recortada_300x300.jpg"
	FileOtsu         = "imagem_otsu.jpg"
)

// TransformFunc produces a new image from src. Implementations must not
// modify src; details collects scalar facts worth reporting (e.g. a chosen
// threshold).
type TransformFunc func(src gocv.Mat, details map[string]float64) (gocv.Mat, error)

// Stage is one entry of the fixed run order.
type Stage struct {
	Name     string
	FileName string
	// Input names an earlier stage whose output this stage consumes. Empty
	// means the loaded source image.
	Input string
	Apply TransformFunc
}

// DefaultStages builds the fixed stage sequence from cfg.
func DefaultStages(cfg config.Config) ([]Stage, error) {
	halfInterp, err := algorithms.ParseInterpolation(cfg.ResizeHalf.Interpolation)
	if err != nil {
		return nil, fmt.Errorf("resize_half: %w", err)
	}
	doubleInterp, err := algorithms.ParseInterpolation(cfg.ResizeDouble.Interpolation)
	if err != nil {
		return nil, fmt.Errorf("resize_double: %w", err)
	}

	return []Stage{
		{
			Name:     StageOriginal,
			FileName: FileOriginal,
			Apply: func(src gocv.Mat, _ map[string]float64) (gocv.Mat, error) {
				return src.Clone(), nil
			},
		},
		{
			Name:     StageEqualize,
			FileName: FileEqualize,
			Apply: func(src gocv.Mat, _ map[string]float64) (gocv.Mat, error) {
				return algorithms.EqualizeGray(src)
			},
		},
		{
			Name:     StageSaturation,
			FileName: FileSaturation,
			Apply: func(src gocv.Mat, _ map[string]float64) (gocv.Mat, error) {
				return algorithms.BoostSaturation(src, cfg.Saturation.Percent)
			},
		},
		{
			Name:     StageContrast,
			FileName: FileContrast,
			Apply: func(src gocv.Mat, _ map[string]float64) (gocv.Mat, error) {
				return algorithms.AdjustContrastBrightness(src, cfg.Contrast.Alpha, cfg.Contrast.Beta)
			},
		},
		{
			Name:     StageResizeHalf,
			FileName: FileResizeHalf,
			Apply: func(src gocv.Mat, _ map[string]float64) (gocv.Mat, error) {
				return algorithms.Resize(src, cfg.ResizeHalf.Scale, halfInterp)
			},
		},
		{
			Name:     StageResizeDouble,
			FileName: FileResizeDouble,
			Apply: func(src gocv.Mat, _ map[string]float64) (gocv.Mat, error) {
				return algorithms.Resize(src, cfg.ResizeDouble.Scale, doubleInterp)
			},
		},
		{
			Name:     StageRotate,
			FileName: FileRotate,
			Apply: func(src gocv.Mat, _ map[string]float64) (gocv.Mat, error) {
				return algorithms.Rotate(src, cfg.Rotate.Angle)
			},
		},
		{
			Name:     StageMirror,
			FileName: FileMirror,
			Apply: func(src gocv.Mat, _ map[string]float64) (gocv.Mat, error) {
				return algorithms.Mirror(src)
			},
		},
		{
			Name:     StageCrop,
			FileName: FileCrop,
			Apply: func(src gocv.Mat, _ map[string]float64) (gocv.Mat, error) {
				return algorithms.CenterCrop(src, cfg.Crop.Width, cfg.Crop.Height)
			},
		},
		{
			Name:     StageOtsu,
			FileName: FileOtsu,
			Input:    StageEqualize,
			Apply: func(src gocv.Mat, details map[string]float64) (gocv.Mat, error) {
				out, threshold, err := algorithms.BinarizeOtsu(src)
				if err != nil {
					return out, err
				}
				details["threshold"] = float64(threshold)
				return out, nil
			},
		},
	}, nil
}

// validateStages checks names are unique and every Input refers to an
// earlier stage.
func validateStages(stages []Stage) error {
	seen := make(map[string]bool, len(stages))
	files := make(map[string]bool, len(stages))
	for i, s := range stages {
		if s.Name == "" || s.FileName == "" || s.Apply == nil {
			return fmt.Errorf("stage %d is incomplete", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate stage name %q", s.Name)
		}
		if files[s.FileName] {
			return fmt.Errorf("duplicate output file %q", s.FileName)
		}
		if s.Input != "" && !seen[s.Input] {
			return fmt.Errorf("stage %q consumes %q which does not run before it", s.Name, s.Input)
		}
		seen[s.Name] = true
		files[s.FileName] = true
	}
	return nil
}
