// Sequential stage runner: one source image in, one artifact per stage out
package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"image-transform-pipeline/internal/config"
	"image-transform-pipeline/internal/display"
	imgio "image-transform-pipeline/internal/io"
	"image-transform-pipeline/internal/metrics"
)

const originalWindowTitle = "Imagem Original"

// Artifact records what one stage produced.
type Artifact struct {
	Stage    string
	FileName string
	Path     string
	Metadata ImageMetadata
	Metrics  map[string]float64
	Duration time.Duration
	// Err is set when the output could not be persisted and the run was
	// configured to continue.
	Err error
}

// Result lists the artifacts of a run in stage order.
type Result struct {
	OutputDir string
	Artifacts []Artifact
}

// FileNames returns the output file names in stage order.
func (r *Result) FileNames() []string {
	names := make([]string, len(r.Artifacts))
	for i, a := range r.Artifacts {
		names[i] = a.FileName
	}
	return names
}

// Failed returns the artifacts whose write failed.
func (r *Result) Failed() []Artifact {
	var failed []Artifact
	for _, a := range r.Artifacts {
		if a.Err != nil {
			failed = append(failed, a)
		}
	}
	return failed
}

// Runner executes the stage list against one source image.
type Runner struct {
	cfg       config.Config
	stages    []Stage
	loader    *imgio.ImageLoader
	viewer    display.Viewer
	evaluator *metrics.Evaluator
	logger    logrus.FieldLogger
}

// NewRunner builds a runner for the default stage sequence.
func NewRunner(cfg config.Config, logger logrus.FieldLogger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	stages, err := DefaultStages(cfg)
	if err != nil {
		return nil, err
	}
	return NewRunnerWithStages(cfg, stages, logger)
}

// NewRunnerWithStages builds a runner for an explicit stage list.
func NewRunnerWithStages(cfg config.Config, stages []Stage, logger logrus.FieldLogger) (*Runner, error) {
	if err := validateStages(stages); err != nil {
		return nil, err
	}
	return &Runner{
		cfg:       cfg,
		stages:    stages,
		loader:    imgio.NewImageLoader(logger),
		viewer:    display.New(cfg.Show),
		evaluator: metrics.NewEvaluator(),
		logger:    logger,
	}, nil
}

// SetViewer replaces the viewer used for the loaded image.
func (r *Runner) SetViewer(v display.Viewer) {
	r.viewer = v
}

// Run loads sourcePath and executes every stage in order. A load failure is
// returned as *io.LoadError before anything is written. A write failure is
// returned as *io.WriteError, or collected and returned joined after the last
// stage when ContinueOnWriteError is set. Stages already written are never
// rolled back.
func (r *Runner) Run(ctx context.Context, sourcePath string) (*Result, error) {
	start := time.Now()
	logger := r.logger.WithFields(logrus.Fields{
		"source":     sourcePath,
		"output_dir": r.cfg.OutputDir,
	})
	logger.WithField("stage_count", len(r.stages)).Info("PIPELINE: Starting run")

	original, err := r.loader.LoadImage(sourcePath)
	if err != nil {
		logger.WithError(err).Error("PIPELINE: Failed to load source image")
		return nil, err
	}
	defer original.Close()

	if err := ValidateImage(original); err != nil {
		logger.WithError(err).Error("PIPELINE: Source image rejected")
		return nil, &imgio.LoadError{Path: sourcePath, Err: err}
	}

	if err := r.viewer.Show(originalWindowTitle, original); err != nil {
		logger.WithError(err).Warn("PIPELINE: Could not display source image")
	}

	if err := r.loader.EnsureOutputDir(r.cfg.OutputDir); err != nil {
		logger.WithError(err).Error("PIPELINE: Output directory unavailable")
		return nil, err
	}

	result := &Result{OutputDir: r.cfg.OutputDir}
	pending := r.consumerCounts()
	retained := make(map[string]gocv.Mat)
	defer func() {
		for _, m := range retained {
			m.Close()
		}
	}()

	var writeErrs []error
	for i, stage := range r.stages {
		select {
		case <-ctx.Done():
			logger.WithField("stage", stage.Name).Warn("PIPELINE: Run cancelled")
			return result, ctx.Err()
		default:
		}

		input := original
		if stage.Input != "" {
			m, ok := retained[stage.Input]
			if !ok {
				return result, fmt.Errorf("stage %s: input stage %s produced no image", stage.Name, stage.Input)
			}
			input = m
		}

		logger.WithFields(logrus.Fields{"step": i, "stage": stage.Name}).Debug("PIPELINE: Processing stage")
		artifact, output, err := r.runStage(stage, input)
		if err != nil {
			return result, err
		}
		result.Artifacts = append(result.Artifacts, artifact)

		if stage.Input != "" {
			pending[stage.Input]--
			if pending[stage.Input] == 0 {
				retained[stage.Input].Close()
				delete(retained, stage.Input)
			}
		}
		if pending[stage.Name] > 0 {
			retained[stage.Name] = output
		} else {
			output.Close()
		}

		if artifact.Err != nil {
			var writeErr *imgio.WriteError
			if !r.cfg.ContinueOnWriteError || !errors.As(artifact.Err, &writeErr) {
				return result, artifact.Err
			}
			logger.WithError(artifact.Err).WithField("stage", stage.Name).Warn("PIPELINE: Continuing after write failure")
			writeErrs = append(writeErrs, artifact.Err)
		}
	}

	logger.WithFields(logrus.Fields{
		"artifacts": len(result.Artifacts),
		"failed":    len(writeErrs),
		"duration":  time.Since(start).String(),
	}).Info("PIPELINE: Processing finished")

	return result, errors.Join(writeErrs...)
}

// runStage applies one stage and persists its output. A transform failure is
// returned as error; a persistence failure is reported on the artifact so the
// caller can decide whether to continue. The output Mat is owned by the
// caller.
func (r *Runner) runStage(stage Stage, input gocv.Mat) (Artifact, gocv.Mat, error) {
	start := time.Now()
	path := filepath.Join(r.cfg.OutputDir, stage.FileName)
	artifact := Artifact{
		Stage:    stage.Name,
		FileName: stage.FileName,
		Path:     path,
	}

	details := make(map[string]float64)
	output, err := stage.Apply(input, details)
	if err == nil && output.Empty() {
		err = errors.New("transform returned empty image")
	}
	if err != nil {
		output.Close()
		r.logger.WithError(err).WithField("stage", stage.Name).Error("PIPELINE: Stage failed")
		return artifact, gocv.NewMat(), fmt.Errorf("stage %s: %w", stage.Name, err)
	}

	artifact.Metadata = MetadataOf(output)
	artifact.Metrics = r.evaluator.EvaluateStage(input, output)
	for k, v := range details {
		artifact.Metrics[k] = v
	}

	artifact.Err = r.loader.SaveImage(stage.Name, output, path)
	artifact.Duration = time.Since(start)

	fields := logrus.Fields{
		"stage":       stage.Name,
		"file":        stage.FileName,
		"size":        artifact.Metadata.String(),
		"duration_ms": artifact.Duration.Milliseconds(),
		"written":     artifact.Err == nil,
	}
	for k, v := range artifact.Metrics {
		fields["metric_"+k] = v
	}
	r.logger.WithFields(fields).Info("PIPELINE: Stage completed")

	return artifact, output, nil
}

// consumerCounts maps each stage name to the number of later stages that
// read its output.
func (r *Runner) consumerCounts() map[string]int {
	counts := make(map[string]int)
	for _, s := range r.stages {
		if s.Input != "" {
			counts[s.Input]++
		}
	}
	return counts
}
