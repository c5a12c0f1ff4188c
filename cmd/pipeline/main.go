// Image transform pipeline: loads one image and writes a fixed set of
// transformed copies into an output directory.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"image-transform-pipeline/internal/config"
	"image-transform-pipeline/internal/core"
	imgio "image-transform-pipeline/internal/io"
)

const (
	AppName    = "Image Transform Pipeline"
	AppVersion = "1.0.0"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("pipeline", flag.ContinueOnError)
	imagePath := fs.String("image", "", "Source image to process (or first positional argument)")
	outputDir := fs.String("output", "", "Output directory (default \""+config.DefaultOutputDir+"\")")
	configPath := fs.String("config", "", "Optional TOML file with stage parameters")
	show := fs.Bool("show", false, "Display the loaded image and wait for a key before processing")
	debugMode := fs.Bool("debug", false, "Enable debug mode with verbose logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *imagePath == "" && fs.NArg() > 0 {
		*imagePath = fs.Arg(0)
	}
	if *imagePath == "" {
		fmt.Fprintln(os.Stderr, "usage: pipeline [flags] <image>")
		fs.PrintDefaults()
		return 2
	}

	logger := initLogger(*debugMode)
	logger.WithFields(logrus.Fields{
		"version":    AppVersion,
		"debug_mode": *debugMode,
	}).Info("Starting " + AppName)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.WithError(err).Error("Failed to load configuration")
			return 2
		}
		cfg = loaded
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}
	if *show {
		cfg.Show = true
	}

	runner, err := core.NewRunner(cfg, logger)
	if err != nil {
		logger.WithError(err).Error("Invalid configuration")
		return 2
	}

	result, err := runner.Run(context.Background(), *imagePath)
	if err != nil {
		var loadErr *imgio.LoadError
		var writeErr *imgio.WriteError
		switch {
		case errors.As(err, &loadErr):
			logger.WithError(err).WithField("source", loadErr.Path).Error("Could not load source image")
		case errors.As(err, &writeErr):
			logger.WithError(err).WithField("stage", writeErr.Stage).Error("Could not write stage output")
		default:
			logger.WithError(err).Error("Processing failed")
		}
		return 1
	}

	logger.WithFields(logrus.Fields{
		"output_dir": result.OutputDir,
		"files":      len(result.Artifacts),
	}).Info("Processing finished, results saved")
	return 0
}

// initLogger initializes the logger with appropriate level
func initLogger(debugMode bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}
