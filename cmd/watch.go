package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/logger"
	"github.com/spigell/resume-ranker/internal/pipeline"
	"github.com/spigell/resume-ranker/internal/report"
	"github.com/spigell/resume-ranker/internal/utils"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rank resumes again whenever the folder or the job description changes",
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return bindInputFlags(cmd)
	},
	Run: func(_ *cobra.Command, _ []string) {
		watch()
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	addInputFlags(watchCmd)
}

func watch() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Fatal("creating a watcher", zap.Error(err))
	}
	defer watcher.Close()

	for _, dir := range watchedDirs(config) {
		if err := watcher.Add(dir); err != nil {
			logger.Fatal("watching a folder", zap.String("folder", dir), zap.Error(err))
		}
		logger.Info("watching", zap.String("folder", dir))
	}

	rankAndLog(ctx, config, logger)

	for {
		select {
		case <-ctx.Done():
			logger.Info("exiting", zap.String("reason", "interrupted"))
			return
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error", zap.Error(err))
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !relevantEvent(event, config) {
				continue
			}
			logger.Debug("change detected", zap.String("file", event.Name), zap.String("op", event.Op.String()))

			// Let bursts of changes settle before ranking again.
			if err := utils.WaitFor(ctx, config.Watch.Debounce); err != nil {
				continue
			}
			drain(watcher.Events)

			rankAndLog(ctx, config, logger)
		}
	}
}

func watchedDirs(config *Config) []string {
	dirs := []string{filepath.Clean(config.ResumesDir)}
	if jd := strings.TrimSpace(config.JobDescription); jd != "" {
		if dir := filepath.Dir(filepath.Clean(jd)); dir != dirs[0] {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// relevantEvent reports whether event touches a resume or the job description.
func relevantEvent(event fsnotify.Event, config *Config) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Clean(event.Name)
	if jd := strings.TrimSpace(config.JobDescription); jd != "" && name == filepath.Clean(jd) {
		return true
	}
	return filepath.Dir(name) == filepath.Clean(config.ResumesDir) &&
		strings.EqualFold(filepath.Ext(name), ".pdf")
}

func drain(events <-chan fsnotify.Event) {
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

// rankAndLog runs one ranking. Failures are logged and watching continues.
func rankAndLog(ctx context.Context, config *Config, logger *zap.Logger) {
	result, err := rankFolder(ctx, config, logger, false)
	if err != nil {
		var fatal *pipeline.FatalInputError
		if errors.As(err, &fatal) {
			logger.Error("reading the job description", zap.Error(err))
			return
		}
		logger.Error("ranking failed", zap.Error(err))
		return
	}

	if result.Outcome == pipeline.OutcomeNoCandidates {
		return
	}

	for _, line := range report.Lines(result.Ranked) {
		logger.Info("ranked", zap.String("resume", line))
	}
}
