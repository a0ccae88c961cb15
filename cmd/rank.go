package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/spigell/resume-ranker/internal/extract"
	"github.com/spigell/resume-ranker/internal/logger"
	"github.com/spigell/resume-ranker/internal/pipeline"
	"github.com/spigell/resume-ranker/internal/reference"
	"github.com/spigell/resume-ranker/internal/report"
	"github.com/spigell/resume-ranker/internal/resume"
	"github.com/spigell/resume-ranker/internal/tui"
)

const (
	PromptShowRanking         = "Show ranking"
	PromptShowEvaluation      = "Show evaluation report"
	PromptShowIgnored         = "Show ignored resumes"
	PromptAppendToExcludeFile = "Append ignored resumes to exclude file"
	PromptResultToFile        = "Dump result to file"
	PromptExit                = "Exit"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptShowRanking, PromptShowEvaluation, PromptShowIgnored, PromptAppendToExcludeFile, PromptResultToFile, PromptExit},
}

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank resumes against a job description and save the report",
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := bindInputFlags(cmd); err != nil {
			return err
		}
		return viper.BindPFlag("skip-exclude-file", cmd.Flags().Lookup("no-exclude"))
	},
	Run: func(cmd *cobra.Command, _ []string) {
		rank(cmd)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	addInputFlags(rankCmd)
	rankCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for further actions after ranking")
	rankCmd.Flags().Bool("no-tui", false, "log progress instead of drawing a progress bar")
	rankCmd.Flags().Bool("no-exclude", false, "ignore the exclude file for this run")
}

// rank is the main command for the cli.
func rank(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	noTUI, _ := cmd.Flags().GetBool("no-tui")
	useTUI := interactive && !noTUI && !viper.GetBool("json")

	// The progress view owns stdout.
	var outputs []string
	if useTUI {
		outputs = []string{"stderr"}
	}

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"), outputs...)
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the resume-ranker", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	result, err := rankFolder(ctx, config, logger, useTUI)
	if err != nil {
		var fatal *pipeline.FatalInputError
		if errors.As(err, &fatal) {
			logger.Fatal("reading the job description",
				zap.Error(err),
				zap.String("hint", "set --job-description, the 'job-description' key or RANKER_JOB_DESCRIPTION"),
			)
		}
		logger.Fatal("ranking failed", zap.Error(err))
	}

	if result.Outcome == pipeline.OutcomeNoCandidates {
		return
	}

	printRanking(result, useTUI)

	autoApprove, _ := cmd.Flags().GetBool("auto-approve")
	if autoApprove || !interactive {
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, logger, config, result, useTUI); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, logger *zap.Logger, config *Config, result *pipeline.Result, styled bool) error {
	switch action {
	case PromptShowRanking:
		printRanking(result, styled)
		return nil
	case PromptShowEvaluation:
		printBlock("Evaluation", result.Evaluation.String(), styled)
		return nil
	case PromptShowIgnored:
		lines := report.IgnoredLines(result)
		if len(lines) == 0 {
			lines = []string{"no resumes were ignored"}
		}
		printBlock("Ignored resumes", strings.Join(lines, "\n"), styled)
		return nil
	case PromptAppendToExcludeFile:
		return appendToExcludeFile(logger, config.ExcludeFile, result.Ignored)
	case PromptResultToFile:
		filename, err := report.DumpToTmpFile(result)
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func appendToExcludeFile(logger *zap.Logger, path string, ignored []resume.Ignored) error {
	path = strings.TrimSpace(path)
	if path == "" {
		logger.Warn("exclude file is not configured", zap.String("hint", "set --exclude-file or the 'exclude-file' key"))
		return nil
	}
	if len(ignored) == 0 {
		logger.Info("nothing to append to exclude file")
		return nil
	}

	excluded, err := resume.GetExcludedFromFile(path)
	if err != nil {
		return err
	}

	excluded.Append(resume.ToExcluded(ignored))

	if err := excluded.ToFile(path); err != nil {
		return err
	}

	logger.Info("appended to exclude file", zap.String("filename", path), zap.Int("count", len(excluded.Items)))
	return nil
}

// rankFolder ranks the configured folder. The job description is always
// loaded, so an empty folder still reports a missing reference.
func rankFolder(ctx context.Context, config *Config, logger *zap.Logger, useTUI bool) (*pipeline.Result, error) {
	req, err := buildRequest(config)
	if err != nil {
		return nil, fmt.Errorf("preparing the run: %w", err)
	}
	if len(req.Candidates) == 0 {
		logger.Warn("no resumes found", zap.String("folder", config.ResumesDir))
	}

	result, err := rankOnce(ctx, config, req, logger, useTUI)
	if err != nil {
		return nil, err
	}

	if result.Outcome == pipeline.OutcomeNoCandidates {
		for _, line := range report.IgnoredLines(result) {
			logger.Info("ignored resume", zap.String("resume", line))
		}
		logger.Info("exiting", zap.String("reason", "no resumes left to rank"))
	}

	return result, nil
}

// buildRequest turns the configuration into a run request.
func buildRequest(config *Config) (pipeline.Request, error) {
	if strings.TrimSpace(config.ResumesDir) == "" {
		return pipeline.Request{}, errors.New("resumes folder is required: set --resumes or the 'resumes-dir' key")
	}

	candidates, err := extract.ListCandidates(config.ResumesDir)
	if err != nil {
		return pipeline.Request{}, err
	}

	return pipeline.Request{
		Reference: reference.Source{
			Name: "job description",
			File: config.JobDescription,
			Text: config.JobDescriptionText,
		},
		Candidates: candidates,
	}, nil
}

// rankOnce runs the pipeline and writes the configured reports on success.
func rankOnce(ctx context.Context, config *Config, req pipeline.Request, logger *zap.Logger, useTUI bool) (*pipeline.Result, error) {
	opts := []pipeline.Option{pipeline.WithLogger(logger)}

	var progress *tui.Progress
	if useTUI {
		progress = tui.NewProgress(os.Stdout)
		progress.Start()
		opts = append(opts, pipeline.WithObserver(progress.Observe))
	} else {
		opts = append(opts, pipeline.WithObserver(logObserver(logger)))
	}

	p, err := pipeline.New(config.pipelineConfig(), opts...)
	if err != nil {
		if progress != nil {
			progress.Stop()
		}
		return nil, err
	}

	result, err := p.Run(ctx, req)
	if progress != nil {
		progress.Stop()
	}
	if err != nil {
		return nil, err
	}

	if result.Outcome != pipeline.OutcomeRanked {
		return result, nil
	}

	if err := report.WriteCSV(config.Report.CSV, result.Ranked); err != nil {
		return nil, fmt.Errorf("saving report: %w", err)
	}
	logger.Info("report saved", zap.String("filename", config.Report.CSV), zap.Int("resumes", len(result.Ranked)))

	if config.Report.Summary != "" {
		if err := report.WriteSummary(config.Report.Summary, result); err != nil {
			return nil, fmt.Errorf("saving summary: %w", err)
		}
		logger.Info("summary saved", zap.String("filename", config.Report.Summary))
	}

	return result, nil
}

// logObserver reports phase transitions through the logger.
func logObserver(l *zap.Logger) pipeline.Observer {
	return func(e pipeline.Event) {
		fields := logger.CommonFields(e.RunID, e.Phase.String())
		switch {
		case e.Candidate != "":
			l.Debug("resume extracted", append(fields,
				zap.String("resume", e.Candidate),
				zap.Int("done", e.Done),
				zap.Int("total", e.Total),
			)...)
		case e.Phase == pipeline.PhaseFailed:
			l.Debug("run failed", append(fields, zap.Error(e.Err))...)
		case e.Phase == pipeline.PhaseDone:
			l.Info("run finished", append(fields, zap.String("outcome", e.Outcome.String()))...)
		default:
			l.Info("phase started", fields...)
		}
	}
}

func printRanking(result *pipeline.Result, styled bool) {
	if styled {
		fmt.Println(tui.RenderRanking(result.Ranked))
		return
	}
	fmt.Println("Ranked resumes:")
	for _, line := range report.Lines(result.Ranked) {
		fmt.Println(line)
	}
}

func printBlock(title, body string, styled bool) {
	if styled {
		fmt.Println(tui.RenderBlock(title, body))
		return
	}
	fmt.Printf("%s:\n%s\n", title, body)
}
