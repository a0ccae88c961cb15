package cmd

import (
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/resume-ranker/internal/evaluation"
	"github.com/spigell/resume-ranker/internal/filtering"
	"github.com/spigell/resume-ranker/internal/pipeline"
	"github.com/spigell/resume-ranker/internal/report"
	"github.com/spigell/resume-ranker/internal/scoring"
)

const (
	app       = "resume-ranker"
	envPrefix = "RANKER"
)

type Config struct {
	ResumesDir         string         `mapstructure:"resumes-dir"`
	JobDescription     string         `mapstructure:"job-description"`
	JobDescriptionText string         `mapstructure:"job-description-text"`
	ExcludeFile        string         `mapstructure:"exclude-file"`
	SkipExcludeFile    bool           `mapstructure:"skip-exclude-file"`
	Workers            int            `mapstructure:"workers"`
	Report             *ReportConfig  `mapstructure:"report"`
	Scoring            *ScoringConfig `mapstructure:"scoring"`
	Watch              *WatchConfig   `mapstructure:"watch"`
}

type ReportConfig struct {
	CSV     string `mapstructure:"csv"`
	Summary string `mapstructure:"summary"`
}

type ScoringConfig struct {
	BoostKeywords         []string `mapstructure:"boost-keywords"`
	BoostPerKeyword       float64  `mapstructure:"boost-per-keyword"`
	MinimumWords          int      `mapstructure:"minimum-words"`
	RelevanceThreshold    float64  `mapstructure:"relevance-threshold"`
	KeywordMatchThreshold int      `mapstructure:"keyword-match-threshold"`
}

type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-ranker ranks a folder of PDF resumes against a job description",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-ranker.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("resumes-dir", "")
	v.SetDefault("job-description", "")
	v.SetDefault("job-description-text", "")
	v.SetDefault("exclude-file", "")
	v.SetDefault("skip-exclude-file", false)
	v.SetDefault("workers", 1)
	v.SetDefault("report.csv", report.DefaultCSVPath)
	v.SetDefault("report.summary", "")
	v.SetDefault("scoring.boost-keywords", scoring.DefaultKeywords)
	v.SetDefault("scoring.boost-per-keyword", scoring.DefaultPerKeyword)
	v.SetDefault("scoring.minimum-words", filtering.DefaultMinimumWords)
	v.SetDefault("scoring.relevance-threshold", evaluation.DefaultRelevanceThreshold)
	v.SetDefault("scoring.keyword-match-threshold", evaluation.DefaultKeywordMatchesThreshold)
	v.SetDefault("watch.debounce", time.Second)
}

func initConfig() {
	// Config is needed only for ranking commands.
	if rankCmd.CalledAs() == "" && watchCmd.CalledAs() == "" {
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		// Defaults are enough when the default config file is absent.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		// We can't proceed if the config file parsed with error.
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		Result: &config,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, err
	}

	if config.Report == nil {
		config.Report = &ReportConfig{CSV: report.DefaultCSVPath}
	}
	if config.Scoring == nil {
		config.Scoring = &ScoringConfig{}
	}
	if config.Watch == nil {
		config.Watch = &WatchConfig{Debounce: time.Second}
	}
	for i, kw := range config.Scoring.BoostKeywords {
		config.Scoring.BoostKeywords[i] = strings.TrimSpace(kw)
	}

	return &config, nil
}

func (c *Config) pipelineConfig() pipeline.Config {
	return pipeline.Config{
		Scoring: scoring.Config{
			Keywords:   c.Scoring.BoostKeywords,
			PerKeyword: c.Scoring.BoostPerKeyword,
		},
		MinimumWords: c.Scoring.MinimumWords,
		Thresholds: evaluation.Thresholds{
			Relevance:      c.Scoring.RelevanceThreshold,
			KeywordMatches: c.Scoring.KeywordMatchThreshold,
		},
		ExcludeFile:     c.ExcludeFile,
		SkipExcludeFile: c.SkipExcludeFile,
		Workers:         c.Workers,
	}
}

// addInputFlags registers the flags shared by ranking commands.
func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("resumes", "r", "", "folder with resumes in PDF format")
	cmd.Flags().StringP("job-description", "f", "", "job description text file")
	cmd.Flags().StringP("output", "o", "", "csv report path (default is ranked_resumes.csv)")
	cmd.Flags().IntP("workers", "w", 0, "number of resumes extracted in parallel")
	cmd.Flags().StringP("exclude-file", "e", "", "special file with resumes to exclude. Default is unset.")
}

// bindInputFlags binds the flags of the running command, so rank and watch
// do not overwrite each other's bindings.
func bindInputFlags(cmd *cobra.Command) error {
	bindings := map[string]string{
		"resumes-dir":     "resumes",
		"job-description": "job-description",
		"report.csv":      "output",
		"workers":         "workers",
		"exclude-file":    "exclude-file",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return err
		}
	}
	return nil
}
