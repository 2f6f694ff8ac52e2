package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultOutput = "document_similarity_report.xlsx"

// Collection is one input folder and the extensions taken from it.
type Collection struct {
	Dir        string   `yaml:"dir"`
	Extensions []string `yaml:"extensions"`
}

type CompareConfig struct {
	Ours           Collection    `yaml:"ours"`
	Theirs         Collection    `yaml:"theirs"`
	IgnorePatterns []string      `yaml:"ignore_patterns"`
	Workers        int           `yaml:"workers"`
	TaskTimeout    time.Duration `yaml:"task_timeout"`
}

type ExtractorConfig struct {
	// CacheSize is the number of extracted texts kept in memory; negative disables the cache.
	CacheSize        int      `yaml:"cache_size"`
	ContentSelectors []string `yaml:"content_selectors"`
}

type ProcessorConfig struct {
	RemoveStopwords bool     `yaml:"remove_stopwords"`
	CustomStopwords []string `yaml:"custom_stopwords"`
}

type ReportConfig struct {
	Output string `yaml:"output"`
}

type DatabaseConfig struct {
	URL       string `yaml:"url"`
	TableName string `yaml:"table_name"`
}

type UIConfig struct {
	ProgressBar bool `yaml:"progress_bar"`
	NoColor     bool `yaml:"no_color"`
}

type Config struct {
	Compare   CompareConfig   `yaml:"compare"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Processor ProcessorConfig `yaml:"processor"`
	Report    ReportConfig    `yaml:"report"`
	Database  DatabaseConfig  `yaml:"database"`
	UI        UIConfig        `yaml:"ui"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"docsim.yaml",
			"docsim.yml",
			filepath.Join(os.Getenv("HOME"), ".config/docsim/config.yaml"),
			"/etc/docsim/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConfigError(fmt.Errorf("error reading config file: %w", err))
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, NewConfigError(fmt.Errorf("error parsing config file %s: %w", path, err))
	}

	// Merge with environment variables
	mergeWithEnv(&config)

	// Apply defaults for unset values
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() *Config {
	config := &Config{}
	mergeWithEnv(config)
	applyDefaults(config)
	return config
}

func applyDefaults(config *Config) {
	if len(config.Compare.Ours.Extensions) == 0 {
		config.Compare.Ours.Extensions = []string{".docx"}
	}
	if len(config.Compare.Theirs.Extensions) == 0 {
		config.Compare.Theirs.Extensions = []string{".pdf"}
	}
	if config.Compare.IgnorePatterns == nil {
		// Office lock files
		config.Compare.IgnorePatterns = []string{"~$"}
	}
	if config.Compare.Workers == 0 {
		config.Compare.Workers = runtime.NumCPU()
	}

	if config.Extractor.CacheSize == 0 {
		config.Extractor.CacheSize = 128
	}

	if config.Report.Output == "" {
		config.Report.Output = DefaultOutput
	}

	if config.Database.URL != "" && config.Database.TableName == "" {
		config.Database.TableName = "similarity_results"
	}
}

func mergeWithEnv(config *Config) {
	if dir := os.Getenv("DOCSIM_OURS_DIR"); dir != "" {
		config.Compare.Ours.Dir = dir
	}
	if dir := os.Getenv("DOCSIM_THEIRS_DIR"); dir != "" {
		config.Compare.Theirs.Dir = dir
	}
	if output := os.Getenv("DOCSIM_OUTPUT"); output != "" {
		config.Report.Output = output
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
	}
}
