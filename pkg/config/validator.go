package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/xhad/docsim/internal/models"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConfigError is a fatal problem with the run's inputs, found before any
// comparison starts.
type ConfigError struct {
	Problems []error
}

func NewConfigError(problems ...error) *ConfigError {
	return &ConfigError{Problems: problems}
}

func (e *ConfigError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Error()
	}
	return "invalid configuration: " + strings.Join(msgs, "; ")
}

func (e *ConfigError) Unwrap() []error {
	return e.Problems
}

// Check returns a *ConfigError listing every validation problem, or nil.
func (c *Config) Check() error {
	problems := c.Validate()
	if len(problems) == 0 {
		return nil
	}
	errs := make([]error, len(problems))
	for i, p := range problems {
		errs[i] = p
	}
	return NewConfigError(errs...)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate input folders
	if c.Compare.Ours.Dir == "" {
		errors = append(errors, ValidationError{
			Field:   "compare.ours.dir",
			Message: "folder with our documents is required",
		})
	}
	if c.Compare.Theirs.Dir == "" {
		errors = append(errors, ValidationError{
			Field:   "compare.theirs.dir",
			Message: "folder with their documents is required",
		})
	}

	errors = append(errors, validateExtensions("compare.ours.extensions", c.Compare.Ours.Extensions)...)
	errors = append(errors, validateExtensions("compare.theirs.extensions", c.Compare.Theirs.Extensions)...)

	if c.Compare.Workers < 1 {
		errors = append(errors, ValidationError{
			Field:   "compare.workers",
			Message: "workers must be positive",
		})
	}

	if c.Compare.TaskTimeout < 0 {
		errors = append(errors, ValidationError{
			Field:   "compare.task_timeout",
			Message: "task_timeout must not be negative",
		})
	}

	// Validate report output
	switch ext := strings.ToLower(filepath.Ext(c.Report.Output)); {
	case c.Report.Output == "":
		errors = append(errors, ValidationError{
			Field:   "report.output",
			Message: "output file is required",
		})
	case ext != ".xlsx" && ext != ".csv":
		errors = append(errors, ValidationError{
			Field:   "report.output",
			Message: fmt.Sprintf("output must be a .xlsx or .csv file: %s", c.Report.Output),
		})
	}

	// Validate Database config
	if c.Database.URL != "" {
		if _, err := url.Parse(c.Database.URL); err != nil {
			errors = append(errors, ValidationError{
				Field:   "database.url",
				Message: "invalid database URL",
			})
		}
	}

	return errors
}

func validateExtensions(field string, extensions []string) []ValidationError {
	var errors []ValidationError

	if len(extensions) == 0 {
		errors = append(errors, ValidationError{
			Field:   field,
			Message: "at least one extension is required",
		})
	}

	for _, ext := range extensions {
		if !strings.HasPrefix(ext, ".") {
			errors = append(errors, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("invalid extension format: %s", ext),
			})
			continue
		}
		if models.FormatForExtension(ext) == models.FormatUnknown {
			errors = append(errors, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("unsupported document type: %s", ext),
			})
		}
	}

	return errors
}

// IsConfigError reports whether err is, or wraps, a *ConfigError.
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}
