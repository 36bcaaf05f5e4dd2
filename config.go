package metard

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by extraction and rendering. Files are
// always read as UTF-8.
type Config struct {
	Suffix     string `yaml:"suffix"`     // target file extension, matched case-insensitively
	Divider    string `yaml:"divider"`    // separates a label from its value
	Undefined  string `yaml:"undefined"`  // placeholder for fields a file lacks
	Terminator string `yaml:"terminator"` // label whose line ends extraction
	MaxColumn  int    `yaml:"max_column"` // table column cap, 0 = none
	Format     Format `yaml:"format"`
	Jobs       int    `yaml:"jobs"` // concurrent file reads
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		Suffix:     ".lgst",
		Divider:    ":",
		Undefined:  "",
		Terminator: "scenario",
		MaxColumn:  20,
		Format:     Table,
		Jobs:       1,
	}
}

// LoadConfig reads a YAML file over the defaults. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides settings from MRD_* variables found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("MRD_SUFFIX"); ok {
		c.Suffix = v
	}
	if v, ok := lookup("MRD_DIVIDER"); ok {
		c.Divider = v
	}
	if v, ok := lookup("MRD_UNDEFINED"); ok {
		c.Undefined = v
	}
	if v, ok := lookup("MRD_TERMINATOR"); ok {
		c.Terminator = v
	}
	if v, ok := lookup("MRD_FORMAT"); ok {
		c.Format = Format(v)
	}
	if v, ok := lookup("MRD_COLUMN"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: MRD_COLUMN: %v", ErrInvalidConfig, err)
		}
		c.MaxColumn = n
	}
	if v, ok := lookup("MRD_JOBS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: MRD_JOBS: %v", ErrInvalidConfig, err)
		}
		c.Jobs = n
	}
	return c.Validate()
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Divider == "":
		return fmt.Errorf("%w: divider is empty", ErrInvalidConfig)
	case !strings.HasPrefix(c.Suffix, "."):
		return fmt.Errorf("%w: suffix %q must start with a dot", ErrInvalidConfig, c.Suffix)
	case c.MaxColumn < 0:
		return fmt.Errorf("%w: max_column %d is negative", ErrInvalidConfig, c.MaxColumn)
	case c.Jobs < 1:
		return fmt.Errorf("%w: jobs %d is less than 1", ErrInvalidConfig, c.Jobs)
	}
	if _, err := ParseFormat(string(c.Format)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
