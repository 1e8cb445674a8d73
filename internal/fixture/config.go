package fixture

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tailscale/hujson"
)

// Config holds all configuration options.
type Config struct {
	// Tool invocation contract (serialized).
	Tool           string `json:"tool"`
	PageFormatFlag string `json:"page_format_flag"`
	OutputFlag     string `json:"output_flag"`
	PassphraseVar  string `json:"passphrase_var"`

	// Matrix definition (serialized).
	PageFormats []string    `json:"page_formats"`
	SizeClasses []SizeClass `json:"size_classes"`

	// Run behavior (serialized).
	OutputDir  string `json:"output_dir"`
	OnExisting string `json:"on_existing"`
	JobTimeout string `json:"job_timeout,omitempty"` // Go duration string, "" = none

	// Resolved values (computed, not serialized).
	EffectiveCwd  string        `json:"-"` // absolute working directory
	OutputDirAbs  string        `json:"-"` // absolute output directory
	JobTimeoutDur time.Duration `json:"-"` // parsed JobTimeout

	// Sources tracks which config files were loaded (for diagnostics).
	Sources ConfigSources `json:"-"`
}

// ConfigSources tracks which config files were loaded.
type ConfigSources struct {
	Global  string // path to global config if loaded, empty otherwise
	Project string // path to project config if loaded, empty otherwise
}

// DefaultConfig returns the default configuration: the paper-age CLI
// contract and the reference matrix (three size tiers, two paper sizes).
func DefaultConfig() Config {
	return Config{
		Tool:           "paper-age",
		PageFormatFlag: "--page-size",
		OutputFlag:     "--output",
		PassphraseVar:  "PAPERAGE_PASSPHRASE",
		PageFormats:    []string{"a4", "letter"},
		SizeClasses: []SizeClass{
			{Name: "small", Bytes: 6},
			{Name: "medium", Bytes: 256},
			{Name: "large", Bytes: 900},
		},
		OutputDir:  ".",
		OnExisting: OnExistingOverwrite,
	}
}

// ConfigFileName is the default project config file name.
const ConfigFileName = ".fixmat.json"

// getGlobalConfigPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/fixmat/config.json if set, otherwise
// ~/.config/fixmat/config.json. Empty if no home can be determined.
func getGlobalConfigPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "fixmat", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "fixmat", "config.json")
	}

	return ""
}

// LoadConfigInput holds the inputs for LoadConfig.
type LoadConfigInput struct {
	WorkDirOverride   string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath        string            // -c/--config flag value
	OutputDirOverride string            // --output-dir flag value; empty means no override
	Env               map[string]string // environment variables
}

// LoadConfig loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config ($XDG_CONFIG_HOME/fixmat/config.json or ~/.config/fixmat/config.json)
// 3. Project config file at default location (.fixmat.json, if exists)
// 4. Explicit config file via ConfigPath (if non-empty)
// 5. CLI overrides.
//
// All paths in the returned Config are resolved to absolute paths.
func LoadConfig(input LoadConfigInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := DefaultConfig()

	globalCfg, globalPath, err := loadGlobalConfig(input.Env)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Global = globalPath
	cfg = mergeConfig(cfg, globalCfg)

	projectCfg, projectPath, err := loadProjectConfig(workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Project = projectPath
	cfg = mergeConfig(cfg, projectCfg)

	if input.OutputDirOverride != "" {
		cfg.OutputDir = input.OutputDirOverride
	}

	validateErr := validateConfig(&cfg)
	if validateErr != nil {
		return Config{}, validateErr
	}

	cfg.EffectiveCwd = workDir

	if filepath.IsAbs(cfg.OutputDir) {
		cfg.OutputDirAbs = cfg.OutputDir
	} else {
		cfg.OutputDirAbs = filepath.Join(workDir, cfg.OutputDir)
	}

	return cfg, nil
}

// loadGlobalConfig loads the global user config file if it exists.
// Returns the config, the path if loaded, and any error.
func loadGlobalConfig(env map[string]string) (Config, string, error) {
	globalCfgPath := getGlobalConfigPath(env)
	if globalCfgPath == "" {
		return Config{}, "", nil
	}

	globalCfg, loaded, err := loadConfigFile(globalCfgPath, false)
	if err != nil {
		return Config{}, "", err
	}

	if !loaded {
		return Config{}, "", nil
	}

	return globalCfg, globalCfgPath, nil
}

// loadProjectConfig loads the project config file (.fixmat.json) or an
// explicit config file. Returns the config, the path if loaded, and any error.
func loadProjectConfig(workDir, configPath string) (Config, string, error) {
	var cfgFile string

	var mustExist bool

	if configPath != "" {
		// Explicit config file - must exist
		cfgFile = configPath
		if !filepath.IsAbs(cfgFile) {
			cfgFile = filepath.Join(workDir, cfgFile)
		}

		mustExist = true

		_, statErr := os.Stat(cfgFile)
		if statErr != nil {
			return Config{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
		}
	} else {
		// Default project config file - optional
		cfgFile = filepath.Join(workDir, ConfigFileName)
		mustExist = false
	}

	fileCfg, loaded, err := loadConfigFile(cfgFile, mustExist)
	if err != nil {
		return Config{}, "", err
	}

	if !loaded {
		return Config{}, "", nil
	}

	return fileCfg, cfgFile, nil
}

// loadConfigFile loads a config file. If mustExist is false, missing files
// return zero config. Returns the config, whether it was loaded, and any error.
func loadConfigFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if mustExist {
			return Config{}, false, fmt.Errorf("%w: %s", ErrConfigFileRead, path)
		}

		return Config{}, false, nil
	}

	cfg, parseErr := parseConfig(data)
	if parseErr != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, parseErr)
	}

	return cfg, true, nil
}

func parseConfig(data []byte) (Config, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	unmarshalErr := json.Unmarshal(standardized, &cfg)
	if unmarshalErr != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", unmarshalErr)
	}

	return cfg, nil
}

func mergeConfig(base, overlay Config) Config {
	if overlay.Tool != "" {
		base.Tool = overlay.Tool
	}

	if overlay.PageFormatFlag != "" {
		base.PageFormatFlag = overlay.PageFormatFlag
	}

	if overlay.OutputFlag != "" {
		base.OutputFlag = overlay.OutputFlag
	}

	if overlay.PassphraseVar != "" {
		base.PassphraseVar = overlay.PassphraseVar
	}

	if len(overlay.PageFormats) > 0 {
		base.PageFormats = overlay.PageFormats
	}

	if len(overlay.SizeClasses) > 0 {
		base.SizeClasses = overlay.SizeClasses
	}

	if overlay.OutputDir != "" {
		base.OutputDir = overlay.OutputDir
	}

	if overlay.OnExisting != "" {
		base.OnExisting = overlay.OnExisting
	}

	if overlay.JobTimeout != "" {
		base.JobTimeout = overlay.JobTimeout
	}

	return base
}

func validateConfig(cfg *Config) error {
	if cfg.Tool == "" {
		return ErrToolEmpty
	}

	if cfg.OutputDir == "" {
		return ErrOutputDirEmpty
	}

	if len(cfg.PageFormats) == 0 {
		return ErrNoPageFormats
	}

	seenFormats := make(map[string]bool, len(cfg.PageFormats))

	for _, format := range cfg.PageFormats {
		if format == "" {
			return ErrEmptyPageFormat
		}

		if seenFormats[format] {
			return fmt.Errorf("%w: %s", ErrDuplicatePageFmt, format)
		}

		seenFormats[format] = true
	}

	if len(cfg.SizeClasses) == 0 {
		return ErrNoSizeClasses
	}

	seenSizes := make(map[string]bool, len(cfg.SizeClasses))

	for _, size := range cfg.SizeClasses {
		if size.Name == "" {
			return ErrSizeClassName
		}

		if size.Bytes <= 0 {
			return fmt.Errorf("%w: %s", ErrSizeClassBytes, size.Name)
		}

		if seenSizes[size.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateSizeClass, size.Name)
		}

		seenSizes[size.Name] = true
	}

	if cfg.OnExisting != OnExistingOverwrite && cfg.OnExisting != OnExistingFail {
		return fmt.Errorf("%w, got %q", ErrBadOnExisting, cfg.OnExisting)
	}

	if cfg.JobTimeout != "" {
		dur, parseErr := time.ParseDuration(cfg.JobTimeout)
		if parseErr != nil || dur < 0 {
			return fmt.Errorf("%w: %q", ErrBadJobTimeout, cfg.JobTimeout)
		}

		cfg.JobTimeoutDur = dur
	}

	return nil
}

// FormatConfig renders the serializable config fields as indented JSON.
func FormatConfig(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("cannot format config: %w", err)
	}

	return string(data), nil
}
