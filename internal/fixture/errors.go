package fixture

import "errors"

var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrFlagRequiresArg    = errors.New("flag requires an argument")
	ErrUnknownFlag        = errors.New("unknown flag")

	ErrToolEmpty          = errors.New("tool cannot be empty")
	ErrOutputDirEmpty     = errors.New("output_dir cannot be empty")
	ErrNoPageFormats      = errors.New("at least one page format is required")
	ErrNoSizeClasses      = errors.New("at least one size class is required")
	ErrEmptyPageFormat    = errors.New("page format cannot be empty")
	ErrDuplicatePageFmt   = errors.New("duplicate page format")
	ErrSizeClassName      = errors.New("size class name cannot be empty")
	ErrSizeClassBytes     = errors.New("size class byte length must be positive")
	ErrDuplicateSizeClass = errors.New("duplicate size class name")
	ErrBadOnExisting      = errors.New(`on_existing must be "overwrite" or "fail"`)
	ErrBadJobTimeout      = errors.New("job_timeout is not a valid duration")

	// ErrEntropy aborts the whole batch: without payload bytes there is
	// nothing meaningful to feed the tool.
	ErrEntropy = errors.New("entropy source unavailable")
)
