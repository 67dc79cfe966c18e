package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"

	"github.com/sokinpui/shgutter/internal/engine"
	"github.com/sokinpui/shgutter/internal/scheduler"
	"github.com/sokinpui/shgutter/internal/shellcheck"
)

// Config holds all the command-line flag values.
type Config struct {
	ConfigFile   string
	Shellcheck   string
	Args         []string
	BaseDelay    time.Duration
	MaxDelay     time.Duration
	LinesPerStep int
	ExitWait     time.Duration
	Trace        bool
	Color        string
	Format       string
	NoAnimation  bool

	// nvim
	Server string
	Stdio  bool

	// check
	Markdown  bool
	Clipboard bool
}

// fileConfig is the layout of config.toml.
type fileConfig struct {
	Shellcheck   string        `toml:"shellcheck"`
	Args         []string      `toml:"args"`
	BaseDelay    time.Duration `toml:"base-delay"`
	MaxDelay     time.Duration `toml:"max-delay"`
	LinesPerStep int           `toml:"lines-per-step"`
	ExitWait     time.Duration `toml:"exit-wait"`
	Trace        bool          `toml:"trace"`
	Color        string        `toml:"color"`
	Format       string        `toml:"format"`
}

// Defaults returns the configuration used when neither flags nor a file set a value.
func Defaults() *Config {
	policy := scheduler.DefaultPolicy()
	return &Config{
		ConfigFile:   DefaultConfigPath(),
		Shellcheck:   shellcheck.DefaultPath,
		BaseDelay:    policy.Base,
		MaxDelay:     policy.Max,
		LinesPerStep: policy.LinesPerStep,
		ExitWait:     engine.DefaultExitWait,
		Color:        "auto",
		Format:       "text",
	}
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/shgutter/config.toml, or "" when the user
// config directory is unknown.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "shgutter", "config.toml")
}

// BindFlags defines the flags shared by all commands on flags.
func BindFlags(flags *pflag.FlagSet, cfg *Config) {
	flags.StringVarP(&cfg.ConfigFile, "config", "c", cfg.ConfigFile, "Path to the TOML configuration file.")
	flags.StringVar(&cfg.Shellcheck, "shellcheck", cfg.Shellcheck, "shellcheck executable to run.")
	flags.StringSliceVar(&cfg.Args, "arg", cfg.Args, "Extra argument passed to shellcheck (repeatable, e.g. --arg=--shell=bash).")
	flags.DurationVar(&cfg.BaseDelay, "base-delay", cfg.BaseDelay, "Delay before re-checking an edited buffer.")
	flags.DurationVar(&cfg.MaxDelay, "max-delay", cfg.MaxDelay, "Upper bound of the re-check delay.")
	flags.IntVar(&cfg.LinesPerStep, "lines-per-step", cfg.LinesPerStep, "Buffer lines per additional base delay.")
	flags.DurationVar(&cfg.ExitWait, "exit-wait", cfg.ExitWait, "How long to wait at a time for shellcheck to exit after its output closed.")
	flags.BoolVar(&cfg.Trace, "trace", cfg.Trace, "Print scheduling decisions to stderr.")
	flags.StringVar(&cfg.Color, "color", cfg.Color, "Colorize output (auto|on|off).")
}

// BindCheckFlags defines the flags of the check command.
func BindCheckFlags(flags *pflag.FlagSet, cfg *Config) {
	flags.StringVarP(&cfg.Format, "format", "f", cfg.Format, "Output format (text|markup|json).")
	flags.BoolVarP(&cfg.Markdown, "markdown", "m", cfg.Markdown, "Check the shell code blocks of Markdown input.")
	flags.BoolVar(&cfg.Clipboard, "clipboard", cfg.Clipboard, "Read the script from the clipboard.")
	flags.BoolVar(&cfg.NoAnimation, "no-animation", cfg.NoAnimation, "Disable the progress bar.")
}

// BindNvimFlags defines the flags of the nvim command.
func BindNvimFlags(flags *pflag.FlagSet, cfg *Config) {
	flags.StringVar(&cfg.Server, "server", cfg.Server, "Neovim socket to connect to (default $NVIM_LISTEN_ADDRESS).")
	flags.BoolVar(&cfg.Stdio, "stdio", cfg.Stdio, "Talk to Neovim over stdin/stdout, for use as an RPC job.")
}

// LoadFile applies the values of the TOML file at path that were not set on flags.
// A missing file is not an error.
func LoadFile(path string, cfg *Config, flags *pflag.FlagSet) error {
	if path == "" {
		return nil
	}
	var file fileConfig
	meta, err := toml.DecodeFile(path, &file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	set := func(key string) bool {
		return meta.IsDefined(key) && (flags == nil || flags.Lookup(key) == nil || !flags.Changed(key))
	}
	if set("shellcheck") {
		cfg.Shellcheck = file.Shellcheck
	}
	if meta.IsDefined("args") && (flags == nil || flags.Lookup("arg") == nil || !flags.Changed("arg")) {
		cfg.Args = file.Args
	}
	if set("base-delay") {
		cfg.BaseDelay = file.BaseDelay
	}
	if set("max-delay") {
		cfg.MaxDelay = file.MaxDelay
	}
	if set("lines-per-step") {
		cfg.LinesPerStep = file.LinesPerStep
	}
	if set("exit-wait") {
		cfg.ExitWait = file.ExitWait
	}
	if set("trace") {
		cfg.Trace = file.Trace
	}
	if set("color") {
		cfg.Color = file.Color
	}
	if set("format") {
		cfg.Format = file.Format
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown key %q in config %s", undecoded[0].String(), path)
	}
	return nil
}

// Validate normalizes enumerated values and rejects invalid ones.
func (c *Config) Validate() error {
	c.Color = strings.ToLower(strings.TrimSpace(c.Color))
	switch c.Color {
	case "", "auto":
		c.Color = "auto"
	case "on", "off":
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", c.Color)
	}

	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	switch c.Format {
	case "text", "markup", "json":
	default:
		return fmt.Errorf("invalid --format value %q (expected text|markup|json)", c.Format)
	}

	if c.BaseDelay <= 0 || c.MaxDelay <= 0 || c.LinesPerStep <= 0 || c.ExitWait <= 0 {
		return errors.New("timing settings must be positive")
	}
	if c.Server != "" && c.Stdio {
		return errors.New("--server and --stdio are mutually exclusive")
	}
	return nil
}

// Runner returns the shellcheck launcher described by c.
func (c *Config) Runner() *shellcheck.Runner {
	return &shellcheck.Runner{Path: c.Shellcheck, Args: c.Args}
}

// Policy returns the debounce policy described by c.
func (c *Config) Policy() scheduler.Policy {
	return scheduler.Policy{Base: c.BaseDelay, Max: c.MaxDelay, LinesPerStep: c.LinesPerStep}
}
