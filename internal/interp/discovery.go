package interp

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/wagiedev/forth-kernel-go/internal/config"
	"github.com/wagiedev/forth-kernel-go/internal/errors"
)

const (
	// DefaultName is the executable searched for on PATH.
	DefaultName = "gforth"

	// VersionCheckTimeout is the timeout for the --version probe.
	VersionCheckTimeout = 2 * time.Second
)

// Config holds configuration for interpreter discovery.
type Config struct {
	// Path is an explicit interpreter path that skips every other lookup.
	Path string

	// Name is the executable name searched on PATH. Defaults to DefaultName.
	Name string

	// SkipVersionCheck skips the --version probe.
	SkipVersionCheck bool

	// Logger is an optional logger for discovery operations.
	// If nil, logging is disabled.
	Logger *slog.Logger
}

// Discoverer locates the interpreter binary.
type Discoverer interface {
	// Discover returns the path of the interpreter binary or an
	// *errors.InterpreterNotFoundError.
	Discover(ctx context.Context) (string, error)
}

type discoverer struct {
	cfg *Config
	log *slog.Logger
}

// Compile-time verification that discoverer implements Discoverer.
var _ Discoverer = (*discoverer)(nil)

// NewDiscoverer creates a new interpreter discoverer with the given configuration.
func NewDiscoverer(cfg *Config) Discoverer {
	if cfg == nil {
		cfg = &Config{}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &discoverer{
		cfg: cfg,
		log: log,
	}
}

// Discover locates the interpreter binary and probes its version.
func (d *discoverer) Discover(ctx context.Context) (string, error) {
	d.log.Debug("Discovering interpreter binary")

	path, err := d.find()
	if err != nil {
		d.log.Error("Failed to find interpreter", "error", err)

		return "", err
	}

	d.log.Debug("Found interpreter binary", "path", path)

	if !d.cfg.SkipVersionCheck {
		if version, err := Version(ctx, path); err != nil {
			d.log.Debug("Interpreter version check failed", "error", err)
		} else {
			d.log.Info("Interpreter version", "version", version)
		}
	}

	return path, nil
}

func (d *discoverer) find() (string, error) {
	// An explicit path is used and only it.
	if d.cfg.Path != "" {
		d.log.Debug("Using explicit interpreter path", "path", d.cfg.Path)

		if resolved, ok := resolve(d.cfg.Path); ok {
			return resolved, nil
		}

		return "", &errors.InterpreterNotFoundError{SearchedPaths: []string{d.cfg.Path}}
	}

	searched := make([]string, 0, 6)

	if env := os.Getenv(config.InterpreterPathEnv); env != "" {
		d.log.Debug("Using interpreter path from environment", "env", config.InterpreterPathEnv, "path", env)

		if resolved, ok := resolve(env); ok {
			return resolved, nil
		}

		searched = append(searched, "$"+config.InterpreterPathEnv+"="+env)
	}

	name := d.cfg.Name
	if name == "" {
		name = DefaultName
	}

	if path, err := exec.LookPath(name); err == nil {
		d.log.Debug("Found interpreter in PATH", "path", path)

		return path, nil
	}

	searched = append(searched, "$PATH")

	common := []string{
		filepath.Join("/usr/local/bin", name),
		filepath.Join("/usr/bin", name),
		filepath.Join("/opt/homebrew/bin", name),
	}

	for _, path := range common {
		searched = append(searched, path)

		if _, err := os.Stat(path); err == nil {
			d.log.Debug("Found interpreter at common path", "path", path)

			return path, nil
		}
	}

	d.log.Warn("Interpreter not found in any searched paths", "searched_paths", searched)

	return "", &errors.InterpreterNotFoundError{SearchedPaths: searched}
}

// resolve accepts either a file path or a bare command name.
func resolve(path string) (string, bool) {
	if strings.ContainsRune(path, os.PathSeparator) {
		if _, err := os.Stat(path); err == nil {
			return path, true
		}

		return "", false
	}

	found, err := exec.LookPath(path)
	if err != nil {
		return "", false
	}

	return found, true
}

// Version runs the interpreter with --version and returns the trimmed output.
func Version(ctx context.Context, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, VersionCheckTimeout)
	defer cancel()

	//nolint:gosec // G204: the interpreter path is configuration, not user input
	out, err := exec.CommandContext(ctx, path, "--version").Output()
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(out)), nil
}
