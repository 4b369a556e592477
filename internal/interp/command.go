package interp

import (
	"fmt"
	"os"
	"strings"

	"github.com/wagiedev/forth-kernel-go/internal/config"
)

// BuildEnvironment returns the environment for the interpreter process:
// the current environment plus Options.Env.
func BuildEnvironment(options *config.Options) []string {
	env := os.Environ()

	for key, value := range options.Env {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}

	return env
}

// LanguageVersion extracts the interpreter version from its startup banner.
// Gforth prints "Gforth 0.7.3, Copyright (C) ..." so the first comma-separated
// field is used.
func LanguageVersion(banner string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(banner), "\n")
	version, _, _ := strings.Cut(first, ",")

	return strings.TrimSpace(version)
}
