// Package interp locates the interpreter executable and prepares its
// command line and environment.
//
// # Discovery
//
// The Discoverer interface locates the interpreter binary:
//
//	discoverer := interp.NewDiscoverer(&interp.Config{
//	    Path:   "",             // Optional explicit path
//	    Logger: slog.Default(),
//	})
//	path, err := discoverer.Discover(ctx)
//
// Discovery searches in the following order:
//  1. Explicit path in Config.Path (if provided)
//  2. The GFORTHPATH environment variable
//  3. System PATH
//  4. Common installation directories (/usr/local/bin, /usr/bin, /opt/homebrew/bin)
//
// # Version Probe
//
// After discovery the interpreter is run with --version under a short timeout
// and the result is logged. Failures are ignored; the banner printed at
// startup is the authoritative version source.
package interp
