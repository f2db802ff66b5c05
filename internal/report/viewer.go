package report

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// Opener displays a file to the user.
type Opener func(ctx context.Context, path string) error

// viewerCommand returns the platform command that opens path in the default viewer.
func viewerCommand(goos, path string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{path}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}
	default:
		return "xdg-open", []string{path}
	}
}

// OpenInViewer starts the platform viewer on path without waiting for it to exit.
func OpenInViewer(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, args := viewerCommand(runtime.GOOS, path)
	// The viewer outlives the run, so it is not bound to ctx.
	cmd := exec.Command(name, args...) //nolint:noctx // detached viewer process
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("opening %s with %s: %w", path, name, err)
	}
	return cmd.Process.Release()
}
