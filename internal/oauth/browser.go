package oauth

import (
	"fmt"
	"os/exec"
	"runtime"
)

// openBrowser launches the system default browser at the given URL.
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	// The browser outlives us; reap the launcher process in the background.
	go func() { _ = cmd.Wait() }()
	return nil
}
