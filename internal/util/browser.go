// Package util holds small OS helpers for the serve command.
package util

import (
	"fmt"
	"net"
	"os/exec"
	"runtime"
)

// launchers candidate commands opening url on goos, preferred first
func launchers(goos, url string) [][]string {
	switch goos {
	case "windows":
		// rundll32 works from Windows 7 on, unlike cmd /c start with some URLs
		return [][]string{
			{"rundll32", "url.dll,FileProtocolHandler", url},
			{"explorer", url},
		}
	case "darwin":
		return [][]string{{"open", url}}
	default:
		cmds := [][]string{{"xdg-open", url}}
		for _, b := range []string{"sensible-browser", "firefox", "google-chrome", "chromium-browser"} {
			cmds = append(cmds, []string{b, url})
		}
		return cmds
	}
}

// OpenBrowser opens url with the first launcher of this platform that starts.
func OpenBrowser(url string) error {
	return openWith(runtime.GOOS, url, func(name string, args ...string) error {
		return exec.Command(name, args...).Start()
	})
}

// openWith returns the preferred launcher's error when none starts.
func openWith(goos, url string, start func(name string, args ...string) error) error {
	var first error
	for _, c := range launchers(goos, url) {
		err := start(c[0], c[1:]...)
		if err == nil {
			return nil
		}
		if first == nil {
			first = fmt.Errorf("open %s with %s: %w", url, c[0], err)
		}
	}
	return first
}

// FindAvailablePort returns the first port from startPort on that can be bound,
// trying at most attempts ports.
func FindAvailablePort(startPort, attempts int) (int, error) {
	for port := startPort; port < startPort+attempts && port <= 65535; port++ {
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			continue
		}
		_ = ln.Close()
		return port, nil
	}
	return 0, fmt.Errorf("no free port in %d-%d", startPort, startPort+attempts-1)
}
