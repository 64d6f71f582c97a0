package sync

import (
	"os"
	"runtime"
)

// DeviceName returns a best-effort human-readable label for this device,
// used to stamp applied payloads. Display only — never a security input.
func DeviceName() string {
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	switch runtime.GOOS {
	case "darwin":
		return "Mac"
	case "windows":
		return "Windows PC"
	case "linux":
		return "Linux"
	case "android":
		return "Android"
	}
	return "Unknown Device"
}
