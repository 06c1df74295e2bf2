package chromesource

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// ResolveChromePath returns explicit when set, then $CHROME_PATH, then the
// first Chromium or Chrome installation found on the system. It returns ""
// when nothing is found.
func ResolveChromePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv("CHROME_PATH"); env != "" {
		return env
	}
	for _, candidate := range chromeCandidates(runtime.GOOS) {
		if path := lookExecutable(candidate); path != "" {
			return path
		}
	}
	return ""
}

// chromeCandidates lists install locations per platform, Chromium first.
func chromeCandidates(goos string) []string {
	switch goos {
	case "darwin":
		return []string{
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		}
	case "windows":
		var out []string
		for _, root := range []string{os.Getenv("PROGRAMFILES"), os.Getenv("PROGRAMFILES(X86)"), os.Getenv("LOCALAPPDATA")} {
			if root == "" {
				continue
			}
			out = append(out,
				filepath.Join(root, "Chromium", "Application", "chrome.exe"),
				filepath.Join(root, "Google", "Chrome", "Application", "chrome.exe"),
			)
		}
		return out
	default:
		return []string{"chromium", "chromium-browser", "google-chrome-stable", "google-chrome"}
	}
}

// lookExecutable stats absolute paths and searches $PATH for bare names.
func lookExecutable(name string) string {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err == nil {
			return name
		}
		return ""
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return ""
	}
	return path
}
