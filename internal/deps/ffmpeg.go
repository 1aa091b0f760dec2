package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// MediaRequirements lists the decoder tools for the configured binaries.
func MediaRequirements(ffmpegBinary, ffprobeBinary string) []Requirement {
	return []Requirement{
		{Name: "FFmpeg", Command: ffmpegBinary, Description: "Decodes captures into raw frames"},
		{Name: "FFprobe", Command: ResolveFFprobe(ffmpegBinary, ffprobeBinary), Description: "Reads capture dimensions and frame counts"},
	}
}

// ResolveFFprobe prefers an ffprobe that sits next to an explicitly located
// ffmpeg when ffprobe itself is left at the bare default name, so static
// ffmpeg bundles work without extra configuration.
func ResolveFFprobe(ffmpegBinary, ffprobeBinary string) string {
	ffprobeBinary = strings.TrimSpace(ffprobeBinary)
	if ffprobeBinary != "" && ffprobeBinary != "ffprobe" {
		return ffprobeBinary
	}
	ffmpegBinary = strings.TrimSpace(ffmpegBinary)
	if strings.ContainsRune(ffmpegBinary, os.PathSeparator) {
		if candidate, ok := sidecarCandidate(ffmpegBinary, "ffprobe"); ok {
			if info, err := os.Stat(candidate); err == nil && isExecutable(info) {
				return candidate
			}
		}
	}
	return "ffprobe"
}

// Version returns the first line of `binary -version`.
func Version(ctx context.Context, binary string) (string, error) {
	out, err := exec.CommandContext(ctx, binary, "-version").Output() //nolint:gosec
	if err != nil {
		return "", fmt.Errorf("%s -version: %w", binary, err)
	}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()), nil
	}
	return "", fmt.Errorf("%s -version: empty output", binary)
}

func sidecarCandidate(binaryPath, name string) (string, bool) {
	if binaryPath == "" {
		return "", false
	}
	dir := filepath.Dir(binaryPath)
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(dir, name), true
}

func isExecutable(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
