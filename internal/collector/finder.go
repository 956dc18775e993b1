package collector

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// FindSymaccess locates the symaccess executable. An explicitly
// configured path wins (a directory is searched for the binary inside
// it); otherwise common SYMCLI installation directories and $PATH are
// probed. Candidates are verified by running them with -version.
func FindSymaccess(configured string) (string, error) {
	if configured != "" {
		path := configured
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			path = filepath.Join(path, symaccessBinary())
		}
		if err := VerifySymaccess(path); err != nil {
			return "", err
		}
		return path, nil
	}

	var searchPaths []string

	if runtime.GOOS == "windows" {
		programFiles := os.Getenv("ProgramFiles")
		if programFiles == "" {
			programFiles = "C:\\Program Files"
		}
		searchPaths = []string{
			filepath.Join(programFiles, "EMC", "SYMCLI", "bin", "symaccess.exe"),
		}
	} else {
		searchPaths = []string{
			"/opt/emc/SYMCLI/bin/symaccess",
			"/usr/symcli/bin/symaccess",
			"/usr/storapi/bin/symaccess",
		}
	}

	// Prefer whatever the environment already points at.
	if path, err := exec.LookPath(symaccessBinary()); err == nil {
		searchPaths = append([]string{path}, searchPaths...)
	}

	for _, path := range searchPaths {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if runtime.GOOS != "windows" && info.Mode().Perm()&0111 == 0 {
			continue // not executable
		}
		if runs(path) {
			return path, nil
		}
	}

	return "", fmt.Errorf("symaccess not found in common paths: %s", strings.Join(searchPaths, ", "))
}

// VerifySymaccess checks that a symaccess candidate exists and runs.
func VerifySymaccess(path string) error {
	if path == "" {
		return fmt.Errorf("symaccess path is empty")
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("symaccess not found at: %s", path)
	}
	if err := exec.Command(path, "-version").Run(); err != nil {
		return fmt.Errorf("symaccess verification failed: %w", err)
	}
	return nil
}

func runs(path string) bool {
	return exec.Command(path, "-version").Run() == nil
}

// symaccessBinary is the platform-specific binary name.
func symaccessBinary() string {
	if runtime.GOOS == "windows" {
		return "symaccess.exe"
	}
	return "symaccess"
}

// companionTool resolves a sibling SYMCLI binary (such as symcfg) from
// the directory symaccess was found in. A bare symaccess name means it
// came from $PATH, so the companion resolves the same way.
func companionTool(symaccessPath, name string) string {
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	dir := filepath.Dir(symaccessPath)
	if dir == "." {
		return name
	}
	return filepath.Join(dir, name)
}
