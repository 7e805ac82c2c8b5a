// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package paths resolves the phi-scrub configuration locations and checks
// user supplied paths.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ConfigDirEnv overrides the configuration directory.
const ConfigDirEnv = "PHI_SCRUB_CONFIG_DIR"

// GetConfigDir returns the phi-scrub configuration directory: $PHI_SCRUB_CONFIG_DIR,
// else phi-scrub under the user configuration directory (APPDATA on
// Windows, XDG_CONFIG_HOME or ~/.config on Unix).
func GetConfigDir() string {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "phi-scrub")
}

// GetConfigFile returns the path to the user config file, or "" when no
// configuration directory can be determined.
func GetConfigFile() string {
	dir := GetConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// ValidatePath validates a path for the current platform
func ValidatePath(path string) error {
	if path == "" {
		return nil
	}
	if strings.ContainsRune(path, 0) {
		return &PathValidationError{Path: path, Reason: "contains null byte"}
	}
	if runtime.GOOS == "windows" {
		return validateWindowsPath(path)
	}
	return nil
}

func validateWindowsPath(path string) error {
	for i, char := range path {
		if strings.ContainsRune(`<>:"|?*`, char) {
			// drive letter, C:
			if char == ':' && i == 1 {
				continue
			}
			return &PathValidationError{
				Path:   path,
				Reason: "contains invalid character: " + string(char),
			}
		}
	}
	if len(path) > 32767 {
		return &PathValidationError{
			Path:   path,
			Reason: "path exceeds maximum length of 32,767 characters",
		}
	}
	return nil
}

// PathValidationError represents a path validation error
type PathValidationError struct {
	Path   string
	Reason string
}

func (e *PathValidationError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Reason
}
