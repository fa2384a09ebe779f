// Package config loads project-level scanner settings from a
// .rustdefend.toml file in the scan root.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const fileName = ".rustdefend.toml"

// Project holds per-repository scan settings. The CLI wins whenever
// both the flag and the config set the same knob.
type Project struct {
	// Detector IDs suppressed project-wide.
	Ignore []string `mapstructure:"ignore"`
	// Glob patterns for files to skip entirely, relative to scan root.
	IgnoreFiles   []string `mapstructure:"ignore_files"`
	MinSeverity   string   `mapstructure:"min_severity"`
	MinConfidence string   `mapstructure:"min_confidence"`
}

// LoadFile reads one specific config file.
func LoadFile(path string) (*Project, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var p Project
	if err := v.Unmarshal(&p); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &p, nil
}

// LoadOrDefault looks for .rustdefend.toml in the scan root. A missing
// or malformed file yields the zero config; an explicit --config path
// is handled by LoadFile and does error.
func LoadOrDefault(scanRoot string) *Project {
	path := filepath.Join(scanRoot, fileName)
	if _, err := os.Stat(path); err != nil {
		return &Project{}
	}
	p, err := LoadFile(path)
	if err != nil {
		return &Project{}
	}
	return p
}

// IgnoresDetector reports whether the config suppresses a detector id.
func (p *Project) IgnoresDetector(id string) bool {
	for _, ignored := range p.Ignore {
		if ignored == id {
			return true
		}
	}
	return false
}

// IgnoresFile matches a path against ignore_files globs, relative to
// the scan root.
func (p *Project) IgnoresFile(path, scanRoot string) bool {
	relative := path
	if rel, err := filepath.Rel(scanRoot, path); err == nil && !strings.HasPrefix(rel, "..") {
		relative = rel
	}
	relative = filepath.ToSlash(relative)
	for _, pattern := range p.IgnoreFiles {
		if matchGlob(relative, pattern) {
			return true
		}
	}
	return false
}

// matchGlob supports "dir/**" prefix patterns, single-star file name
// wildcards, and exact paths.
func matchGlob(path, pattern string) bool {
	pattern = filepath.ToSlash(pattern)

	if strings.Contains(pattern, "**") {
		prefix := strings.TrimSuffix(strings.ReplaceAll(pattern, "**", ""), "/")
		prefix = strings.TrimSuffix(prefix, "/")
		if prefix == "" {
			return true
		}
		return path == prefix ||
			strings.HasPrefix(path, prefix+"/") ||
			strings.Contains(path, "/"+prefix+"/")
	}

	if strings.Count(pattern, "*") == 1 {
		prefix, suffix, _ := strings.Cut(pattern, "*")
		name := path
		if i := strings.LastIndexByte(path, '/'); i >= 0 {
			name = path[i+1:]
		}
		return strings.HasPrefix(name, prefix) && strings.HasSuffix(name, suffix)
	}

	return path == pattern
}
