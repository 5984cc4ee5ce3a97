// Package repository identifies the project containing a scan root:
// its root directory, ecosystem and name. The ecosystem drives the
// default set of file extensions a scan includes.
package repository

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/viant/afs"
	"golang.org/x/mod/modfile"
)

// Project describes the detected project
type Project struct {
	Type         string `json:"type"`
	Name         string `json:"name"`
	RootPath     string `json:"root_path"`
	RelativePath string `json:"relative_path,omitempty"`
}

// Detector identifies project root folders and provides
// project-related information
type Detector struct {
	// common project root marker files/directories, checked in order
	markers []string
}

// New creates a new project detector instance
func New() *Detector {
	return &Detector{
		markers: []string{
			"angular.json",   // Angular workspaces
			"*.sln",          // .NET solutions
			"*.csproj",       // .NET projects
			"package.json",   // JavaScript/Node projects
			"go.mod",         // Go projects
			"pom.xml",        // Java/Maven projects
			"Cargo.toml",     // Rust projects
			"pyproject.toml", // Python projects
			".git",           // generic VCS marker
		},
	}
}

// DetectProject identifies the project root for the given path
func (d *Detector) DetectProject(path string) (*Project, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	startDir := absPath
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		startDir = filepath.Dir(absPath)
	}

	rootPath, projectType := d.findProjectRoot(startDir)

	project := &Project{
		Type:     "unknown",
		RootPath: absPath,
	}
	if rootPath != "" {
		project.RootPath = rootPath
		project.Type = projectType
		project.Name = d.extractProjectName(rootPath, projectType)
	}
	if project.Name == "" {
		project.Name = filepath.Base(project.RootPath)
	}

	if rel, err := filepath.Rel(project.RootPath, absPath); err == nil {
		project.RelativePath = filepath.ToSlash(rel)
	}
	return project, nil
}

// findProjectRoot searches up from the starting directory for project
// markers
func (d *Detector) findProjectRoot(startDir string) (string, string) {
	dir := startDir
	for {
		for _, marker := range d.markers {
			if d.hasMarker(dir, marker) {
				return dir, determineProjectType(marker)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", ""
}

func (d *Detector) hasMarker(dir, marker string) bool {
	if strings.ContainsRune(marker, '*') {
		matches, _ := filepath.Glob(filepath.Join(dir, marker))
		return len(matches) > 0
	}
	_, err := os.Stat(filepath.Join(dir, marker))
	return err == nil
}

func determineProjectType(marker string) string {
	switch marker {
	case "angular.json":
		return "angular"
	case "*.sln", "*.csproj":
		return "dotnet"
	case "package.json":
		return "javascript"
	case "go.mod":
		return "go"
	case "pom.xml":
		return "java"
	case "Cargo.toml":
		return "rust"
	case "pyproject.toml":
		return "python"
	case ".git":
		return "git"
	}
	return "unknown"
}

// DefaultExtensions returns the file extensions worth scanning for
// the detected project type. Unknown types get the full set since a
// mixed tree is the common case for this tool.
func DefaultExtensions(projectType string) []string {
	switch projectType {
	case "dotnet":
		return []string{".cs", ".cshtml", ".xaml"}
	case "angular":
		return []string{".ts", ".html"}
	case "javascript":
		return []string{".ts", ".tsx", ".js", ".jsx", ".html"}
	}
	return []string{".cs", ".cshtml", ".xaml", ".ts", ".tsx", ".js", ".jsx", ".html"}
}

// extractProjectName attempts to extract a project name from
// configuration files
func (d *Detector) extractProjectName(rootPath, projectType string) string {
	switch projectType {
	case "dotnet":
		return extractDotnetProjectName(rootPath)
	case "javascript", "angular":
		return extractJSPackageName(filepath.Join(rootPath, "package.json"))
	case "go":
		return extractGoModuleName(filepath.Join(rootPath, "go.mod"))
	}
	return filepath.Base(rootPath)
}

func extractDotnetProjectName(rootPath string) string {
	for _, pattern := range []string{"*.sln", "*.csproj"} {
		matches, _ := filepath.Glob(filepath.Join(rootPath, pattern))
		if len(matches) > 0 {
			base := filepath.Base(matches[0])
			return strings.TrimSuffix(base, filepath.Ext(base))
		}
	}
	return filepath.Base(rootPath)
}

func extractJSPackageName(packageJSONPath string) string {
	data, err := os.ReadFile(packageJSONPath)
	if err != nil {
		return filepath.Base(filepath.Dir(packageJSONPath))
	}
	// a targeted regex beats pulling in a JSON walk for one field
	nameRegex := regexp.MustCompile(`"name"\s*:\s*"([^"]+)"`)
	matches := nameRegex.FindSubmatch(data)
	if len(matches) < 2 {
		return filepath.Base(filepath.Dir(packageJSONPath))
	}
	return string(matches[1])
}

func extractGoModuleName(goModPath string) string {
	fs := afs.New()
	if content, _ := fs.DownloadWithURL(context.Background(), goModPath); len(content) > 0 {
		if mod, _ := modfile.Parse(goModPath, content, nil); mod != nil {
			return mod.Module.Mod.Path
		}
	}
	data, err := os.ReadFile(goModPath)
	if err != nil {
		return filepath.Base(filepath.Dir(goModPath))
	}
	moduleRegex := regexp.MustCompile(`module\s+([^\s]+)`)
	matches := moduleRegex.FindSubmatch(data)
	if len(matches) < 2 {
		return filepath.Base(filepath.Dir(goModPath))
	}
	return string(matches[1])
}
