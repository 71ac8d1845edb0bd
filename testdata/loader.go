// Package testdata loads the login/register test cases from data files.
package testdata

import (
	"embed"
	"fmt"
	"os"
)

//go:embed data-files
var dataFilesRoot embed.FS

const (
	dataBasePath = "data-files"

	// DefaultCasesFile is the name of the embedded case file used when no other file is given.
	DefaultCasesFile = "login_register.yaml"
)

// LoadDefaultCases returns the embedded default case list.
func LoadDefaultCases() ([]CaseSpec, error) {
	data, err := dataFilesRoot.ReadFile(dataBasePath + "/" + DefaultCasesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", DefaultCasesFile, err)
	}
	return ParseCases(data, DefaultCasesFile)
}

// LoadCases reads a case file from disk. If path is empty, it returns the embedded default cases.
func LoadCases(path string) ([]CaseSpec, error) {
	if path == "" {
		return LoadDefaultCases()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}
	return ParseCases(data, path)
}

// ParseCases parses JSON or YAML case data and validates every case. The source name is only
// used in error messages.
func ParseCases(data []byte, source string) ([]CaseSpec, error) {
	var file CaseFile
	if err := ParseJSONOrYAML(data, &file); err != nil {
		return nil, fmt.Errorf("error parsing %q: %w", source, err)
	}
	if len(file.Cases) == 0 {
		return nil, fmt.Errorf("%q contains no cases", source)
	}
	names := make(map[string]bool, len(file.Cases))
	for _, c := range file.Cases {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("error in %q: %w", source, err)
		}
		if names[c.Name] {
			return nil, fmt.Errorf("error in %q: duplicate case name %q", source, c.Name)
		}
		names[c.Name] = true
	}
	return file.Cases, nil
}
