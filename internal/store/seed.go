package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/fyrsmithlabs/projectdeck/internal/project"
)

// ErrUnsupportedFormat indicates a seed file extension we cannot decode.
var ErrUnsupportedFormat = errors.New("unsupported seed format")

// Format identifies a seed file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// seedFile is the table form of a seed. JSON and YAML seeds may also be a
// bare array; TOML has no top-level arrays so it always uses this form.
type seedFile struct {
	Projects []project.Project `json:"projects" yaml:"projects" toml:"projects"`
}

// FormatFromPath picks the decoder from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// LoadFile reads and decodes a seed file.
func LoadFile(path string) ([]project.Project, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed %s: %w", path, err)
	}
	projects, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("seed %s: %w", path, err)
	}
	return projects, nil
}

// Decode parses a seed, assigns UUIDs to projects without an id and
// validates the result.
func Decode(data []byte, format Format) ([]project.Project, error) {
	var (
		projects []project.Project
		err      error
	)
	switch format {
	case FormatJSON:
		projects, err = decodeJSON(data)
	case FormatYAML:
		projects, err = decodeYAML(data)
	case FormatTOML:
		var seed seedFile
		_, err = toml.Decode(string(data), &seed)
		projects = seed.Projects
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", format, err)
	}

	if projects == nil {
		projects = []project.Project{}
	}
	for i := range projects {
		if projects[i].ID == "" {
			projects[i].ID = uuid.NewString()
		}
	}
	if err := project.ValidateCollection(projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func decodeJSON(data []byte) ([]project.Project, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var projects []project.Project
		err := json.Unmarshal(trimmed, &projects)
		return projects, err
	}
	var seed seedFile
	err := json.Unmarshal(trimmed, &seed)
	return seed.Projects, err
}

func decodeYAML(data []byte) ([]project.Project, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	if node.Content[0].Kind == yaml.SequenceNode {
		var projects []project.Project
		err := node.Decode(&projects)
		return projects, err
	}
	var seed seedFile
	err := node.Decode(&seed)
	return seed.Projects, err
}
