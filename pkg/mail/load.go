package mail

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Format identifies a message-list encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var validate = validator.New()

// LoadMessages reads a message list from a JSON or YAML file, chosen by
// extension, and validates each record's shape at the boundary.
func LoadMessages(path string) ([]*Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open message file: %w", err)
	}
	defer f.Close()

	var format Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		format = FormatJSON
	case ".yaml", ".yml":
		format = FormatYAML
	default:
		return nil, fmt.Errorf("unsupported message file format: %s", filepath.Ext(path))
	}

	return DecodeMessages(f, format)
}

// DecodeMessages decodes a message list from r in the given format.
// Records missing required fields are rejected; the pipeline itself assumes
// valid shapes.
func DecodeMessages(r io.Reader, format Format) ([]*Message, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}

	var messages []*Message
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &messages); err != nil {
			return nil, fmt.Errorf("failed to parse JSON messages: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &messages); err != nil {
			return nil, fmt.Errorf("failed to parse YAML messages: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	for i, m := range messages {
		if m == nil {
			return nil, fmt.Errorf("message %d is null", i)
		}
		if err := validate.Struct(m); err != nil {
			return nil, fmt.Errorf("message %d (%q) failed validation: %w", i, m.ID, err)
		}
	}

	return messages, nil
}
