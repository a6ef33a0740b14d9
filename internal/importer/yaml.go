// Package importer bulk-loads tasks from a YAML document.
package importer

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/nissyi-gh/remind/internal/store"
)

//go:embed tasks.schema.json
var schemaJSON string

var schema = compileSchema()

func compileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource("tasks.schema.json", strings.NewReader(schemaJSON)); err != nil {
		panic(fmt.Sprintf("add task schema: %v", err))
	}
	return compiler.MustCompile("tasks.schema.json")
}

// TaskAdder is the part of the task store the importer writes through.
type TaskAdder interface {
	Add(ctx context.Context, title, description, deadline, owner string) (string, error)
}

// YAMLTask represents a single task in the YAML input.
type YAMLTask struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description,omitempty" json:"description"`
	Deadline    string `yaml:"deadline" json:"deadline"`
	Owner       string `yaml:"owner,omitempty" json:"owner"`
}

// YAMLInput represents the root structure of the YAML input.
type YAMLInput struct {
	Tasks []YAMLTask `yaml:"tasks" json:"tasks"`
}

// Parse decodes and validates a YAML document. Unknown keys are rejected.
func Parse(data []byte) (YAMLInput, error) {
	var input YAMLInput
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&input); err != nil && !errors.Is(err, io.EOF) {
		return YAMLInput{}, fmt.Errorf("YAML parse error: %w", err)
	}
	if err := validate(input); err != nil {
		return YAMLInput{}, err
	}
	return input, nil
}

// validate checks input against the embedded schema. The input goes through
// JSON so the schema sees the same shape the API accepts.
func validate(input YAMLInput) error {
	raw, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("marshal input: %w", err)
	}
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("unmarshal input: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return firstCause(ve)
		}
		return err
	}
	// The store trims titles with unicode.IsSpace, which covers more than
	// the schema pattern does.
	for i, t := range input.Tasks {
		if strings.TrimSpace(t.Title) == "" {
			return &store.ValidationError{Field: fmt.Sprintf("tasks[%d].title", i), Message: "must not be empty"}
		}
	}
	return nil
}

// firstCause returns the first leaf error as a store validation error.
func firstCause(ve *jsonschema.ValidationError) error {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return &store.ValidationError{Field: fieldPath(ve.InstanceLocation), Message: ve.Message}
}

// fieldPath turns a JSON pointer such as /tasks/0/title into tasks[0].title.
func fieldPath(pointer string) string {
	if pointer == "" || pointer == "/" {
		return "document"
	}
	var sb strings.Builder
	for _, part := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		if part != "" && strings.Trim(part, "0123456789") == "" {
			sb.WriteString("[" + part + "]")
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(part)
	}
	return sb.String()
}

// Import parses a YAML document and creates its tasks through s. Nothing is
// added unless the whole document is valid. Returns the number of tasks
// created.
func Import(ctx context.Context, s TaskAdder, data []byte) (int, error) {
	input, err := Parse(data)
	if err != nil {
		return 0, err
	}

	count := 0
	for i, yt := range input.Tasks {
		if _, err := s.Add(ctx, yt.Title, yt.Description, yt.Deadline, yt.Owner); err != nil {
			return count, fmt.Errorf("add task %d %q: %w", i, yt.Title, err)
		}
		count++
	}
	return count, nil
}

// ImportFile reads path and imports it.
func ImportFile(ctx context.Context, s TaskAdder, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	return Import(ctx, s, data)
}
