package inspect

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas
var schemaFiles embed.FS

const commandSchemaURL = "https://bombpot.dev/schemas/command.json"

// ErrUnknownCommand is returned for a command type the server does not handle.
var ErrUnknownCommand = errors.New("unknown command")

// Command types accepted from clients.
const (
	CommandSnapshot = "snapshot"
	CommandRoot     = "root"
	CommandParent   = "parent"
	CommandFocus    = "focus"
	CommandPause    = "pause"
	CommandResume   = "resume"
)

// Command is a JSON request from an inspector client.
type Command struct {
	Type string   `json:"type"`
	Path []string `json:"path,omitempty"`
}

// validator checks raw commands against the embedded JSON schema.
type validator struct {
	schema *jsonschema.Schema
}

func newValidator() (*validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	data, err := schemaFiles.ReadFile("schemas/command.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read command schema: %w", err)
	}
	if err := compiler.AddResource(commandSchemaURL, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to add command schema: %w", err)
	}
	schema, err := compiler.Compile(commandSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile command schema: %w", err)
	}
	return &validator{schema: schema}, nil
}

// parse validates data and decodes it into a Command.
func (v *validator) parse(data []byte) (Command, error) {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Command{}, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return Command{}, fmt.Errorf("schema validation failed: %w", err)
	}
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return Command{}, fmt.Errorf("invalid command: %w", err)
	}
	return cmd, nil
}
