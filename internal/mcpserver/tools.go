package mcpserver

import (
	"encoding/json"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/vaultmcp/internal/apperr"
)

// Tool names.
const (
	ToolWriteNote   = "write_note"
	ToolEditNote    = "edit_note"
	ToolAppendNote  = "append_note"
	ToolReadNote    = "read_note"
	ToolListNotes   = "list_notes"
	ToolSearchNotes = "search_notes"
)

type paramSpec struct {
	name        string
	description string
}

type toolSpec struct {
	name        string
	description string
	required    []paramSpec
}

// toolSpecs is the static catalog; the order of required params is also the
// order in which missing ones are reported.
var toolSpecs = []toolSpec{
	{
		name:        ToolWriteNote,
		description: "Create a new note or overwrite an existing one in the vault",
		required: []paramSpec{
			{"path", "Relative path within vault (e.g., 'folder/note.md')"},
			{"content", "The markdown content of the note"},
		},
	},
	{
		name:        ToolEditNote,
		description: "Edit an existing note by replacing specific content",
		required: []paramSpec{
			{"path", "Relative path to the note within vault"},
			{"find", "Text to find in the note"},
			{"replace", "Text to replace with"},
		},
	},
	{
		name:        ToolAppendNote,
		description: "Append content to an existing note",
		required: []paramSpec{
			{"path", "Relative path to the note within vault"},
			{"content", "Content to append"},
		},
	},
	{
		name:        ToolReadNote,
		description: "Read the content of a specific note",
		required: []paramSpec{
			{"path", "Relative path to the note within vault"},
		},
	},
	{
		name:        ToolListNotes,
		description: "List all notes in the vault with their paths",
	},
	{
		name:        ToolSearchNotes,
		description: "Search for notes containing specific text",
		required: []paramSpec{
			{"query", "Text to search for"},
		},
	},
}

func (t toolSpec) tool() mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(t.description)}
	for _, p := range t.required {
		opts = append(opts, mcp.WithString(p.name, mcp.Required(), mcp.Description(p.description)))
	}
	return mcp.NewTool(t.name, opts...)
}

func lookupSpec(name string) (toolSpec, bool) {
	for _, t := range toolSpecs {
		if t.name == name {
			return t, true
		}
	}
	return toolSpec{}, false
}

// ToolCall is the decoded and validated input of a single tool invocation.
// Each tool has its own variant with the required fields as plain strings.
type ToolCall interface {
	ToolName() string
}

// WriteNote creates or overwrites a note.
type WriteNote struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// ToolName implements ToolCall.
func (*WriteNote) ToolName() string { return ToolWriteNote }

// Validate reports empty required fields.
func (a *WriteNote) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Path, validation.Required),
		validation.Field(&a.Content, validation.Required),
	)
}

// EditNote replaces the first occurrence of Find with Replace.
type EditNote struct {
	Path    string `json:"path"`
	Find    string `json:"find"`
	Replace string `json:"replace"`
}

// ToolName implements ToolCall.
func (*EditNote) ToolName() string { return ToolEditNote }

// Validate reports empty required fields.
func (a *EditNote) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Path, validation.Required),
		validation.Field(&a.Find, validation.Required),
		validation.Field(&a.Replace, validation.Required),
	)
}

// AppendNote appends Content to an existing note.
type AppendNote struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// ToolName implements ToolCall.
func (*AppendNote) ToolName() string { return ToolAppendNote }

// Validate reports empty required fields.
func (a *AppendNote) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Path, validation.Required),
		validation.Field(&a.Content, validation.Required),
	)
}

// ReadNote returns the raw content of a note.
type ReadNote struct {
	Path string `json:"path"`
}

// ToolName implements ToolCall.
func (*ReadNote) ToolName() string { return ToolReadNote }

// Validate reports empty required fields.
func (a *ReadNote) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Path, validation.Required),
	)
}

// ListNotes takes no arguments.
type ListNotes struct{}

// ToolName implements ToolCall.
func (*ListNotes) ToolName() string { return ToolListNotes }

// SearchNotes looks for Query in every note.
type SearchNotes struct {
	Query string `json:"query"`
}

// ToolName implements ToolCall.
func (*SearchNotes) ToolName() string { return ToolSearchNotes }

// Validate reports empty required fields.
func (a *SearchNotes) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Query, validation.Required),
	)
}

// DecodeToolCall maps a tool name and its raw arguments onto the matching
// ToolCall variant. Unknown names fail with apperr.ErrUnknownOperation;
// absent or empty required arguments fail with *apperr.MissingParametersError
// naming all of them.
func DecodeToolCall(name string, args map[string]any) (ToolCall, error) {
	var call ToolCall
	switch name {
	case ToolWriteNote:
		call = &WriteNote{}
	case ToolEditNote:
		call = &EditNote{}
	case ToolAppendNote:
		call = &AppendNote{}
	case ToolReadNote:
		call = &ReadNote{}
	case ToolListNotes:
		call = &ListNotes{}
	case ToolSearchNotes:
		call = &SearchNotes{}
	default:
		return nil, fmt.Errorf("%w: tool %s", apperr.ErrUnknownOperation, name)
	}

	if len(args) > 0 {
		raw, err := json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("%s: encode arguments: %w", name, err)
		}
		if err := json.Unmarshal(raw, call); err != nil {
			return nil, fmt.Errorf("%s: invalid arguments: %w", name, err)
		}
	}

	v, ok := call.(validation.Validatable)
	if !ok {
		return call, nil
	}
	if err := v.Validate(); err != nil {
		return nil, missingParameters(name, err)
	}
	return call, nil
}

// missingParameters converts ozzo field errors into a MissingParametersError
// ordered like the tool's schema.
func missingParameters(name string, err error) error {
	var fields validation.Errors
	if !errors.As(err, &fields) {
		return fmt.Errorf("%s: validate arguments: %w", name, err)
	}
	spec, _ := lookupSpec(name)
	missing := make([]string, 0, len(fields))
	for _, p := range spec.required {
		if _, bad := fields[p.name]; bad {
			missing = append(missing, p.name)
		}
	}
	return &apperr.MissingParametersError{Names: missing}
}
