package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/vaultmcp/internal/apperr"
	"github.com/starford/vaultmcp/internal/models"
	"github.com/starford/vaultmcp/internal/noteservice"
)

// Resource identifiers are ResourceScheme followed by the note's relative path.
const (
	ResourceScheme = "obsidian://"
	NoteMIMEType   = "text/markdown"

	emptyVaultText = "No notes found in vault"
)

// Router maps protocol operations onto the note service and shapes the
// results into MCP envelopes. It holds no state besides the service.
type Router struct {
	notes *noteservice.Service
}

// NewRouter creates a router over the given note service.
func NewRouter(notes *noteservice.Service) *Router {
	return &Router{notes: notes}
}

// NoteURI returns the resource identifier of a relative note path.
func NoteURI(rel string) string {
	return ResourceScheme + rel
}

func noteResource(ref models.NoteRef) mcp.Resource {
	return mcp.NewResource(NoteURI(ref.Path), ref.Name,
		mcp.WithResourceDescription("Note: "+ref.Name),
		mcp.WithMIMEType(NoteMIMEType),
	)
}

// ListResources returns one resource descriptor per note in the vault.
func (r *Router) ListResources(ctx context.Context) ([]mcp.Resource, error) {
	refs, err := r.notes.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]mcp.Resource, len(refs))
	for i, ref := range refs {
		out[i] = noteResource(ref)
	}
	return out, nil
}

// ReadResource returns the content of the note addressed by uri.
func (r *Router) ReadResource(ctx context.Context, uri string) ([]mcp.ResourceContents, error) {
	rel, ok := strings.CutPrefix(uri, ResourceScheme)
	if !ok || rel == "" {
		return nil, fmt.Errorf("%w: resource %s", apperr.ErrUnknownOperation, uri)
	}
	content, err := r.notes.Read(ctx, rel)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: NoteMIMEType,
			Text:     content,
		},
	}, nil
}

// Tools returns the static tool catalog.
func (r *Router) Tools() []mcp.Tool {
	out := make([]mcp.Tool, len(toolSpecs))
	for i, t := range toolSpecs {
		out[i] = t.tool()
	}
	return out
}

// CallTool decodes the arguments for the named tool and runs it.
func (r *Router) CallTool(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	call, err := DecodeToolCall(name, args)
	if err != nil {
		return nil, err
	}
	return r.Dispatch(ctx, call)
}

// Dispatch runs an already decoded tool call and returns a single text block.
func (r *Router) Dispatch(ctx context.Context, call ToolCall) (*mcp.CallToolResult, error) {
	switch c := call.(type) {
	case *WriteNote:
		if err := r.notes.Write(ctx, c.Path, c.Content); err != nil {
			return nil, err
		}
		return mcp.NewToolResultText("Note created/updated: " + c.Path), nil

	case *EditNote:
		if err := r.notes.Edit(ctx, c.Path, c.Find, c.Replace); err != nil {
			return nil, err
		}
		return mcp.NewToolResultText("Note edited: " + c.Path), nil

	case *AppendNote:
		if err := r.notes.Append(ctx, c.Path, c.Content); err != nil {
			return nil, err
		}
		return mcp.NewToolResultText("Content appended to: " + c.Path), nil

	case *ReadNote:
		content, err := r.notes.Read(ctx, c.Path)
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(content), nil

	case *ListNotes:
		refs, err := r.notes.List(ctx)
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(joinPaths(refs, emptyVaultText)), nil

	case *SearchNotes:
		refs, err := r.notes.Search(ctx, c.Query)
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(joinPaths(refs, `No notes found containing "`+c.Query+`"`)), nil

	default:
		return nil, fmt.Errorf("%w: tool %s", apperr.ErrUnknownOperation, call.ToolName())
	}
}

func joinPaths(refs []models.NoteRef, fallback string) string {
	if len(refs) == 0 {
		return fallback
	}
	return strings.Join(models.Paths(refs), "\n")
}
