package mcpserver

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// resourceRegistry is the subset of *server.MCPServer the catalog mutates.
type resourceRegistry interface {
	AddResource(resource mcp.Resource, handler server.ResourceHandlerFunc)
	RemoveResource(uri string)
}

// catalog keeps the server's registered resources in step with the notes on
// disk. It is synced before every resources/list and on watcher events.
type catalog struct {
	router *Router
	reg    resourceRegistry
	logger *slog.Logger

	mu    sync.Mutex
	known map[string]struct{}
}

func newCatalog(router *Router, reg resourceRegistry, logger *slog.Logger) *catalog {
	return &catalog{
		router: router,
		reg:    reg,
		logger: logger,
		known:  make(map[string]struct{}),
	}
}

// Sync registers resources for new notes and unregisters vanished ones.
// Syncs are serialized so a stale listing never commits after a newer one.
func (c *catalog) Sync(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	resources, err := c.router.ListResources(ctx)
	if err != nil {
		return err
	}

	current := make(map[string]struct{}, len(resources))
	added := 0
	for _, res := range resources {
		current[res.URI] = struct{}{}
		if _, ok := c.known[res.URI]; ok {
			continue
		}
		c.reg.AddResource(res, c.read)
		added++
	}

	removed := 0
	for uri := range c.known {
		if _, ok := current[uri]; !ok {
			c.reg.RemoveResource(uri)
			removed++
		}
	}
	c.known = current

	if added > 0 || removed > 0 {
		c.logger.Debug("catalog: synced",
			slog.Int("added", added),
			slog.Int("removed", removed),
			slog.Int("total", len(current)))
	}
	return nil
}

// Len returns the number of registered note resources.
func (c *catalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.known)
}

func (c *catalog) read(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return c.router.ReadResource(ctx, req.Params.URI)
}
