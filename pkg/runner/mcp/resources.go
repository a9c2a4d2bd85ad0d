package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/lifelog/pkg/category"
)

func registerResources(srv *server.MCPServer, t *tools) {
	srv.AddResource(mcp.NewResource(
		"lifelog://stats",
		"Stats",
		mcp.WithResourceDescription("Entry, archive and alert counts per category."),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return encodeResourceJSON(request.Params.URI, t.svc.Stats(t.now()))
	})

	srv.AddResourceTemplate(mcp.NewResourceTemplate(
		"lifelog://logs/{category}",
		"Category Notes",
		mcp.WithTemplateDescription("Active notes of one category, oldest first."),
		mcp.WithTemplateMIMEType("application/json"),
	), t.categoryResource)
}

func (t *tools) categoryResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	raw := templateArg(request.Params.Arguments, "category")
	if raw == "" {
		return nil, fmt.Errorf("category is required")
	}
	cat, err := category.Parse(raw)
	if err != nil {
		return nil, err
	}
	entries, err := t.svc.LogsFor(cat)
	if err != nil {
		return nil, err
	}
	return encodeResourceJSON(request.Params.URI, map[string]any{
		"category": cat,
		"count":    len(entries),
		"entries":  entries,
	})
}

// templateArg reads a URI template variable, which arrives either as a
// string or as a single element list.
func templateArg(args map[string]any, name string) string {
	switch v := args[name].(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
