// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the content index and documents over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/docservice"
)

const layoutURI = "folio://content-layout"

// Server wraps the MCP server with folio tools.
type Server struct {
	mcp *server.MCPServer
	svc *docservice.Service
}

// New creates a new MCP server with all folio tools registered.
func New(svc *docservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"folio",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_index",
		mcp.WithDescription("List every category and the slugs of its Markdown documents as JSON."),
	), s.listIndex)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Return the raw Markdown source of one document."),
		mcp.WithString("category", mcp.Required(), mcp.Description("Category directory name (e.g. NoSQL)")),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Document slug, the file name without .md")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("render_document",
		mcp.WithDescription("Render one document to HTML and return its display title and body as JSON."),
		mcp.WithString("category", mcp.Required(), mcp.Description("Category directory name (e.g. NoSQL)")),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Document slug, the file name without .md")),
	), s.renderDocument)

	s.mcp.AddResource(
		mcp.NewResource(layoutURI, "Content Layout",
			mcp.WithResourceDescription("How categories, slugs and assets map to files."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readLayoutResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listIndex(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(s.svc.Index(ctx), "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category, slug, errResult := documentArgs(req)
	if errResult != nil {
		return errResult, nil
	}
	src, err := s.svc.Source(ctx, category, slug)
	if err != nil {
		return toolError(category, slug, err), nil
	}
	return mcp.NewToolResultText(string(src)), nil
}

func (s *Server) renderDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category, slug, errResult := documentArgs(req)
	if errResult != nil {
		return errResult, nil
	}
	doc, err := s.svc.Resolve(ctx, category, slug)
	if err != nil {
		return toolError(category, slug, err), nil
	}
	out, err := json.MarshalIndent(map[string]string{
		"title": doc.Title,
		"html":  doc.HTML,
	}, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readLayoutResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      layoutURI,
			MIMEType: "text/markdown",
			Text:     ContentLayoutContract,
		},
	}, nil
}

func documentArgs(req mcp.CallToolRequest) (string, string, *mcp.CallToolResult) {
	category, err := req.RequireString("category")
	if err != nil {
		return "", "", mcp.NewToolResultError(err.Error())
	}
	slug, err := req.RequireString("slug")
	if err != nil {
		return "", "", mcp.NewToolResultError(err.Error())
	}
	return category, slug, nil
}

func toolError(category, slug string, err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s/%s", category, slug))
	}
	return mcp.NewToolResultError(err.Error())
}
