// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes kramify conversion tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/kramify/internal/apperr"
	"github.com/starford/kramify/internal/convert"
	"github.com/starford/kramify/internal/pipeline"
)

// SyntaxURI is the resource URI of the output syntax contract.
const SyntaxURI = "kramify://syntax"

// Server wraps the MCP server with kramify tools.
type Server struct {
	mcp *server.MCPServer
	svc *pipeline.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *pipeline.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"kramify",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("convert_markdown",
		mcp.WithDescription("Convert one Obsidian-flavored Markdown document to Kramdown for MkDocs or Jekyll. "+
			"Returns the converted document; the input is not stored. See get_syntax_contract for the output format."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Full Markdown document, frontmatter included")),
		mcp.WithString("generator", mcp.Description("Target generator; defaults to the configured site"),
			mcp.Enum(convert.MkDocs.String(), convert.Jekyll.String())),
		mcp.WithBoolean("index", mcp.Description("Treat the document as the site index and prune excluded sections")),
	), s.convertMarkdown)

	s.mcp.AddTool(mcp.NewTool("convert_site",
		mcp.WithDescription("Convert every document under the configured content root in place and return a run summary."),
	), s.convertSite)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List documents recorded in the conversion ledger with their checksum, generator and time."),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("get_syntax_contract",
		mcp.WithDescription("Returns the exact Kramdown syntax produced for images, links and callouts."),
	), s.getSyntaxContract)

	s.mcp.AddResource(
		mcp.NewResource(SyntaxURI, "Output Syntax Contract",
			mcp.WithResourceDescription("Kramdown emitted by kramify for each supported construct."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSyntaxResource,
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

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) convertMarkdown(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	gen := s.svc.Generator()
	if raw := req.GetString("generator", ""); raw != "" {
		if gen, err = convert.ParseGenerator(raw); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	res, err := s.svc.Convert([]byte(content), gen, req.GetBool("index", false))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(res.Content), nil
}

func (s *Server) convertSite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary, err := s.svc.TryRun(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(summary)
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	l, err := s.svc.Ledger()
	if err != nil {
		if errors.Is(err, apperr.ErrNotConfigured) {
			return mcp.NewToolResultError("conversion ledger is disabled (state.path is empty)"), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	records, err := l.List()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(records) == 0 {
		return mcp.NewToolResultText("no documents converted yet"), nil
	}
	return jsonResult(records)
}

func (s *Server) getSyntaxContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(SyntaxContract), nil
}

func (s *Server) readSyntaxResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      SyntaxURI,
			MIMEType: "text/markdown",
			Text:     SyntaxContract,
		},
	}, nil
}
