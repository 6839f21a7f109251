// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes asset fill tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/assetfill/internal/bytesize"
	"github.com/starford/assetfill/internal/catalog"
	"github.com/starford/assetfill/internal/fillservice"
	"github.com/starford/assetfill/internal/models"
)

const contractURI = "assetfill://catalog-format"

// Job is the fill job the tools drive.
type Job interface {
	Run(ctx context.Context) (*fillservice.Report, error)
	Preview(ctx context.Context) ([]models.Descriptor, error)
}

// Server wraps the MCP server with asset fill tools.
type Server struct {
	mcp *server.MCPServer
	job Job
}

// New creates a new MCP server with all tools registered.
func New(job Job, version string) *Server {
	s := &Server{job: job}

	s.mcp = server.NewMCPServer(
		"assetfill",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_assets",
		mcp.WithDescription("List catalog entries with size, dateModified and name filled in. Does not write anything."),
	), s.listAssets)

	s.mcp.AddTool(mcp.NewTool("render_region",
		mcp.WithDescription("Return the exact text a fill would place between the target file's markers."),
	), s.renderRegion)

	s.mcp.AddTool(mcp.NewTool("fill_assets",
		mcp.WithDescription("Enrich the catalog and rewrite the marked region of the target file. "+
			"Returns a JSON report; unchanged is true when the region already matched."),
	), s.fillAssets)

	s.mcp.AddTool(mcp.NewTool("format_size",
		mcp.WithDescription("Format a byte count the way catalog sizes are written (1024-based, e.g. 1.5 KB)."),
		mcp.WithNumber("bytes", mcp.Required(), mcp.Description("Byte count, non-negative")),
		mcp.WithNumber("decimals", mcp.Description("Maximum fraction digits (default 2)")),
	), s.formatSize)

	s.mcp.AddTool(mcp.NewTool("get_catalog_contract",
		mcp.WithDescription("Returns the catalog format contract. "+
			"Call this before editing the catalog to ensure correct structure."),
	), s.getCatalogContract)

	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Catalog Format Contract",
			mcp.WithResourceDescription("YAML format that every catalog entry must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readCatalogFormatResource,
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

func (s *Server) listAssets(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ds, err := s.job.Preview(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if ds == nil {
		ds = []models.Descriptor{}
	}
	out, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) renderRegion(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ds, err := s.job.Preview(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := catalog.Render(ds)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(content)), nil
}

func (s *Server) fillAssets(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := s.job.Run(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) formatSize(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, err := req.RequireFloat("bytes")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if n < 0 {
		return mcp.NewToolResultError(fmt.Sprintf("bytes must be non-negative, got %v", n)), nil
	}
	decimals := req.GetInt("decimals", bytesize.DefaultDecimals)
	if decimals < 0 {
		return mcp.NewToolResultError(fmt.Sprintf("decimals must be non-negative, got %d", decimals)), nil
	}
	return mcp.NewToolResultText(bytesize.Format(int64(n), decimals)), nil
}

func (s *Server) getCatalogContract(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(CatalogFormatContract), nil
}

func (s *Server) readCatalogFormatResource(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     CatalogFormatContract,
		},
	}, nil
}
