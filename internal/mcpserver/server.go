// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the blog to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/presswork/internal/apperr"
	"github.com/starford/presswork/internal/content"
	"github.com/starford/presswork/internal/models"
	"github.com/starford/presswork/internal/postservice"
	"github.com/starford/presswork/internal/storage"
)

const contractURI = "presswork://post-format"

// Server wraps the MCP server with the blog tools.
type Server struct {
	mcp   *server.MCPServer
	posts *postservice.Service
	store storage.Provider
}

// New creates a new MCP server with all tools registered.
func New(posts *postservice.Service, store storage.Provider) *Server {
	s := &Server{posts: posts, store: store}

	s.mcp = server.NewMCPServer(
		"Presswork",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_posts",
		mcp.WithDescription("List one page of published posts, newest first."),
		mcp.WithNumber("page", mcp.Description("Page number, starting at 1 (default 1)")),
	), s.listPosts)

	s.mcp.AddTool(mcp.NewTool("list_archived_posts",
		mcp.WithDescription("List archived posts, newest first."),
	), s.listArchivedPosts)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List the tags used by published posts with their display names and counts."),
	), s.listTags)

	s.mcp.AddTool(mcp.NewTool("posts_by_tag",
		mcp.WithDescription("List published posts carrying a tag (case-insensitive)."),
		mcp.WithString("tag", mcp.Required(), mcp.Description("Tag identifier, e.g. css")),
	), s.postsByTag)

	s.mcp.AddTool(mcp.NewTool("read_post",
		mcp.WithDescription("Read a post by id. Returns metadata, rendered HTML and series placement, "+
			"or the raw Markdown source when raw is true."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Post id, e.g. scalable-css/history")),
		mcp.WithBoolean("raw", mcp.Description("Return the Markdown source instead")),
	), s.readPost)

	s.mcp.AddTool(mcp.NewTool("search_posts",
		mcp.WithDescription("Full-text search through listed posts."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchPosts)

	s.mcp.AddTool(mcp.NewTool("series_toc",
		mcp.WithDescription("Table of contents of a series, with gated parts marked."),
		mcp.WithString("series", mcp.Required(), mcp.Description("Series directory, e.g. scalable-css")),
		mcp.WithNumber("current", mcp.Description("Part to mark as current (default -1, none)")),
	), s.seriesTOC)

	s.mcp.AddTool(mcp.NewTool("create_draft",
		mcp.WithDescription("Create a new draft post at the specified path. "+
			"Content MUST follow the post format contract with visibility: draft. Read the contract first via "+
			"the get_post_contract tool or the "+contractURI+" resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path for the new post (must end with .md)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown content following the post format contract")),
	), s.createDraft)

	s.mcp.AddTool(mcp.NewTool("get_post_contract",
		mcp.WithDescription("Returns the post format contract. "+
			"Call this before drafting posts to ensure correct frontmatter."),
	), s.getPostContract)

	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Post Format Contract",
			mcp.WithResourceDescription("Markdown post format with frontmatter, visibility and series rules."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPostFormatResource,
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

func jsonResult(v any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcpserver: encode: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.posts.ListPage(ctx, req.GetInt("page", 1)))
}

func (s *Server) listArchivedPosts(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.posts.Archive(ctx))
}

func (s *Server) listTags(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.posts.Tags(ctx))
}

func (s *Server) postsByTag(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag, err := req.RequireString("tag")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.posts.Tag(ctx, tag))
}

func (s *Server) readPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	post, err := s.posts.GetPost(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !req.GetBool("raw", false) {
		return jsonResult(post, nil)
	}
	data, err := s.store.Read(post.Path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) searchPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.posts.Search(ctx, query, req.GetInt("limit", 20)))
}

func (s *Server) seriesTOC(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, err := req.RequireString("series")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.posts.SeriesTOC(ctx, dir, req.GetInt("current", -1)))
}

func (s *Server) createDraft(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if path.Ext(p) != ".md" {
		return mcp.NewToolResultError("path must end with .md"), nil
	}

	if _, readErr := s.store.Read(p); readErr == nil {
		return mcp.NewToolResultError(fmt.Sprintf("post already exists: %s", p)), nil
	}

	data := []byte(body)
	if !strings.HasSuffix(body, "\n") {
		data = append(data, '\n')
	}
	post, aerr := content.Decode(p, data)
	if aerr != nil {
		return mcp.NewToolResultError(aerr.Error()), nil
	}
	if post.Meta.Visibility != models.VisibilityDraft {
		return mcp.NewToolResultError(fmt.Sprintf("visibility must be %q, got %q", models.VisibilityDraft, post.Meta.Visibility)), nil
	}

	if err := s.store.Write(p, data); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s (id %s)", p, post.ID)), nil
}

func (s *Server) getPostContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PostFormatContract), nil
}

func (s *Server) readPostFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     PostFormatContract,
		},
	}, nil
}
