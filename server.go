package docqa

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"docqa/config"
)

const Version = "1.0.0"

// NewServer builds the MCP server exposing the document Q&A tools.
func NewServer(serverName string, cfg *config.Config) (*server.MCPServer, *Service, error) {
	svc, err := NewService(cfg)
	if err != nil {
		return nil, nil, err
	}

	s := server.NewMCPServer(
		serverName,
		Version,
		server.WithInstructions("Document Q&A server: answers questions over an indexed document collection with multi-document routing and source references"),
		server.WithToolCapabilities(false),
	)

	// Q&A tools
	s.AddTool(
		mcp.NewToolWithRawSchema("ask", "Answer a question from the document collection, routing across one or more documents as needed", GetAskSchema()),
		HandleAsk(svc),
	)
	s.AddTool(
		mcp.NewToolWithRawSchema("search", "Run the two-stage document search directly and return the raw hits", GetSearchSchema()),
		HandleSearch(svc),
	)
	s.AddTool(
		mcp.NewToolWithRawSchema("get-trace", "Inspect how a previous question was routed, retrieved and answered", GetTraceSchema()),
		HandleGetTrace(svc),
	)

	// Session management tools
	s.AddTool(
		mcp.NewToolWithRawSchema("create-session", "Create a chat session for multi-turn questioning", GetCreateSessionSchema()),
		HandleCreateSession(svc),
	)
	s.AddTool(
		mcp.NewToolWithRawSchema("list-sessions", "List chat sessions ordered by recency", GetListSessionsSchema()),
		HandleListSessions(svc),
	)
	s.AddTool(
		mcp.NewToolWithRawSchema("delete-session", "Delete a chat session and its history", GetDeleteSessionSchema()),
		HandleDeleteSession(svc),
	)

	return s, svc, nil
}
