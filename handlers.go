package docqa

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"docqa/history"
)

// HandleAsk answers a question end to end and optionally appends a
// source reference section.
func HandleAsk(svc *Service) func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := req.RequireString("question")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		sessionID := req.GetString("session_id", "")
		includeRefs := req.GetBool("include_references", true)

		chatContext := svc.chatContext(sessionID)
		ans, err := svc.Engine.HandleTurn(ctx, question, chatContext)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("answer failed: %v", err)), nil
		}
		if ans.Failed {
			return mcp.NewToolResultError(ans.Text), nil
		}

		var b strings.Builder
		b.WriteString(ans.Text)
		if includeRefs {
			if tr, ok := svc.Traces.Get(ans.RunID); ok {
				if refs := history.BuildReferences(tr.Results); refs != "" {
					b.WriteString("\n\n")
					b.WriteString(refs)
				}
			}
		}

		fmt.Fprintf(&b, "\n\nrun_id: %s", ans.RunID)

		if sessionID != "" {
			now := time.Now()
			svc.Sessions.AddMessage(sessionID, ChatMessage{Role: "user", Content: question, Timestamp: now})
			svc.Sessions.AddMessage(sessionID, ChatMessage{Role: "assistant", Content: ans.Text, Timestamp: now})
		}
		return mcp.NewToolResultText(b.String()), nil
	}
}

// HandleSearch runs the two-stage retrieval directly and returns the raw
// result as JSON.
func HandleSearch(svc *Service) func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		docName := req.GetString("document_name", "")
		res := svc.Retriever.Retrieve(ctx, query, docName)
		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("marshal result failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}

// HandleGetTrace returns one run trace by id, or the most recent runs.
func HandleGetTrace(svc *Service) func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		runID := req.GetString("run_id", "")
		if runID != "" {
			tr, ok := svc.Traces.Get(runID)
			if !ok {
				return mcp.NewToolResultError(fmt.Sprintf("no trace for run %s", runID)), nil
			}
			out, err := json.MarshalIndent(tr, "", "  ")
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("marshal trace failed: %v", err)), nil
			}
			return mcp.NewToolResultText(string(out)), nil
		}
		limit := req.GetInt("limit", 10)
		out, err := json.MarshalIndent(svc.Traces.Recent(limit), "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("marshal traces failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}

func HandleCreateSession(svc *Service) func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if max := svc.Cfg.Session.MaxKeep; max > 0 {
			if err := svc.Sessions.Clean(max); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("session cleanup failed: %v", err)), nil
			}
		}
		sess := svc.Sessions.Create()
		out, err := json.Marshal(sess)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("marshal session failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}

func HandleListSessions(svc *Service) func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		offset := req.GetInt("offset", 0)
		limit := req.GetInt("limit", 20)
		out, err := json.MarshalIndent(svc.Sessions.ListRange(offset, limit), "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("marshal sessions failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}

func HandleDeleteSession(svc *Service) func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("session_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !svc.Sessions.Delete(id) {
			return mcp.NewToolResultError(fmt.Sprintf("session %s not found", id)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("session %s deleted", id)), nil
	}
}
