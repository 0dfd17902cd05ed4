package mcp

import (
	"context"
	"fmt"
	"io"
	"strings"

	mcpproto "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/sandevgo/ragchat/internal/core"
	"github.com/sandevgo/ragchat/internal/service/command"
	"github.com/sandevgo/ragchat/internal/service/documents"
	"github.com/sandevgo/ragchat/pkg/log"
)

const (
	toolAsk    = "ask_documents"
	toolUpload = "upload_document"
)

type Assistant interface {
	Ask(ctx context.Context, conv *core.Conversation, message string) (core.ChatResponse, error)
	Upload(ctx context.Context, conv *core.Conversation, file core.UploadFile) (core.UploadAck, error)
}

// Server exposes the document chat as MCP tools so that another agent can
// query and feed the knowledge base. Sessions are threaded by the caller
// through the session_id argument.
type Server struct {
	srv       *mcpserver.MCPServer
	assistant Assistant
	defaults  core.Conversation
	formatter *command.ResponseFormatter
}

func NewServer(assistant Assistant, defaults core.Conversation) *Server {
	s := &Server{
		srv: mcpserver.NewMCPServer(
			"ragchat",
			core.AppVersion,
			mcpserver.WithToolCapabilities(false),
			mcpserver.WithRecovery(),
		),
		assistant: assistant,
		defaults:  defaults,
		formatter: command.NewResponseFormatter(),
	}

	s.srv.AddTool(mcpproto.NewTool(toolAsk,
		mcpproto.WithDescription("Ask a question answered from the ingested documents. Returns the answer, its source citations and the session id to continue the conversation."),
		mcpproto.WithString("question", mcpproto.Required(), mcpproto.Description("Natural-language question")),
		mcpproto.WithString("namespace", mcpproto.Description("Document namespace to search, defaults to the configured one")),
		mcpproto.WithString("session_id", mcpproto.Description("Session id returned by a previous answer, omit to start a new conversation")),
	), s.handleAsk)

	s.srv.AddTool(mcpproto.NewTool(toolUpload,
		mcpproto.WithDescription("Upload a local document for indexing. Success means the server received it, indexing finishes later."),
		mcpproto.WithString("path", mcpproto.Description("Path of a local file to upload")),
		mcpproto.WithString("name", mcpproto.Description("File name when uploading inline content")),
		mcpproto.WithString("content", mcpproto.Description("Inline text content, used when path is empty")),
		mcpproto.WithString("namespace", mcpproto.Description("Target namespace, defaults to the configured one")),
	), s.handleUpload)

	return s
}

// Serve speaks MCP over the given streams until ctx is done or in closes.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	log.FromCtx(ctx).Info().Msg("serving MCP over stdio")
	return mcpserver.NewStdioServer(s.srv).Listen(ctx, in, out)
}

func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.srv
}

func (s *Server) conversation(req mcpproto.CallToolRequest) *core.Conversation {
	conv := s.defaults
	if ns := strings.TrimSpace(req.GetString("namespace", "")); ns != "" {
		conv.Namespace = ns
	}
	conv.SessionID = strings.TrimSpace(req.GetString("session_id", ""))
	return &conv
}

func (s *Server) handleAsk(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	question, err := req.RequireString("question")
	if err != nil || strings.TrimSpace(question) == "" {
		return mcpproto.NewToolResultError("question is required"), nil
	}

	conv := s.conversation(req)
	resp, err := s.assistant.Ask(ctx, conv, question)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("tool", toolAsk).Msg("tool call failed")
		return mcpproto.NewToolResultErrorFromErr(fmt.Sprintf("%s request failed", core.KindOf(err)), err), nil
	}

	return mcpproto.NewToolResultText(s.formatter.Combine(
		s.formatter.Answer(resp),
		s.formatter.Label("session_id", resp.SessionID),
	)), nil
}

func (s *Server) handleUpload(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	var file core.UploadFile

	if path := strings.TrimSpace(req.GetString("path", "")); path != "" {
		f, err := documents.LoadFile(path)
		if err != nil {
			return mcpproto.NewToolResultErrorFromErr("failed to read file", err), nil
		}
		file = f
	} else {
		name := strings.TrimSpace(req.GetString("name", ""))
		if name == "" {
			name = "document.txt"
		}
		file = documents.NewUploadFile(name, []byte(req.GetString("content", "")))
	}

	ack, err := s.assistant.Upload(ctx, s.conversation(req), file)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("tool", toolUpload).Msg("tool call failed")
		return mcpproto.NewToolResultErrorFromErr(fmt.Sprintf("%s request failed", core.KindOf(err)), err), nil
	}

	return mcpproto.NewToolResultText(s.formatter.UploadNotice(file.Name, ack)), nil
}
