package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-logr/logr"
)

const (
	serverName      = "inferprofit-mcp"
	serverVersion   = "0.1.0"
	protocolVersion = "2024-11-05"
)

// MCPServer bridges stdio JSON-RPC to the inferprofit REST API.
type MCPServer struct {
	client *APIClient
	tools  []Tool
	log    logr.Logger
}

func NewMCPServer(baseURL string, log logr.Logger) *MCPServer {
	return &MCPServer{
		client: NewAPIClient(baseURL),
		tools:  AllTools(),
		log:    log,
	}
}

type readResult struct {
	line []byte
	err  error
}

// Run reads newline-delimited requests from in and writes responses to out
// until in is exhausted or ctx is cancelled. Requests are handled one at a
// time in arrival order. On cancellation Run returns at once; a read already
// blocked on in is abandoned and ends when in is closed.
func (s *MCPServer) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	lines := make(chan readResult)
	go func() {
		reader := bufio.NewReader(in)
		for {
			line, err := reader.ReadBytes('\n')
			select {
			case lines <- readResult{line: line, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()
	s.log.Info("MCP server starting")

	for {
		var rr readResult
		select {
		case <-ctx.Done():
			s.log.Info("Context cancelled, shutting down")
			return nil
		case rr = <-lines:
		}
		if len(bytes.TrimSpace(rr.line)) > 0 {
			s.handleLine(ctx, rr.line, out)
		}
		if rr.err == io.EOF {
			s.log.Info("Input closed, shutting down")
			return nil
		}
		if rr.err != nil {
			return fmt.Errorf("reading input: %w", rr.err)
		}
	}
}

func (s *MCPServer) handleLine(ctx context.Context, line []byte, out io.Writer) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		s.writeResponse(out, errorResponse(nil, ErrCodeParseError, "Parse error: "+err.Error()))
		return
	}
	s.log.V(1).Info("Received request", "method", req.Method, "id", string(req.ID))
	s.writeResponse(out, s.dispatch(ctx, &req))
}

// dispatch routes a request to its handler. Notifications return nil.
func (s *MCPServer) dispatch(ctx context.Context, req *Request) *Response {
	switch req.Method {
	case "initialize":
		return resultResponse(req.ID, InitializeResult{
			ProtocolVersion: protocolVersion,
			Capabilities:    ServerCaps{Tools: &ToolsCap{}},
			ServerInfo:      ServerInfo{Name: serverName, Version: serverVersion},
			Instructions: "inferprofit MCP server. Ranks GPU x model configurations by monthly profit for LLM, " +
				"image/video and voice inference, sizes GPU clusters and returns utilization profit curves.",
		})
	case "initialized", "notifications/initialized":
		return nil
	case "tools/list":
		return resultResponse(req.ID, ToolsListResult{Tools: s.tools})
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return resultResponse(req.ID, map[string]interface{}{})
	default:
		if len(req.ID) == 0 {
			return nil
		}
		return errorResponse(req.ID, ErrCodeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method))
	}
}

func (s *MCPServer) handleToolsCall(ctx context.Context, req *Request) *Response {
	var params ToolCallParams
	if req.Params != nil {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return errorResponse(req.ID, ErrCodeInvalidParams, "Invalid params: "+err.Error())
		}
	}
	if params.Name == "" {
		return errorResponse(req.ID, ErrCodeInvalidParams, "Missing required parameter: name")
	}

	s.log.V(1).Info("Calling tool", "tool", params.Name)
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Error(err, "Tool call failed", "tool", params.Name)
		return resultResponse(req.ID, textResult("Error: "+err.Error(), true))
	}
	return resultResponse(req.ID, textResult(string(result), false))
}

// writeResponse writes resp as a single JSON line. A nil response is a
// notification acknowledgement and writes nothing.
func (s *MCPServer) writeResponse(w io.Writer, resp *Response) {
	if resp == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error(err, "Failed to marshal response")
		return
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		s.log.Error(err, "Failed to write response")
	}
}
