// Implements the model context protocol's stdio transport: JSON-RPC
// 2.0 requests on one stream, responses on the other. Only protocol
// frames may be written to the output stream, all logging goes
// elsewhere.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"mcvassist-backend/lib/scrapers/courseville"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("services/mcp")

const protocolVersion = "2024-11-05"

type Server struct {
	client *courseville.Client
}

func NewServer(client *courseville.Client) *Server {
	return &Server{client: client}
}

// Serve reads requests from r until EOF and writes responses to w.
// Notifications (requests without an id) produce no output. A scrape
// failure never tears the loop down, it is reported to the caller
// inside the tool result.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	decoder := json.NewDecoder(r)
	encoder := json.NewEncoder(w)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var req Request
		if err := decoder.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			// the decoder cannot resynchronize after a malformed frame,
			// so report the parse error and shut the stream down
			encodeErr := encoder.Encode(&Response{
				JsonRpc: "2.0",
				Id:      0,
				Error: &ErrorObject{
					Code:    CodeParseError,
					Message: "Failed to parse request",
				},
			})
			if encodeErr != nil {
				return encodeErr
			}
			return fmt.Errorf("malformed request frame: %w", err)
		}

		res := s.HandleRequest(ctx, &req)
		if res == nil || req.Id == nil {
			continue
		}
		if err := encoder.Encode(res); err != nil {
			slog.ErrorContext(ctx, "failed to encode response", "err", err)
			return err
		}
	}
}

// HandleRequest dispatches a single request. It returns nil when the
// request is a notification that needs no reply.
func (s *Server) HandleRequest(ctx context.Context, req *Request) *Response {
	ctx, span := tracer.Start(ctx, "mcp:"+req.Method)
	defer span.End()

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req.Id)
	case "tools/list":
		return s.handleToolsList(req.Id)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &Response{
			JsonRpc: "2.0",
			Id:      req.Id,
			Result:  json.RawMessage(`"pong"`),
		}
	}

	if req.Id == nil {
		return nil
	}
	return errorResponse(req.Id, CodeMethodNotFound, "Method not found: "+req.Method)
}

func (s *Server) handleInitialize(id any) *Response {
	return jsonResponse(id, map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]any{
			"tools": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    "mcv-mcp",
			"version": "1.0.0",
		},
	})
}

func (s *Server) handleToolsList(id any) *Response {
	return jsonResponse(id, map[string]any{
		"tools": toolList(),
	})
}

func (s *Server) handleToolsCall(ctx context.Context, req *Request) *Response {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.Id, CodeInvalidParams, "Invalid parameters")
	}

	slog.DebugContext(ctx, "tool call", "tool", params.Name)
	return s.callTool(ctx, req.Id, params)
}

func errorResponse(id any, code int, message string) *Response {
	return &Response{
		JsonRpc: "2.0",
		Id:      id,
		Error: &ErrorObject{
			Code:    code,
			Message: message,
		},
	}
}

func jsonResponse(id any, result any) *Response {
	data, err := json.Marshal(result)
	if err != nil {
		return errorResponse(id, CodeInternalError, fmt.Sprintf("Failed to marshal result: %v", err))
	}
	return &Response{
		JsonRpc: "2.0",
		Id:      id,
		Result:  json.RawMessage(data),
	}
}
