package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"mcvassist-backend/lib/scrapers/courseville"
	"mcvassist-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	cleanup := telemetry.SetupForTesting("test:services/mcp")
	code := m.Run()
	cleanup()
	os.Exit(code)
}

func newTestServer(t *testing.T, handler http.Handler) *Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := courseville.NewClient(context.Background(), courseville.ClientOptions{
		BaseUrl: srv.URL,
		Cookie:  "mcv_session=deadbeef",
	})
	require.NoError(t, err)
	return NewServer(client)
}

func request(t *testing.T, id any, method string, params any) *Request {
	t.Helper()
	req := &Request{JsonRpc: "2.0", Id: id, Method: method}
	if params != nil {
		data, err := json.Marshal(params)
		require.NoError(t, err)
		req.Params = data
	}
	return req
}

// toolResultText unwraps the content envelope of a tool call response.
func toolResultText(t *testing.T, res *Response) (string, bool) {
	t.Helper()
	require.Nil(t, res.Error)

	var envelope struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	}
	require.NoError(t, json.Unmarshal(res.Result, &envelope))
	require.Len(t, envelope.Content, 1)
	require.Equal(t, "text", envelope.Content[0].Type)
	return envelope.Content[0].Text, envelope.IsError
}

func TestInitialize(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	res := server.HandleRequest(context.Background(), request(t, 1, "initialize", nil))
	require.NotNil(t, res)
	require.Equal(t, "2.0", res.JsonRpc)
	require.Nil(t, res.Error)

	var result struct {
		ProtocolVersion string `json:"protocolVersion"`
		ServerInfo      struct {
			Name string `json:"name"`
		} `json:"serverInfo"`
	}
	require.NoError(t, json.Unmarshal(res.Result, &result))
	require.Equal(t, "2024-11-05", result.ProtocolVersion)
	require.Equal(t, "mcv-mcp", result.ServerInfo.Name)
}

func TestToolsList(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	res := server.HandleRequest(context.Background(), request(t, 2, "tools/list", nil))
	require.Nil(t, res.Error)

	var result struct {
		Tools []Tool `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(res.Result, &result))
	require.Len(t, result.Tools, 12)

	names := map[string]bool{}
	for _, tool := range result.Tools {
		require.NotEmpty(t, tool.Description, tool.Name)
		require.Equal(t, "object", tool.InputSchema["type"], tool.Name)
		names[tool.Name] = true
	}
	require.True(t, names["mcv_validate_session"])
	require.True(t, names["mcv_get_assignment_detail"])
	require.True(t, names["mcv_find_course"])
}

func TestPing(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	res := server.HandleRequest(context.Background(), request(t, 3, "ping", nil))
	require.Nil(t, res.Error)
	require.JSONEq(t, `"pong"`, string(res.Result))
}

func TestUnknownMethod(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	res := server.HandleRequest(context.Background(), request(t, 4, "resources/list", nil))
	require.NotNil(t, res.Error)
	require.Equal(t, CodeMethodNotFound, res.Error.Code)

	// a notification never gets an error back
	res = server.HandleRequest(context.Background(), request(t, nil, "notifications/initialized", nil))
	require.Nil(t, res)
}

func TestToolCallValidateSession(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><a href="/logout">Logout</a></body></html>`))
	}))

	res := server.HandleRequest(context.Background(), request(t, 5, "tools/call", ToolCallParams{
		Name:      "mcv_validate_session",
		Arguments: json.RawMessage(`{}`),
	}))

	text, isError := toolResultText(t, res)
	require.False(t, isError)

	var payload struct {
		Valid   bool   `json:"valid"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &payload))
	require.True(t, payload.Valid)
	require.Equal(t, "Session is valid", payload.Message)
}

func TestToolCallCourses(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":1,"data":[{"cv_cid":55001,"course_no":"2110101","title":"Computer Programming","year":2567,"semester":1}]}`))
	}))

	res := server.HandleRequest(context.Background(), request(t, 6, "tools/call", ToolCallParams{
		Name:      "mcv_get_courses",
		Arguments: json.RawMessage(`{"year":2567,"semester":1}`),
	}))

	text, isError := toolResultText(t, res)
	require.False(t, isError)

	var courses []courseville.Course
	require.NoError(t, json.Unmarshal([]byte(text), &courses))
	require.Len(t, courses, 1)
	require.Equal(t, 55001, courses[0].CvCid)
	require.Equal(t, "Computer Programming", courses[0].Title)
}

func TestToolCallMissingArguments(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	res := server.HandleRequest(context.Background(), request(t, 7, "tools/call", ToolCallParams{
		Name:      "mcv_get_announcements",
		Arguments: json.RawMessage(`{}`),
	}))
	require.NotNil(t, res.Error)
	require.Equal(t, CodeInvalidParams, res.Error.Code)
}

func TestToolCallUnknownTool(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	res := server.HandleRequest(context.Background(), request(t, 8, "tools/call", ToolCallParams{
		Name:      "mcv_delete_everything",
		Arguments: json.RawMessage(`{}`),
	}))
	require.NotNil(t, res.Error)
	require.Equal(t, CodeInvalidParams, res.Error.Code)
}

func TestToolCallScrapeFailureStaysInBand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, err := courseville.NewClient(context.Background(), courseville.ClientOptions{
		BaseUrl: srv.URL,
		Cookie:  "mcv_session=deadbeef",
	})
	require.NoError(t, err)
	// unreachable portal from here on
	srv.Close()
	server := NewServer(client)

	res := server.HandleRequest(context.Background(), request(t, 9, "tools/call", ToolCallParams{
		Name:      "mcv_validate_session",
		Arguments: json.RawMessage(`{}`),
	}))

	// transport errors come back as tool output, not protocol errors
	text, isError := toolResultText(t, res)
	require.True(t, isError)

	var payload struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &payload))
	require.NotEmpty(t, payload.Error)
}

func TestServeLoop(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`,
	}, "\n")

	var out bytes.Buffer
	err := server.Serve(context.Background(), strings.NewReader(input), &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")

	// the notification produced no output
	require.Len(t, lines, 2)

	var first, second Response
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))

	require.Nil(t, first.Error)
	require.EqualValues(t, 1, first.Id)
	require.JSONEq(t, `"pong"`, string(second.Result))
}

func TestServeLoopMalformedFrame(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	var out bytes.Buffer
	err := server.Serve(context.Background(), strings.NewReader("this is not json"), &out)
	require.Error(t, err)

	var res Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	require.NotNil(t, res.Error)
	require.Equal(t, CodeParseError, res.Error.Code)
}
