package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/openclaw/forge/internal/llm"
	"github.com/openclaw/forge/internal/workspace"
)

func newTestSet(t *testing.T) (*Set, *workspace.Workspace) {
	t.Helper()
	ws, err := workspace.New(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("workspace: %v", err)
	}
	return NewSet(nil), ws
}

func TestDefinitions(t *testing.T) {
	s, _ := newTestSet(t)
	defs := s.Definitions()
	if len(defs) != 3 {
		t.Fatalf("expected 3 tools, got %d", len(defs))
	}
	names := map[string]bool{}
	for _, d := range defs {
		names[d.Name] = true
		if d.Description == "" {
			t.Errorf("tool %s has no description", d.Name)
		}
		if d.Parameters["type"] != "object" {
			t.Errorf("tool %s schema is not an object", d.Name)
		}
	}
	for _, want := range []string{ToolWriteFile, ToolReadFile, ToolListFiles} {
		if !names[want] {
			t.Errorf("missing tool %s", want)
		}
	}
}

func TestDispatchWriteThenRead(t *testing.T) {
	s, ws := newTestSet(t)
	ctx := context.Background()

	result := s.Dispatch(ctx, "Developer", llm.ToolCall{
		ID:   "call_1",
		Name: ToolWriteFile,
		Args: `{"path":"src/main.py","content":"print('hi')"}`,
	}, ws)
	if result != "Successfully wrote to src/main.py" {
		t.Errorf("unexpected write result: %q", result)
	}

	result = s.Dispatch(ctx, "Developer", llm.ToolCall{
		ID:   "call_2",
		Name: ToolReadFile,
		Args: `{"path":"src/main.py"}`,
	}, ws)
	if result != "print('hi')" {
		t.Errorf("unexpected read result: %q", result)
	}
}

func TestDispatchList(t *testing.T) {
	s, ws := newTestSet(t)
	ws.Write("src/a.py", "a")
	ws.Write("src/b.py", "b")

	result := s.Dispatch(context.Background(), "Developer", llm.ToolCall{
		Name: ToolListFiles,
		Args: `{"path":"src"}`,
	}, ws)
	if result != "a.py\nb.py" {
		t.Errorf("unexpected listing: %q", result)
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	s, ws := newTestSet(t)
	result := s.Dispatch(context.Background(), "Developer", llm.ToolCall{
		Name: "delete_everything",
		Args: `{}`,
	}, ws)
	if result != "Unknown tool: delete_everything" {
		t.Errorf("unexpected result: %q", result)
	}
}

func TestDispatchUnparsableArgs(t *testing.T) {
	s, ws := newTestSet(t)
	// Small models sometimes emit XML-style calls instead of JSON.
	result := s.Dispatch(context.Background(), "Developer", llm.ToolCall{
		Name: ToolWriteFile,
		Args: `<function=write_file path="x.txt">`,
	}, ws)
	if !strings.Contains(result, "Could not parse arguments for write_file") {
		t.Errorf("unexpected result: %q", result)
	}
}

func TestDispatchTraversalBlocked(t *testing.T) {
	s, ws := newTestSet(t)
	result := s.Dispatch(context.Background(), "Developer", llm.ToolCall{
		Name: ToolWriteFile,
		Args: `{"path":"../../etc/passwd","content":"x"}`,
	}, ws)
	if !strings.Contains(result, "security violation") {
		t.Errorf("traversal not blocked: %q", result)
	}
}
