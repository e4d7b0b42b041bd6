// Package tools maps model tool calls to sandboxed workspace operations.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/openclaw/forge/internal/llm"
	"github.com/openclaw/forge/internal/logging"
	"github.com/openclaw/forge/internal/workspace"
)

// Tool names form a closed set; unknown names are rejected with a textual
// result rather than falling through silently.
const (
	ToolWriteFile = "write_file"
	ToolReadFile  = "read_file"
	ToolListFiles = "list_files"
)

type writeFileArgs struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type readFileArgs struct {
	Path string `json:"path"`
}

type listFilesArgs struct {
	Path string `json:"path"`
}

// Set is the fixed tool set exposed to every phase.
type Set struct {
	logger *logging.Logger
}

// NewSet creates the dispatcher.
func NewSet(logger *logging.Logger) *Set {
	if logger == nil {
		logger = logging.New().WithComponent("tools")
	}
	return &Set{logger: logger}
}

// Definitions returns the model-facing schema for the fixed tool set.
func (s *Set) Definitions() []llm.ToolDef {
	return []llm.ToolDef{
		{
			Name:        ToolWriteFile,
			Description: "Write content to a file at the given path.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Relative file path to write to.",
					},
					"content": map[string]interface{}{
						"type":        "string",
						"description": "Content to write into the file.",
					},
				},
				"required": []string{"path", "content"},
			},
		},
		{
			Name:        ToolReadFile,
			Description: "Read the content of a file at the given path.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Relative file path to read from.",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        ToolListFiles,
			Description: "List the files in a directory at the given path.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Relative directory path to list.",
					},
				},
				"required": []string{"path"},
			},
		},
	}
}

// Dispatch executes one tool call against the given workspace and returns
// the plain-text result. Argument parse failures and unknown tool names
// yield textual errors that flow back into the conversation; nothing here
// is fatal to the run.
func (s *Set) Dispatch(ctx context.Context, agent string, call llm.ToolCall, ws *workspace.Workspace) string {
	start := time.Now()
	s.logger.ToolCall(agent, call.Name)

	var result string
	switch call.Name {
	case ToolWriteFile:
		var args writeFileArgs
		if err := json.Unmarshal([]byte(call.Args), &args); err != nil {
			return parseError(call.Name)
		}
		result = ws.Write(args.Path, args.Content)
	case ToolReadFile:
		var args readFileArgs
		if err := json.Unmarshal([]byte(call.Args), &args); err != nil {
			return parseError(call.Name)
		}
		result = ws.Read(args.Path)
	case ToolListFiles:
		var args listFilesArgs
		if err := json.Unmarshal([]byte(call.Args), &args); err != nil {
			return parseError(call.Name)
		}
		result = ws.List(args.Path)
	default:
		return fmt.Sprintf("Unknown tool: %s", call.Name)
	}

	s.logger.ToolResult(agent, call.Name, time.Since(start))
	return result
}

func parseError(tool string) string {
	return fmt.Sprintf("Error: Could not parse arguments for %s. Please retry with valid JSON.", tool)
}
