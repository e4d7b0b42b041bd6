// Package main is the entry point for the forge pipeline CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/muesli/reflow/wordwrap"

	"github.com/openclaw/forge/internal/config"
	"github.com/openclaw/forge/internal/credentials"
	"github.com/openclaw/forge/internal/engine"
	"github.com/openclaw/forge/internal/llm"
	"github.com/openclaw/forge/internal/logging"
	"github.com/openclaw/forge/internal/pipeline"
	"github.com/openclaw/forge/internal/progress"
	"github.com/openclaw/forge/internal/tools"
	"github.com/openclaw/forge/internal/viz"
	"github.com/openclaw/forge/internal/workspace"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// maxRequirementLen caps the free-text requirement input.
const maxRequirementLen = 2000

var (
	bannerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	failureStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

func init() {
	// .env carries the GROQ_API_KEY pool for local runs.
	_ = godotenv.Load()
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("forge"),
		kong.Description("Generate a software project from a one-line requirement through a gated multi-agent pipeline."),
		kongVars(),
	)
	if err := ctx.Run(); err != nil {
		fmt.Fprintln(os.Stderr, failureStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

// Run implements the version command.
func (v *VersionCmd) Run() error {
	fmt.Printf("forge version %s (commit: %s, built: %s)\n", version, commit, buildTime)
	return nil
}

// Run implements the run command: validate input, assemble the stack and
// execute the pipeline.
func (r *RunCmd) Run() error {
	requirement := strings.TrimSpace(r.Requirement)
	if requirement == "" {
		return fmt.Errorf("requirement cannot be empty")
	}
	if len(requirement) > maxRequirementLen {
		return fmt.Errorf("requirement too long (max %d chars, got %d)", maxRequirementLen, len(requirement))
	}

	cfg, err := config.LoadFile(r.Config)
	if errors.Is(err, os.ErrNotExist) {
		// No config file is fine; defaults cover everything.
		cfg = config.Default()
	} else if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if r.Projects != "" {
		cfg.Output.ProjectsDir = r.Projects
	}

	runID := uuid.NewString()[:8]
	logger := logging.New().WithRunID(runID)
	if r.Debug {
		logger.SetLevel(logging.LevelDebug)
	}

	pool, err := credentials.LoadPool()
	if err != nil {
		return err
	}
	logger.Info("credential pool initialized", map[string]interface{}{"keys": pool.Len()})
	for i := 0; i < pool.Len(); i++ {
		logger.Info("pool key", map[string]interface{}{
			"index": i + 1,
			"key":   pool.Masked(i),
		})
	}

	clients := make([]llm.Provider, 0, pool.Len())
	for _, key := range pool.Keys() {
		clients = append(clients, llm.NewOpenAIProvider(key, cfg.LLM.Model, cfg.LLM.BaseURL))
	}

	// Derive an isolated, collision-avoided project directory.
	projectDir := filepath.Join(cfg.Output.ProjectsDir, workspace.Slugify(requirement))
	projectDir = workspace.ResolveCollision(projectDir, nil)

	ws, err := workspace.New(projectDir, logger.WithComponent("workspace"))
	if err != nil {
		return err
	}
	if err := ws.Prepare(); err != nil {
		return fmt.Errorf("failed to prepare project directory: %w", err)
	}
	fmt.Println(bannerStyle.Render("Project folder: ") + pathStyle.Render(ws.Root()))

	record := progress.NewRecord()
	record.Update("System", "Initializing...")

	ctx := context.Background()
	if cfg.Viz.Enabled && !r.NoViz {
		server := viz.NewServer(record, logger.WithComponent("viz"))
		addr, err := server.Start(cfg.Viz.Addr)
		if err != nil {
			// The run is still useful without a dashboard.
			logger.Warn("dashboard unavailable", map[string]interface{}{"error": err.Error()})
		} else {
			defer server.Close()
			fmt.Println(bannerStyle.Render("Dashboard: ") + pathStyle.Render("ws://"+addr+"/ws"))
		}

		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if _, err := viz.WatchWorkspace(watchCtx, ws.Root(), record, logger.WithComponent("viz")); err != nil {
			logger.Warn("artifact watcher unavailable", map[string]interface{}{"error": err.Error()})
		}
	}

	engCfg := engine.Config{
		MaxProductiveCalls:  cfg.Limits.MaxToolCalls,
		MaxRateLimitHits:    cfg.Limits.MaxRateRetries,
		MaxMalformedRetries: cfg.Limits.MaxMalformedRetries,
		BackoffBase:         cfg.BackoffBase(),
		Temperature:         float32(cfg.LLM.Temperature),
		MaxTokens:           cfg.LLM.MaxTokens,
	}
	eng := engine.New(clients, tools.NewSet(logger.WithComponent("tools")), engCfg, record, logger.WithComponent("engine"))
	eng.SetRotation(pool.NextAfter)
	pipe := pipeline.New(eng, ws, record, logger.WithComponent("pipeline"))

	if err := pipe.Run(ctx, requirement); err != nil {
		return err
	}

	summary := fmt.Sprintf("Pipeline complete. Output in: %s", ws.Root())
	fmt.Println()
	fmt.Println(bannerStyle.Render("FORGE PIPELINE COMPLETE"))
	fmt.Println(wordwrap.String(summary, 100))
	return nil
}
