// Package pipeline sequences the gated phase chain over one workspace.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openclaw/forge/internal/logging"
	"github.com/openclaw/forge/internal/progress"
	"github.com/openclaw/forge/internal/workspace"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Runner drives one conversation to completion. *engine.Engine satisfies
// this; tests substitute scripted runners.
type Runner interface {
	Run(ctx context.Context, agent, systemPrompt, userMessage string, ws *workspace.Workspace) (string, error)
}

// Pipeline executes the fixed phase chain strictly sequentially.
type Pipeline struct {
	runner Runner
	ws     *workspace.Workspace
	record *progress.Record
	logger *logging.Logger
	phases []Phase
}

// New creates a Pipeline over the standard phase chain.
func New(runner Runner, ws *workspace.Workspace, record *progress.Record, logger *logging.Logger) *Pipeline {
	if logger == nil {
		logger = logging.New().WithComponent("pipeline")
	}
	return &Pipeline{
		runner: runner,
		ws:     ws,
		record: record,
		logger: logger,
		phases: Phases(),
	}
}

// Run prepares the workspace and executes every phase in order. The first
// phase whose required artifact is missing after its conversation aborts
// the whole run: every later phase's instructions assume the prior
// deliverable is present. Artifact content is deliberately not inspected;
// quality is the review phase's job.
func (p *Pipeline) Run(ctx context.Context, requirement string) error {
	start := time.Now()
	p.logger.PipelineStart(requirement, p.ws.Root())

	tracer := otel.Tracer("forge/pipeline")
	ctx, span := tracer.Start(ctx, "pipeline.run")
	span.SetAttributes(attribute.String("pipeline.workspace", p.ws.Root()))
	defer span.End()

	if err := p.ws.Prepare(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to prepare workspace: %w", err)
	}

	for _, ph := range p.phases {
		if err := p.runPhase(ctx, ph, requirement); err != nil {
			span.RecordError(err)
			p.logger.PipelineComplete(p.ws.Root(), time.Since(start), "failed")
			return err
		}
	}

	if p.record != nil {
		p.record.Update("System", "Pipeline complete")
	}
	p.logger.PipelineComplete(p.ws.Root(), time.Since(start), "complete")
	return nil
}

func (p *Pipeline) runPhase(ctx context.Context, ph Phase, requirement string) error {
	start := time.Now()
	p.logger.PhaseStart(ph.Name, ph.Artifact)

	tracer := otel.Tracer("forge/pipeline")
	ctx, span := tracer.Start(ctx, "phase."+ph.Name)
	span.SetAttributes(
		attribute.String("phase.name", ph.Name),
		attribute.String("phase.artifact", ph.Artifact),
	)
	defer span.End()

	instruction := ph.Instruction
	if strings.Contains(instruction, "%s") {
		instruction = fmt.Sprintf(instruction, requirement)
	}

	if p.record != nil {
		task := instruction
		// Truncate on runes: the instruction embeds the raw requirement,
		// which may be multi-byte.
		if r := []rune(task); len(r) > 60 {
			task = string(r[:60])
		}
		p.record.Update(ph.Label, task, fmt.Sprintf("[%s] phase started", ph.Label))
	}

	// The engine result text is informational only: budget sentinels and
	// terminal text are treated alike, and the artifact gate below decides
	// whether the phase succeeded.
	if _, err := p.runner.Run(ctx, ph.Label, ph.System, instruction, p.ws); err != nil {
		span.RecordError(err)
		p.logger.PhaseComplete(ph.Name, time.Since(start), "error")
		return fmt.Errorf("phase %s: %w", ph.Name, err)
	}

	if !p.ws.ArtifactExists(ph.Artifact) {
		err := fmt.Errorf("phase %s: required artifact %s was not created", ph.Name, ph.Artifact)
		span.RecordError(err)
		p.logger.PhaseComplete(ph.Name, time.Since(start), "artifact_missing")
		return err
	}

	if p.record != nil {
		p.record.AppendLog(fmt.Sprintf("[%s] delivered %s", ph.Label, ph.Artifact))
	}
	p.logger.PhaseComplete(ph.Name, time.Since(start), "complete")
	return nil
}
