// Package generate orchestrates one generation request end to end: gate
// checks, sketch staging, pipeline configuration, and artifact selection.
package generate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sketchrender/internal/compose"
	"sketchrender/internal/gate"
	"sketchrender/internal/history"
	"sketchrender/internal/pipeline"
	"sketchrender/pkg/zip"
)

// ErrAuthFailed reports unknown or mismatched credentials.
var ErrAuthFailed = errors.New("authentication failed")

// ErrNoArtifacts reports a pipeline run that completed without producing
// any image at the output stage.
var ErrNoArtifacts = errors.New("no generated image")

// ThrottledError reports an identity still inside its cooldown window.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("throttled, retry after %s", e.RetryAfter)
}

// PipelineClient is the slice of the engine client the orchestrator needs.
type PipelineClient interface {
	UploadImage(ctx context.Context, filename string, r io.Reader) (pipeline.ImageRef, error)
	SubmitAndAwait(ctx context.Context, wf *pipeline.Workflow, outputStage string) (map[string][]byte, error)
}

// Request carries one generation request with its wire-form style fields.
// Region is expected to be pre-resolved by the transport layer when the
// caller asked for geo-derivation.
type Request struct {
	Identity         string
	Secret           string
	Sketch           []byte
	SketchFilename   string
	Architect        string
	Region           string
	BuildingType     string
	InteriorExterior string
	Atmosphere       string
	AspectRatio      string
	Resolution       string
	Bundle           bool
}

// Artifact is the response payload handed back to the transport layer.
type Artifact struct {
	Filename string
	MIME     string
	Data     []byte
}

// NodeTitles names the workflow nodes whose parameters this service
// rewrites, plus the output stage artifacts are collected from.
type NodeTitles struct {
	Prompt     string
	Dimensions string
	Sketch     string
	Output     string
}

// Options wires a Service.
type Options struct {
	Gate       *gate.Gate
	Client     PipelineClient
	Workflow   *pipeline.Workflow
	Nodes      NodeTitles
	Recorder   *history.Recorder
	Logger     zerolog.Logger
	StagingDir string
	Resolution string
	Now        func() time.Time
}

// Service implements the request orchestration.
type Service struct {
	gate       *gate.Gate
	client     PipelineClient
	workflow   *pipeline.Workflow
	nodes      NodeTitles
	recorder   *history.Recorder
	logger     zerolog.Logger
	stagingDir string
	resolution string
	now        func() time.Time
}

// NewService validates the wiring and applies defaults.
func NewService(opts Options) (*Service, error) {
	if opts.Gate == nil {
		return nil, fmt.Errorf("generate: gate is required")
	}
	if opts.Client == nil {
		return nil, fmt.Errorf("generate: pipeline client is required")
	}
	if opts.Workflow == nil {
		return nil, fmt.Errorf("generate: workflow template is required")
	}
	nodes := opts.Nodes
	if nodes.Prompt == "" {
		nodes.Prompt = "positive"
	}
	if nodes.Dimensions == "" {
		nodes.Dimensions = "latent"
	}
	if nodes.Sketch == "" {
		nodes.Sketch = "sketch"
	}
	if nodes.Output == "" {
		nodes.Output = "Save Image"
	}
	for _, title := range []string{nodes.Prompt, nodes.Dimensions, nodes.Sketch, nodes.Output} {
		if !opts.Workflow.HasNode(title) {
			return nil, fmt.Errorf("generate: workflow has no node titled %q", title)
		}
	}
	stagingDir := opts.StagingDir
	if stagingDir == "" {
		stagingDir = os.TempDir()
	}
	resolution := opts.Resolution
	if resolution == "" {
		resolution = "FULL HD (1080p)"
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		gate:       opts.Gate,
		client:     opts.Client,
		workflow:   opts.Workflow,
		nodes:      nodes,
		recorder:   opts.Recorder,
		logger:     opts.Logger,
		stagingDir: stagingDir,
		resolution: resolution,
		now:        now,
	}, nil
}

// HandleGeneration runs the full sequence for one request. The staged
// sketch file is removed on every exit path.
func (s *Service) HandleGeneration(ctx context.Context, req Request) (*Artifact, error) {
	started := s.now()
	ev := history.Event{Identity: req.Identity, Outcome: history.OutcomeOK}
	defer func() {
		ev.Latency = s.now().Sub(started)
		s.record(ctx, ev)
	}()

	if !s.gate.Authenticate(req.Identity, req.Secret) {
		ev.Outcome = history.OutcomeDenied
		return nil, ErrAuthFailed
	}

	decision, err := s.gate.CheckAndReserve(ctx, req.Identity, started)
	if err != nil {
		ev.Outcome = history.OutcomeError
		return nil, fmt.Errorf("rate-limit check: %w", err)
	}
	if !decision.Allowed {
		ev.Outcome = history.OutcomeThrottled
		return nil, &ThrottledError{RetryAfter: decision.RetryAfter}
	}

	prompt, width, height, err := s.composeParameters(req)
	if err != nil {
		ev.Outcome = history.OutcomeInvalid
		return nil, err
	}
	ev.Prompt = prompt
	ev.Width = width
	ev.Height = height

	staged, err := s.stageSketch(req)
	if err != nil {
		ev.Outcome = history.OutcomeError
		return nil, err
	}
	defer s.removeStaged(staged)

	ref, err := s.uploadStaged(ctx, staged)
	if err != nil {
		ev.Outcome = history.OutcomePipelineError
		return nil, err
	}

	wf := s.workflow.Clone()
	if err := s.configure(wf, prompt, width, height, ref); err != nil {
		ev.Outcome = history.OutcomeError
		return nil, err
	}

	results, err := s.client.SubmitAndAwait(ctx, wf, s.nodes.Output)
	if err != nil {
		ev.Outcome = history.OutcomePipelineError
		return nil, err
	}
	if len(results) == 0 {
		ev.Outcome = history.OutcomeEmpty
		return nil, ErrNoArtifacts
	}

	return s.selectArtifact(results, req.Bundle)
}

func (s *Service) composeParameters(req Request) (string, int, int, error) {
	spec, err := compose.ParsePromptSpec(req.Architect, req.Region, req.BuildingType, req.InteriorExterior, req.Atmosphere)
	if err != nil {
		return "", 0, 0, err
	}
	prompt, err := compose.ComposePrompt(spec)
	if err != nil {
		return "", 0, 0, err
	}

	ratio := req.AspectRatio
	if strings.TrimSpace(ratio) == "" {
		ratio = "1:1 (Square)"
	}
	ratio, err = compose.CanonicalAspectRatio(ratio)
	if err != nil {
		return "", 0, 0, err
	}
	resolution := req.Resolution
	if strings.TrimSpace(resolution) == "" {
		resolution = s.resolution
	}
	resolution, err = compose.CanonicalResolution(resolution)
	if err != nil {
		return "", 0, 0, err
	}
	width, height, err := compose.ComposeDimensions(ratio, resolution)
	if err != nil {
		return "", 0, 0, err
	}
	return prompt, width, height, nil
}

// stageSketch persists the sketch at a per-request unique path so the
// upload can stream from disk. Concurrent requests never share a name.
func (s *Service) stageSketch(req Request) (string, error) {
	ext := filepath.Ext(req.SketchFilename)
	if ext == "" {
		ext = ".png"
	}
	path := filepath.Join(s.stagingDir, "sketch-"+uuid.NewString()+ext)
	if err := os.WriteFile(path, req.Sketch, 0o600); err != nil {
		return "", fmt.Errorf("stage sketch: %w", err)
	}
	return path, nil
}

func (s *Service) removeStaged(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn().Err(err).Str("path", path).Msg("failed to remove staged sketch")
	}
}

func (s *Service) uploadStaged(ctx context.Context, path string) (pipeline.ImageRef, error) {
	file, err := os.Open(path)
	if err != nil {
		return pipeline.ImageRef{}, fmt.Errorf("open staged sketch: %w", err)
	}
	defer file.Close()
	return s.client.UploadImage(ctx, filepath.Base(path), file)
}

func (s *Service) configure(wf *pipeline.Workflow, prompt string, width, height int, ref pipeline.ImageRef) error {
	if err := wf.SetNodeParam(s.nodes.Prompt, "text", prompt); err != nil {
		return err
	}
	if err := wf.SetNodeParam(s.nodes.Dimensions, "width", width); err != nil {
		return err
	}
	if err := wf.SetNodeParam(s.nodes.Dimensions, "height", height); err != nil {
		return err
	}
	return wf.SetNodeParam(s.nodes.Sketch, "image", ref.InputName())
}

func (s *Service) selectArtifact(results map[string][]byte, bundle bool) (*Artifact, error) {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	if bundle && len(names) > 1 {
		entries := make([]zip.Entry, 0, len(names))
		for _, name := range names {
			entries = append(entries, zip.Entry{Filename: name, Data: results[name]})
		}
		data, err := zip.Archive(entries)
		if err != nil {
			return nil, err
		}
		return &Artifact{
			Filename: "render-" + uuid.NewString() + ".zip",
			MIME:     "application/zip",
			Data:     data,
		}, nil
	}

	return &Artifact{
		Filename: "render-" + uuid.NewString() + ".jpg",
		MIME:     "image/jpeg",
		Data:     results[names[0]],
	}, nil
}

func (s *Service) record(ctx context.Context, ev history.Event) {
	if err := s.recorder.Record(ctx, ev); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record generation event")
	}
}
