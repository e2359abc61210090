package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"muraai/internal/heritage"
	"muraai/internal/logging"
	"muraai/internal/services"
)

// ErrInFlight is returned when an item is already being processed.
var ErrInFlight = errors.New("item already being processed")

// ItemStore is the catalog persistence the pipeline needs.
type ItemStore interface {
	GetByID(ctx context.Context, id string) (*heritage.Item, error)
	Update(ctx context.Context, item *heritage.Item) error
	UpdateStatus(ctx context.Context, id string, status heritage.Status, errorMessage string) error
}

// Transcriber turns a remote audio recording into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioURL string) (string, error)
}

// Analyzer produces a structured cultural analysis of item content.
type Analyzer interface {
	Analyze(ctx context.Context, itemType heritage.ItemType, content string) (*heritage.AnalysisResult, error)
}

// Pipeline processes heritage items one at a time per identifier.
type Pipeline struct {
	store       ItemStore
	transcriber Transcriber
	analyzer    Analyzer
	logger      *slog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// New constructs a pipeline over the supplied collaborators.
func New(store ItemStore, transcriber Transcriber, analyzer Analyzer, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{
		store:       store,
		transcriber: transcriber,
		analyzer:    analyzer,
		logger:      logger.With(logging.String(logging.FieldComponent, "pipeline")),
		inFlight:    make(map[string]struct{}),
	}
}

// Process runs the full pipeline for one item and reports the outcome.
// Concurrent calls for the same identifier are rejected; failures are
// written back to the item before returning.
func (p *Pipeline) Process(ctx context.Context, id string) Outcome {
	id = strings.TrimSpace(id)
	if id == "" {
		return failure(id, StageFetch, errors.New("item id required"))
	}

	if !p.acquire(id) {
		return failure(id, StageFetch, fmt.Errorf("%w: %s", ErrInFlight, id))
	}
	defer p.release(id)

	logger := p.logger.With(logging.String(logging.FieldItemID, id))

	item, err := p.store.GetByID(ctx, id)
	if err != nil {
		return failure(id, StageFetch, services.Wrap(services.ErrPersistence, "fetch", "get item", "load item", err))
	}
	if item == nil {
		return failure(id, StageFetch, fmt.Errorf("%w: %s", services.ErrNotFound, id))
	}

	if err := p.store.UpdateStatus(ctx, id, heritage.StatusProcessing, ""); err != nil {
		return failure(id, StageFetch, services.Wrap(services.ErrPersistence, "fetch", "mark processing", "update status", err))
	}
	item.ProcessingStatus = heritage.StatusProcessing
	item.ErrorMessage = ""
	logger.Info("processing started", logging.String(logging.FieldItemType, string(item.Type)))

	content, outcome := p.resolveContent(ctx, logger, item)
	if outcome != nil {
		return *outcome
	}

	analysis, err := p.analyzer.Analyze(ctx, item.Type, content)
	if err != nil {
		return p.fail(ctx, logger, item, StageAnalyze, err)
	}

	item.Tags = mergeTags(analysis.TagsRU, analysis.TagsKZ, item.Tags)
	if err := item.SetAnalysis(analysis); err != nil {
		return p.fail(ctx, logger, item, StageAnalyze, err)
	}

	item.ProcessingStatus = heritage.StatusCompleted
	item.ErrorMessage = ""
	if err := p.store.Update(ctx, item); err != nil {
		return p.fail(ctx, logger, item, StagePersist, services.Wrap(services.ErrPersistence, "persist", "save item", "store results", err))
	}

	logger.Info("processing completed",
		logging.String(logging.FieldStatus, string(item.ProcessingStatus)),
		logging.Int("tags", len(item.Tags)))
	return success(item)
}

// resolveContent applies the content priority: items with an audio
// reference are always transcribed and the fresh output used, then text
// content, finally the description. A non-nil outcome means the run
// ended here.
func (p *Pipeline) resolveContent(ctx context.Context, logger *slog.Logger, item *heritage.Item) (string, *Outcome) {
	if strings.TrimSpace(item.AudioURL) != "" {
		if p.transcriber == nil {
			outcome := p.fail(ctx, logger, item, StageTranscribe, fmt.Errorf("%w: no transcriber configured", services.ErrConfiguration))
			return "", &outcome
		}
		transcription, err := p.transcriber.Transcribe(ctx, item.AudioURL)
		if err != nil {
			outcome := p.fail(ctx, logger, item, StageTranscribe, services.Wrap(services.ErrTranscription, "transcribe", "audio", "transcribe recording", err))
			return "", &outcome
		}
		item.Transcription = strings.TrimSpace(transcription)
		logger.Info("audio transcribed", logging.Int("chars", len(item.Transcription)))
		if item.Transcription != "" {
			return item.Transcription, nil
		}
	}

	if content := strings.TrimSpace(item.ContentForAnalysis()); content != "" {
		return content, nil
	}

	outcome := p.fail(ctx, logger, item, StageContent, fmt.Errorf("%w: item has no audio, text or description", services.ErrNoContent))
	return "", &outcome
}

// fail records the failure on the item and builds the failure outcome.
// Only the status and error message are written back; intermediate
// results from earlier stages are discarded. When the status write
// itself fails both errors are surfaced.
func (p *Pipeline) fail(ctx context.Context, logger *slog.Logger, item *heritage.Item, stage Stage, cause error) Outcome {
	logger.Error("processing failed",
		logging.String(logging.FieldStage, string(stage)),
		logging.Error(cause))

	if err := p.store.UpdateStatus(ctx, item.ID, heritage.StatusFailed, cause.Error()); err != nil {
		logger.Error("failed status write also failed", logging.Error(err))
		cause = errors.Join(cause, fmt.Errorf("record failure: %w", err))
	}
	return failure(item.ID, stage, cause)
}

func (p *Pipeline) acquire(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, busy := p.inFlight[id]; busy {
		return false
	}
	p.inFlight[id] = struct{}{}
	return true
}

func (p *Pipeline) release(id string) {
	p.mu.Lock()
	delete(p.inFlight, id)
	p.mu.Unlock()
}
