package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/algoparity/parity-go/internal/domain"
	"github.com/algoparity/parity-go/internal/temporal/querier"
)

// StreamConfig controls SSE stream behavior.
type StreamConfig struct {
	PollInterval time.Duration
	MaxDuration  time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() StreamConfig {
	return StreamConfig{
		PollInterval: 2 * time.Second,
		MaxDuration:  30 * time.Minute,
	}
}

// StreamHandler serves SSE events for a pipeline's state changes.
func StreamHandler(q querier.PipelineQuerier, cfg StreamConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wfID := r.PathValue("id")
		if wfID == "" {
			http.Error(w, "pipeline id required", http.StatusBadRequest)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming not supported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		ctx, cancel := context.WithTimeout(r.Context(), cfg.MaxDuration)
		defer cancel()

		writeSSE(w, flusher, Event{
			Type:       EventRunStarted,
			Timestamp:  time.Now().UTC(),
			PipelineID: wfID,
		})

		result, err := q.GetPipelineState(ctx, wfID)
		if err != nil {
			writeSSE(w, flusher, Event{
				Type:       EventRunError,
				Timestamp:  time.Now().UTC(),
				PipelineID: wfID,
				Data:       ErrorData{Message: err.Error()},
			})
			return
		}

		writeSSE(w, flusher, Event{
			Type:       EventStateSnapshot,
			Timestamp:  time.Now().UTC(),
			PipelineID: wfID,
			Data: StateSnapshotData{
				Stage: result.State.CurrentStage,
				State: result.State,
			},
		})

		prev := result.State

		if prev.ShouldTerminate {
			writeSSE(w, flusher, Event{
				Type:       EventRunFinished,
				Timestamp:  time.Now().UTC(),
				PipelineID: wfID,
				Data:       map[string]any{"reason": string(result.Reason)},
			})
			return
		}

		ticker := time.NewTicker(cfg.PollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				result, err = q.GetPipelineState(ctx, wfID)
				if err != nil {
					writeSSE(w, flusher, Event{
						Type:       EventRunError,
						Timestamp:  time.Now().UTC(),
						PipelineID: wfID,
						Data:       ErrorData{Message: err.Error()},
					})
					return
				}

				current := result.State

				if current.CurrentStage != prev.CurrentStage {
					writeSSE(w, flusher, Event{
						Type:       EventStageFinished,
						Timestamp:  time.Now().UTC(),
						PipelineID: wfID,
						Data:       StageData{Stage: prev.CurrentStage},
					})
					writeSSE(w, flusher, Event{
						Type:       EventStageStarted,
						Timestamp:  time.Now().UTC(),
						PipelineID: wfID,
						Data:       StageData{Stage: current.CurrentStage},
					})
				}

				if patches := computePatches(prev, current); len(patches) > 0 {
					writeSSE(w, flusher, Event{
						Type:       EventStateDelta,
						Timestamp:  time.Now().UTC(),
						PipelineID: wfID,
						Data: StateDeltaData{
							Stage:   current.CurrentStage,
							Patches: patches,
						},
					})
				}

				if current.ShouldTerminate {
					writeSSE(w, flusher, Event{
						Type:       EventRunFinished,
						Timestamp:  time.Now().UTC(),
						PipelineID: wfID,
						Data:       map[string]any{"reason": string(result.Reason)},
					})
					return
				}
				prev = current
			}
		}
	}
}

// computePatches emits replace patches for pipeline fields that appeared or
// changed since the previous poll.
func computePatches(prev, current domain.PipelineState) []Patch {
	var patches []Patch
	if current.CurrentStage != prev.CurrentStage {
		patches = append(patches, Patch{Op: "replace", Path: "/current_stage", Value: current.CurrentStage})
	}
	if current.Build != nil && prev.Build == nil {
		patches = append(patches, Patch{Op: "replace", Path: "/build", Value: current.Build})
	}
	if current.LocalTests != nil && prev.LocalTests == nil {
		patches = append(patches, Patch{Op: "replace", Path: "/local_tests", Value: current.LocalTests})
	}
	if current.Report != nil && prev.Report == nil {
		patches = append(patches, Patch{Op: "replace", Path: "/report", Value: current.Report})
	}
	if current.Decision != nil && prev.Decision == nil {
		patches = append(patches, Patch{Op: "replace", Path: "/decision", Value: current.Decision})
	}
	if current.NextVersion != prev.NextVersion {
		patches = append(patches, Patch{Op: "replace", Path: "/next_version", Value: current.NextVersion})
	}
	return patches
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
	flusher.Flush()
}
