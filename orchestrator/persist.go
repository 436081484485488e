package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"

	"lingokit/events/turn"
	"lingokit/utils/audio"
)

// runPersistenceStage writes the accumulated reply audio and announces its
// URL. Empty audio means nothing to persist and no announcement; the branch
// still reports to the join. A write failure is absorbed the same way a
// synthesis failure is: the turn finishes as text-only.
func (o *TurnOrchestrator) runPersistenceStage(ctx context.Context, turnID string, pcm []byte) {
	if len(pcm) == 0 {
		return
	}
	url, err := o.deps.Persister.Persist(ctx, pcm)
	if err != nil {
		o.logger.With(map[string]any{"turn_id": turnID, "error": err}).Error("persisting reply audio failed")
		return
	}
	o.emit(ctx, turnID, "PersistenceStage", &turn.AudioReadyEvent{URL: url})
}

// WAVFilePersister stores reply audio as WAV files on local disk, addressed
// by a random name under a URL prefix the HTTP server exposes.
type WAVFilePersister struct {
	OutputDir string
	URLPrefix string
}

func NewWAVFilePersister(outputDir, urlPrefix string) (*WAVFilePersister, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio output dir: %w", err)
	}
	return &WAVFilePersister{OutputDir: outputDir, URLPrefix: urlPrefix}, nil
}

// Persist encodes the PCM buffer as mono 16-bit 24000 Hz WAV and writes it
// as <uuid>.wav.
func (p *WAVFilePersister) Persist(_ context.Context, pcm []byte) (string, error) {
	wav, err := audio.PCMBytesToWavBytes(pcm, audio.ReplyChannels, audio.ReplySampleRate)
	if err != nil {
		return "", fmt.Errorf("encode reply audio: %w", err)
	}
	name := uuid.New().String() + ".wav"
	if err := os.WriteFile(filepath.Join(p.OutputDir, name), wav, 0o644); err != nil {
		return "", fmt.Errorf("write reply audio: %w", err)
	}
	return path.Join(p.URLPrefix, name), nil
}
