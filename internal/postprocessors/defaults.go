package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
	"github.com/custodia-labs/lexbrief/internal/postprocessors/chunker"
)

// NewPipelineFromSettings builds the default pipeline from chunking settings.
func NewPipelineFromSettings(s domain.ChunkingSettings) (*Pipeline, error) {
	c, err := chunker.New(chunker.WithChunkSize(s.Size), chunker.WithOverlap(s.Overlap))
	if err != nil {
		return nil, err
	}
	return NewPipeline(c), nil
}

// NewPipelineFromConfig builds the default pipeline from a generic config table.
// Supported config keys:
//   - size (int): Characters per chunk (default: 1500)
//   - overlap (int): Overlapping characters between chunks (default: 200)
func NewPipelineFromConfig(cfg map[string]any) (*Pipeline, error) {
	s := domain.ChunkingSettings{
		Size:    chunker.DefaultChunkSize,
		Overlap: chunker.DefaultChunkOverlap,
	}

	if cfg != nil {
		if size, ok := getIntFromConfig(cfg, "size"); ok {
			s.Size = size
		}
		if overlap, ok := getIntFromConfig(cfg, "overlap"); ok {
			s.Overlap = overlap
		}
	}

	p, err := NewPipelineFromSettings(s)
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}
	return p, nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
