package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jouleflux/jouleflux/internal/config"
	"github.com/jouleflux/jouleflux/internal/task"
)

// defaultCandidateBuilder packages the current index snapshot as a candidate
// knowledge pack. Delta is the index growth over the promoted base, so the
// gate only promotes when the pack actually learned something. Deployments
// with a real training payload swap this builder out; the scheduler and gate
// don't care what produced the candidate.
func defaultCandidateBuilder(cfg *config.Config) task.CandidateBuilder {
	return func(ctx context.Context, candidatesDir string) (task.Candidate, error) {
		indexPath := filepath.Join(cfg.Data.IndexDir, "index.json")
		data, err := os.ReadFile(indexPath)
		if err != nil {
			return task.Candidate{}, fmt.Errorf("no index snapshot to package: %w", err)
		}

		newCount, err := entryCount(data)
		if err != nil {
			return task.Candidate{}, fmt.Errorf("unreadable index snapshot: %w", err)
		}

		baseCount := 0
		if baseData, err := os.ReadFile(filepath.Join(cfg.Merge.BaseDir, "index.json")); err == nil {
			if n, err := entryCount(baseData); err == nil {
				baseCount = n
			}
		}

		dir := filepath.Join(candidatesDir, fmt.Sprintf("cand_%d", time.Now().UnixMilli()))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return task.Candidate{}, err
		}
		if err := os.WriteFile(filepath.Join(dir, "index.json"), data, 0644); err != nil {
			os.RemoveAll(dir)
			return task.Candidate{}, err
		}

		delta := float64(newCount-baseCount) / 1000.0
		if delta < 0 {
			delta = 0
		}

		return task.Candidate{
			Dir:   dir,
			Delta: delta,
		}, nil
	}
}

func entryCount(data []byte) (int, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}
