package task

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	maxIncomingLines = 1024
	maxKeptLines     = 512
	indexFileName    = "index.json"
)

// IndexTask refreshes the novelty index from incoming text. Each line gets a
// compressibility score (1 minus its zlib ratio), the top slice is appended
// to the index snapshot, and the snapshot is rewritten atomically.
type IndexTask struct {
	incomingDir string
	indexDir    string
	costJoules  float64
}

type indexEntry struct {
	Text      string  `json:"text"`
	Novelty   float64 `json:"novelty"`
	AddedUnix int64   `json:"added_unix"`
}

func NewIndexTask(incomingDir, indexDir string, costJoules float64) *IndexTask {
	return &IndexTask{
		incomingDir: incomingDir,
		indexDir:    indexDir,
		costJoules:  costJoules,
	}
}

func (t *IndexTask) Name() string             { return "index_refresh" }
func (t *IndexTask) EstimatedJoules() float64 { return t.costJoules }

func (t *IndexTask) Run(ctx context.Context) (Result, error) {
	texts, err := t.readIncoming(ctx)
	if err != nil {
		return Result{}, err
	}

	if len(texts) == 0 {
		return Result{
			OK:          false,
			ContentHash: hashBytes([]byte("empty")),
			Meta:        map[string]any{"added": 0},
		}, nil
	}

	kept := topByNovelty(texts, maxKeptLines)

	if err := t.appendToIndex(kept); err != nil {
		return Result{}, fmt.Errorf("failed to write index: %w", err)
	}

	var payload bytes.Buffer
	for _, e := range kept {
		payload.WriteString(e.Text)
		payload.WriteByte('\n')
	}

	return Result{
		OK:          true,
		Delta:       float64(len(kept)) / 1000.0,
		ContentHash: hashBytes(payload.Bytes()),
		Meta:        map[string]any{"added": len(kept)},
	}, nil
}

func (t *IndexTask) readIncoming(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(t.incomingDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var texts []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		f, err := os.Open(filepath.Join(t.incomingDir, entry.Name()))
		if err != nil {
			continue
		}

		scanner := bufio.NewScanner(f)
		for scanner.Scan() && len(texts) < maxIncomingLines {
			if line := scanner.Text(); line != "" {
				texts = append(texts, line)
			}
		}
		scanErr := scanner.Err()
		f.Close()
		if scanErr != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), scanErr)
		}

		if len(texts) >= maxIncomingLines {
			break
		}
	}

	return texts, nil
}

// topByNovelty scores each line as 1 - compressed/raw, so redundant text
// scores high, and keeps the highest scoring limit lines.
func topByNovelty(texts []string, limit int) []indexEntry {
	now := time.Now().Unix()

	entries := make([]indexEntry, 0, len(texts))
	for _, text := range texts {
		entries = append(entries, indexEntry{
			Text:      text,
			Novelty:   noveltyScore(text),
			AddedUnix: now,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Novelty > entries[j].Novelty
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

func noveltyScore(text string) float64 {
	raw := []byte(text)
	if len(raw) == 0 {
		return 0
	}

	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	w.Write(raw)
	w.Close()

	ratio := float64(buf.Len()) / float64(len(raw))
	return 1.0 - ratio
}

// appendToIndex loads the existing snapshot, appends, and rewrites it via
// temp file + rename.
func (t *IndexTask) appendToIndex(entries []indexEntry) error {
	if err := os.MkdirAll(t.indexDir, 0755); err != nil {
		return err
	}

	indexPath := filepath.Join(t.indexDir, indexFileName)

	var existing []indexEntry
	if data, err := os.ReadFile(indexPath); err == nil {
		// A corrupt snapshot starts fresh rather than failing the task.
		_ = json.Unmarshal(data, &existing)
	}

	existing = append(existing, entries...)

	tempPath := indexPath + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(f)
	if err := encoder.Encode(existing); err != nil {
		f.Close()
		os.Remove(tempPath)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return err
	}

	if err := os.Rename(tempPath, indexPath); err != nil {
		os.Remove(tempPath)
		return err
	}
	return nil
}

func hashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
