// Package merge decides whether a task's candidate output replaces the
// persisted base. Promotion is staged-and-renamed so a concurrent reader
// never sees a half-written base; the candidate is discarded either way.
package merge

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Decision records one gate evaluation. DecisionHash binds the outcome to
// the candidate and its measured delta for provenance.
type Decision struct {
	Accepted      bool    `json:"accepted"`
	Delta         float64 `json:"delta"`
	SecondaryGain float64 `json:"secondary_gain"`
	DecisionHash  string  `json:"decision_hash"`
}

type Gate struct {
	deltaThreshold     float64
	secondaryThreshold float64
	baseDir            string
	logger             *slog.Logger

	now func() time.Time
}

type GateConfig struct {
	// DeltaThreshold is the minimum quality improvement for acceptance.
	DeltaThreshold float64

	// SecondaryThreshold is the minimum secondary gain (e.g. accuracy
	// delta) for acceptance. Either signal alone suffices.
	SecondaryThreshold float64

	// BaseDir is the persisted base the candidate may replace.
	BaseDir string

	Logger *slog.Logger
}

func NewGate(cfg GateConfig) *Gate {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		deltaThreshold:     cfg.DeltaThreshold,
		secondaryThreshold: cfg.SecondaryThreshold,
		baseDir:            cfg.BaseDir,
		logger:             logger,
		now:                time.Now,
	}
}

// Evaluate applies the acceptance rule to a candidate directory and, on
// accept, promotes it to the base. The candidate directory is removed in
// every path, including errors, since it is never reused after evaluation.
func (g *Gate) Evaluate(candidateDir string, delta, secondaryGain float64) (Decision, error) {
	defer os.RemoveAll(candidateDir)

	ts := g.now()
	decision := Decision{
		// An explicit OR: either signal alone is sufficient evidence.
		Accepted:      delta >= g.deltaThreshold || secondaryGain >= g.secondaryThreshold,
		Delta:         delta,
		SecondaryGain: secondaryGain,
		DecisionHash:  decisionHash(ts, candidateDir, delta),
	}

	if !decision.Accepted {
		g.logger.Info("candidate rejected",
			"candidate", candidateDir,
			"delta", delta,
			"secondary_gain", secondaryGain,
		)
		return decision, nil
	}

	if err := g.promote(candidateDir); err != nil {
		return Decision{
			Accepted:      false,
			Delta:         delta,
			SecondaryGain: secondaryGain,
			DecisionHash:  decision.DecisionHash,
		}, fmt.Errorf("failed to promote candidate: %w", err)
	}

	g.logger.Info("candidate promoted",
		"candidate", candidateDir,
		"delta", delta,
		"secondary_gain", secondaryGain,
		"decision_hash", decision.DecisionHash[:8],
	)
	return decision, nil
}

// promote replaces the base with the candidate's contents: copy into a
// staging directory beside the base, then swap with renames. A reader of
// baseDir sees either the old base or the new one, never a mixture.
func (g *Gate) promote(candidateDir string) error {
	parent := filepath.Dir(g.baseDir)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return err
	}

	staging := g.baseDir + ".staging"
	if err := os.RemoveAll(staging); err != nil {
		return err
	}
	if err := copyDir(candidateDir, staging); err != nil {
		os.RemoveAll(staging)
		return err
	}

	old := g.baseDir + ".old"
	if err := os.RemoveAll(old); err != nil {
		os.RemoveAll(staging)
		return err
	}

	hadBase := true
	if err := os.Rename(g.baseDir, old); err != nil {
		if !os.IsNotExist(err) {
			os.RemoveAll(staging)
			return err
		}
		hadBase = false
	}

	if err := os.Rename(staging, g.baseDir); err != nil {
		// Put the previous base back; the swap never happened.
		if hadBase {
			os.Rename(old, g.baseDir)
		}
		os.RemoveAll(staging)
		return err
	}

	if hadBase {
		os.RemoveAll(old)
	}
	return nil
}

func decisionHash(ts time.Time, candidate string, delta float64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%s|%v", ts.UnixMilli(), candidate, delta)))
	return hex.EncodeToString(sum[:])
}

func copyDir(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if info.IsDir() {
			return os.MkdirAll(target, info.Mode().Perm())
		}
		return copyFile(path, target, info.Mode().Perm())
	})
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
