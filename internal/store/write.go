package store

import (
	"context"
	"fmt"

	"github.com/refract-engine/refract/internal/ir"
)

// RunRecord is one row of the runs table.
type RunRecord struct {
	ID       string
	Strategy string
	State    string
	Cycles   int
}

// FiringRecord is one firing with its provenance supports.
type FiringRecord struct {
	RunID    string
	Seq      int64
	Rule     string
	Bindings ir.Bindings
	Fact     ir.Fact
	NewFact  bool
	Supports []ir.Fact
}

// RecordRun writes a completed run in full: the run row, the initial
// facts, then every firing with its derived fact and provenance edges.
// Each step is idempotent, so recording the same run twice is safe.
func (s *Store) RecordRun(ctx context.Context, run RunRecord, initial []ir.Fact, firings []FiringRecord) error {
	if err := s.WriteRun(ctx, run); err != nil {
		return err
	}
	for _, fact := range initial {
		if err := s.WriteFact(ctx, run.ID, fact, true); err != nil {
			return err
		}
	}
	for _, firing := range firings {
		if _, _, err := s.WriteFiringAtomic(ctx, firing); err != nil {
			return err
		}
	}
	return nil
}

// WriteRun inserts a run record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - re-recording the
// same run is silently ignored.
func (s *Store) WriteRun(ctx context.Context, run RunRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, strategy, state, cycles)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Strategy,
		run.State,
		run.Cycles,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	return nil
}

// WriteFact inserts a fact row keyed by its content-addressed identity.
// Uses ON CONFLICT DO NOTHING for idempotency - the same fact written
// twice for one run is silently ignored, and is_initial keeps its first
// value.
func (s *Store) WriteFact(ctx context.Context, runID string, fact ir.Fact, initial bool) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO facts (run_id, fact_id, tuple, is_initial)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id, fact_id) DO NOTHING
	`,
		runID,
		ir.FactID(fact),
		marshalTuple(fact),
		initial,
	)
	if err != nil {
		return fmt.Errorf("write fact: %w", err)
	}

	return nil
}

// HasFiring checks if a firing already exists for the given triple.
func (s *Store) HasFiring(ctx context.Context, runID, rule, bindingHash string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM firings
		WHERE run_id = ? AND rule = ? AND binding_hash = ?
	`, runID, rule, bindingHash).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check firing: %w", err)
	}
	return count > 0, nil
}

// WriteFiringAtomic atomically writes a firing, its derived fact, and
// its provenance edges in a single transaction.
//
// Returns:
//   - firingID: the ID of the firing row (new or existing)
//   - inserted: true if this was a new firing, false if it already existed
//   - error: any error that occurred
//
// The UNIQUE(run_id, rule, binding_hash) constraint claims the slot
// atomically. If the firing already exists, the fact and edges are NOT
// written: the first recording owns them.
func (s *Store) WriteFiringAtomic(ctx context.Context, firing FiringRecord) (firingID int64, inserted bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("atomic firing: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	factID := ir.FactID(firing.Fact)

	result, err := tx.ExecContext(ctx, `
		INSERT INTO firings (run_id, seq, rule, binding_hash, bindings, fact_id, new_fact)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, rule, binding_hash) DO NOTHING
	`,
		firing.RunID,
		firing.Seq,
		firing.Rule,
		ir.BindingHash(firing.Bindings),
		marshalBindings(firing.Bindings),
		factID,
		firing.NewFact,
	)
	if err != nil {
		return 0, false, fmt.Errorf("atomic firing: insert firing: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("atomic firing: rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Conflict - firing already recorded, nothing more to do
		err = tx.QueryRowContext(ctx, `
			SELECT id FROM firings
			WHERE run_id = ? AND rule = ? AND binding_hash = ?
		`, firing.RunID, firing.Rule, ir.BindingHash(firing.Bindings)).Scan(&firingID)
		if err != nil {
			return 0, false, fmt.Errorf("atomic firing: select existing: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return 0, false, fmt.Errorf("atomic firing: commit (existing): %w", err)
		}
		return firingID, false, nil
	}

	firingID, err = result.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("atomic firing: last insert id: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO facts (run_id, fact_id, tuple, is_initial)
		VALUES (?, ?, ?, 0)
		ON CONFLICT(run_id, fact_id) DO NOTHING
	`,
		firing.RunID,
		factID,
		marshalTuple(firing.Fact),
	)
	if err != nil {
		return 0, false, fmt.Errorf("atomic firing: write fact: %w", err)
	}

	for i, support := range firing.Supports {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO provenance_edges (firing_id, position, support_fact_id)
			VALUES (?, ?, ?)
			ON CONFLICT(firing_id, position) DO NOTHING
		`,
			firingID,
			i,
			ir.FactID(support),
		)
		if err != nil {
			return 0, false, fmt.Errorf("atomic firing: write provenance: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("atomic firing: commit: %w", err)
	}

	return firingID, true, nil
}
