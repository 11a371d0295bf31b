package store

import (
	"context"
	"fmt"

	"github.com/refract-engine/refract/internal/ir"
)

// FactRecord is one row of the facts table.
type FactRecord struct {
	Fact    ir.Fact
	Initial bool
}

// ReadRun retrieves a run record by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (RunRecord, error) {
	var run RunRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT id, strategy, state, cycles
		FROM runs
		WHERE id = ?
	`, id).Scan(&run.ID, &run.Strategy, &run.State, &run.Cycles)
	if err != nil {
		return RunRecord{}, fmt.Errorf("read run: %w", err)
	}
	return run, nil
}

// ReadFacts returns all facts recorded for a run with deterministic
// ordering: ORDER BY fact_id COLLATE BINARY ASC.
//
// Returns an empty slice (not nil) if no facts exist for the run.
func (s *Store) ReadFacts(ctx context.Context, runID string) ([]FactRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tuple, is_initial
		FROM facts
		WHERE run_id = ?
		ORDER BY fact_id COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query facts: %w", err)
	}
	defer rows.Close()

	facts := []FactRecord{}
	for rows.Next() {
		var tuple string
		var rec FactRecord
		if err := rows.Scan(&tuple, &rec.Initial); err != nil {
			return nil, fmt.Errorf("scan fact: %w", err)
		}
		rec.Fact, err = unmarshalTuple(tuple)
		if err != nil {
			return nil, err
		}
		facts = append(facts, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate facts: %w", err)
	}

	return facts, nil
}

// ReadFirings returns all firings for a run in firing order, with
// provenance supports resolved in antecedent order.
//
// Returns an empty slice (not nil) if no firings exist for the run.
func (s *Store) ReadFirings(ctx context.Context, runID string) ([]FiringRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.id, f.seq, f.rule, f.bindings, fa.tuple, f.new_fact
		FROM firings f
		JOIN facts fa ON fa.run_id = f.run_id AND fa.fact_id = f.fact_id
		WHERE f.run_id = ?
		ORDER BY f.seq ASC, f.id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query firings: %w", err)
	}
	defer rows.Close()

	firings := []FiringRecord{}
	var ids []int64
	for rows.Next() {
		var id int64
		var bindings, tuple string
		rec := FiringRecord{RunID: runID}
		if err := rows.Scan(&id, &rec.Seq, &rec.Rule, &bindings, &tuple, &rec.NewFact); err != nil {
			return nil, fmt.Errorf("scan firing: %w", err)
		}
		rec.Bindings, err = unmarshalBindings(bindings)
		if err != nil {
			return nil, err
		}
		rec.Fact, err = unmarshalTuple(tuple)
		if err != nil {
			return nil, err
		}
		firings = append(firings, rec)
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate firings: %w", err)
	}

	for i, id := range ids {
		supports, err := s.readSupports(ctx, runID, id)
		if err != nil {
			return nil, err
		}
		firings[i].Supports = supports
	}

	return firings, nil
}

// readSupports resolves a firing's provenance edges to fact tuples in
// antecedent order.
func (s *Store) readSupports(ctx context.Context, runID string, firingID int64) ([]ir.Fact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT fa.tuple
		FROM provenance_edges pe
		JOIN facts fa ON fa.run_id = ? AND fa.fact_id = pe.support_fact_id
		WHERE pe.firing_id = ?
		ORDER BY pe.position ASC
	`, runID, firingID)
	if err != nil {
		return nil, fmt.Errorf("query supports: %w", err)
	}
	defer rows.Close()

	var supports []ir.Fact
	for rows.Next() {
		var tuple string
		if err := rows.Scan(&tuple); err != nil {
			return nil, fmt.Errorf("scan support: %w", err)
		}
		fact, err := unmarshalTuple(tuple)
		if err != nil {
			return nil, err
		}
		supports = append(supports, fact)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate supports: %w", err)
	}

	return supports, nil
}
