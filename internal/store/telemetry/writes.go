package telemetry

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/seakeeper/seakeeper/internal/cii"
	"github.com/seakeeper/seakeeper/internal/tabular"
)

// InsertRaw appends every row of the frame to vessel_raw_data. Columns not
// in the output schema are dropped. Rows without a parseable date are
// skipped; the number of rows actually written is returned.
func (s *Store) InsertRaw(ctx context.Context, vesselID int, f *tabular.Frame) (int, error) {
	return s.insertFrame(ctx, "vessel_raw_data", vesselID, f)
}

// InsertClean appends every row of the frame to vessel_clean_data.
func (s *Store) InsertClean(ctx context.Context, vesselID int, f *tabular.Frame) (int, error) {
	return s.insertFrame(ctx, "vessel_clean_data", vesselID, f)
}

func (s *Store) insertFrame(ctx context.Context, table string, vesselID int, f *tabular.Frame) (int, error) {
	var cols []column
	for _, c := range telemetryColumns {
		if f.Has(c.name) {
			cols = append(cols, c)
		}
	}
	names := make([]string, 0, len(cols)+1)
	names = append(names, "vessel_id")
	for _, c := range cols {
		names = append(names, c.name)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(names)), ",")
	stmtSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(names, ", "), placeholders)

	tx, err := s.sql.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin %s insert: %w", table, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		return 0, fmt.Errorf("prepare %s insert: %w", table, err)
	}
	defer stmt.Close()

	written, skipped := 0, 0
	for i := 0; i < f.Len(); i++ {
		args := make([]any, 0, len(names))
		args = append(args, vesselID)
		ok := true
		for _, c := range cols {
			v, valid := cellValue(f, i, c)
			if !valid {
				ok = false
				break
			}
			args = append(args, v)
		}
		if !ok {
			skipped++
			continue
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("insert into %s: %w", table, err)
		}
		written++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit %s insert: %w", table, err)
	}
	if skipped > 0 {
		s.log.Warn("rows without a valid date skipped",
			"table", table, "vessel_id", vesselID, "skipped", skipped)
	}
	return written, nil
}

// cellValue converts one frame cell to a driver argument. The second return
// is false only when a required cell makes the whole row unusable.
func cellValue(f *tabular.Frame, row int, c column) (any, bool) {
	raw := f.Cell(row, c.name)
	switch c.kind {
	case kindDouble:
		v := f.Float(row, c.name)
		if math.IsNaN(v) {
			return nil, true
		}
		return v, true
	case kindDate:
		t, ok := tabular.ParseDate(raw)
		if !ok {
			return nil, false
		}
		return t.Format("2006-01-02"), true
	default:
		if raw == "" {
			return nil, true
		}
		return raw, true
	}
}

// UpsertDaily recomputes the per-day mean aggregates for the given vessel
// over the half-open ingest window and replaces any existing rows for those
// days. Delete-then-insert keeps re-uploads of the same day idempotent.
func (s *Store) UpsertDaily(ctx context.Context, vesselID int, dateStart, dateEnd string) error {
	tx, err := s.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin daily upsert: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM vessel_daily
         WHERE vessel_id = ? AND date BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)`,
		vesselID, dateStart, dateEnd)
	if err != nil {
		return fmt.Errorf("clear daily rows: %w", err)
	}

	var avgExprs []string
	for _, col := range dailyMeanColumns {
		avgExprs = append(avgExprs, fmt.Sprintf("AVG(%s)", col))
	}
	insertSQL := fmt.Sprintf(
		`INSERT INTO vessel_daily (vessel_id, date, %s)
         SELECT vessel_id, date, %s
         FROM vessel_clean_data
         WHERE vessel_id = ? AND date BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)
         GROUP BY vessel_id, date`,
		strings.Join(dailyMeanColumns, ", "), strings.Join(avgExprs, ", "))
	if _, err := tx.ExecContext(ctx, insertSQL, vesselID, dateStart, dateEnd); err != nil {
		return fmt.Errorf("aggregate daily rows: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit daily upsert: %w", err)
	}
	return nil
}

// ApplyCIIComponent fills cii_component on daily rows that do not have one
// yet. The component is the per-day attained-intensity contribution: each
// fuel stream's consumption per knot of through-water speed, weighted by its
// CO2 emission factor and normalised by vessel capacity. Days without a
// positive speed keep a zero component.
func (s *Store) ApplyCIIComponent(ctx context.Context, vesselID int, capacity float64) error {
	if capacity <= 0 {
		return fmt.Errorf("apply cii component: capacity must be positive, got %g", capacity)
	}
	var terms []string
	for _, col := range cii.ConsumptionColumns {
		factor := cii.FactorFor(col)
		if factor <= 0 {
			continue
		}
		scale := factor * 1000 / capacity
		terms = append(terms, fmt.Sprintf("(COALESCE(%s, 0) / speed_water) * %s",
			col, strconv.FormatFloat(scale, 'g', -1, 64)))
	}
	update := fmt.Sprintf(
		`UPDATE vessel_daily
         SET cii_component = %s
         WHERE vessel_id = ? AND speed_water > 0 AND cii_component = 0`,
		strings.Join(terms, " + "))
	if _, err := s.sql.ExecContext(ctx, update, vesselID); err != nil {
		return fmt.Errorf("apply cii component: %w", err)
	}
	return nil
}

// RecomputeCII rewrites the cumulative attained CII for every daily row of
// the vessel: the running mean of cii_component within each calendar year,
// ordered by date. A full rewrite is cheap at daily granularity and avoids
// tracking which days a new upload invalidated.
func (s *Store) RecomputeCII(ctx context.Context, vesselID int) error {
	_, err := s.sql.ExecContext(ctx,
		`UPDATE vessel_daily AS d
         SET cii = w.cum
         FROM (
             SELECT vessel_id, date,
                    AVG(cii_component) OVER (
                        PARTITION BY vessel_id, date_part('year', date)
                        ORDER BY date
                        ROWS BETWEEN UNBOUNDED PRECEDING AND CURRENT ROW
                    ) AS cum
             FROM vessel_daily
             WHERE vessel_id = ?
         ) AS w
         WHERE d.vessel_id = w.vessel_id AND d.date = w.date`,
		vesselID)
	if err != nil {
		return fmt.Errorf("recompute cii: %w", err)
	}
	return nil
}
