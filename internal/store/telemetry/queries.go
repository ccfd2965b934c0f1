package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/seakeeper/seakeeper/pkg/types"
)

// cleanAttributes is the allow-list for queries against vessel_clean_data.
// Only numeric telemetry attributes may be interpolated into statements;
// everything else is rejected before any SQL is built.
var cleanAttributes = func() map[string]bool {
	m := make(map[string]bool, len(telemetryColumns))
	for _, c := range telemetryColumns {
		if c.kind == kindDouble {
			m[c.name] = true
		}
	}
	return m
}()

// dailyAttributes is the allow-list for queries against vessel_daily.
var dailyAttributes = func() map[string]bool {
	m := make(map[string]bool, len(dailyMeanColumns)+2)
	for _, c := range dailyMeanColumns {
		m[c] = true
	}
	m["cii_component"] = true
	m["cii"] = true
	return m
}()

// fuelColumns maps a fuel kind to its per-equipment consumption columns.
// Only fuels with actual columns in the schema are accepted.
var fuelColumns = map[string][3]string{
	"hfo": {"me_hfo_act_cons", "dg_hfo_act_cons", "blr_hfo_act_cons"},
	"mgo": {"me_mgo_act_cons", "dg_mgo_act_cons", "blr_mgo_act_cons"},
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// zeroAsNil maps the stored zero sentinel to nil. The regulatory columns
// default to 0 meaning "not computed yet", so a stored 0 is never a real
// intensity value.
func zeroAsNil(v sql.NullFloat64) *float64 {
	if !v.Valid || v.Float64 == 0 {
		return nil
	}
	f := v.Float64
	return &f
}

// Daily returns a page of per-day aggregates for the vessel, oldest first.
func (d *DB) Daily(ctx context.Context, vesselID, offset, limit int) ([]types.DailyAggregate, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT CAST(date AS VARCHAR), speed_ground, speed_water, me_shaft_power,
                me_rpm, me_fuel_consumption_nmile,
                me_hfo_act_cons, me_mgo_act_cons,
                blr_hfo_act_cons, blr_mgo_act_cons,
                dg_hfo_act_cons, dg_mgo_act_cons,
                slip_ratio, draft, wind_speed, cii_component, cii
         FROM vessel_daily
         WHERE vessel_id = ?
         ORDER BY date
         LIMIT ? OFFSET ?`,
		vesselID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query daily rows: %w", err)
	}
	defer rows.Close()

	var out []types.DailyAggregate
	for rows.Next() {
		var (
			a types.DailyAggregate
			v [17]sql.NullFloat64
		)
		if err := rows.Scan(&a.Date, &v[1], &v[2], &v[3], &v[4], &v[5],
			&v[6], &v[7], &v[8], &v[9], &v[10], &v[11],
			&v[12], &v[13], &v[14], &v[15], &v[16]); err != nil {
			return nil, fmt.Errorf("scan daily row: %w", err)
		}
		a.VesselID = vesselID
		a.SpeedGround = nullable(v[1])
		a.SpeedWater = nullable(v[2])
		a.ShaftPower = nullable(v[3])
		a.RPM = nullable(v[4])
		a.FuelConsumptionNmile = nullable(v[5])
		a.MainHFOConsumption = nullable(v[6])
		a.MainMGOConsumption = nullable(v[7])
		a.BoilerHFOConsumption = nullable(v[8])
		a.BoilerMGOConsumption = nullable(v[9])
		a.DieselGenHFOConsumption = nullable(v[10])
		a.DieselGenMGOConsumption = nullable(v[11])
		a.SlipRatio = nullable(v[12])
		a.Draft = nullable(v[13])
		a.WindSpeed = nullable(v[14])
		a.CIIComponent = zeroAsNil(v[15])
		a.CII = zeroAsNil(v[16])
		out = append(out, a)
	}
	return out, rows.Err()
}

// Frequencies buckets a cleaned attribute into a histogram over the date
// range: values rounded to two decimals, singleton buckets dropped, and a
// percentage relative to all non-null observations in the range.
func (d *DB) Frequencies(ctx context.Context, vesselID int, attr, dateStart, dateEnd string) ([]types.AttributeFrequency, error) {
	if !cleanAttributes[attr] {
		return nil, fmt.Errorf("%w: %q", ErrBadAttribute, attr)
	}
	q := fmt.Sprintf(
		`WITH obs AS (
             SELECT ROUND(%s, 2) AS v
             FROM vessel_clean_data
             WHERE vessel_id = ? AND %s IS NOT NULL
               AND date BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)
         )
         SELECT v, COUNT(*) AS c, (SELECT COUNT(*) FROM obs) AS total
         FROM obs
         GROUP BY v
         HAVING COUNT(*) > 1
         ORDER BY v`, attr, attr)
	rows, err := d.sql.QueryContext(ctx, q, vesselID, dateStart, dateEnd)
	if err != nil {
		return nil, fmt.Errorf("query frequencies: %w", err)
	}
	defer rows.Close()

	var out []types.AttributeFrequency
	for rows.Next() {
		var (
			f     types.AttributeFrequency
			total int
		)
		if err := rows.Scan(&f.Value, &f.Count, &total); err != nil {
			return nil, fmt.Errorf("scan frequency row: %w", err)
		}
		if total > 0 {
			f.Percentage = math.Round(float64(f.Count)/float64(total)*10000) / 100
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Values returns the per-day series of one daily attribute in the range.
func (d *DB) Values(ctx context.Context, vesselID int, attr, dateStart, dateEnd string) ([]types.AttributeValue, error) {
	if !dailyAttributes[attr] {
		return nil, fmt.Errorf("%w: %q", ErrBadAttribute, attr)
	}
	q := fmt.Sprintf(
		`SELECT CAST(date AS VARCHAR), %s
         FROM vessel_daily
         WHERE vessel_id = ? AND date BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)
         ORDER BY date`, attr)
	rows, err := d.sql.QueryContext(ctx, q, vesselID, dateStart, dateEnd)
	if err != nil {
		return nil, fmt.Errorf("query values: %w", err)
	}
	defer rows.Close()

	var out []types.AttributeValue
	for rows.Next() {
		var (
			p types.AttributeValue
			v sql.NullFloat64
		)
		if err := rows.Scan(&p.Date, &v); err != nil {
			return nil, fmt.Errorf("scan value row: %w", err)
		}
		p.Value = nullable(v)
		out = append(out, p)
	}
	return out, rows.Err()
}

// Relation returns paired observations of two daily attributes for scatter
// views, ordered by date.
func (d *DB) Relation(ctx context.Context, vesselID int, attr1, attr2, dateStart, dateEnd string) ([]types.AttributeRelation, error) {
	if !dailyAttributes[attr1] {
		return nil, fmt.Errorf("%w: %q", ErrBadAttribute, attr1)
	}
	if !dailyAttributes[attr2] {
		return nil, fmt.Errorf("%w: %q", ErrBadAttribute, attr2)
	}
	q := fmt.Sprintf(
		`SELECT %s, %s
         FROM vessel_daily
         WHERE vessel_id = ? AND date BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)
         ORDER BY date`, attr1, attr2)
	rows, err := d.sql.QueryContext(ctx, q, vesselID, dateStart, dateEnd)
	if err != nil {
		return nil, fmt.Errorf("query relation: %w", err)
	}
	defer rows.Close()

	var out []types.AttributeRelation
	for rows.Next() {
		var v1, v2 sql.NullFloat64
		if err := rows.Scan(&v1, &v2); err != nil {
			return nil, fmt.Errorf("scan relation row: %w", err)
		}
		out = append(out, types.AttributeRelation{Value1: nullable(v1), Value2: nullable(v2)})
	}
	return out, rows.Err()
}

// Completeness counts aggregated days per calendar month over the trailing
// five years. Months with no data simply do not appear.
func (d *DB) Completeness(ctx context.Context, vesselID int) ([]types.CompletenessBucket, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT strftime(date, '%Y-%m') AS month, COUNT(*)
         FROM vessel_daily
         WHERE vessel_id = ? AND date >= current_date - INTERVAL 5 YEAR
         GROUP BY month
         ORDER BY month`,
		vesselID)
	if err != nil {
		return nil, fmt.Errorf("query completeness: %w", err)
	}
	defer rows.Close()

	var out []types.CompletenessBucket
	for rows.Next() {
		var b types.CompletenessBucket
		if err := rows.Scan(&b.Month, &b.Days); err != nil {
			return nil, fmt.Errorf("scan completeness row: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Consumption summarises fuel use per equipment for one fuel kind over the
// range. perNmile reports the mean consumption per nautical mile (only days
// with positive through-water speed contribute); otherwise plain sums.
func (d *DB) Consumption(ctx context.Context, vesselID int, fuel, dateStart, dateEnd string, perNmile bool) (*types.ConsumptionStatistic, error) {
	cols, ok := fuelColumns[fuel]
	if !ok {
		return nil, fmt.Errorf("%w: fuel %q", ErrBadAttribute, fuel)
	}
	var q string
	if perNmile {
		q = fmt.Sprintf(
			`SELECT COALESCE(AVG(%[1]s / speed_water), 0),
                    COALESCE(AVG(%[2]s / speed_water), 0),
                    COALESCE(AVG(%[3]s / speed_water), 0),
                    COALESCE(CAST(MIN(date) AS VARCHAR), ''),
                    COALESCE(CAST(MAX(date) AS VARCHAR), '')
             FROM vessel_daily
             WHERE vessel_id = ? AND speed_water > 0
               AND date BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)`,
			cols[0], cols[1], cols[2])
	} else {
		q = fmt.Sprintf(
			`SELECT COALESCE(SUM(%[1]s), 0),
                    COALESCE(SUM(%[2]s), 0),
                    COALESCE(SUM(%[3]s), 0),
                    COALESCE(CAST(MIN(date) AS VARCHAR), ''),
                    COALESCE(CAST(MAX(date) AS VARCHAR), '')
             FROM vessel_daily
             WHERE vessel_id = ?
               AND date BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)`,
			cols[0], cols[1], cols[2])
	}
	var st types.ConsumptionStatistic
	err := d.sql.QueryRowContext(ctx, q, vesselID, dateStart, dateEnd).Scan(
		&st.MainEngine, &st.DieselGen, &st.Boiler, &st.RealStartDate, &st.RealEndDate)
	if err != nil {
		return nil, fmt.Errorf("query consumption: %w", err)
	}
	st.Total = st.MainEngine + st.DieselGen + st.Boiler
	return &st, nil
}

// PeriodAverages computes the mean operating state over the range. When the
// range holds no data it falls back to the trailing seven days of whatever
// data the vessel has, so the optimization views stay usable for vessels
// with sparse uploads.
func (d *DB) PeriodAverages(ctx context.Context, vesselID int, dateStart, dateEnd string) (types.TrimAverages, error) {
	const sel = `SELECT COUNT(*),
                    COALESCE(AVG(trim), 0),
                    COALESCE(AVG(draft), 0),
                    COALESCE(AVG(speed_water), 0),
                    COALESCE(AVG(me_fuel_consumption_nmile), 0),
                    COALESCE(AVG(CASE WHEN cii <> 0 THEN cii END), 0)
             FROM vessel_daily
             WHERE vessel_id = ?`
	var (
		avg types.TrimAverages
		n   int
	)
	err := d.sql.QueryRowContext(ctx,
		sel+` AND date BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)`,
		vesselID, dateStart, dateEnd).Scan(
		&n, &avg.Trim, &avg.Draft, &avg.SpeedWater, &avg.FuelConsumptionNmile, &avg.CII)
	if err != nil {
		return avg, fmt.Errorf("query period averages: %w", err)
	}
	if n > 0 {
		return avg, nil
	}
	err = d.sql.QueryRowContext(ctx,
		sel+` AND date >= (SELECT COALESCE(MAX(date), current_date) - INTERVAL 7 DAY
                           FROM vessel_daily WHERE vessel_id = ?)`,
		vesselID, vesselID).Scan(
		&n, &avg.Trim, &avg.Draft, &avg.SpeedWater, &avg.FuelConsumptionNmile, &avg.CII)
	if err != nil {
		return avg, fmt.Errorf("query fallback averages: %w", err)
	}
	return avg, nil
}

// DataInfo returns every interval-th cleaned row in the range, ordered by
// timestamp. Sampling keeps the payload bounded for high-frequency feeds.
func (d *DB) DataInfo(ctx context.Context, vesselID int, dateStart, dateEnd string, interval int) ([]types.CleanSample, error) {
	if interval < 1 {
		interval = 1
	}
	rows, err := d.sql.QueryContext(ctx,
		`WITH numbered AS (
             SELECT speed_ground, speed_water, draft, heel, trim,
                    draught_astern, draught_bow, me_rpm,
                    wind_speed, wind_direction, slip_ratio,
                    me_fuel_consumption_nmile, me_shaft_power,
                    COALESCE(latitude, '') AS latitude,
                    COALESCE(longitude, '') AS longitude,
                    CAST(date AS VARCHAR) AS date,
                    COALESCE(CAST(time AS VARCHAR), '') AS time,
                    ship_nmile,
                    ROW_NUMBER() OVER (ORDER BY date, time) AS rn
             FROM vessel_clean_data
             WHERE vessel_id = ? AND date BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)
         )
         SELECT speed_ground, speed_water, draft, heel, trim,
                draught_astern, draught_bow, me_rpm,
                wind_speed, wind_direction, slip_ratio,
                me_fuel_consumption_nmile, me_shaft_power,
                latitude, longitude, date, time, ship_nmile
         FROM numbered
         WHERE (rn - 1) % ? = 0
         ORDER BY rn`,
		vesselID, dateStart, dateEnd, interval)
	if err != nil {
		return nil, fmt.Errorf("query data info: %w", err)
	}
	defer rows.Close()

	var out []types.CleanSample
	for rows.Next() {
		var (
			s types.CleanSample
			v [14]sql.NullFloat64
		)
		if err := rows.Scan(&v[0], &v[1], &v[2], &v[3], &v[4],
			&v[5], &v[6], &v[7], &v[8], &v[9], &v[10], &v[11], &v[12],
			&s.Latitude, &s.Longitude, &s.Date, &s.Time, &v[13]); err != nil {
			return nil, fmt.Errorf("scan data info row: %w", err)
		}
		s.SpeedGround = nullable(v[0])
		s.SpeedWater = nullable(v[1])
		s.Draft = nullable(v[2])
		s.Heel = nullable(v[3])
		s.Trim = nullable(v[4])
		s.DraughtAstern = nullable(v[5])
		s.DraughtBow = nullable(v[6])
		s.RPM = nullable(v[7])
		s.WindSpeed = nullable(v[8])
		s.WindDirection = nullable(v[9])
		s.SlipRatio = nullable(v[10])
		s.FuelConsumptionNmile = nullable(v[11])
		s.ShaftPower = nullable(v[12])
		s.ShipNmile = nullable(v[13])
		out = append(out, s)
	}
	return out, rows.Err()
}

// CIISeries returns the trailing year of regulatory intensity values for a
// vessel. Rating and boundary bands are filled in by the caller, which knows
// the vessel's particulars.
func (d *DB) CIISeries(ctx context.Context, vesselID int) ([]types.CIIPoint, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT CAST(date AS VARCHAR), cii, cii_component
         FROM vessel_daily
         WHERE vessel_id = ? AND date >= current_date - INTERVAL 1 YEAR
         ORDER BY date`,
		vesselID)
	if err != nil {
		return nil, fmt.Errorf("query cii series: %w", err)
	}
	defer rows.Close()

	var out []types.CIIPoint
	for rows.Next() {
		var (
			p        types.CIIPoint
			ciiV, cc sql.NullFloat64
		)
		if err := rows.Scan(&p.Date, &ciiV, &cc); err != nil {
			return nil, fmt.Errorf("scan cii row: %w", err)
		}
		p.CII = zeroAsNil(ciiV)
		p.CIIComponent = zeroAsNil(cc)
		out = append(out, p)
	}
	return out, rows.Err()
}

// TrimSeries returns the dated trim observations in the range.
func (d *DB) TrimSeries(ctx context.Context, vesselID int, dateStart, dateEnd string) ([]types.TrimPoint, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT CAST(date AS VARCHAR), trim
         FROM vessel_daily
         WHERE vessel_id = ? AND trim IS NOT NULL
           AND date BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)
         ORDER BY date`,
		vesselID, dateStart, dateEnd)
	if err != nil {
		return nil, fmt.Errorf("query trim series: %w", err)
	}
	defer rows.Close()

	var out []types.TrimPoint
	for rows.Next() {
		var p types.TrimPoint
		if err := rows.Scan(&p.Date, &p.Trim); err != nil {
			return nil, fmt.Errorf("scan trim row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// OperatingAverages returns the vessel's all-time mean through-water speed
// and attained CII (zero sentinels excluded). ok is false when the vessel
// has no aggregated days at all.
func (d *DB) OperatingAverages(ctx context.Context, vesselID int) (speedWater, attained float64, ok bool, err error) {
	var n int
	err = d.sql.QueryRowContext(ctx,
		`SELECT COUNT(*),
                COALESCE(AVG(speed_water), 0),
                COALESCE(AVG(CASE WHEN cii <> 0 THEN cii END), 0)
         FROM vessel_daily
         WHERE vessel_id = ?`,
		vesselID).Scan(&n, &speedWater, &attained)
	if err != nil {
		return 0, 0, false, fmt.Errorf("query operating averages: %w", err)
	}
	return speedWater, attained, n > 0, nil
}
