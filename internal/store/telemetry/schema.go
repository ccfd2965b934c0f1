// Package telemetry implements the columnar analytical store shared by the
// ingestion and analytics processes: append-only raw and cleaned telemetry
// plus the per-day aggregate table, all in a single DuckDB file. The
// ingesting process is the exclusive writer; analytics holds a read-only
// handle and the store itself rejects any write attempted through it.
package telemetry

// columnKind distinguishes how a cell is bound when inserting.
type columnKind int

const (
	kindDouble columnKind = iota
	kindVarchar
	kindDate
	kindTime
)

// column is one attribute of the telemetry output schema.
type column struct {
	name string
	kind columnKind
}

// telemetryColumns is the fixed output-schema whitelist for the raw and
// cleaned tables. CSV columns not listed here are silently dropped at write
// time; they are never an error.
var telemetryColumns = []column{
	{"speed_ground", kindDouble},
	{"speed_water", kindDouble},
	{"draft", kindDouble},
	{"heel", kindDouble},
	{"trim", kindDouble},
	{"draught_astern", kindDouble},
	{"draught_bow", kindDouble},
	{"draught_mid_left", kindDouble},
	{"draught_mid_right", kindDouble},
	{"me_rpm", kindDouble},
	{"wind_speed", kindDouble},
	{"wind_direction", kindDouble},
	{"slip_ratio", kindDouble},
	{"me_fuel_consumption_nmile", kindDouble},
	{"me_fuel_consumption_kwh", kindDouble},
	{"me_shaft_power", kindDouble},
	{"me_torque", kindDouble},
	{"latitude", kindVarchar},
	{"longitude", kindVarchar},
	{"me_hfo_act_cons", kindDouble},
	{"me_mgo_act_cons", kindDouble},
	{"me_hfo_acc_cons", kindDouble},
	{"blr_hfo_act_cons", kindDouble},
	{"blr_mgo_act_cons", kindDouble},
	{"dg_hfo_act_cons", kindDouble},
	{"dg_mgo_act_cons", kindDouble},
	{"dg_hfo_acc_cons", kindDouble},
	{"dg_mgo_acc_cons", kindDouble},
	{"fcm_fo_density", kindDouble},
	{"blr_fo_density", kindDouble},
	{"blr_mgo_density", kindDouble},
	{"dg_fo_density", kindDouble},
	{"dg_mgo_density", kindDouble},
	{"me_fo_in_temp", kindDouble},
	{"blr_fo_in_temp", kindDouble},
	{"blr_mgo_in_temp", kindDouble},
	{"dg_fo_in_temp", kindDouble},
	{"dg_mgo_in_temp", kindDouble},
	{"dg1_power", kindDouble},
	{"dg2_power", kindDouble},
	{"dg3_power", kindDouble},
	{"ship_nmile", kindDouble},
	{"true_h", kindDouble},
	{"total_distance", kindDouble},
	{"water_depth", kindDouble},
	{"rudder_angle", kindDouble},
	{"water_temp", kindDouble},
	{"swell_height", kindDouble},
	{"date", kindDate},
	{"time", kindTime},
}

// dailyMeanColumns are the numeric attributes averaged into vessel_daily.
// Position strings (latitude/longitude) and the date/time key columns have
// no meaningful mean and are excluded.
var dailyMeanColumns = func() []string {
	var cols []string
	for _, c := range telemetryColumns {
		if c.kind == kindDouble {
			cols = append(cols, c.name)
		}
	}
	return cols
}()

const telemetryColumnDDL = `
    vessel_id   INTEGER NOT NULL,
    speed_ground DOUBLE,
    speed_water  DOUBLE,
    draft        DOUBLE,
    heel         DOUBLE,
    trim         DOUBLE,
    draught_astern    DOUBLE,
    draught_bow       DOUBLE,
    draught_mid_left  DOUBLE,
    draught_mid_right DOUBLE,
    me_rpm                    DOUBLE,
    wind_speed                DOUBLE,
    wind_direction            DOUBLE,
    slip_ratio                DOUBLE,
    me_fuel_consumption_nmile DOUBLE,
    me_fuel_consumption_kwh   DOUBLE,
    me_shaft_power            DOUBLE,
    me_torque                 DOUBLE,
    latitude  VARCHAR,
    longitude VARCHAR,
    me_hfo_act_cons  DOUBLE,
    me_mgo_act_cons  DOUBLE,
    me_hfo_acc_cons  DOUBLE,
    blr_hfo_act_cons DOUBLE,
    blr_mgo_act_cons DOUBLE,
    dg_hfo_act_cons  DOUBLE,
    dg_mgo_act_cons  DOUBLE,
    dg_hfo_acc_cons  DOUBLE,
    dg_mgo_acc_cons  DOUBLE,
    fcm_fo_density   DOUBLE,
    blr_fo_density   DOUBLE,
    blr_mgo_density  DOUBLE,
    dg_fo_density    DOUBLE,
    dg_mgo_density   DOUBLE,
    me_fo_in_temp    DOUBLE,
    blr_fo_in_temp   DOUBLE,
    blr_mgo_in_temp  DOUBLE,
    dg_fo_in_temp    DOUBLE,
    dg_mgo_in_temp   DOUBLE,
    dg1_power DOUBLE,
    dg2_power DOUBLE,
    dg3_power DOUBLE,
    ship_nmile     DOUBLE,
    true_h         DOUBLE DEFAULT 0.0,
    total_distance DOUBLE DEFAULT 0.0,
    water_depth    DOUBLE DEFAULT 0.0,
    rudder_angle   DOUBLE DEFAULT 0.0,
    water_temp     DOUBLE DEFAULT 0.0,
    swell_height   DOUBLE DEFAULT 0.0,
    date DATE NOT NULL,
    time TIME`

var schemaDDL = []string{
	`CREATE SEQUENCE IF NOT EXISTS vessel_raw_data_seq`,
	`CREATE TABLE IF NOT EXISTS vessel_raw_data (
    id BIGINT DEFAULT nextval('vessel_raw_data_seq') PRIMARY KEY,` + telemetryColumnDDL + `,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE INDEX IF NOT EXISTS idx_raw_vessel_date ON vessel_raw_data (vessel_id, date)`,
	`CREATE SEQUENCE IF NOT EXISTS vessel_clean_data_seq`,
	`CREATE TABLE IF NOT EXISTS vessel_clean_data (
    id BIGINT DEFAULT nextval('vessel_clean_data_seq') PRIMARY KEY,` + telemetryColumnDDL + `,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE INDEX IF NOT EXISTS idx_clean_vessel_date ON vessel_clean_data (vessel_id, date)`,
	`CREATE TABLE IF NOT EXISTS vessel_daily (
    vessel_id INTEGER NOT NULL,
    date      DATE    NOT NULL,
    speed_ground DOUBLE,
    speed_water  DOUBLE,
    draft        DOUBLE,
    heel         DOUBLE,
    trim         DOUBLE,
    draught_astern    DOUBLE,
    draught_bow       DOUBLE,
    draught_mid_left  DOUBLE,
    draught_mid_right DOUBLE,
    me_rpm                    DOUBLE,
    wind_speed                DOUBLE,
    wind_direction            DOUBLE,
    slip_ratio                DOUBLE,
    me_fuel_consumption_nmile DOUBLE,
    me_fuel_consumption_kwh   DOUBLE,
    me_shaft_power            DOUBLE,
    me_torque                 DOUBLE,
    me_hfo_act_cons  DOUBLE,
    me_mgo_act_cons  DOUBLE,
    me_hfo_acc_cons  DOUBLE,
    blr_hfo_act_cons DOUBLE,
    blr_mgo_act_cons DOUBLE,
    dg_hfo_act_cons  DOUBLE,
    dg_mgo_act_cons  DOUBLE,
    dg_hfo_acc_cons  DOUBLE,
    dg_mgo_acc_cons  DOUBLE,
    fcm_fo_density   DOUBLE,
    blr_fo_density   DOUBLE,
    blr_mgo_density  DOUBLE,
    dg_fo_density    DOUBLE,
    dg_mgo_density   DOUBLE,
    me_fo_in_temp    DOUBLE,
    blr_fo_in_temp   DOUBLE,
    blr_mgo_in_temp  DOUBLE,
    dg_fo_in_temp    DOUBLE,
    dg_mgo_in_temp   DOUBLE,
    dg1_power DOUBLE,
    dg2_power DOUBLE,
    dg3_power DOUBLE,
    ship_nmile     DOUBLE,
    true_h         DOUBLE DEFAULT 0.0,
    total_distance DOUBLE DEFAULT 0.0,
    water_depth    DOUBLE DEFAULT 0.0,
    rudder_angle   DOUBLE DEFAULT 0.0,
    water_temp     DOUBLE DEFAULT 0.0,
    swell_height   DOUBLE DEFAULT 0.0,
    cii_component DOUBLE DEFAULT 0.0,
    cii           DOUBLE DEFAULT 0.0,
    PRIMARY KEY (vessel_id, date)
)`,
}
