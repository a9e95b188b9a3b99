// Package db stores analysis runs in a SQLite report file.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"

	"github.com/tailscale/tailsql/server/tailsql"
	_ "modernc.org/sqlite"
	"tailscale.com/tsweb"

	"github.com/banshee-data/sitstand.report/internal/httputil"
	"github.com/banshee-data/sitstand.report/internal/kinematics"
	"github.com/banshee-data/sitstand.report/internal/pipeline"
)

const pragmas = "?_pragma=busy_timeout(5000)" +
	"&_pragma=journal_mode(WAL)" +
	"&_pragma=synchronous(NORMAL)" +
	"&_pragma=temp_store(MEMORY)" +
	"&_pragma=foreign_keys(ON)"

type DB struct {
	*sql.DB
	path string
}

// OpenDB opens the database at path without touching the schema.
func OpenDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path+pragmas)
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return &DB{DB: sqlDB, path: path}, nil
}

// NewDB opens the database at path and applies all pending migrations.
func NewDB(path string) (*DB, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}
	if err := db.MigrateUp(MigrationsFS()); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Run is one stored analysis.
type Run struct {
	ID     string `json:"run_id"`
	Source string `json:"source"`

	MassKg  float64 `json:"mass_kg"`
	HeightM float64 `json:"height_m"`
	Age     int     `json:"age"`
	Sex     string  `json:"sex"`

	Samples    int    `json:"samples"`
	TimeSource string `json:"time_source"`

	Repetitions    int     `json:"repetitions"`
	MeanPowerW     float64 `json:"mean_power_w"`
	EnergyJ        float64 `json:"energy_j"`
	TotalTimeS     float64 `json:"total_time_s"`
	Classification string  `json:"classification"`

	WindowStartS float64 `json:"window_start_s"`
	WindowEndS   float64 `json:"window_end_s"`

	Cycles []kinematics.CycleMetrics `json:"cycles,omitempty"`
}

// RunFromResult flattens a pipeline result for storage. Values are stored
// unrounded.
func RunFromResult(source string, req pipeline.Request, res *pipeline.ResultSummary) Run {
	r := Run{
		ID:             res.ID.String(),
		Source:         source,
		MassKg:         req.MassKg,
		HeightM:        req.HeightM,
		Age:            req.Age,
		Sex:            string(req.Sex),
		Samples:        res.Input.Samples,
		TimeSource:     res.Input.TimeSource,
		Repetitions:    res.Totals.Repetitions,
		MeanPowerW:     res.Totals.MeanPower,
		EnergyJ:        res.Totals.Energy,
		TotalTimeS:     res.Totals.TotalTime,
		Classification: res.Classification,
		Cycles:         res.Cycles,
	}
	if t := res.Filtered.Time; len(t) > 0 && len(res.Segments.Time) > 0 {
		r.WindowStartS = t[res.Segments.Start]
		r.WindowEndS = t[res.Segments.End]
	}
	return r
}

// RecordRun inserts r and its cycles in one transaction.
func (db *DB) RecordRun(ctx context.Context, r Run) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (
			run_id, source, mass_kg, height_m, age, sex, samples, time_source,
			repetitions, mean_power_w, energy_j, total_time_s, classification,
			window_start_s, window_end_s
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Source, r.MassKg, r.HeightM, r.Age, r.Sex, r.Samples, r.TimeSource,
		r.Repetitions, r.MeanPowerW, r.EnergyJ, r.TotalTimeS, r.Classification,
		r.WindowStartS, r.WindowEndS,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", r.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cycles (
			run_id, cycle, total_s, rise_s, sit_s, stand_transition_s, sit_transition_s,
			rise_flexion_dps, rise_extension_dps, sit_flexion_dps, sit_extension_dps, power_w
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range r.Cycles {
		if _, err := stmt.ExecContext(ctx,
			r.ID, c.Cycle, c.Total, c.Rise, c.Sit, c.StandTransition, c.SitTransition,
			c.RiseFlexion, c.RiseExtension, c.SitFlexion, c.SitExtension, c.Power,
		); err != nil {
			return fmt.Errorf("failed to insert cycle %d of run %s: %w", c.Cycle, r.ID, err)
		}
	}
	return tx.Commit()
}

// Runs lists stored runs, newest first, without their cycles.
func (db *DB) Runs(ctx context.Context) ([]Run, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT run_id, source, mass_kg, height_m, age, sex, samples, time_source,
			repetitions, mean_power_w, energy_j, total_time_s, classification,
			window_start_s, window_end_s
		FROM runs
		ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		if err := rows.Scan(
			&r.ID, &r.Source, &r.MassKg, &r.HeightM, &r.Age, &r.Sex, &r.Samples, &r.TimeSource,
			&r.Repetitions, &r.MeanPowerW, &r.EnergyJ, &r.TotalTimeS, &r.Classification,
			&r.WindowStartS, &r.WindowEndS,
		); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunCycles returns the cycles of run id in order.
func (db *DB) RunCycles(ctx context.Context, id string) ([]kinematics.CycleMetrics, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT cycle, total_s, rise_s, sit_s, stand_transition_s, sit_transition_s,
			rise_flexion_dps, rise_extension_dps, sit_flexion_dps, sit_extension_dps, power_w
		FROM cycles
		WHERE run_id = ?
		ORDER BY cycle`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cycles := []kinematics.CycleMetrics{}
	for rows.Next() {
		var c kinematics.CycleMetrics
		if err := rows.Scan(
			&c.Cycle, &c.Total, &c.Rise, &c.Sit, &c.StandTransition, &c.SitTransition,
			&c.RiseFlexion, &c.RiseExtension, &c.SitFlexion, &c.SitExtension, &c.Power,
		); err != nil {
			return nil, err
		}
		cycles = append(cycles, c)
	}
	return cycles, rows.Err()
}

// AttachAdminRoutes mounts a tailsql browser over the report and a JSON
// run listing under /debug/.
func (db *DB) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)
	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		log.Fatalf("failed to create tailsql server: %v", err)
	}
	tsql.SetDB("sqlite://"+db.path, db.DB, &tailsql.DBOptions{
		Label: "Sit-to-stand report",
	})
	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())

	debug.Handle("runs", "Stored analysis runs", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		runs, err := db.Runs(r.Context())
		if err != nil {
			httputil.InternalServerError(w, fmt.Sprintf("failed to list runs: %v", err))
			return
		}
		httputil.WriteJSONOK(w, runs)
	}))
}
