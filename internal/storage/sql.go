package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"runtime"
	"strings"

	"github.com/go-sql-driver/mysql"
)

const runsTable = "spikesim_runs"

// SQLSink upserts run summaries into a MySQL table keyed by run ID.
type SQLSink struct {
	db    *sql.DB
	table string
}

// BuildDSN assembles a DSN for a TCP connection with time parsing enabled.
func BuildDSN(user, password, addr, dbName string) string {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = password
	cfg.Net = "tcp"
	cfg.Addr = addr
	cfg.DBName = dbName
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// OpenSQLSink validates dsn and opens a pool; no connection is made until
// the first query.
func OpenSQLSink(dsn string) (*SQLSink, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql dsn: %w", err)
	}
	cfg.ParseTime = true

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, err
	}
	return &SQLSink{db: sql.OpenDB(connector), table: runsTable}, nil
}

func (s *SQLSink) Close() error { return s.db.Close() }

func (s *SQLSink) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, createTableSQL(s.table))
	return err
}

func createTableSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id VARCHAR(128) PRIMARY KEY,
	protocol VARCHAR(32) NOT NULL,
	created_at DATETIME NOT NULL,
	go_version VARCHAR(32) NOT NULL,
	seed BIGINT NOT NULL,
	dt DOUBLE NOT NULL,
	duration DOUBLE NOT NULL,
	integrator VARCHAR(32) NOT NULL,
	input_spikes INT NOT NULL,
	output_spikes INT NOT NULL,
	final_weights JSON,
	winners JSON,
	metrics JSON
)`, table)
}

var runColumns = []string{
	"id", "protocol", "created_at", "go_version", "seed", "dt", "duration", "integrator",
	"input_spikes", "output_spikes", "final_weights", "winners", "metrics",
}

// insertSQL writes a run, replacing every column but the ID when the run
// is already present.
func insertSQL(table string) string {
	updates := make([]string, 0, len(runColumns)-1)
	for _, c := range runColumns[1:] {
		updates = append(updates, fmt.Sprintf("%s = VALUES(%s)", c, c))
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON DUPLICATE KEY UPDATE %s",
		table,
		strings.Join(runColumns, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(runColumns)), ", "),
		strings.Join(updates, ", "))
}

func (s *SQLSink) Write(ctx context.Context, meta RunMetadata) error {
	weights, err := json.Marshal(meta.FinalWeights)
	if err != nil {
		return fmt.Errorf("marshal weights: %w", err)
	}
	winners, err := json.Marshal(meta.Winners)
	if err != nil {
		return fmt.Errorf("marshal winners: %w", err)
	}
	metrics, err := json.Marshal(meta.Metrics)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}

	_, err = s.db.ExecContext(ctx, insertSQL(s.table),
		meta.ID, meta.Protocol, meta.Timestamp.UTC(), runtime.Version(), meta.Seed,
		meta.Dt, meta.Duration, meta.Integrator, meta.InputSpikes, meta.OutputSpikes,
		string(weights), string(winners), string(metrics))
	if err != nil {
		return fmt.Errorf("upsert run %s: %w", meta.ID, err)
	}
	return nil
}
