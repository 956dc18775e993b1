package export

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/onrus/powermax-logins/internal/clickhouse"
	"github.com/onrus/powermax-logins/internal/domain"
)

// The ClickHouse sink is the same flat table as the CSV: eleven String
// columns, append-only, no dedup.
const createTableDDL = `CREATE TABLE IF NOT EXISTS %s (
	array String,
	director_port String,
	director_wwpn String,
	node_wwn String,
	port_wwn String,
	initiator_name String,
	fcid String,
	logged_in String,
	on_fabric String,
	log_time String,
	source_file String
) ENGINE = MergeTree()
ORDER BY (array, director_port, node_wwn)`

// ClickHouseWriter appends login records to a flat ClickHouse table in
// one batch insert per run.
type ClickHouseWriter struct {
	client *clickhouse.Client
	table  string // fully qualified "db.table"
}

// NewClickHouseWriter connects to ClickHouse and ensures the target
// table exists.
func NewClickHouseWriter(ctx context.Context, host string, port int, database, table, username, password string) (*ClickHouseWriter, error) {
	client, err := clickhouse.NewClient(ctx, host, port, database, username, password)
	if err != nil {
		return nil, err
	}

	qualified := fmt.Sprintf("%s.%s", database, table)
	if err := client.Exec(ctx, fmt.Sprintf(createTableDDL, qualified)); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", qualified, err)
	}

	return &ClickHouseWriter{
		client: client,
		table:  qualified,
	}, nil
}

// Write sends all records as one prepared batch.
func (w *ClickHouseWriter) Write(ctx context.Context, records []domain.LoginRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch, err := w.client.PrepareBatch(ctx, "INSERT INTO "+w.table)
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, r := range records {
		err := batch.Append(
			r.Array,
			r.DirectorPort,
			r.DirectorWWPN,
			r.NodeWWN,
			r.PortWWN,
			r.InitiatorName,
			r.FCID,
			r.LoggedIn,
			r.OnFabric,
			r.LogTime,
			r.SourceFile,
		)
		if err != nil {
			return fmt.Errorf("failed to append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	log.Debug().
		Int("records", len(records)).
		Str("table", w.table).
		Msg("Records written to ClickHouse")

	return nil
}

// Close closes the underlying connection.
func (w *ClickHouseWriter) Close() error {
	return w.client.Close()
}
