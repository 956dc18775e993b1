package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/rs/zerolog/log"

	"github.com/onrus/powermax-logins/internal/retry"
)

// Client wraps a ClickHouse connection with retry-backed operations.
type Client struct {
	conn     clickhouse.Conn
	retryCfg retry.Config
}

// NewClient connects to ClickHouse with the default retry config.
func NewClient(ctx context.Context, host string, port int, database, username, password string) (*Client, error) {
	return NewClientWithRetry(ctx, host, port, database, username, password, retry.DefaultConfig())
}

// NewClientWithRetry connects to ClickHouse with a custom retry
// configuration. The connection is verified with a retried Ping before
// the client is returned.
func NewClientWithRetry(ctx context.Context, host string, port int, database, username, password string, retryCfg retry.Config) (*Client, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", host, port)},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	if err := retry.Do(ctx, retryCfg, func() error {
		return conn.Ping(ctx)
	}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	log.Info().
		Str("host", host).
		Int("port", port).
		Str("database", database).
		Msg("Connected to ClickHouse")

	return &Client{
		conn:     conn,
		retryCfg: retryCfg,
	}, nil
}

// Exec executes a non-SELECT query with retry logic.
func (c *Client) Exec(ctx context.Context, query string, args ...interface{}) error {
	return retry.Do(ctx, c.retryCfg, func() error {
		return c.conn.Exec(ctx, query, args...)
	})
}

// PrepareBatch opens a batch insert with retry logic on the prepare step.
func (c *Client) PrepareBatch(ctx context.Context, query string) (driver.Batch, error) {
	return retry.DoWithResult(ctx, c.retryCfg, func() (driver.Batch, error) {
		return c.conn.PrepareBatch(ctx, query)
	})
}

// Close closes the connection.
func (c *Client) Close() error {
	log.Debug().Msg("Closing ClickHouse connection")
	return c.conn.Close()
}
