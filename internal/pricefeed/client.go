// Package pricefeed provides read-only connectivity to the MS SQL Server ERP
// price feed. The feed exposes current distributor list prices by part number
// and drives the scheduled pricebook sync.
package pricefeed

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/blueline-estimating/takeoff-api/internal/config"
	_ "github.com/microsoft/go-mssqldb" // MS SQL Server driver
	"go.uber.org/zap"
)

const (
	// Default retry configuration for connection attempts
	defaultMaxRetries     = 3
	defaultInitialBackoff = 1 * time.Second
	defaultMaxBackoff     = 10 * time.Second
	defaultBackoffFactor  = 2.0

	// Default health check timeout
	defaultHealthCheckTimeout = 5 * time.Second
)

// priceQuery reads the current list price view maintained by the ERP team.
const priceQuery = `SELECT part_number, list_price FROM dbo.vw_current_list_prices WHERE list_price IS NOT NULL`

// Client provides read-only access to the ERP price feed.
// It manages connection pooling and provides methods for executing queries.
type Client struct {
	db           *sql.DB
	config       *config.PriceFeedConfig
	logger       *zap.Logger
	queryTimeout time.Duration
}

// HealthStatus represents the health check result for the price feed connection
type HealthStatus struct {
	Status     string        `json:"status"`
	Latency    time.Duration `json:"latency_ms"`
	Error      string        `json:"error,omitempty"`
	MaxOpen    int           `json:"max_open_connections"`
	Open       int           `json:"open_connections"`
	InUse      int           `json:"in_use"`
	Idle       int           `json:"idle"`
	WaitCount  int64         `json:"wait_count"`
	WaitTimeMs int64         `json:"wait_time_ms"`
}

// NewClient creates a new price feed client with the given configuration.
// Returns nil if the price feed is not enabled or not configured.
// The client establishes a connection pool with retry logic for transient failures.
func NewClient(cfg *config.PriceFeedConfig, logger *zap.Logger) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		logger.Info("Price feed connection disabled")
		return nil, nil
	}

	// Validate required configuration
	if cfg.URL == "" || cfg.User == "" || cfg.Password == "" {
		logger.Warn("Price feed enabled but missing credentials, skipping connection",
			zap.Bool("url_present", cfg.URL != ""),
			zap.Bool("user_present", cfg.User != ""),
			zap.Bool("password_present", cfg.Password != ""),
		)
		return nil, nil
	}

	logger.Info("Initializing price feed connection",
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns),
		zap.Int("conn_max_lifetime_seconds", cfg.ConnMaxLifetime),
		zap.Int("query_timeout_seconds", cfg.QueryTimeout),
	)

	// Build connection string
	connStr, err := buildConnectionString(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build connection string: %w", err)
	}

	// Attempt connection with retry logic
	var db *sql.DB
	backoff := defaultInitialBackoff

	for attempt := 1; attempt <= defaultMaxRetries; attempt++ {
		logger.Info("Attempting price feed connection",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", defaultMaxRetries),
		)

		db, err = sql.Open("sqlserver", connStr)
		if err != nil {
			logger.Warn("Failed to open price feed connection",
				zap.Error(err),
				zap.Int("attempt", attempt),
			)
			if attempt < defaultMaxRetries {
				time.Sleep(backoff)
				backoff = min(time.Duration(float64(backoff)*defaultBackoffFactor), defaultMaxBackoff)
			}
			continue
		}

		// Configure connection pool
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

		// Test connection with ping
		ctx, cancel := context.WithTimeout(context.Background(), defaultHealthCheckTimeout)
		err = db.PingContext(ctx)
		cancel()

		if err != nil {
			logger.Warn("Price feed ping failed",
				zap.Error(err),
				zap.Int("attempt", attempt),
			)
			_ = db.Close()
			if attempt < defaultMaxRetries {
				time.Sleep(backoff)
				backoff = min(time.Duration(float64(backoff)*defaultBackoffFactor), defaultMaxBackoff)
			}
			continue
		}

		// Connection successful
		logger.Info("Price feed connection established successfully",
			zap.Int("attempts_taken", attempt),
		)

		return &Client{
			db:           db,
			config:       cfg,
			logger:       logger,
			queryTimeout: cfg.QueryTimeoutDuration(),
		}, nil
	}

	return nil, fmt.Errorf("failed to connect to price feed after %d attempts: %w", defaultMaxRetries, err)
}

// buildConnectionString constructs a SQL Server connection string from the config.
// URL format expected: host:port/database or host:port (uses default database)
func buildConnectionString(cfg *config.PriceFeedConfig) (string, error) {
	// Parse URL format: host:port/database or host:port
	urlParts := strings.SplitN(cfg.URL, "/", 2)
	hostPort := urlParts[0]
	database := ""
	if len(urlParts) > 1 {
		database = urlParts[1]
	}

	// Parse host and port
	hostParts := strings.SplitN(hostPort, ":", 2)
	host := hostParts[0]
	port := "1433" // Default SQL Server port
	if len(hostParts) > 1 {
		port = hostParts[1]
	}

	// Build connection string using URL format
	query := url.Values{}
	query.Add("encrypt", "true")
	query.Add("TrustServerCertificate", "false")
	query.Add("connection timeout", "30")
	if database != "" {
		query.Add("database", database)
	}

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%s", host, port),
		RawQuery: query.Encode(),
	}

	return u.String(), nil
}

// Close gracefully closes the price feed connection.
// Should be called during application shutdown.
func (c *Client) Close() error {
	if c == nil || c.db == nil {
		return nil
	}

	c.logger.Info("Closing price feed connection")

	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close price feed connection", zap.Error(err))
		return fmt.Errorf("failed to close price feed connection: %w", err)
	}

	c.logger.Info("Price feed connection closed successfully")
	return nil
}

// HealthCheck performs a health check on the price feed connection.
// Returns detailed status including connection pool statistics.
func (c *Client) HealthCheck(ctx context.Context) *HealthStatus {
	if c == nil || c.db == nil {
		return &HealthStatus{
			Status: "disabled",
		}
	}

	start := time.Now()

	// Use provided context or create one with default timeout
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultHealthCheckTimeout)
		defer cancel()
	}

	err := c.db.PingContext(ctx)
	latency := time.Since(start)

	stats := c.db.Stats()
	status := &HealthStatus{
		Latency:    latency,
		MaxOpen:    stats.MaxOpenConnections,
		Open:       stats.OpenConnections,
		InUse:      stats.InUse,
		Idle:       stats.Idle,
		WaitCount:  stats.WaitCount,
		WaitTimeMs: stats.WaitDuration.Milliseconds(),
	}

	if err != nil {
		c.logger.Warn("Price feed health check failed",
			zap.Error(err),
			zap.Duration("latency", latency),
		)
		status.Status = "unhealthy"
		status.Error = err.Error()
	} else {
		status.Status = "healthy"
	}

	return status
}

// FetchPrices reads the current list prices from the ERP, keyed by part
// number. Rows with empty part numbers are skipped.
func (c *Client) FetchPrices(ctx context.Context) (map[string]float64, error) {
	if c == nil || c.db == nil {
		return nil, fmt.Errorf("price feed client not initialized")
	}

	// Apply default query timeout if context doesn't have a deadline
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.queryTimeout)
		defer cancel()
	}

	start := time.Now()

	rows, err := c.db.QueryContext(ctx, priceQuery)
	if err != nil {
		c.logger.Error("Price feed query failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return nil, fmt.Errorf("query execution failed: %w", err)
	}
	defer rows.Close()

	prices := make(map[string]float64)
	for rows.Next() {
		var partNumber string
		var listPrice float64
		if err := rows.Scan(&partNumber, &listPrice); err != nil {
			return nil, fmt.Errorf("failed to scan price row: %w", err)
		}
		if partNumber == "" {
			continue
		}
		prices[partNumber] = listPrice
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price rows: %w", err)
	}

	c.logger.Debug("Price feed query completed",
		zap.Int("rows_returned", len(prices)),
		zap.Duration("duration", time.Since(start)),
	)

	return prices, nil
}

// IsEnabled returns true if the client is initialized and ready for queries.
func (c *Client) IsEnabled() bool {
	return c != nil && c.db != nil
}
