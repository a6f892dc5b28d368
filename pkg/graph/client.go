// Package graph provides the Neo4j client, the store contract the seeding
// and reasoning layers depend on, and its Neo4j and in-memory implementations.
package graph

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Client wraps the Neo4j driver
type Client struct {
	driver   neo4j.DriverWithContext
	database string
	logger   ectologger.Logger
}

// Config holds graph database configuration
type Config struct {
	URI      string
	Username string
	Password string
	Database string
}

// NewClient creates a new graph database client. The driver connects lazily;
// call VerifyConnectivity (or Start) to probe the server.
func NewClient(cfg Config, logger ectologger.Logger) (*Client, error) {
	auth := neo4j.NoAuth()
	if cfg.Username != "" {
		auth = neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph driver: %w", err)
	}

	return &Client{
		driver:   driver,
		database: cfg.Database,
		logger:   logger,
	}, nil
}

// Close closes the driver connection
func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

// VerifyConnectivity checks if the database is reachable
func (c *Client) VerifyConnectivity(ctx context.Context) error {
	return c.driver.VerifyConnectivity(ctx)
}

// GetName, DependsOn, Start and Stop let the client take part in startup.
func (c *Client) GetName() string     { return "graph" }
func (c *Client) DependsOn() []string { return nil }

func (c *Client) Start(ctx context.Context) error {
	if err := c.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("graph store unreachable: %w", err)
	}
	c.logger.WithContext(ctx).Info("Connected to graph store")
	return nil
}

func (c *Client) Stop(ctx context.Context) error {
	return c.Close(ctx)
}

// Session creates a new session with the given access mode
func (c *Client) Session(ctx context.Context, accessMode neo4j.AccessMode) neo4j.SessionWithContext {
	return c.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   accessMode,
		DatabaseName: c.database,
	})
}

// ExecuteWrite runs a write transaction. Each call commits on its own.
func (c *Client) ExecuteWrite(ctx context.Context, work func(tx neo4j.ManagedTransaction) (any, error)) (any, error) {
	ctx, span := tracing.StartSpan(ctx, "graph.Client.ExecuteWrite")
	defer span.End()

	session := c.Session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	res, err := session.ExecuteWrite(ctx, work)
	return res, tracing.RecordError(span, err)
}

// ExecuteRead runs a read transaction
func (c *Client) ExecuteRead(ctx context.Context, work func(tx neo4j.ManagedTransaction) (any, error)) (any, error) {
	ctx, span := tracing.StartSpan(ctx, "graph.Client.ExecuteRead")
	defer span.End()

	session := c.Session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	res, err := session.ExecuteRead(ctx, work)
	return res, tracing.RecordError(span, err)
}

// Exec runs a statement in its own write transaction and discards the result.
func (c *Client) Exec(ctx context.Context, cypher string, params map[string]any) error {
	_, err := c.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	return err
}

// Collect runs a read statement and returns every record.
func (c *Client) Collect(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	res, err := c.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return result.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}
	return res.([]*neo4j.Record), nil
}
