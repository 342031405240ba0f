package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"studio/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxPool is the part of *pgxpool.Pool the repository uses.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

var _ pgxPool = (*pgxpool.Pool)(nil)

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	pool pgxPool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, databaseURL string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{
		pool: pool,
	}, nil
}

// Migrate applies Schema.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	slog.Info("✅ Database schema applied")
	return nil
}

const deploymentColumns = `
	contract_id, factory_contract_id, family, kind, sequence,
	deployed_at_ledger, deployed_at_time, deployer, principal, wasm_hash,
	name, symbol, init_params, ctor_args_version`

// SaveDeployment saves a deployed contract. Saving the same contract twice
// is a no-op.
func (r *PostgresRepository) SaveDeployment(ctx context.Context, c *models.DeployedContract) error {
	initParamsJSON, err := marshalJSON(c.InitParams)
	if err != nil {
		return fmt.Errorf("failed to marshal init_params: %w", err)
	}

	query := `INSERT INTO deployed_contracts (` + deploymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (contract_id) DO NOTHING`

	_, err = r.pool.Exec(ctx, query,
		c.ContractID,
		c.FactoryContractID,
		c.Family,
		c.Kind,
		int64(c.Sequence),
		int64(c.DeployedAtLedger),
		c.DeployedAtTime,
		c.Deployer,
		c.Principal,
		c.WasmHash,
		c.Name,
		c.Symbol,
		initParamsJSON,
		c.CtorArgsVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to save deployed contract: %w", err)
	}
	return nil
}

// GetDeployment retrieves a deployed contract by contract ID
func (r *PostgresRepository) GetDeployment(ctx context.Context, contractID string) (*models.DeployedContract, error) {
	query := `SELECT ` + deploymentColumns + ` FROM deployed_contracts WHERE contract_id = $1`

	c, err := scanDeployment(r.pool.QueryRow(ctx, query, contractID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("contract %s: %w", contractID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deployed contract: %w", err)
	}
	return c, nil
}

// ListDeployments lists a factory's deployments in index order. An empty
// factoryID lists every factory.
func (r *PostgresRepository) ListDeployments(ctx context.Context, factoryID string, limit, offset int) ([]*models.DeployedContract, error) {
	query := `SELECT ` + deploymentColumns + ` FROM deployed_contracts
		WHERE ($1 = '' OR factory_contract_id = $1)
		ORDER BY deployed_at_ledger ASC, sequence ASC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, factoryID, limitOrDefault(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list deployed contracts: %w", err)
	}
	defer rows.Close()

	var contracts []*models.DeployedContract
	for rows.Next() {
		c, err := scanDeployment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contract: %w", err)
		}
		contracts = append(contracts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contracts: %w", err)
	}
	return contracts, nil
}

// CountDeployments counts a factory's deployments; an empty factoryID
// counts all of them.
func (r *PostgresRepository) CountDeployments(ctx context.Context, factoryID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM deployed_contracts WHERE ($1 = '' OR factory_contract_id = $1)`,
		factoryID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count deployed contracts: %w", err)
	}
	return n, nil
}

// SaveEvent saves an event. Events are keyed by id so replays are no-ops.
func (r *PostgresRepository) SaveEvent(ctx context.Context, e *models.ContractEvent) error {
	dataJSON, err := marshalJSON(e.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	query := `
		INSERT INTO contract_events (
			id, contract_id, family, event_type, actor, target,
			ledger_seq, timestamp, data
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`

	_, err = r.pool.Exec(ctx, query,
		e.ID,
		e.ContractID,
		e.Family,
		e.EventType,
		e.Actor,
		e.Target,
		int64(e.LedgerSeq),
		e.Timestamp,
		dataJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save contract event: %w", err)
	}
	return nil
}

// ListEvents lists events matching filter, oldest first.
func (r *PostgresRepository) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.ContractEvent, error) {
	var (
		where []string
		args  []any
	)
	if filter.ContractID != "" {
		args = append(args, filter.ContractID)
		where = append(where, fmt.Sprintf("contract_id = $%d", len(args)))
	}
	if filter.EventType != "" {
		args = append(args, filter.EventType)
		where = append(where, fmt.Sprintf("event_type = $%d", len(args)))
	}

	query := `SELECT id, contract_id, family, event_type, actor, target, ledger_seq, timestamp, data
		FROM contract_events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limitOrDefault(filter.Limit), filter.Offset)
	query += fmt.Sprintf(" ORDER BY timestamp ASC, ledger_seq ASC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contract events: %w", err)
	}
	defer rows.Close()

	var events []models.ContractEvent
	for rows.Next() {
		var (
			e        models.ContractEvent
			ledger   int64
			dataJSON []byte
		)
		if err := rows.Scan(&e.ID, &e.ContractID, &e.Family, &e.EventType, &e.Actor, &e.Target, &ledger, &e.Timestamp, &dataJSON); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.LedgerSeq = uint32(ledger)
		if err := json.Unmarshal(dataJSON, &e.Data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal data: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	return events, nil
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

func scanDeployment(row pgx.Row) (*models.DeployedContract, error) {
	var (
		c              models.DeployedContract
		sequence       int64
		ledger         int64
		initParamsJSON []byte
	)
	err := row.Scan(
		&c.ContractID,
		&c.FactoryContractID,
		&c.Family,
		&c.Kind,
		&sequence,
		&ledger,
		&c.DeployedAtTime,
		&c.Deployer,
		&c.Principal,
		&c.WasmHash,
		&c.Name,
		&c.Symbol,
		&initParamsJSON,
		&c.CtorArgsVersion,
	)
	if err != nil {
		return nil, err
	}
	c.Sequence = uint64(sequence)
	c.DeployedAtLedger = uint32(ledger)
	if err := json.Unmarshal(initParamsJSON, &c.InitParams); err != nil {
		return nil, fmt.Errorf("failed to unmarshal init_params: %w", err)
	}
	return &c, nil
}

func marshalJSON(v map[string]interface{}) ([]byte, error) {
	if v == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(v)
}

const defaultListLimit = 50

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return limit
}
