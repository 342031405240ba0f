package storage

// Schema creates the mirror tables. Every statement is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS deployed_contracts (
	contract_id         TEXT PRIMARY KEY,
	factory_contract_id TEXT        NOT NULL,
	family              TEXT        NOT NULL,
	kind                TEXT        NOT NULL,
	sequence            BIGINT      NOT NULL,
	deployed_at_ledger  BIGINT      NOT NULL,
	deployed_at_time    TIMESTAMPTZ NOT NULL,
	deployer            TEXT        NOT NULL,
	principal           TEXT        NOT NULL,
	wasm_hash           TEXT        NOT NULL DEFAULT '',
	name                TEXT        NOT NULL DEFAULT '',
	symbol              TEXT        NOT NULL DEFAULT '',
	init_params         JSONB       NOT NULL DEFAULT '{}'::jsonb,
	ctor_args_version   INTEGER     NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_deployed_contracts_factory
	ON deployed_contracts (factory_contract_id, sequence);

CREATE INDEX IF NOT EXISTS idx_deployed_contracts_principal
	ON deployed_contracts (principal);

CREATE TABLE IF NOT EXISTS contract_events (
	id          TEXT PRIMARY KEY,
	contract_id TEXT        NOT NULL,
	family      TEXT        NOT NULL,
	event_type  TEXT        NOT NULL,
	actor       TEXT        NOT NULL DEFAULT '',
	target      TEXT        NOT NULL DEFAULT '',
	ledger_seq  BIGINT      NOT NULL,
	timestamp   TIMESTAMPTZ NOT NULL,
	data        JSONB       NOT NULL DEFAULT '{}'::jsonb
);

CREATE INDEX IF NOT EXISTS idx_contract_events_contract
	ON contract_events (contract_id, timestamp);
`
