package models

import (
	"time"
)

// DeploymentResponse is one deployment record in API responses.
type DeploymentResponse struct {
	Address       string    `json:"address"`
	Kind          string    `json:"kind"`
	Deployer      string    `json:"deployer"`
	Principal     string    `json:"principal"`
	Sequence      uint64    `json:"sequence"`
	CreatedLedger uint32    `json:"created_ledger"`
	CreatedAt     time.Time `json:"created_at"`
	Name          string    `json:"name,omitempty"`
	Symbol        string    `json:"symbol,omitempty"`
}

// DeploymentListResponse is a page of deployments.
type DeploymentListResponse struct {
	Factory     string               `json:"factory"`
	Deployments []DeploymentResponse `json:"deployments"`
	Count       int                  `json:"count"`
	NextCursor  string               `json:"next_cursor,omitempty"`
}

// FactoryResponse describes a factory registered with the master.
type FactoryResponse struct {
	Role       string    `json:"role"`
	Address    string    `json:"address"`
	CodeHash   string    `json:"code_hash"`
	Deployer   string    `json:"deployer"`
	Salt       string    `json:"salt"`
	Ledger     uint32    `json:"ledger"`
	DeployedAt time.Time `json:"deployed_at"`

	// Live state, present when the factory is reachable
	Admin        string `json:"admin,omitempty"`
	PendingAdmin string `json:"pending_admin,omitempty"`
	Paused       bool   `json:"paused"`
	Deployments  int    `json:"deployments"`
}

// FactoryListResponse lists the master's directory.
type FactoryListResponse struct {
	Master    string            `json:"master"`
	Factories []FactoryResponse `json:"factories"`
	Total     int               `json:"total"`
}

// CountResponse reports how many instances a factory deployed.
type CountResponse struct {
	Factory string         `json:"factory"`
	Total   int            `json:"total"`
	ByKind  map[string]int `json:"by_kind"`
}

// WasmResponse lists a factory's kind to code hash registry.
type WasmResponse struct {
	Factory string            `json:"factory"`
	Entries map[string]string `json:"entries"`
}

// AdminResponse describes a contract's admin state.
type AdminResponse struct {
	Contract string `json:"contract"`
	Admin    string `json:"admin"`
	Pending  string `json:"pending_admin,omitempty"`
	Paused   bool   `json:"paused"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}
