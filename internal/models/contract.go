package models

import "time"

// DeployedContract is the storage shape of an instance deployed through a
// factory.
type DeployedContract struct {
	// Identification
	ContractID        string `json:"contract_id"`
	FactoryContractID string `json:"factory_contract_id"`
	Family            string `json:"family"` // token, nft or governance
	Kind              string `json:"kind"`
	Sequence          uint64 `json:"sequence"` // position in the factory's index

	// Deployment metadata
	DeployedAtLedger uint32    `json:"deployed_at_ledger"`
	DeployedAtTime   time.Time `json:"deployed_at_time"`
	Deployer         string    `json:"deployer"`
	Principal        string    `json:"principal"`
	WasmHash         string    `json:"wasm_hash,omitempty"`

	Name   string `json:"name,omitempty"`
	Symbol string `json:"symbol,omitempty"`

	// Constructor arguments keyed by parameter name
	InitParams      map[string]interface{} `json:"init_params,omitempty"`
	CtorArgsVersion int                    `json:"ctor_args_version"`
}
