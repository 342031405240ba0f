// Package master deploys the token, NFT and governance factories and keeps
// the directory of the current instance for each role.
package master

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/stellar/go/xdr"

	"studio/internal/address"
	"studio/internal/admin"
	"studio/internal/deployer"
	"studio/internal/errs"
	"studio/internal/events"
	"studio/internal/host"
	"studio/internal/scval"
)

const family = "master"

// FactoryInfo describes one factory deployment.
type FactoryInfo struct {
	Address    address.Address `json:"address"`
	Role       Role            `json:"role"`
	CodeHash   address.Hash    `json:"code_hash"`
	Deployer   address.Address `json:"deployer"`
	Salt       address.Salt    `json:"salt"`
	Ledger     uint32          `json:"ledger"`
	DeployedAt time.Time       `json:"deployed_at"`
}

// Options configures a Master.
type Options struct {
	Address   address.Address
	Admin     address.Address
	NetworkID [32]byte
	Substrate host.Substrate
	Publisher events.Publisher
	Clock     func() time.Time
}

// Master owns the factory directory and its own admin guard. It never
// controls the guards of the factories it deploys.
type Master struct {
	mu        sync.Mutex
	addr      address.Address
	guard     *admin.Guard
	deployer  *deployer.Deployer
	directory map[Role]FactoryInfo
	history   []FactoryInfo
	paused    bool
	publisher events.Publisher
	clock     func() time.Time
	ledger    func() uint32
}

// New creates a Master at opts.Address administered by opts.Admin.
func New(opts Options) (*Master, error) {
	if !opts.Address.IsContract() {
		return nil, fmt.Errorf("master address %q is not a contract", opts.Address)
	}
	if !opts.Admin.Valid() {
		return nil, fmt.Errorf("master admin %q is not an address", opts.Admin)
	}
	if opts.Substrate == nil {
		return nil, fmt.Errorf("master needs a substrate")
	}

	m := &Master{
		addr:      opts.Address,
		guard:     admin.NewGuard(opts.Admin),
		deployer:  deployer.New(opts.Address, opts.NetworkID, opts.Substrate),
		directory: make(map[Role]FactoryInfo),
		publisher: opts.Publisher,
		clock:     opts.Clock,
		ledger:    func() uint32 { return 0 },
	}
	if m.publisher == nil {
		m.publisher = events.Discard
	}
	if m.clock == nil {
		m.clock = time.Now
	}
	if lr, ok := opts.Substrate.(interface{ Ledger() uint32 }); ok {
		m.ledger = lr.Ledger
	}
	return m, nil
}

// Address returns the master's contract address.
func (m *Master) Address() address.Address {
	return m.addr
}

// DeployFactory deploys codeHash as the factory for role, with caller as the
// new factory's admin. A filled role fails with ErrRoleAlreadyFilled.
func (m *Master) DeployFactory(ctx context.Context, caller address.Address, role Role, codeHash address.Hash, salt address.Salt) (address.Address, error) {
	return m.deployFactory(ctx, caller, role, codeHash, salt, false)
}

// ReplaceFactory deploys a fresh factory for an already filled role and
// points the directory at it. The previous instance keeps running.
func (m *Master) ReplaceFactory(ctx context.Context, caller address.Address, role Role, codeHash address.Hash, salt address.Salt) (address.Address, error) {
	return m.deployFactory(ctx, caller, role, codeHash, salt, true)
}

func (m *Master) DeployTokenFactory(ctx context.Context, caller address.Address, codeHash address.Hash, salt address.Salt) (address.Address, error) {
	return m.DeployFactory(ctx, caller, RoleToken, codeHash, salt)
}

func (m *Master) DeployNFTFactory(ctx context.Context, caller address.Address, codeHash address.Hash, salt address.Salt) (address.Address, error) {
	return m.DeployFactory(ctx, caller, RoleNFT, codeHash, salt)
}

func (m *Master) DeployGovernanceFactory(ctx context.Context, caller address.Address, codeHash address.Hash, salt address.Salt) (address.Address, error) {
	return m.DeployFactory(ctx, caller, RoleGovernance, codeHash, salt)
}

func (m *Master) deployFactory(ctx context.Context, caller address.Address, role Role, codeHash address.Hash, salt address.Salt, replace bool) (address.Address, error) {
	m.mu.Lock()
	info, previous, err := m.deployLocked(ctx, caller, role, codeHash, salt, replace)
	m.mu.Unlock()
	if err != nil {
		return "", err
	}

	ev := events.New(events.TypeFactoryDeployed, family, m.addr, info.DeployedAt)
	ev.Ledger = info.Ledger
	ev.Actor = caller
	ev.Kind = role.String()
	ev.Address = info.Address
	ev.Principal = caller
	ev.CodeHash = codeHash.String()
	ev.Target = previous
	m.publisher.Publish(ctx, ev)

	slog.Info("✅ Factory deployed",
		"master", m.addr,
		"role", role.String(),
		"address", info.Address,
		"admin", caller,
		"replaced", previous,
	)
	return info.Address, nil
}

func (m *Master) deployLocked(ctx context.Context, caller address.Address, role Role, codeHash address.Hash, salt address.Salt, replace bool) (FactoryInfo, address.Address, error) {
	if err := m.guard.Require(caller); err != nil {
		return FactoryInfo{}, "", err
	}
	if m.paused {
		return FactoryInfo{}, "", fmt.Errorf("%w: master", errs.ErrPaused)
	}
	if !role.Valid() {
		return FactoryInfo{}, "", errs.InvalidField("role", "unknown role %d", uint8(role))
	}

	current, filled := m.directory[role]
	switch {
	case filled && !replace:
		return FactoryInfo{}, "", fmt.Errorf("%w: %s factory at %s", errs.ErrRoleAlreadyFilled, role, current.Address)
	case !filled && replace:
		return FactoryInfo{}, "", fmt.Errorf("%w: %s", errs.ErrRoleNotFilled, role)
	}
	if codeHash.IsZero() {
		return FactoryInfo{}, "", fmt.Errorf("%w: zero code hash", errs.ErrInvalidHash)
	}

	adminArg, err := scval.FromAddress(caller)
	if err != nil {
		return FactoryInfo{}, "", err
	}
	addr, err := m.deployer.Deploy(ctx, caller, salt, codeHash, []xdr.ScVal{adminArg})
	if err != nil {
		return FactoryInfo{}, "", err
	}

	info := FactoryInfo{
		Address:    addr,
		Role:       role,
		CodeHash:   codeHash,
		Deployer:   caller,
		Salt:       salt,
		Ledger:     m.ledger(),
		DeployedAt: m.clock(),
	}
	m.directory[role] = info
	m.history = append(m.history, info)
	return info, current.Address, nil
}

// Factory returns the directory entry for role.
func (m *Master) Factory(role Role) (FactoryInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.directory[role]
	return info, ok
}

func (m *Master) TokenFactory() (address.Address, bool) {
	info, ok := m.Factory(RoleToken)
	return info.Address, ok
}

func (m *Master) NFTFactory() (address.Address, bool) {
	info, ok := m.Factory(RoleNFT)
	return info.Address, ok
}

func (m *Master) GovernanceFactory() (address.Address, bool) {
	info, ok := m.Factory(RoleGovernance)
	return info.Address, ok
}

// DeployedFactories returns the current directory in role order.
func (m *Master) DeployedFactories() []FactoryInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]FactoryInfo, 0, len(m.directory))
	for _, r := range Roles {
		if info, ok := m.directory[r]; ok {
			out = append(out, info)
		}
	}
	return out
}

// History returns every factory deployment, including replaced ones, in
// deployment order.
func (m *Master) History() []FactoryInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]FactoryInfo(nil), m.history...)
}

func (m *Master) Admin() address.Address {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.guard.Admin()
}

func (m *Master) PendingAdmin() (address.Address, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.guard.Pending()
}

func (m *Master) AdminState() admin.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.guard.State()
}

// TransferAdmin proposes newAdmin as the master's admin.
func (m *Master) TransferAdmin(caller, newAdmin address.Address) error {
	return m.adminStep(events.TypeAdminTransferInitiated, caller, func() (address.Address, error) {
		return newAdmin, m.guard.Transfer(caller, newAdmin)
	})
}

// AcceptAdmin completes a pending transfer of the master.
func (m *Master) AcceptAdmin(caller address.Address) error {
	return m.adminStep(events.TypeAdminTransferred, caller, func() (address.Address, error) {
		return caller, m.guard.Accept(caller)
	})
}

// CancelTransfer drops a pending transfer of the master.
func (m *Master) CancelTransfer(caller address.Address) error {
	return m.adminStep(events.TypeAdminTransferCancelled, caller, func() (address.Address, error) {
		pending, _ := m.guard.Pending()
		return pending, m.guard.Cancel(caller)
	})
}

// Pause stops factory deployments.
func (m *Master) Pause(caller address.Address) error {
	return m.adminStep(events.TypePaused, caller, func() (address.Address, error) {
		if err := m.guard.Require(caller); err != nil {
			return "", err
		}
		m.paused = true
		return "", nil
	})
}

// Unpause resumes factory deployments.
func (m *Master) Unpause(caller address.Address) error {
	return m.adminStep(events.TypeUnpaused, caller, func() (address.Address, error) {
		if err := m.guard.Require(caller); err != nil {
			return "", err
		}
		m.paused = false
		return "", nil
	})
}

func (m *Master) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// adminStep runs step under the lock and publishes t if it succeeds.
func (m *Master) adminStep(t events.Type, actor address.Address, step func() (address.Address, error)) error {
	m.mu.Lock()
	target, err := step()
	m.mu.Unlock()
	if err != nil {
		return err
	}

	ev := events.New(t, family, m.addr, m.clock())
	ev.Ledger = m.ledger()
	ev.Actor = actor
	ev.Target = target
	m.publisher.Publish(context.Background(), ev)
	return nil
}
