// Package bootstrap assembles a running studio: an in-process host, the
// master factory, the contract constructors bound to uploaded code and the
// factories described by a manifest.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"studio/internal/address"
	"studio/internal/errs"
	"studio/internal/events"
	"studio/internal/factory"
	"studio/internal/host"
	"studio/internal/instances"
	"studio/internal/manifest"
	"studio/internal/master"
)

// MasterSeed seeds the master's address under the admin account.
const MasterSeed = "studio/master"

// Options configures a Studio.
type Options struct {
	NetworkPassphrase string
	Admin             address.Address
	Publisher         events.Publisher
	Clock             func() time.Time
}

// Studio owns the host and the master deployed on it.
type Studio struct {
	Host   *host.Memory
	Master *master.Master

	admin address.Address
	env   instances.Env

	mu    sync.RWMutex
	codes map[string]address.Hash
}

// New creates a host and a master administered by opts.Admin.
func New(opts Options) (*Studio, error) {
	if !opts.Admin.Valid() {
		return nil, fmt.Errorf("admin %q is not an address", opts.Admin)
	}
	if opts.Publisher == nil {
		opts.Publisher = events.Discard
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	h := host.NewMemory(opts.NetworkPassphrase, host.WithClock(opts.Clock))
	masterAddr, err := address.Derive(h.NetworkID(), opts.Admin, address.SaltFromSeed(MasterSeed))
	if err != nil {
		return nil, fmt.Errorf("failed to derive master address: %w", err)
	}

	m, err := master.New(master.Options{
		Address:   masterAddr,
		Admin:     opts.Admin,
		NetworkID: h.NetworkID(),
		Substrate: h,
		Publisher: opts.Publisher,
		Clock:     opts.Clock,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("✅ Master factory ready", "address", masterAddr, "admin", opts.Admin)
	return &Studio{
		Host:   h,
		Master: m,
		admin:  opts.Admin,
		env: instances.Env{
			NetworkID: h.NetworkID(),
			Substrate: h,
			Publisher: opts.Publisher,
			Clock:     opts.Clock,
		},
		codes: make(map[string]address.Hash),
	}, nil
}

// Admin returns the account the studio was bootstrapped with.
func (s *Studio) Admin() address.Address {
	return s.admin
}

// Constructor returns the behaviour of a contract name: "factory/<role>"
// for factories or "<family>/<kind>" for deployable instances.
func (s *Studio) Constructor(contract string) (host.Constructor, error) {
	family, kind, ok := strings.Cut(strings.ToLower(strings.TrimSpace(contract)), "/")
	if !ok {
		return nil, fmt.Errorf("contract %q: expected <family>/<kind>", contract)
	}

	switch family {
	case "factory":
		role, err := master.ParseRole(kind)
		if err != nil {
			return nil, fmt.Errorf("contract %q: %w", contract, err)
		}
		switch role {
		case master.RoleToken:
			return instances.TokenFactory(s.env), nil
		case master.RoleNFT:
			return instances.NFTFactory(s.env), nil
		default:
			return instances.GovernanceFactory(s.env), nil
		}
	case "token":
		k, err := factory.ParseTokenKind(kind)
		if err != nil {
			return nil, fmt.Errorf("contract %q: %w", contract, err)
		}
		return instances.ForToken(k), nil
	case "nft":
		k, err := factory.ParseNFTKind(kind)
		if err != nil {
			return nil, fmt.Errorf("contract %q: %w", contract, err)
		}
		return instances.ForNFT(k), nil
	case "governance":
		k, err := factory.ParseGovernanceKind(kind)
		if err != nil {
			return nil, fmt.Errorf("contract %q: %w", contract, err)
		}
		return instances.ForGovernance(k), nil
	default:
		return nil, fmt.Errorf("contract %q: unknown family %q", contract, family)
	}
}

// Upload registers code under name and binds the contract's constructor to
// it. Empty code uploads the contract name itself.
func (s *Studio) Upload(ctx context.Context, name, contract string, code []byte) (address.Hash, error) {
	ctor, err := s.Constructor(contract)
	if err != nil {
		return address.Hash{}, err
	}
	if len(code) == 0 {
		code = []byte(contract)
	}

	h, err := s.Host.RegisterCode(ctx, code)
	if err != nil {
		return address.Hash{}, fmt.Errorf("failed to upload %s: %w", name, err)
	}
	s.Host.SetConstructor(h, ctor)

	s.mu.Lock()
	s.codes[name] = h
	s.mu.Unlock()

	slog.Info("Code uploaded", "name", name, "contract", contract, "hash", h.String())
	return h, nil
}

// Code returns the hash uploaded under name.
func (s *Studio) Code(name string) (address.Hash, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.codes[name]
	return h, ok
}

// TokenFactory returns the token factory the master currently points at.
func (s *Studio) TokenFactory() (*factory.TokenFactory, error) {
	return lookup[*factory.TokenFactory](s, master.RoleToken)
}

// NFTFactory returns the NFT factory the master currently points at.
func (s *Studio) NFTFactory() (*factory.NFTFactory, error) {
	return lookup[*factory.NFTFactory](s, master.RoleNFT)
}

// GovernanceFactory returns the governance factory the master currently
// points at.
func (s *Studio) GovernanceFactory() (*factory.GovernanceFactory, error) {
	return lookup[*factory.GovernanceFactory](s, master.RoleGovernance)
}

func lookup[T any](s *Studio, role master.Role) (T, error) {
	var zero T
	info, ok := s.Master.Factory(role)
	if !ok {
		return zero, fmt.Errorf("%w: %s", errs.ErrRoleNotFilled, role)
	}
	f, err := instances.As[T](s.Host, info.Address)
	if err != nil {
		return zero, fmt.Errorf("%s factory at %s: %w", role, info.Address, err)
	}
	return f, nil
}

// SetWasm points kind (by name) at h on the factory filling role.
func (s *Studio) SetWasm(role master.Role, caller address.Address, kind string, h address.Hash) error {
	switch role {
	case master.RoleToken:
		f, err := s.TokenFactory()
		if err != nil {
			return err
		}
		k, err := factory.ParseTokenKind(kind)
		if err != nil {
			return errs.InvalidField("kind", "%v", err)
		}
		return f.SetWasm(caller, k, h)
	case master.RoleNFT:
		f, err := s.NFTFactory()
		if err != nil {
			return err
		}
		k, err := factory.ParseNFTKind(kind)
		if err != nil {
			return errs.InvalidField("kind", "%v", err)
		}
		return f.SetWasm(caller, k, h)
	case master.RoleGovernance:
		f, err := s.GovernanceFactory()
		if err != nil {
			return err
		}
		k, err := factory.ParseGovernanceKind(kind)
		if err != nil {
			return errs.InvalidField("kind", "%v", err)
		}
		return f.SetWasm(caller, k, h)
	default:
		return fmt.Errorf("unknown factory role %s", role)
	}
}

// Deploy decodes raw with the decoder of role's family and deploys it. A
// "seed" key is turned into the salt it derives.
func (s *Studio) Deploy(ctx context.Context, role master.Role, deployer address.Address, raw map[string]any) (address.Address, error) {
	raw, err := withSalt(raw)
	if err != nil {
		return "", err
	}

	switch role {
	case master.RoleToken:
		f, err := s.TokenFactory()
		if err != nil {
			return "", err
		}
		cfg, err := factory.DecodeTokenConfig(raw)
		if err != nil {
			return "", err
		}
		return f.DeployToken(ctx, deployer, cfg)
	case master.RoleNFT:
		f, err := s.NFTFactory()
		if err != nil {
			return "", err
		}
		cfg, err := factory.DecodeNFTConfig(raw)
		if err != nil {
			return "", err
		}
		return f.DeployNFT(ctx, deployer, cfg)
	case master.RoleGovernance:
		f, err := s.GovernanceFactory()
		if err != nil {
			return "", err
		}
		cfg, err := factory.DecodeGovernanceConfig(raw)
		if err != nil {
			return "", err
		}
		return f.DeployGovernance(ctx, deployer, cfg)
	default:
		return "", fmt.Errorf("unknown factory role %s", role)
	}
}

func withSalt(raw map[string]any) (map[string]any, error) {
	seed, ok := raw["seed"]
	if !ok {
		return raw, nil
	}
	if _, both := raw["salt"]; both {
		return nil, errs.InvalidField("seed", "seed and salt are mutually exclusive")
	}
	text, ok := seed.(string)
	if !ok || text == "" {
		return nil, errs.InvalidField("seed", "must be a non-empty string")
	}

	out := make(map[string]any, len(raw))
	for k, v := range raw {
		if k != "seed" {
			out[k] = v
		}
	}
	out["salt"] = address.SaltFromSeed(text).String()
	return out, nil
}

// Apply uploads the manifest's code, deploys its factories through the
// master, fills their registries and runs the initial deployments, in that
// order. It stops at the first failure.
func (s *Studio) Apply(ctx context.Context, m *manifest.Manifest) error {
	for _, c := range m.Code {
		var code []byte
		if path := m.CodePath(c); path != "" {
			b, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read code %s: %w", c.Name, err)
			}
			code = b
		}
		if _, err := s.Upload(ctx, c.Name, c.Contract, code); err != nil {
			return err
		}
	}

	for _, f := range m.Factories {
		role, err := master.ParseRole(f.Role)
		if err != nil {
			return err
		}
		code, _ := s.Code(f.Code)
		seed := f.Seed
		if seed == "" {
			seed = "studio/" + role.String()
		}

		addr, err := s.Master.DeployFactory(ctx, s.admin, role, code, address.SaltFromSeed(seed))
		if err != nil {
			return fmt.Errorf("failed to deploy %s factory: %w", role, err)
		}
		slog.Info("✅ Factory deployed from manifest", "role", role, "address", addr)

		for kind, name := range f.Wasm {
			h, _ := s.Code(name)
			if err := s.SetWasm(role, s.admin, kind, h); err != nil {
				return fmt.Errorf("failed to set %s wasm on %s factory: %w", kind, role, err)
			}
		}
	}

	for i, d := range m.Deployments {
		role, err := master.ParseRole(d.Factory)
		if err != nil {
			return err
		}
		deployer, err := address.Parse(d.Deployer)
		if err != nil {
			return fmt.Errorf("deployments[%d]: %w", i, err)
		}
		addr, err := s.Deploy(ctx, role, deployer, d.Config)
		if err != nil {
			return fmt.Errorf("deployments[%d]: %w", i, err)
		}
		slog.Info("✅ Initial deployment created", "factory", role, "address", addr)
	}
	return nil
}
