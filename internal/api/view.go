package api

import (
	"fmt"

	"studio/internal/address"
	"studio/internal/errs"
	"studio/internal/factory"
	"studio/internal/index"
	"studio/internal/master"
	"studio/internal/models"
)

// factoryView is the family-independent read surface of a factory.
type factoryView interface {
	Address() address.Address
	Family() string
	Admin() address.Address
	PendingAdmin() (address.Address, bool)
	Paused() bool
	Count() int

	countByKind() map[string]int
	wasm() map[string]string
	deployed(cursor string, limit int) (models.DeploymentListResponse, error)
	byKind(kind, cursor string, limit int) (models.DeploymentListResponse, error)
	byPrincipal(p address.Address, cursor string, limit int) (models.DeploymentListResponse, error)
}

// source is what every factory family exposes through its engine.
type source[K factory.Kind] interface {
	Address() address.Address
	Family() string
	Admin() address.Address
	PendingAdmin() (address.Address, bool)
	Paused() bool
	Count() int
	CountByKind(kind K) int
	WasmEntries() map[K]address.Hash
	Deployed(cursor string, limit int) (index.Page[K], error)
	ByKind(kind K, cursor string, limit int) (index.Page[K], error)
	ByPrincipal(p address.Address, cursor string, limit int) (index.Page[K], error)
}

type view[K factory.Kind] struct {
	source[K]
	kinds []K
	parse func(string) (K, error)
}

func (v view[K]) countByKind() map[string]int {
	out := make(map[string]int, len(v.kinds))
	for _, k := range v.kinds {
		out[k.String()] = v.CountByKind(k)
	}
	return out
}

func (v view[K]) wasm() map[string]string {
	entries := v.WasmEntries()
	out := make(map[string]string, len(entries))
	for k, h := range entries {
		out[k.String()] = h.String()
	}
	return out
}

func (v view[K]) deployed(cursor string, limit int) (models.DeploymentListResponse, error) {
	page, err := v.Deployed(cursor, limit)
	if err != nil {
		return models.DeploymentListResponse{}, err
	}
	return v.render(page), nil
}

func (v view[K]) byKind(kind, cursor string, limit int) (models.DeploymentListResponse, error) {
	k, err := v.parse(kind)
	if err != nil {
		return models.DeploymentListResponse{}, errs.InvalidField("kind", "%v", err)
	}
	page, err := v.ByKind(k, cursor, limit)
	if err != nil {
		return models.DeploymentListResponse{}, err
	}
	return v.render(page), nil
}

func (v view[K]) byPrincipal(p address.Address, cursor string, limit int) (models.DeploymentListResponse, error) {
	page, err := v.ByPrincipal(p, cursor, limit)
	if err != nil {
		return models.DeploymentListResponse{}, err
	}
	return v.render(page), nil
}

func (v view[K]) render(page index.Page[K]) models.DeploymentListResponse {
	out := models.DeploymentListResponse{
		Factory:     v.Address().String(),
		Deployments: make([]models.DeploymentResponse, 0, len(page.Records)),
		NextCursor:  page.NextCursor,
	}
	for _, rec := range page.Records {
		out.Deployments = append(out.Deployments, models.DeploymentResponse{
			Address:       rec.Address.String(),
			Kind:          rec.Kind.String(),
			Deployer:      rec.Deployer.String(),
			Principal:     rec.Principal.String(),
			Sequence:      rec.Sequence,
			CreatedLedger: rec.CreatedLedger,
			CreatedAt:     rec.CreatedAt,
			Name:          rec.Name,
			Symbol:        rec.Symbol,
		})
	}
	out.Count = len(out.Deployments)
	return out
}

// factory resolves the live factory filling role.
func (s *Server) factory(role master.Role) (factoryView, error) {
	switch role {
	case master.RoleToken:
		f, err := s.studio.TokenFactory()
		if err != nil {
			return nil, err
		}
		return view[factory.TokenKind]{source: f, kinds: factory.TokenKinds, parse: factory.ParseTokenKind}, nil
	case master.RoleNFT:
		f, err := s.studio.NFTFactory()
		if err != nil {
			return nil, err
		}
		return view[factory.NFTKind]{source: f, kinds: factory.NFTKinds, parse: factory.ParseNFTKind}, nil
	case master.RoleGovernance:
		f, err := s.studio.GovernanceFactory()
		if err != nil {
			return nil, err
		}
		return view[factory.GovernanceKind]{source: f, kinds: factory.GovernanceKinds, parse: factory.ParseGovernanceKind}, nil
	default:
		return nil, fmt.Errorf("unknown factory role %s", role)
	}
}

func factoryResponse(info master.FactoryInfo, v factoryView) models.FactoryResponse {
	resp := models.FactoryResponse{
		Role:       info.Role.String(),
		Address:    info.Address.String(),
		CodeHash:   info.CodeHash.String(),
		Deployer:   info.Deployer.String(),
		Salt:       info.Salt.String(),
		Ledger:     info.Ledger,
		DeployedAt: info.DeployedAt,
	}
	if v != nil {
		resp.Admin = v.Admin().String()
		if p, ok := v.PendingAdmin(); ok {
			resp.PendingAdmin = p.String()
		}
		resp.Paused = v.Paused()
		resp.Deployments = v.Count()
	}
	return resp
}
