package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stellar/go/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio/internal/address"
	"studio/internal/address/addrtest"
	"studio/internal/bootstrap"
	"studio/internal/manifest"
	"studio/internal/models"
	"studio/internal/orchestrator"
	"studio/internal/services"
	"studio/internal/storage"
)

type fixture struct {
	server *Server
	studio *bootstrap.Studio
	repo   *storage.MemoryRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	repo := storage.NewMemoryRepository()
	orch := orchestrator.New([]services.Service{services.NewPersistenceService(repo, nil)})
	studio, err := bootstrap.New(bootstrap.Options{
		NetworkPassphrase: network.TestNetworkPassphrase,
		Admin:             addrtest.Account(1),
		Publisher:         orch,
	})
	require.NoError(t, err)

	deployments := make([]manifest.Deployment, 0, 3)
	for _, seed := range []string{"a", "b", "c"} {
		deployments = append(deployments, manifest.Deployment{
			Factory:  "token",
			Deployer: addrtest.Account(2).String(),
			Config: map[string]any{
				"kind":    "pausable",
				"seed":    seed,
				"admin":   addrtest.Account(3).String(),
				"manager": addrtest.Account(4).String(),
				"name":    "Token " + seed,
				"symbol":  "T",
			},
		})
	}
	require.NoError(t, studio.Apply(ctx, &manifest.Manifest{
		Code: []manifest.Code{
			{Name: "token-factory", Contract: "factory/token"},
			{Name: "pausable", Contract: "token/pausable"},
		},
		Factories: []manifest.Factory{
			{Role: "token", Code: "token-factory", Wasm: map[string]string{"pausable": "pausable"}},
		},
		Deployments: deployments,
	}))

	return &fixture{
		server: NewServer(0, studio, repo),
		studio: studio,
		repo:   repo,
	}
}

func (f *fixture) get(t *testing.T, path string, out interface{}) int {
	t.Helper()
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

func TestIndexAndHealth(t *testing.T) {
	f := newFixture(t)

	var info map[string]interface{}
	assert.Equal(t, http.StatusOK, f.get(t, "/", &info))
	assert.Equal(t, f.studio.Master.Address().String(), info["master"])

	var health map[string]interface{}
	assert.Equal(t, http.StatusOK, f.get(t, "/health", &health))
	assert.Equal(t, "healthy", health["status"])

	assert.Equal(t, http.StatusOK, f.get(t, "/metrics", nil))
}

func TestFactories(t *testing.T) {
	f := newFixture(t)

	var list models.FactoryListResponse
	require.Equal(t, http.StatusOK, f.get(t, "/factories", &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "token", list.Factories[0].Role)
	assert.Equal(t, addrtest.Account(1).String(), list.Factories[0].Admin)
	assert.Equal(t, 3, list.Factories[0].Deployments)

	var one models.FactoryResponse
	require.Equal(t, http.StatusOK, f.get(t, "/factories/token", &one))
	assert.Equal(t, list.Factories[0].Address, one.Address)

	var errResp models.ErrorResponse
	assert.Equal(t, http.StatusNotFound, f.get(t, "/factories/nft", &errResp))
	assert.Equal(t, 13, errResp.Code)
	assert.Equal(t, http.StatusBadRequest, f.get(t, "/factories/bank", &errResp))
}

func TestFactoryState(t *testing.T) {
	f := newFixture(t)

	var wasm models.WasmResponse
	require.Equal(t, http.StatusOK, f.get(t, "/factories/token/wasm", &wasm))
	h, ok := f.studio.Code("pausable")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"pausable": h.String()}, wasm.Entries)

	var count models.CountResponse
	require.Equal(t, http.StatusOK, f.get(t, "/factories/token/count", &count))
	assert.Equal(t, 3, count.Total)
	assert.Equal(t, 3, count.ByKind["pausable"])
	assert.Equal(t, 0, count.ByKind["capped"])

	var adm models.AdminResponse
	require.Equal(t, http.StatusOK, f.get(t, "/factories/token/admin", &adm))
	assert.Equal(t, addrtest.Account(1).String(), adm.Admin)
	assert.Empty(t, adm.Pending)

	require.NoError(t, f.studio.Master.TransferAdmin(addrtest.Account(1), addrtest.Account(8)))
	require.Equal(t, http.StatusOK, f.get(t, "/admin", &adm))
	assert.Equal(t, f.studio.Master.Address().String(), adm.Contract)
	assert.Equal(t, addrtest.Account(8).String(), adm.Pending)
}

func TestDeploymentPagination(t *testing.T) {
	f := newFixture(t)

	var seen []string
	cursor := ""
	for {
		var page models.DeploymentListResponse
		path := "/factories/token/deployments?limit=2&cursor=" + url.QueryEscape(cursor)
		require.Equal(t, http.StatusOK, f.get(t, path, &page))
		for _, d := range page.Deployments {
			seen = append(seen, d.Name)
		}
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	assert.Equal(t, []string{"Token a", "Token b", "Token c"}, seen)

	var errResp models.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, f.get(t, "/factories/token/deployments?cursor=garbage", &errResp))
}

func TestDeploymentFilters(t *testing.T) {
	f := newFixture(t)

	var page models.DeploymentListResponse
	require.Equal(t, http.StatusOK, f.get(t, "/factories/token/deployments/kind/pausable", &page))
	assert.Equal(t, 3, page.Count)

	require.Equal(t, http.StatusOK, f.get(t, "/factories/token/deployments/kind/capped", &page))
	assert.Zero(t, page.Count)

	var errResp models.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, f.get(t, "/factories/token/deployments/kind/royalties", &errResp))

	require.Equal(t, http.StatusOK, f.get(t, "/factories/token/deployments/principal/"+addrtest.Account(3).String(), &page))
	assert.Equal(t, 3, page.Count)

	require.Equal(t, http.StatusOK, f.get(t, "/factories/token/deployments/principal/"+addrtest.Account(2).String(), &page))
	assert.Zero(t, page.Count)

	assert.Equal(t, http.StatusBadRequest, f.get(t, "/factories/token/deployments/principal/nope", &errResp))
}

func TestMirror(t *testing.T) {
	f := newFixture(t)

	tokens, err := f.studio.TokenFactory()
	require.NoError(t, err)
	addr, err := tokens.Derive(address.SaltFromSeed("b"))
	require.NoError(t, err)

	var contract models.DeployedContract
	require.Equal(t, http.StatusOK, f.get(t, "/contracts/"+addr.String(), &contract))
	assert.Equal(t, "Token b", contract.Name)
	assert.Equal(t, tokens.Address().String(), contract.FactoryContractID)
	assert.Equal(t, uint64(1), contract.Sequence)

	var errResp models.ErrorResponse
	assert.Equal(t, http.StatusNotFound, f.get(t, "/contracts/missing", &errResp))

	var evs struct {
		Events []models.ContractEvent `json:"events"`
		Total  int                    `json:"total"`
	}
	require.Equal(t, http.StatusOK, f.get(t, "/events?type=deployed", &evs))
	assert.Equal(t, 3, evs.Total)

	require.Equal(t, http.StatusOK, f.get(t, "/events?contract="+f.studio.Master.Address().String(), &evs))
	assert.Equal(t, 1, evs.Total)
	assert.Equal(t, "factory_deployed", evs.Events[0].EventType)
}
