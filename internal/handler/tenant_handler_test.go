package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fx0883/productsShow/internal/apperrors"
	"github.com/fx0883/productsShow/internal/model"
)

type fakeTenants struct {
	byID    map[uint]*model.Tenant
	deleted []uint
}

func (f *fakeTenants) Create(ctx context.Context, tenant *model.Tenant) error {
	tenant.ID = uint(len(f.byID) + 1)
	f.byID[tenant.ID] = tenant
	return nil
}

func (f *fakeTenants) GetByID(ctx context.Context, id uint) (*model.Tenant, error) {
	tenant, ok := f.byID[id]
	if !ok {
		return nil, apperrors.ErrTenantNotFound
	}
	return tenant, nil
}

func (f *fakeTenants) List(ctx context.Context) ([]model.Tenant, error) {
	var out []model.Tenant
	for _, tenant := range f.byID {
		out = append(out, *tenant)
	}
	return out, nil
}

func (f *fakeTenants) Update(ctx context.Context, tenant *model.Tenant) error {
	f.byID[tenant.ID] = tenant
	return nil
}

func (f *fakeTenants) SoftDelete(ctx context.Context, id uint) error {
	tenant, ok := f.byID[id]
	if !ok {
		return apperrors.ErrTenantNotFound
	}
	tenant.Status = model.TenantStatusDeleted
	tenant.IsDeleted = true
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeLedger struct {
	quota       *model.TenantQuota
	recomputed  []uint
	recomputeMB float64
}

func (f *fakeLedger) QuotaFor(ctx context.Context, tenantID uint) (*model.TenantQuota, error) {
	return f.quota, nil
}

func (f *fakeLedger) RecomputeStorageUsage(ctx context.Context, tenantID uint) (float64, error) {
	f.recomputed = append(f.recomputed, tenantID)
	return f.recomputeMB, nil
}

type fakeCaps struct {
	updated *model.TenantQuota
}

func (f *fakeCaps) UpdateCaps(ctx context.Context, quota *model.TenantQuota) error {
	f.updated = quota
	return nil
}

func newTenantFixture() (*fakeTenants, *fakeLedger, *fakeCaps, *TenantHandler) {
	tenants := &fakeTenants{byID: map[uint]*model.Tenant{
		1: {ID: 1, Name: "acme", Status: model.TenantStatusActive},
	}}
	ledger := &fakeLedger{quota: &model.TenantQuota{
		TenantID:     1,
		MaxUsers:     10,
		MaxAdmins:    2,
		MaxStorageMB: 1024,
		MaxProducts:  100,
	}}
	caps := &fakeCaps{}
	return tenants, ledger, caps, NewTenantHandler(tenants, ledger, caps)
}

func TestCreateTenant(t *testing.T) {
	tenants, _, _, h := newTenantFixture()

	c, rec := newTestContext(t, http.MethodPost, "/api/tenants", `{"name":"globex"}`)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, tenants.byID, 2)
	created := tenants.byID[2]
	assert.Equal(t, "globex", created.Name)
	assert.Equal(t, model.TenantStatusActive, created.Status)
}

func TestCreateTenant_MissingName(t *testing.T) {
	_, _, _, h := newTenantFixture()

	c, rec := newTestContext(t, http.MethodPost, "/api/tenants", `{}`)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateTenant_InvalidStatus(t *testing.T) {
	_, _, _, h := newTenantFixture()

	c, rec := newTestContext(t, http.MethodPut, "/api/tenants/1", `{"name":"acme","status":"deleted"}`)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Update(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateTenant_Suspend(t *testing.T) {
	tenants, _, _, h := newTenantFixture()

	c, rec := newTestContext(t, http.MethodPut, "/api/tenants/1", `{"name":"acme","status":"suspended"}`)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Update(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.TenantStatusSuspended, tenants.byID[1].Status)
}

func TestDeleteTenant_SoftDeletes(t *testing.T) {
	tenants, _, _, h := newTenantFixture()

	c, rec := newTestContext(t, http.MethodDelete, "/api/tenants/1", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Delete(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []uint{1}, tenants.deleted)
	assert.Equal(t, model.TenantStatusDeleted, tenants.byID[1].Status)
	assert.True(t, tenants.byID[1].IsDeleted)
}

func TestGetQuota_RecomputesStorage(t *testing.T) {
	_, ledger, _, h := newTenantFixture()
	ledger.recomputeMB = 12.5

	c, rec := newTestContext(t, http.MethodGet, "/api/tenants/1/quota", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.GetQuota(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []uint{1}, ledger.recomputed)
}

func TestGetQuota_UnknownTenant(t *testing.T) {
	_, _, _, h := newTenantFixture()

	c, rec := newTestContext(t, http.MethodGet, "/api/tenants/9/quota", "")
	c.SetParamNames("id")
	c.SetParamValues("9")
	require.NoError(t, h.GetQuota(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateQuota(t *testing.T) {
	_, _, caps, h := newTenantFixture()

	c, rec := newTestContext(t, http.MethodPut, "/api/tenants/1/quota",
		`{"max_users":20,"max_admins":4,"max_storage_mb":2048,"max_products":500}`)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.UpdateQuota(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, caps.updated)
	assert.Equal(t, 20, caps.updated.MaxUsers)
	assert.Equal(t, 4, caps.updated.MaxAdmins)
	assert.Equal(t, 2048, caps.updated.MaxStorageMB)
	assert.Equal(t, 500, caps.updated.MaxProducts)
}

func TestUpdateQuota_RejectsNonPositiveCaps(t *testing.T) {
	_, _, caps, h := newTenantFixture()

	c, rec := newTestContext(t, http.MethodPut, "/api/tenants/1/quota",
		`{"max_users":0,"max_admins":2,"max_storage_mb":1024,"max_products":100}`)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.UpdateQuota(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, caps.updated)
}
