package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fx0883/productsShow/internal/apperrors"
	"github.com/fx0883/productsShow/internal/model"
	"github.com/fx0883/productsShow/internal/quota"
	"github.com/fx0883/productsShow/internal/tenantctx"
	"github.com/fx0883/productsShow/pkg/config"
)

// RepositoryTestSuite runs the scoped gateway, quota and isolation tests
// against a throwaway PostgreSQL container. The suite skips when Docker is
// not available.
type RepositoryTestSuite struct {
	suite.Suite
	pool       *dockertest.Pool
	pgResource *dockertest.Resource
	db         *gorm.DB
	logger     *zap.Logger

	tenants  *TenantRepository
	users    *UserRepository
	quotas   *QuotaRepository
	products *ProductRepository

	tenant1 *model.Tenant
	tenant2 *model.Tenant
}

func TestRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed tests in short mode")
	}
	pool, err := dockertest.NewPool("")
	if err != nil || pool.Client.Ping() != nil {
		t.Skip("Docker not available, skipping container-backed tests")
	}
	suite.Run(t, &RepositoryTestSuite{pool: pool})
}

func (s *RepositoryTestSuite) SetupSuite() {
	s.logger = zap.NewNop()

	var err error
	s.pgResource, err = s.pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "15",
		Env: []string{
			"POSTGRES_PASSWORD=testpass",
			"POSTGRES_USER=testuser",
			"POSTGRES_DB=testdb",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	s.Require().NoError(err)
	s.pgResource.Expire(300)

	dsn := fmt.Sprintf("host=localhost port=%s user=testuser password=testpass dbname=testdb sslmode=disable",
		s.pgResource.GetPort("5432/tcp"))

	s.pool.MaxWait = 120 * time.Second
	err = s.pool.Retry(func() error {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.Ping(); err != nil {
			return err
		}
		s.db = db
		return nil
	})
	s.Require().NoError(err)

	err = s.db.AutoMigrate(
		&model.Tenant{},
		&model.TenantQuota{},
		&model.User{},
		&model.UserToken{},
		&model.Category{},
		&model.Tag{},
		&model.Product{},
		&model.ProductImage{},
		&model.Attribute{},
		&model.AttributeValue{},
		&model.ProductAttribute{},
		&model.ProductVariation{},
		&model.VariationAttribute{},
		&model.ImportRecord{},
		&model.ExportRecord{},
	)
	s.Require().NoError(err)

	s.tenants = NewTenantRepository(s.db, s.logger)
	s.users = NewUserRepository(s.db, s.logger)
	s.quotas = NewQuotaRepository(s.db, quotaDefaults(), s.logger)
	s.products = NewProductRepository(s.db, s.logger)
}

func (s *RepositoryTestSuite) TearDownSuite() {
	if s.pgResource != nil {
		if err := s.pool.Purge(s.pgResource); err != nil {
			s.T().Logf("failed to purge container: %v", err)
		}
	}
}

func (s *RepositoryTestSuite) SetupTest() {
	ctx := context.Background()

	// Wipe all rows between tests; the schema stays.
	for _, table := range []string{
		"variation_attributes", "product_variations", "product_attributes",
		"attribute_values", "attributes", "product_images", "products",
		"tags", "categories", "user_tokens", "users", "tenant_quotas", "tenants",
	} {
		s.Require().NoError(s.db.Exec("DELETE FROM " + table).Error)
	}

	s.tenant1 = &model.Tenant{Name: "tenant-one", Status: model.TenantStatusActive}
	s.tenant2 = &model.Tenant{Name: "tenant-two", Status: model.TenantStatusActive}
	s.Require().NoError(s.tenants.Create(ctx, s.tenant1))
	s.Require().NoError(s.tenants.Create(ctx, s.tenant2))
}

func quotaDefaults() config.QuotaConfig {
	return config.QuotaConfig{
		DefaultMaxUsers:    10,
		DefaultMaxAdmins:   2,
		DefaultMaxStorage:  1024,
		DefaultMaxProducts: 100,
	}
}

func (s *RepositoryTestSuite) ctxFor(tenant *model.Tenant) context.Context {
	return tenantctx.WithTenant(context.Background(), tenant.ID)
}

func (s *RepositoryTestSuite) TestProductIsolationBetweenTenants() {
	ctx1 := s.ctxFor(s.tenant1)
	ctx2 := s.ctxFor(s.tenant2)

	p := &model.Product{Name: "Widget", Slug: "widget", SKU: "W-1"}
	s.Require().NoError(s.products.Create(ctx1, p))

	// Visible at home.
	got, err := s.products.GetByID(ctx1, p.ID)
	s.Require().NoError(err)
	s.Equal("W-1", got.SKU)

	// Invisible from the other tenant, indistinguishable from absence.
	_, err = s.products.GetByID(ctx2, p.ID)
	s.ErrorIs(err, apperrors.ErrNotFound)

	list2, err := s.products.List(ctx2, ProductFilter{})
	s.Require().NoError(err)
	s.Empty(list2)
}

func (s *RepositoryTestSuite) TestCrossTenantWritesDoNotLeak() {
	ctx1 := s.ctxFor(s.tenant1)
	ctx2 := s.ctxFor(s.tenant2)

	p := &model.Product{Name: "Widget", Slug: "widget", SKU: "W-1"}
	s.Require().NoError(s.products.Create(ctx1, p))

	// An update attempt from the other tenant affects zero rows.
	foreign := *p
	foreign.Name = "Hijacked"
	err := s.products.Update(ctx2, &foreign)
	s.ErrorIs(err, apperrors.ErrNotFound)

	// A delete attempt from the other tenant affects zero rows.
	err = s.products.Delete(ctx2, p.ID)
	s.ErrorIs(err, apperrors.ErrNotFound)

	got, err := s.products.GetByID(ctx1, p.ID)
	s.Require().NoError(err)
	s.Equal("Widget", got.Name)
}

func (s *RepositoryTestSuite) TestSameSKUAllowedAcrossTenants() {
	s.Require().NoError(s.products.Create(s.ctxFor(s.tenant1),
		&model.Product{Name: "Widget", Slug: "widget", SKU: "SHARED"}))
	s.Require().NoError(s.products.Create(s.ctxFor(s.tenant2),
		&model.Product{Name: "Widget", Slug: "widget", SKU: "SHARED"}))

	// Within one tenant the SKU stays unique.
	err := s.products.Create(s.ctxFor(s.tenant1),
		&model.Product{Name: "Widget Again", Slug: "widget-again", SKU: "SHARED"})
	s.Error(err)
}

func (s *RepositoryTestSuite) TestUnboundContextSeesAllTenants() {
	s.Require().NoError(s.products.Create(s.ctxFor(s.tenant1),
		&model.Product{Name: "A", Slug: "a", SKU: "A-1"}))
	s.Require().NoError(s.products.Create(s.ctxFor(s.tenant2),
		&model.Product{Name: "B", Slug: "b", SKU: "B-1"}))

	// No tenant bound: the super-admin view.
	all, err := s.products.List(context.Background(), ProductFilter{})
	s.Require().NoError(err)
	s.Len(all, 2)
}

func (s *RepositoryTestSuite) TestProductCreateWithoutTenantFails() {
	err := s.products.Create(context.Background(),
		&model.Product{Name: "Orphan", Slug: "orphan", SKU: "O-1"})
	s.ErrorIs(err, apperrors.ErrMissingTenantContext)
}

func (s *RepositoryTestSuite) TestUserCreateDefaultsTenantFromContext() {
	ctx := s.ctxFor(s.tenant1)

	user := &model.User{Username: "alice", Email: "alice@one.test", Password: "x"}
	s.Require().NoError(s.users.Create(ctx, user))
	s.Require().NotNil(user.TenantID)
	s.Equal(s.tenant1.ID, *user.TenantID)

	// Super-admin accounts stay tenant-less.
	root := &model.User{Username: "root", Email: "root@test", Password: "x", IsSuperAdmin: true}
	s.Require().NoError(s.users.Create(context.Background(), root))
	s.Nil(root.TenantID)
}

func (s *RepositoryTestSuite) TestQuotaGetOrCreate_Defaults() {
	quota, err := s.quotas.GetOrCreate(context.Background(), s.tenant1.ID)
	s.Require().NoError(err)
	s.Equal(10, quota.MaxUsers)
	s.Equal(2, quota.MaxAdmins)
	s.Equal(1024, quota.MaxStorageMB)
	s.Equal(100, quota.MaxProducts)
	s.Equal(float64(0), quota.CurrentStorageUsedMB)
}

// Concurrent first accesses must settle on exactly one quota row.
func (s *RepositoryTestSuite) TestQuotaGetOrCreate_ConcurrentFirstAccess() {
	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.quotas.GetOrCreate(context.Background(), s.tenant1.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.NoError(err)
	}

	var count int64
	s.Require().NoError(s.db.Model(&model.TenantQuota{}).
		Where("tenant_id = ?", s.tenant1.ID).Count(&count).Error)
	s.Equal(int64(1), count)
}

// Customized caps survive later GetOrCreate calls.
func (s *RepositoryTestSuite) TestQuotaGetOrCreate_KeepsCustomCaps() {
	quota, err := s.quotas.GetOrCreate(context.Background(), s.tenant1.ID)
	s.Require().NoError(err)

	quota.MaxProducts = 500
	s.Require().NoError(s.quotas.UpdateCaps(context.Background(), quota))

	again, err := s.quotas.GetOrCreate(context.Background(), s.tenant1.ID)
	s.Require().NoError(err)
	s.Equal(500, again.MaxProducts)
}

func (s *RepositoryTestSuite) TestSumImageSizeBytes() {
	ctx := s.ctxFor(s.tenant1)

	p := &model.Product{Name: "Widget", Slug: "widget", SKU: "W-1"}
	s.Require().NoError(s.products.Create(ctx, p))
	s.Require().NoError(s.products.AddImage(ctx, &model.ProductImage{ProductID: p.ID, ImageURL: "a", SizeBytes: 1024 * 1024}))
	s.Require().NoError(s.products.AddImage(ctx, &model.ProductImage{ProductID: p.ID, ImageURL: "b", SizeBytes: 512 * 1024}))

	// The other tenant's media never counts.
	p2 := &model.Product{Name: "Other", Slug: "other", SKU: "O-1"}
	s.Require().NoError(s.products.Create(s.ctxFor(s.tenant2), p2))
	s.Require().NoError(s.products.AddImage(s.ctxFor(s.tenant2), &model.ProductImage{ProductID: p2.ID, ImageURL: "c", SizeBytes: 4 * 1024 * 1024}))

	total, err := s.quotas.SumImageSizeBytes(context.Background(), s.tenant1.ID)
	s.Require().NoError(err)
	s.Equal(int64(1024*1024+512*1024), total)
}

// With the advisory default two racing creations can overshoot; strict mode
// must not. Drive the strict ledger at the cap from many goroutines and
// verify the final count.
func (s *RepositoryTestSuite) TestStrictLedgerNeverOvershootsProductCap() {
	ctx := s.ctxFor(s.tenant1)

	quotaRow, err := s.quotas.GetOrCreate(ctx, s.tenant1.ID)
	s.Require().NoError(err)
	quotaRow.MaxProducts = 5
	s.Require().NoError(s.quotas.UpdateCaps(ctx, quotaRow))

	ledger := quota.NewLedger(s.db, s.quotas, s.users, s.products, true, s.logger)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = ledger.CreateProduct(ctx, &model.Product{
				Name: fmt.Sprintf("P%d", n),
				Slug: fmt.Sprintf("p%d", n),
				SKU:  fmt.Sprintf("P-%d", n),
			})
		}(i)
	}
	wg.Wait()

	count, err := s.products.CountByTenant(context.Background(), s.tenant1.ID)
	s.Require().NoError(err)
	s.Equal(int64(5), count)
}

func (s *RepositoryTestSuite) TestStrictLedgerNeverOvershootsUserCap() {
	ctx := s.ctxFor(s.tenant1)

	quotaRow, err := s.quotas.GetOrCreate(ctx, s.tenant1.ID)
	s.Require().NoError(err)
	quotaRow.MaxUsers = 3
	s.Require().NoError(s.quotas.UpdateCaps(ctx, quotaRow))

	ledger := quota.NewLedger(s.db, s.quotas, s.users, s.products, true, s.logger)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = ledger.CreateUser(ctx, &model.User{
				Username: fmt.Sprintf("u%d", n),
				Email:    fmt.Sprintf("u%d@one.test", n),
				Password: "x",
			})
		}(i)
	}
	wg.Wait()

	count, err := s.users.CountByTenant(context.Background(), s.tenant1.ID)
	s.Require().NoError(err)
	s.Equal(int64(3), count)
}

func (s *RepositoryTestSuite) TestAdvisoryLedgerRejectsAtCap() {
	ctx := s.ctxFor(s.tenant1)

	quotaRow, err := s.quotas.GetOrCreate(ctx, s.tenant1.ID)
	s.Require().NoError(err)
	quotaRow.MaxProducts = 2
	s.Require().NoError(s.quotas.UpdateCaps(ctx, quotaRow))

	ledger := quota.NewLedger(s.db, s.quotas, s.users, s.products, false, s.logger)

	s.Require().NoError(ledger.CreateProduct(ctx, &model.Product{Name: "A", Slug: "a", SKU: "A-1"}))
	s.Require().NoError(ledger.CreateProduct(ctx, &model.Product{Name: "B", Slug: "b", SKU: "B-1"}))

	err = ledger.CreateProduct(ctx, &model.Product{Name: "C", Slug: "c", SKU: "C-1"})
	qe, ok := apperrors.IsQuotaExceeded(err)
	s.Require().True(ok)
	s.Equal(apperrors.QuotaKindProducts, qe.Kind)
}

func (s *RepositoryTestSuite) TestTenantSoftDelete() {
	ctx := context.Background()

	s.Require().NoError(s.tenants.SoftDelete(ctx, s.tenant1.ID))

	got, err := s.tenants.GetByID(ctx, s.tenant1.ID)
	s.Require().NoError(err)
	s.Equal(model.TenantStatusDeleted, got.Status)
	s.True(got.IsDeleted)

	// The listing hides deleted tenants.
	list, err := s.tenants.List(ctx)
	s.Require().NoError(err)
	s.Len(list, 1)
	s.Equal(s.tenant2.ID, list[0].ID)
}

func (s *RepositoryTestSuite) TestStorageRecomputeRoundTrip() {
	ctx := s.ctxFor(s.tenant1)

	p := &model.Product{Name: "Widget", Slug: "widget", SKU: "W-1"}
	s.Require().NoError(s.products.Create(ctx, p))
	s.Require().NoError(s.products.AddImage(ctx, &model.ProductImage{ProductID: p.ID, ImageURL: "a", SizeBytes: 3 * 1024 * 1024}))

	ledger := quota.NewLedger(s.db, s.quotas, s.users, s.products, false, s.logger)
	usedMB, err := ledger.RecomputeStorageUsage(context.Background(), s.tenant1.ID)
	s.Require().NoError(err)
	s.Equal(float64(3), usedMB)

	quotaRow, err := s.quotas.GetOrCreate(context.Background(), s.tenant1.ID)
	s.Require().NoError(err)
	s.Equal(float64(3), quotaRow.CurrentStorageUsedMB)
}
