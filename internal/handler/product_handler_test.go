package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fx0883/productsShow/internal/apperrors"
	"github.com/fx0883/productsShow/internal/model"
	"github.com/fx0883/productsShow/internal/repository"
)

type fakeProducts struct {
	byID       map[uint]*model.Product
	listFilter repository.ProductFilter
	images     []*model.ProductImage
	variations []*model.ProductVariation
	deleted    []uint
}

func (f *fakeProducts) GetByID(ctx context.Context, id uint) (*model.Product, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return p, nil
}

func (f *fakeProducts) GetBySKU(ctx context.Context, sku string) (*model.Product, error) {
	for _, p := range f.byID {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeProducts) List(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error) {
	f.listFilter = filter
	var out []model.Product
	for _, p := range f.byID {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProducts) Update(ctx context.Context, product *model.Product) error {
	if _, ok := f.byID[product.ID]; !ok {
		return apperrors.ErrNotFound
	}
	f.byID[product.ID] = product
	return nil
}

func (f *fakeProducts) Delete(ctx context.Context, id uint) error {
	if _, ok := f.byID[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeProducts) AddImage(ctx context.Context, image *model.ProductImage) error {
	if _, ok := f.byID[image.ProductID]; !ok {
		return apperrors.ErrNotFound
	}
	image.ID = uint(len(f.images) + 1)
	f.images = append(f.images, image)
	return nil
}

func (f *fakeProducts) ListImages(ctx context.Context, productID uint) ([]model.ProductImage, error) {
	var out []model.ProductImage
	for _, img := range f.images {
		if img.ProductID == productID {
			out = append(out, *img)
		}
	}
	return out, nil
}

func (f *fakeProducts) DeleteImage(ctx context.Context, imageID uint) error {
	return nil
}

func (f *fakeProducts) CreateVariation(ctx context.Context, variation *model.ProductVariation) error {
	variation.ID = uint(len(f.variations) + 1)
	f.variations = append(f.variations, variation)
	return nil
}

func (f *fakeProducts) ListVariations(ctx context.Context, productID uint) ([]model.ProductVariation, error) {
	var out []model.ProductVariation
	for _, v := range f.variations {
		if v.ProductID == productID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (f *fakeProducts) DeleteVariation(ctx context.Context, variationID uint) error {
	return nil
}

type fakeProductCreator struct {
	err     error
	created []*model.Product
}

func (f *fakeProductCreator) CreateProduct(ctx context.Context, product *model.Product) error {
	if f.err != nil {
		return f.err
	}
	product.ID = uint(len(f.created) + 1)
	f.created = append(f.created, product)
	return nil
}

type fakeStorage struct {
	err      error
	askedFor []float64
}

func (f *fakeStorage) CheckStorageAdd(ctx context.Context, tenantID uint, additionalMB float64) error {
	f.askedFor = append(f.askedFor, additionalMB)
	return f.err
}

func newProductHandler(products *fakeProducts, creator *fakeProductCreator, storage *fakeStorage) *ProductHandler {
	if products.byID == nil {
		products.byID = map[uint]*model.Product{}
	}
	return NewProductHandler(products, creator, storage)
}

func TestCreateProduct_HappyPath(t *testing.T) {
	creator := &fakeProductCreator{}
	h := newProductHandler(&fakeProducts{}, creator, &fakeStorage{})

	c, rec := newTestContext(t, http.MethodPost, "/api/products",
		`{"name":"Blue Shirt","sku":"SKU-1","regular_price":19.99,"stock_quantity":5}`)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, creator.created, 1)
	created := creator.created[0]
	assert.Equal(t, "SKU-1", created.SKU)
	assert.Equal(t, "blue-shirt", created.Slug)
	assert.Equal(t, model.ProductTypeSimple, created.Type)
	assert.Equal(t, model.ProductStatusDraft, created.Status)
	require.NotNil(t, created.Price)
	assert.Equal(t, 19.99, *created.Price)
}

func TestCreateProduct_MissingFields(t *testing.T) {
	h := newProductHandler(&fakeProducts{}, &fakeProductCreator{}, &fakeStorage{})

	c, rec := newTestContext(t, http.MethodPost, "/api/products", `{"name":"No SKU"}`)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateProduct_QuotaExceeded(t *testing.T) {
	creator := &fakeProductCreator{err: &apperrors.QuotaExceededError{
		Kind: apperrors.QuotaKindProducts, Limit: 100, Current: 100,
	}}
	h := newProductHandler(&fakeProducts{}, creator, &fakeStorage{})

	c, rec := newTestContext(t, http.MethodPost, "/api/products",
		`{"name":"One Too Many","sku":"SKU-101"}`)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "products", body["kind"])
}

func TestCreateProduct_NoTenantContext(t *testing.T) {
	creator := &fakeProductCreator{err: apperrors.ErrMissingTenantContext}
	h := newProductHandler(&fakeProducts{}, creator, &fakeStorage{})

	c, rec := newTestContext(t, http.MethodPost, "/api/products",
		`{"name":"Orphan","sku":"SKU-0"}`)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListProducts_FilterPassthrough(t *testing.T) {
	products := &fakeProducts{}
	h := newProductHandler(products, &fakeProductCreator{}, &fakeStorage{})

	c, rec := newTestContext(t, http.MethodGet, "/api/products?status=published&type=simple&category_id=3&search=shirt", "")
	require.NoError(t, h.List(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "published", products.listFilter.Status)
	assert.Equal(t, "simple", products.listFilter.Type)
	assert.Equal(t, "shirt", products.listFilter.Search)
	require.NotNil(t, products.listFilter.CategoryID)
	assert.Equal(t, uint(3), *products.listFilter.CategoryID)
}

func TestGetProduct_NotFound(t *testing.T) {
	h := newProductHandler(&fakeProducts{}, &fakeProductCreator{}, &fakeStorage{})

	c, rec := newTestContext(t, http.MethodGet, "/api/products/99", "")
	c.SetParamNames("id")
	c.SetParamValues("99")
	require.NoError(t, h.Get(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddImage_ChecksStorageQuota(t *testing.T) {
	products := &fakeProducts{byID: map[uint]*model.Product{
		1: {ID: 1, Name: "Shirt", SKU: "SKU-1"},
	}}
	storage := &fakeStorage{}
	h := NewProductHandler(products, &fakeProductCreator{}, storage)

	c, rec := newTestContext(t, http.MethodPost, "/api/products/1/images",
		`{"image_url":"https://cdn.example.com/a.jpg","size_bytes":2097152}`)
	c.Set("tenant_id", uint(4))
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.AddImage(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, storage.askedFor, 1)
	assert.Equal(t, float64(2), storage.askedFor[0])
	require.Len(t, products.images, 1)
	assert.Equal(t, int64(2097152), products.images[0].SizeBytes)
}

func TestAddImage_StorageQuotaExceeded(t *testing.T) {
	products := &fakeProducts{byID: map[uint]*model.Product{
		1: {ID: 1, Name: "Shirt", SKU: "SKU-1"},
	}}
	storage := &fakeStorage{err: &apperrors.QuotaExceededError{
		Kind: apperrors.QuotaKindStorage, Limit: 1024, Current: 1023,
	}}
	h := NewProductHandler(products, &fakeProductCreator{}, storage)

	c, rec := newTestContext(t, http.MethodPost, "/api/products/1/images",
		`{"image_url":"https://cdn.example.com/b.jpg","size_bytes":10485760}`)
	c.Set("tenant_id", uint(4))
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.AddImage(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "storage", body["kind"])
	assert.Empty(t, products.images)
}

func TestCreateVariation(t *testing.T) {
	products := &fakeProducts{byID: map[uint]*model.Product{
		1: {ID: 1, Name: "Shirt", SKU: "SKU-1", Type: model.ProductTypeVariable},
	}}
	h := NewProductHandler(products, &fakeProductCreator{}, &fakeStorage{})

	c, rec := newTestContext(t, http.MethodPost, "/api/products/1/variations",
		`{"sku":"SKU-1-RED","name":"Red","regular_price":21.5}`)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.CreateVariation(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, products.variations, 1)
	assert.Equal(t, "SKU-1-RED", products.variations[0].SKU)
	assert.Equal(t, uint(1), products.variations[0].ProductID)
}

func TestDeleteProduct(t *testing.T) {
	products := &fakeProducts{byID: map[uint]*model.Product{
		1: {ID: 1, Name: "Shirt", SKU: "SKU-1"},
	}}
	h := NewProductHandler(products, &fakeProductCreator{}, &fakeStorage{})

	c, rec := newTestContext(t, http.MethodDelete, "/api/products/1", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Delete(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []uint{1}, products.deleted)
}
