package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vapestore-pos/internal/activity"
	"vapestore-pos/internal/apperror"
	"vapestore-pos/internal/model"
	"vapestore-pos/internal/repository"
	"vapestore-pos/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// productMovementLimit is how many ledger rows GetProduct embeds
const productMovementLimit = 10

type CatalogService interface {
	CreateBrand(ctx context.Context, p Principal, req *BrandRequest) (*model.Brand, error)
	UpdateBrand(ctx context.Context, p Principal, id uuid.UUID, req *UpdateBrandRequest) (*model.Brand, error)
	ListBrands(ctx context.Context) ([]model.Brand, error)

	CreateCategory(ctx context.Context, p Principal, req *CategoryRequest) (*model.Category, error)
	UpdateCategory(ctx context.Context, p Principal, id uuid.UUID, req *UpdateCategoryRequest) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListAvailableCategories(ctx context.Context) ([]model.Category, error)

	GetProductsByCategory(ctx context.Context, categoryID, subcategoryID *uuid.UUID) ([]model.Product, error)
	CreateProduct(ctx context.Context, p Principal, req *CreateProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, p Principal, id uuid.UUID, req *UpdateProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, p Principal, id uuid.UUID) error
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	UploadProductImage(ctx context.Context, p Principal, imageBase64, fileName string) (string, error)
}

type BrandRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
	LogoURL     string `json:"logo_url" validate:"omitempty,max=512"`
}

type UpdateBrandRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	LogoURL     *string `json:"logo_url" validate:"omitempty,max=512"`
	IsActive    *bool   `json:"is_active"`
}

type CategoryRequest struct {
	Name        string     `json:"name" validate:"required,max=255"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
	SortOrder   int        `json:"sort_order"`
}

type UpdateCategoryRequest struct {
	Name        *string    `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string    `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
	// ClearParent moves the category to the top level
	ClearParent bool  `json:"clear_parent"`
	IsActive    *bool `json:"is_active"`
	SortOrder   *int  `json:"sort_order"`
}

type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description"`
	CostPrice   decimal.Decimal `json:"cost_price" validate:"gte=0"`
	RetailPrice decimal.Decimal `json:"retail_price" validate:"gte=0"`
	ImageURL    string          `json:"image_url" validate:"omitempty,max=512"`
	PuffCount   *int            `json:"puff_count" validate:"omitempty,gt=0"`
	Stock       int             `json:"stock" validate:"gte=0"`
	MinStock    *int            `json:"min_stock" validate:"omitempty,gte=0"`
	BrandID     uuid.UUID       `json:"brand_id" validate:"uuid_required"`
	CategoryID  uuid.UUID       `json:"category_id" validate:"uuid_required"`
}

// UpdateProductRequest carries a partial update; stock is deliberately absent
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string          `json:"description"`
	CostPrice   *decimal.Decimal `json:"cost_price" validate:"omitempty,gte=0"`
	RetailPrice *decimal.Decimal `json:"retail_price" validate:"omitempty,gte=0"`
	ImageURL    *string          `json:"image_url" validate:"omitempty,max=512"`
	PuffCount   *int             `json:"puff_count" validate:"omitempty,gt=0"`
	MinStock    *int             `json:"min_stock" validate:"omitempty,gte=0"`
	BrandID     *uuid.UUID       `json:"brand_id" validate:"omitempty,uuid_required"`
	CategoryID  *uuid.UUID       `json:"category_id" validate:"omitempty,uuid_required"`
	IsActive    *bool            `json:"is_active"`
}

type catalogService struct {
	brandRepo    repository.BrandRepository
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	txm          *repository.TxManager
	uploader     storage.Uploader
	recorder     *activity.Recorder
}

func NewCatalogService(
	brandRepo repository.BrandRepository,
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	txm *repository.TxManager,
	uploader storage.Uploader,
	recorder *activity.Recorder,
) CatalogService {
	return &catalogService{
		brandRepo:    brandRepo,
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		movementRepo: movementRepo,
		txm:          txm,
		uploader:     uploader,
		recorder:     recorder,
	}
}

// --- Brands ---

func (s *catalogService) CreateBrand(ctx context.Context, p Principal, req *BrandRequest) (*model.Brand, error) {
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validate(req); err != nil {
		return nil, err
	}
	if err := s.ensureBrandNameFree(ctx, req.Name, uuid.Nil); err != nil {
		return nil, err
	}

	brand := &model.Brand{
		Name:        req.Name,
		Description: req.Description,
		LogoURL:     req.LogoURL,
		IsActive:    true,
	}
	if err := s.brandRepo.Create(ctx, brand); err != nil {
		return nil, duplicateOr(err, "brand", req.Name)
	}

	s.recorder.Record(ctx, activity.Entry{
		Action:  model.ActionCreateBrand,
		Details: fmt.Sprintf("Created brand %s", brand.Name),
		UserID:  activity.Ref(p.UserID),
	})
	return brand, nil
}

func (s *catalogService) UpdateBrand(ctx context.Context, p Principal, id uuid.UUID, req *UpdateBrandRequest) (*model.Brand, error) {
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	brand, err := s.brandRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "brand", id)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := s.ensureBrandNameFree(ctx, name, brand.ID); err != nil {
			return nil, err
		}
		brand.Name = name
	}
	if req.Description != nil {
		brand.Description = *req.Description
	}
	if req.LogoURL != nil {
		brand.LogoURL = *req.LogoURL
	}
	if req.IsActive != nil {
		brand.IsActive = *req.IsActive
	}

	if err := s.brandRepo.Update(ctx, brand); err != nil {
		return nil, duplicateOr(err, "brand", brand.Name)
	}

	s.recorder.Record(ctx, activity.Entry{
		Action:  model.ActionUpdateBrand,
		Details: fmt.Sprintf("Updated brand %s", brand.Name),
		UserID:  activity.Ref(p.UserID),
	})
	return brand, nil
}

func (s *catalogService) ListBrands(ctx context.Context) ([]model.Brand, error) {
	brands, err := s.brandRepo.FindActive(ctx)
	return brands, apperror.Wrap(err)
}

func (s *catalogService) ensureBrandNameFree(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.brandRepo.FindByName(ctx, name)
	if err == nil && existing.ID != self {
		return apperror.NewDuplicate("brand", "name", name)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.Wrap(err)
	}
	return nil
}

// --- Categories ---

func (s *catalogService) CreateCategory(ctx context.Context, p Principal, req *CategoryRequest) (*model.Category, error) {
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validate(req); err != nil {
		return nil, err
	}
	if err := s.ensureCategoryNameFree(ctx, req.Name, uuid.Nil); err != nil {
		return nil, err
	}
	if req.ParentID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *req.ParentID); err != nil {
			return nil, notFound(err, "parent category", *req.ParentID)
		}
	}

	category := &model.Category{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
		SortOrder:   req.SortOrder,
		IsActive:    true,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, duplicateOr(err, "category", req.Name)
	}

	s.recorder.Record(ctx, activity.Entry{
		Action:  model.ActionCreateCategory,
		Details: fmt.Sprintf("Created category %s", category.Name),
		UserID:  activity.Ref(p.UserID),
	})
	return category, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, p Principal, id uuid.UUID, req *UpdateCategoryRequest) (*model.Category, error) {
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "category", id)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := s.ensureCategoryNameFree(ctx, name, category.ID); err != nil {
			return nil, err
		}
		category.Name = name
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}
	switch {
	case req.ClearParent:
		category.ParentID = nil
	case req.ParentID != nil:
		if err := s.ensureNoCycle(ctx, category.ID, *req.ParentID); err != nil {
			return nil, err
		}
		category.ParentID = req.ParentID
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, duplicateOr(err, "category", category.Name)
	}

	s.recorder.Record(ctx, activity.Entry{
		Action:  model.ActionUpdateCategory,
		Details: fmt.Sprintf("Updated category %s", category.Name),
		UserID:  activity.Ref(p.UserID),
	})
	return category, nil
}

func (s *catalogService) ensureCategoryNameFree(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.categoryRepo.FindByName(ctx, name)
	if err == nil && existing.ID != self {
		return apperror.NewDuplicate("category", "name", name)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.Wrap(err)
	}
	return nil
}

// ensureNoCycle walks up from parentID and fails if it reaches id
func (s *catalogService) ensureNoCycle(ctx context.Context, id, parentID uuid.UUID) error {
	current := &parentID
	for depth := 0; current != nil; depth++ {
		if *current == id || depth > 64 {
			return apperror.NewBusinessRule("A category cannot be nested under itself")
		}
		parent, err := s.categoryRepo.FindByID(ctx, *current)
		if err != nil {
			return notFound(err, "parent category", *current)
		}
		current = parent.ParentID
	}
	return nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	tree, err := s.loadTree(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]model.Category, 0, len(tree.order))
	for _, id := range tree.order {
		node := tree.build(id, map[uuid.UUID]bool{})
		if parentID := tree.byID[id].ParentID; parentID != nil {
			if parent, ok := tree.byID[*parentID]; ok {
				parent.Subcategories = nil
				parent.Products = nil
				node.Parent = &parent
			}
		}
		result = append(result, node)
	}
	return result, nil
}

func (s *catalogService) ListAvailableCategories(ctx context.Context) ([]model.Category, error) {
	tree, err := s.loadTree(ctx)
	if err != nil {
		return nil, err
	}

	result := []model.Category{}
	for _, id := range tree.order {
		if tree.byID[id].ParentID != nil {
			continue
		}
		node := tree.build(id, map[uuid.UUID]bool{})
		if pruneEmpty(&node) {
			result = append(result, node)
		}
	}
	return result, nil
}

// categoryTree indexes the active categories and their in-stock products
type categoryTree struct {
	order    []uuid.UUID
	byID     map[uuid.UUID]model.Category
	children map[uuid.UUID][]uuid.UUID
	products map[uuid.UUID][]model.Product
}

func (s *catalogService) loadTree(ctx context.Context) (*categoryTree, error) {
	categories, err := s.categoryRepo.FindActive(ctx)
	if err != nil {
		return nil, apperror.Wrap(err)
	}
	products, err := s.productRepo.FindAvailable(ctx)
	if err != nil {
		return nil, apperror.Wrap(err)
	}

	tree := &categoryTree{
		byID:     make(map[uuid.UUID]model.Category, len(categories)),
		children: make(map[uuid.UUID][]uuid.UUID),
		products: make(map[uuid.UUID][]model.Product),
	}
	for _, c := range categories {
		tree.order = append(tree.order, c.ID)
		tree.byID[c.ID] = c
		if c.ParentID != nil {
			tree.children[*c.ParentID] = append(tree.children[*c.ParentID], c.ID)
		}
	}
	for _, p := range products {
		p.Category = nil
		tree.products[p.CategoryID] = append(tree.products[p.CategoryID], p)
	}
	return tree, nil
}

// build returns a copy of the category with its active subtree and products filled in
func (t *categoryTree) build(id uuid.UUID, seen map[uuid.UUID]bool) model.Category {
	node := t.byID[id]
	seen[id] = true
	node.Products = append([]model.Product{}, t.products[id]...)
	node.Subcategories = []model.Category{}
	for _, childID := range t.children[id] {
		if seen[childID] {
			continue
		}
		node.Subcategories = append(node.Subcategories, t.build(childID, seen))
	}
	return node
}

// pruneEmpty drops subcategories with no in-stock products anywhere below them
// and reports whether anything is left under c
func pruneEmpty(c *model.Category) bool {
	kept := c.Subcategories[:0]
	for i := range c.Subcategories {
		if pruneEmpty(&c.Subcategories[i]) {
			kept = append(kept, c.Subcategories[i])
		}
	}
	c.Subcategories = kept
	return len(c.Products) > 0 || len(c.Subcategories) > 0
}

// --- Products ---

func (s *catalogService) GetProductsByCategory(ctx context.Context, categoryID, subcategoryID *uuid.UUID) ([]model.Product, error) {
	var filter []uuid.UUID
	switch {
	case subcategoryID != nil:
		filter = append(filter, *subcategoryID)
	case categoryID != nil:
		filter = append(filter, *categoryID)
	}
	products, err := s.productRepo.FindAvailable(ctx, filter...)
	return products, apperror.Wrap(err)
}

func (s *catalogService) CreateProduct(ctx context.Context, p Principal, req *CreateProductRequest) (*model.Product, error) {
	// 1. Any authenticated role may add products when stock arrives
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}

	// 2. Validate request
	req.Name = strings.TrimSpace(req.Name)
	if err := validate(req); err != nil {
		return nil, err
	}
	if _, err := s.brandRepo.FindByID(ctx, req.BrandID); err != nil {
		return nil, notFound(err, "brand", req.BrandID)
	}
	if _, err := s.categoryRepo.FindByID(ctx, req.CategoryID); err != nil {
		return nil, notFound(err, "category", req.CategoryID)
	}

	minStock := model.DefaultMinStock
	if req.MinStock != nil {
		minStock = *req.MinStock
	}

	product := &model.Product{
		Name:        req.Name,
		Description: req.Description,
		CostPrice:   req.CostPrice,
		RetailPrice: req.RetailPrice,
		ImageURL:    req.ImageURL,
		PuffCount:   req.PuffCount,
		Stock:       req.Stock,
		MinStock:    minStock,
		IsActive:    true,
		BrandID:     req.BrandID,
		CategoryID:  req.CategoryID,
		CreatedBy:   activity.Ref(p.UserID),
	}

	// 3. Product and its opening ledger row commit together
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.productRepo.Create(ctx, product); err != nil {
			return err
		}
		return s.movementRepo.Create(ctx, &model.StockMovement{
			Type:      model.MovementIn,
			Quantity:  product.Stock,
			Reason:    model.ReasonInitialStock,
			ProductID: product.ID,
			CreatedBy: p.UserID,
		})
	})
	if err != nil {
		return nil, apperror.Wrap(err)
	}

	s.recorder.Record(ctx, activity.Entry{
		Action:    model.ActionCreateProduct,
		Details:   fmt.Sprintf("Created product %s", product.Name),
		UserID:    activity.Ref(p.UserID),
		ProductID: activity.Ref(product.ID),
	})

	return s.reload(ctx, product.ID)
}

func (s *catalogService) UpdateProduct(ctx context.Context, p Principal, id uuid.UUID, req *UpdateProductRequest) (*model.Product, error) {
	if err := requireRole(p, model.RoleAdmin); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "product", id)
	}

	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.CostPrice != nil {
		product.CostPrice = *req.CostPrice
	}
	if req.RetailPrice != nil {
		product.RetailPrice = *req.RetailPrice
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}
	if req.PuffCount != nil {
		product.PuffCount = req.PuffCount
	}
	if req.MinStock != nil {
		product.MinStock = *req.MinStock
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.BrandID != nil {
		if _, err := s.brandRepo.FindByID(ctx, *req.BrandID); err != nil {
			return nil, notFound(err, "brand", *req.BrandID)
		}
		product.BrandID = *req.BrandID
	}
	if req.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *req.CategoryID); err != nil {
			return nil, notFound(err, "category", *req.CategoryID)
		}
		product.CategoryID = *req.CategoryID
	}

	product.Brand = nil
	product.Category = nil
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, apperror.Wrap(err)
	}

	s.recorder.Record(ctx, activity.Entry{
		Action:    model.ActionUpdateProduct,
		Details:   fmt.Sprintf("Updated product %s", product.Name),
		UserID:    activity.Ref(p.UserID),
		ProductID: activity.Ref(product.ID),
	})

	return s.reload(ctx, product.ID)
}

func (s *catalogService) DeleteProduct(ctx context.Context, p Principal, id uuid.UUID) error {
	if err := requireRole(p, model.RoleAdmin); err != nil {
		return err
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return notFound(err, "product", id)
	}

	// Soft delete keeps ledger and sale history valid
	product.IsActive = false
	product.Brand = nil
	product.Category = nil
	if err := s.productRepo.Update(ctx, product); err != nil {
		return apperror.Wrap(err)
	}

	s.recorder.Record(ctx, activity.Entry{
		Action:    model.ActionDeleteProduct,
		Details:   fmt.Sprintf("Deleted product %s", product.Name),
		UserID:    activity.Ref(p.UserID),
		ProductID: activity.Ref(product.ID),
	})
	return nil
}

func (s *catalogService) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.FindActive(ctx)
	return products, apperror.Wrap(err)
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "product", id)
	}
	movements, err := s.movementRepo.FindByProduct(ctx, id, productMovementLimit)
	if err != nil {
		return nil, apperror.Wrap(err)
	}
	product.StockMovements = movements
	return product, nil
}

func (s *catalogService) UploadProductImage(ctx context.Context, p Principal, imageBase64, fileName string) (string, error) {
	if err := requireAuthenticated(p); err != nil {
		return "", err
	}
	return s.uploader.Upload(ctx, imageBase64, fileName)
}

func (s *catalogService) reload(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "product", id)
	}
	return product, nil
}

// duplicateOr turns a unique-index violation into a duplicate error
func duplicateOr(err error, entity, name string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.NewDuplicate(entity, "name", name)
	}
	return apperror.Wrap(err)
}
