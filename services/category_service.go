package services

import (
	"context"
	"errors"
	"net/http"

	"catalog-service/cache"
	"catalog-service/models"
	aws_pkg "catalog-service/pkg/aws"
	"catalog-service/repository"
	"catalog-service/tree"
	"catalog-service/validation"

	"go.uber.org/zap"
)

// CategoryService defines the interface for category business logic.
type CategoryService interface {
	CreateCategory(ctx context.Context, req *models.CategoryRequest) (*models.Category, *ServiceError)
	UpdateCategory(ctx context.Context, id uint, req *models.CategoryRequest) (*models.Category, *ServiceError)
	DeleteCategory(ctx context.Context, id uint) *ServiceError
	GetCategory(ctx context.Context, id uint) (*models.Category, *ServiceError)
	ListCategories(ctx context.Context, page, limit int) ([]models.Category, int64, *ServiceError)
	Tree(ctx context.Context) ([]*models.CategoryNode, *ServiceError)
	Descendants(ctx context.Context, id uint, includeSelf bool) ([]models.Category, *ServiceError)
	Ancestors(ctx context.Context, id uint, includeSelf bool) ([]models.Category, *ServiceError)
	RebuildTree(ctx context.Context) error
}

type categoryServiceImpl struct {
	repo    repository.CategoryRepository
	cache   cache.Store
	metrics aws_pkg.Recorder
	logger  *zap.Logger
}

func NewCategoryService(repo repository.CategoryRepository, store cache.Store, metrics aws_pkg.Recorder, logger *zap.Logger) CategoryService {
	if store == nil {
		store = cache.Noop{}
	}
	return &categoryServiceImpl{repo: repo, cache: store, metrics: metrics, logger: logger}
}

// treeChanged drops cached trees and product details after a write.
func (s *categoryServiceImpl) treeChanged(ctx context.Context) {
	s.cache.InvalidateCategories(ctx)
	recordCount(ctx, s.metrics, aws_pkg.MetricCategoriesChanged)
}

var errMoveIntoSubtree = errors.New("a category cannot be moved beneath itself or its descendants")

func (s *categoryServiceImpl) CreateCategory(ctx context.Context, req *models.CategoryRequest) (*models.Category, *ServiceError) {
	if err := validation.Struct(req); err != nil {
		return nil, badRequest(err.Error())
	}

	category := &models.Category{
		Name:     req.Name,
		Slug:     req.Slug,
		IsActive: boolOr(req.IsActive, true),
		ParentID: req.ParentID,
	}

	err := s.repo.Transaction(ctx, func(repo repository.CategoryRepository) error {
		if category.ParentID != nil {
			if _, err := repo.FindByID(ctx, *category.ParentID); err != nil {
				return &ServiceError{StatusCode: http.StatusBadRequest, Message: "Parent category not found"}
			}
		}
		if err := repo.Create(ctx, category); err != nil {
			return err
		}
		return rebuild(ctx, repo)
	})
	if svcErr := s.txError(err, "Failed to create category"); svcErr != nil {
		return nil, svcErr
	}

	s.treeChanged(ctx)
	s.logger.Info("Category created", zap.Uint("id", category.ID), zap.String("slug", category.Slug))
	return s.GetCategory(ctx, category.ID)
}

// UpdateCategory rewrites the category and, when the parent changes, moves
// its whole subtree.
func (s *categoryServiceImpl) UpdateCategory(ctx context.Context, id uint, req *models.CategoryRequest) (*models.Category, *ServiceError) {
	if err := validation.Struct(req); err != nil {
		return nil, badRequest(err.Error())
	}

	err := s.repo.Transaction(ctx, func(repo repository.CategoryRepository) error {
		category, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}

		if req.ParentID != nil && !sameParent(category.ParentID, req.ParentID) {
			if *req.ParentID == category.ID {
				return errMoveIntoSubtree
			}
			parent, err := repo.FindByID(ctx, *req.ParentID)
			if err != nil {
				return &ServiceError{StatusCode: http.StatusBadRequest, Message: "Parent category not found"}
			}
			if tree.IsDescendant(toNode(*parent), toNode(*category)) {
				return errMoveIntoSubtree
			}
		}

		category.Name = req.Name
		category.Slug = req.Slug
		category.ParentID = req.ParentID
		if req.IsActive != nil {
			category.IsActive = *req.IsActive
		}
		if err := repo.Update(ctx, category); err != nil {
			return err
		}
		return rebuild(ctx, repo)
	})
	if svcErr := s.txError(err, "Failed to update category"); svcErr != nil {
		return nil, svcErr
	}

	s.treeChanged(ctx)
	s.logger.Info("Category updated", zap.Uint("id", id))
	return s.GetCategory(ctx, id)
}

func (s *categoryServiceImpl) DeleteCategory(ctx context.Context, id uint) *ServiceError {
	err := s.repo.Transaction(ctx, func(repo repository.CategoryRepository) error {
		if _, err := repo.FindByID(ctx, id); err != nil {
			return err
		}
		children, err := repo.CountChildren(ctx, id)
		if err != nil {
			return err
		}
		if children > 0 {
			return &ServiceError{StatusCode: http.StatusConflict, Message: "Category has child categories and cannot be deleted"}
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		return rebuild(ctx, repo)
	})
	if svcErr := s.txError(err, "Failed to delete category"); svcErr != nil {
		return svcErr
	}

	s.treeChanged(ctx)
	s.logger.Info("Category deleted", zap.Uint("id", id))
	return nil
}

func (s *categoryServiceImpl) GetCategory(ctx context.Context, id uint) (*models.Category, *ServiceError) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fromRepo(s.logger, err, "Category", "Failed to fetch category")
	}
	return category, nil
}

func (s *categoryServiceImpl) ListCategories(ctx context.Context, page, limit int) ([]models.Category, int64, *ServiceError) {
	categories, total, err := s.repo.FindAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fromRepo(s.logger, err, "Category", "Failed to list categories")
	}
	return categories, total, nil
}

// Tree returns the nested forest, served from cache when possible.
func (s *categoryServiceImpl) Tree(ctx context.Context) ([]*models.CategoryNode, *ServiceError) {
	nodes, version, ok := s.cache.GetCategoryTree(ctx)
	if ok {
		return nodes, nil
	}

	categories, err := s.repo.FindAllOrdered(ctx)
	if err != nil {
		return nil, fromRepo(s.logger, err, "Category", "Failed to load category tree")
	}

	byID := make(map[uint]models.Category, len(categories))
	flat := make([]tree.Node, 0, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
		flat = append(flat, toNode(c))
	}

	out := make([]*models.CategoryNode, 0)
	for _, b := range tree.Build(flat) {
		out = append(out, toCategoryNode(b, byID))
	}
	s.cache.SetCategoryTreeAsync(version, out)
	return out, nil
}

func (s *categoryServiceImpl) Descendants(ctx context.Context, id uint, includeSelf bool) ([]models.Category, *ServiceError) {
	category, svcErr := s.GetCategory(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	descendants, err := s.repo.FindDescendants(ctx, category)
	if err != nil {
		return nil, fromRepo(s.logger, err, "Category", "Failed to load descendants")
	}
	if includeSelf {
		descendants = append([]models.Category{*category}, descendants...)
	}
	return descendants, nil
}

func (s *categoryServiceImpl) Ancestors(ctx context.Context, id uint, includeSelf bool) ([]models.Category, *ServiceError) {
	category, svcErr := s.GetCategory(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	ancestors, err := s.repo.FindAncestors(ctx, category)
	if err != nil {
		return nil, fromRepo(s.logger, err, "Category", "Failed to load ancestors")
	}
	if includeSelf {
		ancestors = append(ancestors, *category)
	}
	return ancestors, nil
}

// RebuildTree renumbers every category from its parent links. Bulk loaders
// call it after writing rows directly.
func (s *categoryServiceImpl) RebuildTree(ctx context.Context) error {
	if err := s.repo.Transaction(ctx, func(repo repository.CategoryRepository) error {
		return rebuild(ctx, repo)
	}); err != nil {
		return err
	}
	s.treeChanged(ctx)
	return nil
}

// txError converts an error returned from a category transaction.
func (s *categoryServiceImpl) txError(err error, fallback string) *ServiceError {
	if err == nil {
		return nil
	}
	var svcErr *ServiceError
	switch {
	case errors.As(err, &svcErr):
		return svcErr
	case errors.Is(err, errMoveIntoSubtree):
		return conflict("A category cannot be moved beneath itself or its descendants")
	case errors.Is(err, tree.ErrCycle), errors.Is(err, tree.ErrUnknownParent):
		s.logger.Error("Category tree is inconsistent", zap.Error(err))
		return conflict("Category tree is inconsistent")
	}
	return fromRepo(s.logger, err, "Category", fallback)
}

// rebuild renumbers the forest and writes back only rows that moved.
func rebuild(ctx context.Context, repo repository.CategoryRepository) error {
	categories, err := repo.FindAllOrdered(ctx)
	if err != nil {
		return err
	}
	before := make([]tree.Node, 0, len(categories))
	for _, c := range categories {
		before = append(before, toNode(c))
	}
	after, err := tree.Rebuild(before)
	if err != nil {
		return err
	}
	changed := tree.Changed(before, after)
	if len(changed) == 0 {
		return nil
	}
	return repo.SaveTree(ctx, changed)
}

func toNode(c models.Category) tree.Node {
	return tree.Node{
		ID:       c.ID,
		ParentID: c.ParentID,
		Name:     c.Name,
		TreeID:   c.TreeID,
		Lft:      c.Lft,
		Rght:     c.Rght,
		Level:    c.Level,
	}
}

func toCategoryNode(b *tree.Branch, byID map[uint]models.Category) *models.CategoryNode {
	c := byID[b.ID]
	node := &models.CategoryNode{
		ID:       c.ID,
		Name:     c.Name,
		Slug:     c.Slug,
		IsActive: c.IsActive,
		Level:    b.Level,
		Children: make([]*models.CategoryNode, 0, len(b.Children)),
	}
	for _, child := range b.Children {
		node.Children = append(node.Children, toCategoryNode(child, byID))
	}
	return node
}

func sameParent(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
