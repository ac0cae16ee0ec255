package services

import (
	"context"

	"catalog-service/models"
	"catalog-service/repository"

	"go.uber.org/zap"
)

// DashboardService feeds the admin index page.
type DashboardService interface {
	ModelCounts(ctx context.Context) ([]models.ModelCount, *ServiceError)
}

type dashboardServiceImpl struct {
	repo   repository.StatsRepository
	logger *zap.Logger
}

func NewDashboardService(repo repository.StatsRepository, logger *zap.Logger) DashboardService {
	return &dashboardServiceImpl{repo: repo, logger: logger}
}

func (s *dashboardServiceImpl) ModelCounts(ctx context.Context) ([]models.ModelCount, *ServiceError) {
	counts, err := s.repo.Counts(ctx)
	if err != nil {
		return nil, fromRepo(s.logger, err, "Model counts", "Failed to load model counts")
	}
	return counts, nil
}
