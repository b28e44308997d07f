package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/yigit/campusprint/internal/app/auth"
	"github.com/yigit/campusprint/internal/app/models/dto"
	"github.com/yigit/campusprint/internal/app/repositories"
	"github.com/yigit/campusprint/internal/domain"
	"github.com/yigit/campusprint/internal/pkg/helpers"
)

// AdminService builds the admin dashboard
type AdminService struct {
	requestRepo repositories.IPrintRequestRepository
	logger      zerolog.Logger
}

// NewAdminService creates a new AdminService
func NewAdminService(requestRepo repositories.IPrintRequestRepository, logger zerolog.Logger) *AdminService {
	return &AdminService{requestRepo: requestRepo, logger: logger}
}

// Dashboard returns global counts and one page of all requests, newest first
func (s *AdminService) Dashboard(ctx context.Context, principal *auth.Principal, params repositories.ListParams) (*dto.DashboardResponse, error) {
	if err := auth.RequireAdmin(principal); err != nil {
		return nil, err
	}
	params.Page, params.Size = helpers.NormalizePage(params.Page, params.Size)

	stats := dto.DashboardStats{}
	var err error
	if stats.Total, err = s.requestRepo.CountAll(ctx); err != nil {
		return nil, err
	}
	counts := map[domain.Status]*int64{
		domain.StatusPending:   &stats.Pending,
		domain.StatusPrinting:  &stats.Printing,
		domain.StatusCompleted: &stats.Completed,
	}
	for _, status := range domain.Statuses {
		if *counts[status], err = s.requestRepo.CountByStatus(ctx, status); err != nil {
			return nil, err
		}
	}

	items, err := s.requestRepo.ListAll(ctx, params)
	if err != nil {
		return nil, err
	}

	matching := stats.Total
	if params.Status != nil {
		if n, ok := counts[*params.Status]; ok {
			matching = *n
		}
	}

	return &dto.DashboardResponse{
		Stats:      stats,
		Requests:   dto.FromPrintRequests(items),
		Pagination: helpers.NewPaginationInfo(matching, params.Page, params.Size),
	}, nil
}
