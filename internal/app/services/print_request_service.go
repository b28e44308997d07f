package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/campusprint/internal/app/auth"
	"github.com/yigit/campusprint/internal/app/models"
	"github.com/yigit/campusprint/internal/app/models/dto"
	"github.com/yigit/campusprint/internal/app/repositories"
	"github.com/yigit/campusprint/internal/domain"
	"github.com/yigit/campusprint/internal/pkg/apperrors"
	"github.com/yigit/campusprint/internal/pkg/filestorage"
)

// PrintRequestService prices, stores and tracks print requests
type PrintRequestService struct {
	requestRepo repositories.IPrintRequestRepository
	storage     filestorage.FileStorage
	logger      zerolog.Logger
	now         func() time.Time
}

// NewPrintRequestService creates a new PrintRequestService
func NewPrintRequestService(
	requestRepo repositories.IPrintRequestRepository,
	storage filestorage.FileStorage,
	logger zerolog.Logger,
) *PrintRequestService {
	return &PrintRequestService{
		requestRepo: requestRepo,
		storage:     storage,
		logger:      logger,
		now:         time.Now,
	}
}

// Quote prices a job without storing anything
func (s *PrintRequestService) Quote(req *dto.PriceRequest) (*dto.PriceResponse, error) {
	printType, err := domain.ParsePrintType(req.PrintType)
	if err != nil {
		return nil, err
	}

	q, err := domain.ComputeCost(printType,
		dto.IntOrDefault(req.Copies, dto.DefaultCopies),
		dto.IntOrDefault(req.Pages, dto.DefaultPages),
		req.DoubleSided)
	if err != nil {
		return nil, err
	}

	return &dto.PriceResponse{TotalPages: q.TotalSheets, PageCost: q.PageCost, TotalCost: q.TotalCost}, nil
}

// UploadForm describes the upload page, including the caller's history when signed in
func (s *PrintRequestService) UploadForm(ctx context.Context, principal *auth.Principal) (*dto.UploadFormResponse, error) {
	resp := &dto.UploadFormResponse{
		AllowedExtensions: s.storage.AllowedExtensions(),
		MaxUploadBytes:    s.storage.MaxBytes(),
		Rates:             domain.RateTable(),
		Requests:          []dto.PrintRequestResponse{},
	}
	if principal == nil {
		return resp, nil
	}

	history, err := s.History(ctx, principal)
	if err != nil {
		return nil, err
	}
	resp.Requests = dto.FromPrintRequests(history)
	return resp, nil
}

// Submit stores the document and records a pending request priced by ComputeCost
func (s *PrintRequestService) Submit(ctx context.Context, principal *auth.Principal, req *dto.SubmitPrintRequest, file *multipart.FileHeader) (*models.PrintRequest, error) {
	if err := auth.RequireAuthenticated(principal); err != nil {
		return nil, err
	}

	printType, err := domain.ParsePrintType(req.PrintType)
	if err != nil {
		return nil, err
	}
	copies := dto.IntOrDefault(req.Copies, dto.DefaultCopies)
	pages := dto.IntOrDefault(req.Pages, dto.DefaultPages)

	// Price first so invalid options never leave a file behind
	quote, err := domain.ComputeCost(printType, copies, pages, req.DoubleSided)
	if err != nil {
		return nil, err
	}

	stored, err := s.storage.Save(file)
	if err != nil {
		return nil, err
	}

	pr := &models.PrintRequest{
		UserID:           principal.UserID,
		Username:         principal.Username,
		Filename:         stored.StoredName,
		OriginalFilename: stored.OriginalName,
		FilePath:         stored.Path,
		PrintType:        printType,
		Copies:           copies,
		DoubleSided:      req.DoubleSided,
		Binding:          strings.TrimSpace(req.Binding),
		Notes:            strings.TrimSpace(req.Notes),
		Pages:            pages,
		TotalCost:        quote.TotalCost,
		Status:           domain.StatusPending,
	}

	if err := s.requestRepo.Create(ctx, pr); err != nil {
		if delErr := s.storage.Delete(stored.Path); delErr != nil {
			s.logger.Error().Err(delErr).Str("path", stored.Path).Msg("Failed to remove orphaned upload")
		}
		return nil, fmt.Errorf("failed to save print request: %w", err)
	}

	s.logger.Info().
		Int64("requestID", pr.ID).
		Int64("userID", pr.UserID).
		Str("printType", string(pr.PrintType)).
		Int64("totalCost", pr.TotalCost).
		Msg("Print request submitted")
	return pr, nil
}

// History lists the caller's own requests, newest first
func (s *PrintRequestService) History(ctx context.Context, principal *auth.Principal) ([]*models.PrintRequest, error) {
	if err := auth.RequireAuthenticated(principal); err != nil {
		return nil, err
	}
	return s.requestRepo.ListByUser(ctx, principal.UserID)
}

// Profile returns the caller's history together with aggregate stats
func (s *PrintRequestService) Profile(ctx context.Context, principal *auth.Principal) (*dto.ProfileResponse, error) {
	history, err := s.History(ctx, principal)
	if err != nil {
		return nil, err
	}

	stats, err := s.requestRepo.StatsByUser(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	return &dto.ProfileResponse{
		User: dto.UserResponse{
			ID:       principal.UserID,
			Username: principal.Username,
			Role:     string(principal.Role),
		},
		Stats:    *stats,
		Requests: dto.FromPrintRequests(history),
	}, nil
}

// UpdateStatus advances a request's status on behalf of an admin
func (s *PrintRequestService) UpdateStatus(ctx context.Context, principal *auth.Principal, id int64, rawStatus string) (*models.PrintRequest, error) {
	if err := auth.RequireAuthenticated(principal); err != nil {
		return nil, err
	}
	if !principal.IsAdmin() {
		return nil, apperrors.NewForbiddenError("Access denied")
	}

	requested, err := domain.ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	pr, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := domain.Transition(pr.Status, requested, principal.Role)
	if err != nil {
		return nil, err
	}

	at := domain.NextUpdatedAt(pr.UpdatedAt, s.now())
	if err := s.requestRepo.UpdateStatus(ctx, pr.ID, pr.Status, next, at); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("requestID", pr.ID).
		Int64("adminID", principal.UserID).
		Str("from", string(pr.Status)).
		Str("to", string(next)).
		Msg("Print request status updated")

	pr.Status = next
	pr.UpdatedAt = at
	return pr, nil
}
