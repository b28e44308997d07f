package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/campusprint/internal/app/models/dto"
	"github.com/yigit/campusprint/internal/app/repositories"
	"github.com/yigit/campusprint/internal/app/services"
	"github.com/yigit/campusprint/internal/domain"
	"github.com/yigit/campusprint/internal/middleware"
	"github.com/yigit/campusprint/internal/pkg/helpers"
)

// AdminController handles the print shop side
type AdminController struct {
	adminService   *services.AdminService
	requestService *services.PrintRequestService
	logger         zerolog.Logger
}

// NewAdminController creates a new AdminController
func NewAdminController(adminService *services.AdminService, requestService *services.PrintRequestService, logger zerolog.Logger) *AdminController {
	return &AdminController{
		adminService:   adminService,
		requestService: requestService,
		logger:         logger,
	}
}

// Dashboard lists every request with global counts
// @Summary Admin dashboard
// @Description Counts per status and all print requests, newest first
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Param status query string false "Filter by status (pending, printing, completed)"
// @Success 200 {object} dto.APIResponse{data=dto.DashboardResponse} "Dashboard"
// @Failure 400 {object} dto.ErrorResponse "Invalid status filter"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Access denied"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin [get]
func (c *AdminController) Dashboard(ctx *gin.Context) {
	params := repositories.ListParams{}
	params.Page, params.Size = helpers.ParsePaginationParams(ctx)

	if raw := strings.TrimSpace(ctx.Query("status")); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		params.Status = &status
	}

	dashboard, err := c.adminService.Dashboard(ctx.Request.Context(), middleware.PrincipalFrom(ctx), params)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dashboard})
}

// UpdateStatus moves a request forward in the pipeline
// @Summary Update request status
// @Description Sets the status of a print request. Status only moves forward: pending, printing, completed.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateStatusRequest true "Request id and new status"
// @Success 200 {object} dto.APIResponse{data=dto.UpdateStatusResponse} "Status updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid status or transition"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Access denied"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Failure 409 {object} dto.ErrorResponse "Status changed concurrently"
// @Router /update-request-status [post]
func (c *AdminController) UpdateStatus(ctx *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := middleware.BindJSON(ctx, &req); err != nil {
		middleware.AbortWithBindError(ctx, err)
		return
	}

	pr, err := c.requestService.UpdateStatus(ctx.Request.Context(), middleware.PrincipalFrom(ctx), req.RequestID, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.UpdateStatusResponse{
		Success:   true,
		Status:    string(pr.Status),
		UpdatedAt: pr.UpdatedAt,
	}})
}

// LegacyUpdateStatus serves /api/update_request_status with snake_case keys
// @Summary Update request status (legacy)
// @Tags legacy
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.LegacyUpdateStatusRequest true "Request id and new status"
// @Success 200 {object} dto.LegacySuccessResponse "Status updated"
// @Failure 403 {object} dto.ErrorResponse "Access denied"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Router /update_request_status [post]
func (c *AdminController) LegacyUpdateStatus(ctx *gin.Context) {
	var req dto.LegacyUpdateStatusRequest
	if err := middleware.BindJSON(ctx, &req); err != nil {
		middleware.AbortWithBindError(ctx, err)
		return
	}

	if _, err := c.requestService.UpdateStatus(ctx.Request.Context(), middleware.PrincipalFrom(ctx), req.RequestID, req.Status); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.LegacySuccessResponse{Success: true})
}
