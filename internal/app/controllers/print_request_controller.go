package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/campusprint/internal/app/models/dto"
	"github.com/yigit/campusprint/internal/app/services"
	"github.com/yigit/campusprint/internal/middleware"
	"github.com/yigit/campusprint/internal/pkg/apperrors"
)

// multipartOverhead is allowed on top of the file limit for the other form fields
const multipartOverhead = 1 << 20

// PrintRequestController handles the student side of print requests
type PrintRequestController struct {
	service        *services.PrintRequestService
	maxUploadBytes int64
	logger         zerolog.Logger
}

// NewPrintRequestController creates a new PrintRequestController
func NewPrintRequestController(service *services.PrintRequestService, maxUploadBytes int64, logger zerolog.Logger) *PrintRequestController {
	return &PrintRequestController{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// UploadForm returns what the upload page needs
// @Summary Upload form
// @Description Accepted file types, size limit and per-side rates. Includes the caller's requests when a token is sent.
// @Tags print-requests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UploadFormResponse} "Upload form"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /upload [get]
func (c *PrintRequestController) UploadForm(ctx *gin.Context) {
	form, err := c.service.UploadForm(ctx.Request.Context(), middleware.PrincipalFrom(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: form})
}

// Submit handles a document upload
// @Summary Submit a print request
// @Description Uploads a PDF, DOC or DOCX document with its print options. The cost is computed server side.
// @Tags print-requests
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Document (pdf, doc, docx)"
// @Param printType formData string true "bw or color"
// @Param copies formData int false "Number of copies" default(1)
// @Param pages formData int false "Pages in the document" default(1)
// @Param doubleSided formData bool false "Print on both sides"
// @Param binding formData string false "Binding option"
// @Param notes formData string false "Notes for the print shop"
// @Success 201 {object} dto.APIResponse{data=dto.SubmitResponse} "Print request submitted"
// @Failure 400 {object} dto.ErrorResponse "No file, invalid file type or invalid options"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 413 {object} dto.ErrorResponse "File too large"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /upload [post]
func (c *PrintRequestController) Submit(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, c.maxUploadBytes+multipartOverhead)

	file, err := ctx.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			middleware.HandleAPIError(ctx, apperrors.NewCustomError(apperrors.ErrFileTooLarge, "File exceeds the upload limit").
				WithDetails(map[string]interface{}{"maxBytes": c.maxUploadBytes}))
			return
		case !errors.Is(err, http.ErrMissingFile):
			c.logger.Warn().Err(err).Msg("Malformed upload")
			middleware.HandleAPIError(ctx, apperrors.NewValidationError(apperrors.ErrBadRequest, "Malformed multipart form"))
			return
		}
		// a missing file is reported by the storage layer
	}

	var req dto.SubmitPrintRequest
	if err := ctx.ShouldBind(&req); err != nil {
		middleware.AbortWithBindError(ctx, err)
		return
	}

	pr, err := c.service.Submit(ctx.Request.Context(), middleware.PrincipalFrom(ctx), &req, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: dto.SubmitResponse{
		Request: dto.FromPrintRequest(pr),
		Message: fmt.Sprintf("Print request submitted successfully! Total cost: %d", pr.TotalCost),
	}})
}

// Profile returns the caller's history and totals
// @Summary Profile
// @Description The caller's print requests, newest first, with totals
// @Tags print-requests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ProfileResponse} "Profile"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /profile [get]
func (c *PrintRequestController) Profile(ctx *gin.Context) {
	profile, err := c.service.Profile(ctx.Request.Context(), middleware.PrincipalFrom(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: profile})
}

// CalculatePrice quotes a job without storing it
// @Summary Calculate price
// @Description Prices a job. copies and pages default to 1.
// @Tags print-requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.PriceRequest true "Print options"
// @Success 200 {object} dto.APIResponse{data=dto.PriceResponse} "Quote"
// @Failure 400 {object} dto.ErrorResponse "Invalid options"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Router /calculate-price [post]
func (c *PrintRequestController) CalculatePrice(ctx *gin.Context) {
	var req dto.PriceRequest
	if err := middleware.BindJSON(ctx, &req); err != nil {
		middleware.AbortWithBindError(ctx, err)
		return
	}

	quote, err := c.service.Quote(&req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: quote})
}

// LegacyCalculatePrice serves /api/calculate_price with snake_case keys and a bare body
// @Summary Calculate price (legacy)
// @Tags legacy
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.LegacyPriceRequest true "Print options"
// @Success 200 {object} dto.LegacyPriceResponse "Quote"
// @Failure 400 {object} dto.ErrorResponse "Invalid options"
// @Router /calculate_price [post]
func (c *PrintRequestController) LegacyCalculatePrice(ctx *gin.Context) {
	var req dto.LegacyPriceRequest
	if err := middleware.BindJSON(ctx, &req); err != nil {
		middleware.AbortWithBindError(ctx, err)
		return
	}

	quote, err := c.service.Quote(req.PriceRequest())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewLegacyPriceResponse(quote))
}
