package dto

import (
	"time"

	"github.com/yigit/campusprint/internal/app/models"
	"github.com/yigit/campusprint/internal/domain"
)

// PriceRequest is the body of the price estimate endpoint
type PriceRequest struct {
	PrintType   string `json:"printType" binding:"required"`
	Copies      *int   `json:"copies,omitempty"`
	Pages       *int   `json:"pages,omitempty"`
	DoubleSided bool   `json:"doubleSided"`
}

// PriceResponse is the computed estimate
type PriceResponse struct {
	TotalPages int64 `json:"totalPages" example:"2"`
	PageCost   int64 `json:"pageCost" example:"5"`
	TotalCost  int64 `json:"totalCost" example:"10"`
}

// SubmitPrintRequest holds the multipart form fields sent with an upload
type SubmitPrintRequest struct {
	PrintType   string `form:"printType" binding:"required"`
	Copies      *int   `form:"copies"`
	Pages       *int   `form:"pages"`
	DoubleSided bool   `form:"doubleSided"`
	Binding     string `form:"binding" binding:"max=50"`
	Notes       string `form:"notes" binding:"max=2000"`
}

// UpdateStatusRequest is the body of the admin status endpoint
type UpdateStatusRequest struct {
	RequestID int64  `json:"requestId" binding:"required,min=1"`
	Status    string `json:"status" binding:"required"`
}

// UpdateStatusResponse reports the outcome of a status update
type UpdateStatusResponse struct {
	Success   bool      `json:"success"`
	Status    string    `json:"status,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Defaults applied when optional quantities are omitted
const (
	DefaultCopies = 1
	DefaultPages  = 1
)

// IntOrDefault dereferences p or returns def when it is nil
func IntOrDefault(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

// PrintRequestResponse is the public shape of a print request
type PrintRequestResponse struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"userId"`
	Username         string    `json:"username,omitempty"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"originalFilename"`
	PrintType        string    `json:"printType"`
	Copies           int       `json:"copies"`
	DoubleSided      bool      `json:"doubleSided"`
	Binding          string    `json:"binding,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	Pages            int       `json:"pages"`
	TotalCost        int64     `json:"totalCost"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// FromPrintRequest converts a model into its response
func FromPrintRequest(pr *models.PrintRequest) PrintRequestResponse {
	return PrintRequestResponse{
		ID:               pr.ID,
		UserID:           pr.UserID,
		Username:         pr.Username,
		Filename:         pr.Filename,
		OriginalFilename: pr.OriginalFilename,
		PrintType:        string(pr.PrintType),
		Copies:           pr.Copies,
		DoubleSided:      pr.DoubleSided,
		Binding:          pr.Binding,
		Notes:            pr.Notes,
		Pages:            pr.Pages,
		TotalCost:        pr.TotalCost,
		Status:           string(pr.Status),
		CreatedAt:        pr.CreatedAt,
		UpdatedAt:        pr.UpdatedAt,
	}
}

// FromPrintRequests converts a slice, never returning nil
func FromPrintRequests(items []*models.PrintRequest) []PrintRequestResponse {
	out := make([]PrintRequestResponse, 0, len(items))
	for _, pr := range items {
		out = append(out, FromPrintRequest(pr))
	}
	return out
}

// SubmitResponse is returned after a successful upload
type SubmitResponse struct {
	Request PrintRequestResponse `json:"request"`
	Message string               `json:"message" example:"Print request submitted successfully! Total cost: 10"`
}

// UploadFormResponse describes the upload form and, for signed-in users, their history
type UploadFormResponse struct {
	AllowedExtensions []string                   `json:"allowedExtensions"`
	MaxUploadBytes    int64                      `json:"maxUploadBytes"`
	Rates             map[domain.PrintType]int64 `json:"rates"`
	Requests          []PrintRequestResponse     `json:"requests"`
}

// ProfileResponse is a user's own history plus aggregates
type ProfileResponse struct {
	User     UserResponse             `json:"user"`
	Stats    models.PrintRequestStats `json:"stats"`
	Requests []PrintRequestResponse   `json:"requests"`
}

// DashboardStats are the global counts on the admin dashboard
type DashboardStats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Printing  int64 `json:"printing"`
	Completed int64 `json:"completed"`
}

// DashboardResponse is the admin dashboard payload
type DashboardResponse struct {
	Stats      DashboardStats         `json:"stats"`
	Requests   []PrintRequestResponse `json:"requests"`
	Pagination PaginationInfo         `json:"pagination"`
}

// LegacyPriceRequest is the snake_case body accepted on /api/calculate_price
type LegacyPriceRequest struct {
	PrintType   string `json:"print_type" binding:"required" example:"bw"`
	Copies      *int   `json:"copies,omitempty" example:"2"`
	Pages       *int   `json:"pages,omitempty" example:"10"`
	DoubleSided bool   `json:"double_sided" example:"false"`
}

// PriceRequest converts the legacy body to the current one
func (r *LegacyPriceRequest) PriceRequest() *PriceRequest {
	return &PriceRequest{PrintType: r.PrintType, Copies: r.Copies, Pages: r.Pages, DoubleSided: r.DoubleSided}
}

// LegacyPriceResponse mirrors PriceResponse with snake_case keys
type LegacyPriceResponse struct {
	TotalPages int64 `json:"total_pages" example:"20"`
	PageCost   int64 `json:"page_cost" example:"5"`
	TotalCost  int64 `json:"total_cost" example:"100"`
}

// NewLegacyPriceResponse converts a PriceResponse
func NewLegacyPriceResponse(p *PriceResponse) LegacyPriceResponse {
	return LegacyPriceResponse{TotalPages: p.TotalPages, PageCost: p.PageCost, TotalCost: p.TotalCost}
}

// LegacyUpdateStatusRequest is the snake_case body accepted on /api/update_request_status
type LegacyUpdateStatusRequest struct {
	RequestID int64  `json:"request_id" binding:"required,min=1" example:"12"`
	Status    string `json:"status" binding:"required" example:"printing"`
}

// LegacySuccessResponse is the bare acknowledgement returned by legacy endpoints
type LegacySuccessResponse struct {
	Success bool `json:"success" example:"true"`
}
