package models

import (
	"time"

	"github.com/yigit/campusprint/internal/domain"
)

// PrintRequest defines a submitted print job based on the 'print_requests' table
type PrintRequest struct {
	ID               int64            `json:"id" db:"id"`
	UserID           int64            `json:"userId" db:"user_id"`
	Filename         string           `json:"filename" db:"filename"`                   // Stored, collision-resistant name
	OriginalFilename string           `json:"originalFilename" db:"original_filename"` // Sanitized name supplied by the user
	FilePath         string           `json:"-" db:"file_path"`
	PrintType        domain.PrintType `json:"printType" db:"print_type"`
	Copies           int              `json:"copies" db:"copies"`
	DoubleSided      bool             `json:"doubleSided" db:"double_sided"`
	Binding          string           `json:"binding,omitempty" db:"binding"`
	Notes            string           `json:"notes,omitempty" db:"notes"`
	Pages            int              `json:"pages" db:"pages"` // Declared by the submitter, not read from the file
	TotalCost        int64            `json:"totalCost" db:"total_cost"`
	Status           domain.Status    `json:"status" db:"status"`
	CreatedAt        time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time        `json:"updatedAt" db:"updated_at"`

	Username string `json:"username,omitempty" db:"username"` // Owner, filled on admin listings
}

// PrintRequestStats aggregates a set of print requests
type PrintRequestStats struct {
	TotalRequests int64 `json:"totalRequests"`
	TotalSpent    int64 `json:"totalSpent"`
	Pending       int64 `json:"pending"`
	Printing      int64 `json:"printing"`
	Completed     int64 `json:"completed"`
}
