package domain

import (
	"fmt"
	"strings"

	"github.com/yigit/campusprint/internal/pkg/apperrors"
)

// PrintType is the colour mode of a print job
type PrintType string

const (
	PrintTypeBW    PrintType = "bw"
	PrintTypeColor PrintType = "color"
)

// ParsePrintType converts raw input into a PrintType. Unknown values are rejected.
func ParsePrintType(raw string) (PrintType, error) {
	switch pt := PrintType(strings.ToLower(strings.TrimSpace(raw))); pt {
	case PrintTypeBW, PrintTypeColor:
		return pt, nil
	default:
		return "", apperrors.NewValidationError(apperrors.ErrInvalidPrintType,
			fmt.Sprintf("print type must be one of: bw, color (got %q)", raw))
	}
}

// Status is the handling stage of a print request
type Status string

const (
	StatusPending   Status = "pending"
	StatusPrinting  Status = "printing"
	StatusCompleted Status = "completed"
)

// Statuses lists every valid status in pipeline order.
var Statuses = []Status{StatusPending, StatusPrinting, StatusCompleted}

// ParseStatus converts raw input into a Status. Unknown values are rejected.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := statusRank[s]; !ok {
		return "", apperrors.NewValidationError(apperrors.ErrInvalidStatus,
			fmt.Sprintf("status must be one of: pending, printing, completed (got %q)", raw))
	}
	return s, nil
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Role is the permission tag on a user account
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// ParseRole converts a stored role into a Role. Empty input yields the student default.
func ParseRole(raw string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(raw))); r {
	case "":
		return RoleStudent, nil
	case RoleStudent, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", apperrors.ErrValidationFailed, raw)
	}
}

// IsAdmin reports whether the role carries the administrator capability.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}
