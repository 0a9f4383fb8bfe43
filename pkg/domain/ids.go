package domain

import (
	"strconv"
	"strings"

	dErrors "payout/pkg/domain-errors"
)

// ProjectID identifies a registered project. Ids are assigned sequentially
// starting at 1, so the zero value means "no project".
type ProjectID uint64

// ParseProjectID constructs a ProjectID from external input.
//
// Errors: returns CodeInvalidInput when the value is empty, not a base-10
// unsigned integer, or zero.
func ParseProjectID(s string) (ProjectID, error) {
	n, err := parseUint(s, "project id")
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "project id must be positive")
	}
	return ProjectID(n), nil
}

// IsNil reports whether the id is the "no project" value.
func (id ProjectID) IsNil() bool {
	return id == 0
}

func (id ProjectID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Period is a reading of the epoch oracle. Periods never decrease.
type Period uint64

// ParsePeriod constructs a Period from external input.
func ParsePeriod(s string) (Period, error) {
	n, err := parseUint(s, "period")
	if err != nil {
		return 0, err
	}
	return Period(n), nil
}

func (p Period) String() string {
	return strconv.FormatUint(uint64(p), 10)
}

// Since returns the number of periods elapsed from earlier to p, or zero when
// earlier is not before p.
func (p Period) Since(earlier Period) uint64 {
	if p <= earlier {
		return 0
	}
	return uint64(p - earlier)
}

func parseUint(s, field string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, field+" cannot be empty")
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid "+field)
	}
	return n, nil
}
