package domain

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
)

// Value implements driver.Valuer. Ids are stored as BIGINT.
func (id ProjectID) Value() (driver.Value, error) {
	return uintValue(uint64(id))
}

// Scan implements sql.Scanner.
func (id *ProjectID) Scan(src any) error {
	n, err := scanUint(src)
	if err != nil {
		return fmt.Errorf("scan project id: %w", err)
	}
	*id = ProjectID(n)
	return nil
}

// Value implements driver.Valuer. Periods are stored as BIGINT.
func (p Period) Value() (driver.Value, error) {
	return uintValue(uint64(p))
}

// Scan implements sql.Scanner.
func (p *Period) Scan(src any) error {
	n, err := scanUint(src)
	if err != nil {
		return fmt.Errorf("scan period: %w", err)
	}
	*p = Period(n)
	return nil
}

func uintValue(n uint64) (driver.Value, error) {
	if n > math.MaxInt64 {
		return nil, fmt.Errorf("value %d overflows BIGINT", n)
	}
	return int64(n), nil
}

func scanUint(src any) (uint64, error) {
	switch v := src.(type) {
	case int64:
		if v < 0 {
			return 0, fmt.Errorf("negative value %d", v)
		}
		return uint64(v), nil
	case []byte:
		return strconv.ParseUint(string(v), 10, 64)
	case string:
		return strconv.ParseUint(v, 10, 64)
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("unsupported type %T", src)
	}
}
