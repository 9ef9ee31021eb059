package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/edu-admin-api/internal/dto"
)

// snapshot serializes a model into the JSON map stored in audit entries.
func snapshot(value interface{}) datatypes.JSONMap {
	if value == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	result := datatypes.JSONMap{}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil
	}
	return result
}

// storeErr wraps a backing-store failure as transient.
func storeErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

// translateNotFound maps gorm's not-found onto the service sentinel and
// everything else onto a transient store failure.
func translateNotFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return storeErr(err)
}

func paginationMeta(page, pageSize int, total int64) dto.PaginationMeta {
	if page <= 0 {
		page = 1
	}
	meta := dto.PaginationMeta{Page: page, PageSize: pageSize, TotalItems: total}
	if pageSize > 0 {
		meta.TotalPages = int(math.Ceil(float64(total) / float64(pageSize)))
	} else {
		meta.TotalPages = 1
	}
	return meta
}
