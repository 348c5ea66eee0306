package groups

import (
	"errors"

	"github.com/alumnihub/alumnihub/pkg/portal/models"
	"github.com/alumnihub/alumnihub/pkg/portal/selection"
	"gorm.io/gorm"
)

// ErrGroupMissing is returned by Resolve when any requested ID has no group.
var ErrGroupMissing = errors.New("one or more groups not found")

// Resolve loads the groups for a set of IDs, deduplicating first. All IDs
// must exist; a partial match returns ErrGroupMissing so callers never attach
// content to a half-resolved group set.
func Resolve(db *gorm.DB, ids []uint) ([]models.Group, error) {
	ids = selection.Dedupe(ids)
	groups := make([]models.Group, 0, len(ids))
	if len(ids) == 0 {
		return groups, nil
	}
	if err := db.Find(&groups, ids).Error; err != nil {
		return nil, err
	}
	if len(groups) != len(ids) {
		return nil, ErrGroupMissing
	}
	return groups, nil
}
