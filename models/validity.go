package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/imis_backend/config"
)

// Validity is embedded by every register entity. A row is current while
// ValidityTo is NULL; archival sets ValidityTo and never removes the row, so
// historical claims keep resolving their references.
type Validity struct {
	ValidityFrom time.Time  `gorm:"not null;index" json:"validity_from"`
	ValidityTo   *time.Time `gorm:"index" json:"validity_to"`
	AuditUserId  int        `gorm:"not null" json:"audit_user_id"`
}

func (v Validity) IsValid() bool {
	return v.ValidityTo == nil
}

// Register is the contract every reconciled entity satisfies (value
// receivers live in registerInterface.go).
type Register interface {
	GetId() int
	GetCode() string
}

// FindValidByCodes returns the currently-valid rows matching the given
// codes. Callers are expected to keep len(codes) within
// config.LookupChunkSize; the reconciliation engine chunks for them.
func FindValidByCodes[T Register](ctx context.Context, codes []string) ([]T, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	db := config.GetDB()
	var rows []T
	err := db.WithContext(ctx).
		Where("validity_to IS NULL").
		Where("code IN ?", codes).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindValidExcluding returns the currently-valid rows whose code is NOT in
// the given set. Used by the archival sweep.
func FindValidExcluding[T Register](ctx context.Context, codes []string) ([]T, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("validity_to IS NULL")
	if len(codes) > 0 {
		dbCtx = dbCtx.Where("code NOT IN ?", codes)
	}
	var rows []T
	if err := dbCtx.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func CreateRegisterRow[T Register](ctx context.Context, row *T) error {
	db := config.GetDB()
	return db.WithContext(ctx).Create(row).Error
}

// UpdateRegisterRow snapshots the pre-change state, then applies the partial
// update map and refreshes ValidityFrom. Fields absent from updates are left
// untouched (shallow merge).
func UpdateRegisterRow[T Register](ctx context.Context, referenceType string, existing *T, updates map[string]interface{}) error {
	db := config.GetDB()
	if err := SaveRegisterSnapshot(ctx, referenceType, (*existing).GetId(), existing); err != nil {
		return err
	}
	updates["validity_from"] = time.Now()
	return db.WithContext(ctx).Model(existing).Updates(updates).Error
}

// ArchiveWhereCodeNotIn soft-deletes every currently-valid row whose code is
// absent from keepCodes, snapshotting each row first. Returns the number of
// rows affected; dry runs only count.
func ArchiveWhereCodeNotIn[T Register](ctx context.Context, referenceType string, keepCodes []string, auditUserId int, dryRun bool) (int64, error) {
	rows, err := FindValidExcluding[T](ctx, keepCodes)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || dryRun {
		return int64(len(rows)), nil
	}

	ids := make([]int, 0, len(rows))
	for _, row := range rows {
		if err := SaveRegisterSnapshot(ctx, referenceType, row.GetId(), row); err != nil {
			return 0, err
		}
		ids = append(ids, row.GetId())
	}

	db := config.GetDB()
	var model T
	err = db.WithContext(ctx).Model(&model).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"validity_to":   time.Now(),
			"audit_user_id": auditUserId,
		}).Error
	if err != nil {
		return 0, err
	}
	return int64(len(ids)), nil
}

// FindAllValid returns every currently-valid row, ordered by code. Used by
// the register downloads and extracts.
func FindAllValid[T Register](ctx context.Context) ([]T, error) {
	db := config.GetDB()
	var rows []T
	err := db.WithContext(ctx).
		Where("validity_to IS NULL").
		Order("code").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindValidWhere is the point-lookup used by the per-call memo caches
// (location parents, pricelists by name). Absent rows return (nil, nil).
func FindValidWhere[T any](ctx context.Context, condition string, values ...interface{}) (*T, error) {
	db := config.GetDB()
	var rows []T
	err := db.WithContext(ctx).
		Where("validity_to IS NULL").
		Where(condition, values...).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
