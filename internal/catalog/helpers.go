package catalog

import (
	"fmt"

	"github.com/mm--/fatcat/pkg/fcid"
	"gorm.io/gorm"
)

// Every kind's ident and edit tables share an identical column shape
// (IdentEnvelope, EditEnvelope); only the revision table varies per kind.
// These helpers operate on any kind's ident/edit table by name, so the
// per-kind CRUD implementations (container.go, creator.go, ...) don't
// each reimplement the staging/acceptance mechanics.

func insertIdent(tx *gorm.DB, identTable string) (fcid.FatCatId, error) {
	id := fcid.New()
	env := &IdentEnvelope{IdentID: id, IsLive: false}
	if err := tx.Table(identTable).Create(env).Error; err != nil {
		return fcid.Nil, WrapError(Internal, err, "creating ident in %s", identTable)
	}
	return id, nil
}

func getIdentRow(tx *gorm.DB, identTable string, id fcid.FatCatId) (*IdentEnvelope, error) {
	var env IdentEnvelope
	err := tx.Table(identTable).Where("ident_id = ?", id).First(&env).Error
	if err == gorm.ErrRecordNotFound {
		return nil, NewError(NotFound, "%s not found: %s", identTable, id)
	}
	if err != nil {
		return nil, WrapError(Internal, err, "fetching ident from %s", identTable)
	}
	return &env, nil
}

func insertEditRow(tx *gorm.DB, editTable string, e *EditEnvelope) error {
	if err := tx.Table(editTable).Create(e).Error; err != nil {
		return WrapError(Internal, err, "creating edit in %s", editTable)
	}
	return nil
}

func getEditRow(tx *gorm.DB, editTable string, editID int64) (*EditEnvelope, error) {
	var e EditEnvelope
	err := tx.Table(editTable).Where("edit_id = ?", editID).First(&e).Error
	if err == gorm.ErrRecordNotFound {
		return nil, NewError(NotFound, "edit not found: %d", editID)
	}
	if err != nil {
		return nil, WrapError(Internal, err, "fetching edit from %s", editTable)
	}
	return &e, nil
}

// findOpenEditForIdent returns the existing edit against ident in
// editgroupID, if one is already staged there (spec.md §4.4's
// db_update: "if an open edit for this ident already exists in this
// editgroup, it is replaced rather than duplicated").
func findOpenEditForIdent(tx *gorm.DB, editTable string, editgroupID, identID fcid.FatCatId) (*EditEnvelope, error) {
	var e EditEnvelope
	err := tx.Table(editTable).
		Where("editgroup_id = ? AND ident_id = ?", editgroupID, identID).
		First(&e).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, WrapError(Internal, err, "checking existing edit in %s", editTable)
	}
	return &e, nil
}

func deleteEditRowChecked(tx *gorm.DB, editTable string, editID int64) error {
	e, err := getEditRow(tx, editTable, editID)
	if err != nil {
		return err
	}
	var accepted int64
	if err := tx.Model(&Changelog{}).Where("editgroup_id = ?", e.EditgroupID).Count(&accepted).Error; err != nil {
		return WrapError(Internal, err, "checking editgroup acceptance for edit %d", editID)
	}
	if accepted > 0 {
		return NewError(OtherBadRequest, "cannot delete edit %d: editgroup %s already accepted", editID, e.EditgroupID)
	}
	if err := tx.Table(editTable).Where("edit_id = ?", editID).Delete(&EditEnvelope{}).Error; err != nil {
		return WrapError(Internal, err, "deleting edit %d", editID)
	}
	return nil
}

// acceptEditsGeneric promotes every staged edit for editgroupID in
// editTable to the ident table, per spec.md §4.4 db_accept_edits.
func acceptEditsGeneric(tx *gorm.DB, identTable, editTable string, editgroupID fcid.FatCatId) error {
	var edits []EditEnvelope
	if err := tx.Table(editTable).Where("editgroup_id = ?", editgroupID).Find(&edits).Error; err != nil {
		return WrapError(Internal, err, "fetching staged edits from %s", editTable)
	}
	for _, e := range edits {
		updates := map[string]interface{}{"is_live": true}
		switch {
		case e.RedirectTo != nil:
			updates["redirect_to_ident"] = *e.RedirectTo
			updates["current_rev_id"] = nil
		case e.NewRevID != nil:
			updates["current_rev_id"] = *e.NewRevID
			updates["redirect_to_ident"] = nil
		default:
			updates["current_rev_id"] = nil
			updates["redirect_to_ident"] = nil
		}
		if err := tx.Table(identTable).Where("ident_id = ?", e.IdentID).Updates(updates).Error; err != nil {
			return WrapError(Internal, err, "promoting edit %d in %s", e.EditID, identTable)
		}
	}
	return nil
}

// validateRedirectTarget enforces I5 (redirect_to_ident must reference a
// live ident): the target must be live, carry no redirect of its own
// (chain length <= 1) and not be a tombstone.
func validateRedirectTarget(targetEnv *IdentEnvelope, target fcid.FatCatId) error {
	if targetEnv.IsRedirect() {
		return NewError(OtherBadRequest, "redirect target %s is itself a redirect", target)
	}
	if !targetEnv.IsLive || targetEnv.IsTombstone() {
		return NewError(OtherBadRequest, "redirect target %s is not live", target)
	}
	return nil
}

func getRedirectsGeneric(tx *gorm.DB, identTable string, target fcid.FatCatId) ([]fcid.FatCatId, error) {
	var envs []IdentEnvelope
	if err := tx.Table(identTable).Where("redirect_to_ident = ?", target).Find(&envs).Error; err != nil {
		return nil, WrapError(Internal, err, "fetching redirects from %s", identTable)
	}
	out := make([]fcid.FatCatId, 0, len(envs))
	for _, e := range envs {
		out = append(out, e.IdentID)
	}
	return out, nil
}

type historyRow struct {
	ChangelogID int64
	EditID      int64
	EditgroupID fcid.FatCatId
}

// getHistoryGeneric joins editTable against changelog on the accepted
// editgroup, returning entries newest-first (spec.md §4.4 db_get_history,
// round-trip scenario 10).
func getHistoryGeneric(tx *gorm.DB, editTable string, identID fcid.FatCatId, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT c.changelog_id AS changelog_id, e.edit_id AS edit_id, e.editgroup_id AS editgroup_id
		FROM %s e JOIN changelog c ON c.editgroup_id = e.editgroup_id
		WHERE e.ident_id = ?
		ORDER BY c.changelog_id DESC
		LIMIT ?`, editTable)

	var rows []historyRow
	if err := tx.Raw(query, identID, limit).Scan(&rows).Error; err != nil {
		return nil, WrapError(Internal, err, "fetching history from %s", editTable)
	}

	out := make([]HistoryEntry, 0, len(rows))
	for _, r := range rows {
		eg, err := GetEditgroup(tx, r.EditgroupID)
		if err != nil {
			return nil, err
		}
		out = append(out, HistoryEntry{
			ChangelogID: r.ChangelogID,
			Editgroup:   *eg,
			EditID:      r.EditID,
			EditgroupID: r.EditgroupID,
		})
	}
	return out, nil
}

// resolveRedirect follows at most one redirect hop from ident, per I5
// (redirect chains have length <= 1). Returns the ident actually carrying
// the live revision (either the original or its single redirect target)
// and, when a redirect was followed, the target id.
func resolveRedirect(tx *gorm.DB, identTable string, ident fcid.FatCatId) (*IdentEnvelope, *fcid.FatCatId, error) {
	env, err := getIdentRow(tx, identTable, ident)
	if err != nil {
		return nil, nil, err
	}
	if env.RedirectToIdent == nil {
		return env, nil, nil
	}
	target := *env.RedirectToIdent
	targetEnv, err := getIdentRow(tx, identTable, target)
	if err != nil {
		return nil, nil, err
	}
	return targetEnv, &target, nil
}
