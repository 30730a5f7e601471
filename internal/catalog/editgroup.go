package catalog

import (
	"time"

	"github.com/mm--/fatcat/pkg/fcid"
	"gorm.io/gorm"
)

// Editgroup is a container of related edits, visible only to its author
// until accepted (spec.md §3 "Editgroup").
type Editgroup struct {
	EditgroupID fcid.FatCatId `gorm:"column:editgroup_id;primaryKey;type:uuid"`
	EditorID    fcid.FatCatId `gorm:"column:editor_id;type:uuid;index;not null"`
	ExtraJSON   []byte        `gorm:"column:extra_json;type:jsonb"`
	CreatedAt   time.Time     `gorm:"column:created_at;not null"`
}

func (Editgroup) TableName() string { return "editgroup" }

// Status derives {open, accepted} by checking for a referencing changelog
// row (spec.md §3: "Accepted iff a changelog row references it").
func (eg Editgroup) Status(tx *gorm.DB) (string, error) {
	var count int64
	if err := tx.Model(&Changelog{}).Where("editgroup_id = ?", eg.EditgroupID).Count(&count).Error; err != nil {
		return "", WrapError(Internal, err, "checking editgroup %s status", eg.EditgroupID)
	}
	if count > 0 {
		return "accepted", nil
	}
	return "open", nil
}

// Changelog is the append-only, monotonically numbered log of accepted
// editgroups (spec.md §3 "Changelog").
type Changelog struct {
	ChangelogID int64         `gorm:"column:changelog_id;primaryKey;autoIncrement"`
	EditgroupID fcid.FatCatId `gorm:"column:editgroup_id;type:uuid;uniqueIndex;not null"`
	Timestamp   time.Time     `gorm:"column:timestamp;not null"`
}

func (Changelog) TableName() string { return "changelog" }

// GetChangelog returns changelog entries in descending id order, newest
// first, capped at limit (spec.md §5 "Ordering guarantees").
func GetChangelog(tx *gorm.DB, limit int) ([]Changelog, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []Changelog
	if err := tx.Order("changelog_id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, WrapError(Internal, err, "fetching changelog")
	}
	return rows, nil
}

// GetChangelogEntry fetches a single changelog row by id.
func GetChangelogEntry(tx *gorm.DB, changelogID int64) (*Changelog, error) {
	var row Changelog
	err := tx.Where("changelog_id = ?", changelogID).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, NewError(NotFound, "changelog entry not found: %d", changelogID)
	}
	if err != nil {
		return nil, WrapError(Internal, err, "fetching changelog entry %d", changelogID)
	}
	return &row, nil
}

// GetEditorChangelog returns the changelog entries for editgroups authored
// by editorID, newest first, capped at limit (spec.md §6
// "/editor/{fcid}/changelog").
func GetEditorChangelog(tx *gorm.DB, editorID fcid.FatCatId, limit int) ([]Changelog, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []Changelog
	err := tx.Select("changelog.*").
		Joins("JOIN editgroup ON editgroup.editgroup_id = changelog.editgroup_id").
		Where("editgroup.editor_id = ?", editorID).
		Order("changelog.changelog_id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, WrapError(Internal, err, "fetching changelog for editor %s", editorID)
	}
	return rows, nil
}

// EditContext carries the editor/editgroup/autoaccept state under which a
// batch of edits is staged (spec.md §4.3), produced by MakeEditContext.
type EditContext struct {
	EditorID    fcid.FatCatId
	EditgroupID fcid.FatCatId
	Autoaccept  bool
	ExtraJSON   []byte
}

// MakeEditContext resolves or creates the editgroup a caller's edits will
// be staged into, following spec.md §4.3's three-branch policy exactly.
func MakeEditContext(tx *gorm.DB, editorID fcid.FatCatId, editgroupID *fcid.FatCatId, autoaccept bool, extraJSON []byte) (*EditContext, error) {
	if editgroupID != nil {
		eg, err := GetEditgroup(tx, *editgroupID)
		if err != nil {
			return nil, err
		}
		return &EditContext{EditorID: editorID, EditgroupID: eg.EditgroupID, Autoaccept: autoaccept, ExtraJSON: extraJSON}, nil
	}

	if autoaccept {
		eg, err := insertEditgroup(tx, editorID, extraJSON)
		if err != nil {
			return nil, err
		}
		return &EditContext{EditorID: editorID, EditgroupID: eg.EditgroupID, Autoaccept: true, ExtraJSON: extraJSON}, nil
	}

	editor, err := GetEditor(tx, editorID)
	if err != nil {
		return nil, err
	}
	if editor.ActiveEditgroupID != nil {
		return &EditContext{EditorID: editorID, EditgroupID: *editor.ActiveEditgroupID, Autoaccept: false, ExtraJSON: extraJSON}, nil
	}

	eg, err := insertEditgroup(tx, editorID, extraJSON)
	if err != nil {
		return nil, err
	}
	active := eg.EditgroupID
	if err := tx.Model(&Editor{}).Where("editor_id = ?", editorID).
		Update("active_editgroup_id", active).Error; err != nil {
		return nil, WrapError(Internal, err, "setting active editgroup for editor %s", editorID)
	}
	return &EditContext{EditorID: editorID, EditgroupID: eg.EditgroupID, Autoaccept: false, ExtraJSON: extraJSON}, nil
}

// GetEditgroup fetches an editgroup by its FatCatId. Returns NotFound if
// absent.
func GetEditgroup(tx *gorm.DB, editgroupID fcid.FatCatId) (*Editgroup, error) {
	var eg Editgroup
	err := tx.Where("editgroup_id = ?", editgroupID).First(&eg).Error
	if err == gorm.ErrRecordNotFound {
		return nil, NewError(NotFound, "editgroup not found: %s", editgroupID)
	}
	if err != nil {
		return nil, WrapError(Internal, err, "fetching editgroup %s", editgroupID)
	}
	return &eg, nil
}

func insertEditgroup(tx *gorm.DB, editorID fcid.FatCatId, extraJSON []byte) (*Editgroup, error) {
	eg := &Editgroup{
		EditgroupID: fcid.New(),
		EditorID:    editorID,
		ExtraJSON:   extraJSON,
		CreatedAt:   time.Now(),
	}
	if err := tx.Create(eg).Error; err != nil {
		return nil, WrapError(Internal, err, "creating editgroup")
	}
	return eg, nil
}

// Check fails with EditgroupAlreadyAccepted if a changelog row already
// references this context's editgroup. Must be called within the
// enclosing transaction before persisting any edit that depends on the
// editgroup still being open (spec.md §4.3, §5 "make_edit_context and
// the subsequent edit insertion must share one transaction").
func (ec *EditContext) Check(tx *gorm.DB) error {
	var count int64
	if err := tx.Model(&Changelog{}).Where("editgroup_id = ?", ec.EditgroupID).Count(&count).Error; err != nil {
		return WrapError(Internal, err, "checking editgroup %s acceptance state", ec.EditgroupID)
	}
	if count > 0 {
		return NewError(EditgroupAlreadyAccepted, "editgroup %s is already accepted", ec.EditgroupID)
	}
	return nil
}

// AcceptEditgroup runs the acceptance protocol of spec.md §4.5 in its own
// transaction: assert not already accepted, promote every registered
// kind's staged edits in the fixed order, append a changelog row, and
// clear active_editgroup_id for any editor pointing at it.
func AcceptEditgroup(db *gorm.DB, registry *Registry, editgroupID fcid.FatCatId) (*Changelog, error) {
	var result *Changelog
	err := db.Transaction(func(tx *gorm.DB) error {
		row, err := acceptEditgroupTx(tx, registry, editgroupID)
		if err != nil {
			return err
		}
		result = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// acceptEditgroupTx is AcceptEditgroup's body, taking an already-open
// transaction so batch-create's autoaccept path (entity.go CreateBatch)
// can accept within the same transaction that staged the edits, per
// spec.md §4.4's "atomic insert of possibly thousands of entities".
func acceptEditgroupTx(tx *gorm.DB, registry *Registry, editgroupID fcid.FatCatId) (*Changelog, error) {
	eg, err := GetEditgroup(tx, editgroupID)
	if err != nil {
		return nil, err
	}

	var existing int64
	if err := tx.Model(&Changelog{}).Where("editgroup_id = ?", eg.EditgroupID).Count(&existing).Error; err != nil {
		return nil, WrapError(Internal, err, "checking editgroup %s acceptance state", editgroupID)
	}
	if existing > 0 {
		return nil, NewError(EditgroupAlreadyAccepted, "editgroup %s is already accepted", editgroupID)
	}

	for _, kind := range registry.Kinds() {
		crud := registry.Get(kind)
		if err := crud.AcceptEdits(tx, editgroupID); err != nil {
			return nil, err
		}
	}

	row := &Changelog{
		EditgroupID: editgroupID,
		Timestamp:   time.Now(),
	}
	if err := tx.Create(row).Error; err != nil {
		return nil, WrapError(Internal, err, "appending changelog row for editgroup %s", editgroupID)
	}

	if err := tx.Model(&Editor{}).Where("active_editgroup_id = ?", editgroupID).
		Update("active_editgroup_id", nil).Error; err != nil {
		return nil, WrapError(Internal, err, "clearing active editgroup for editgroup %s", editgroupID)
	}

	return row, nil
}
