package catalog

import (
	"github.com/mm--/fatcat/pkg/fcid"
	"gorm.io/gorm"
)

const (
	filesetIdentTable = "fileset_ident"
	filesetRevTable   = "fileset_rev"
	filesetEditTable  = "fileset_edit"
)

// FilesetRelease associates a fileset revision with a release ident.
type FilesetRelease struct {
	FilesetRevID   fcid.FatCatId `gorm:"column:fileset_rev_id;primaryKey;type:uuid"`
	ReleaseIdentID fcid.FatCatId `gorm:"column:release_ident_id;primaryKey;type:uuid"`
}

func (FilesetRelease) TableName() string { return "fileset_release" }

// FilesetRev is the immutable revision content of a fileset entity (a
// bundle of files, eg a dataset), per SPEC_FULL.md §4.1. Manifest is a
// large optional field, suppressed by HideFlags.Manifest.
type FilesetRev struct {
	RevID        fcid.FatCatId `gorm:"column:rev_id;primaryKey;type:uuid"`
	ManifestJSON []byte        `gorm:"column:manifest;type:jsonb"`
	ExtraJSON    []byte        `gorm:"column:extra_json;type:jsonb"`
}

func (FilesetRev) TableName() string { return filesetRevTable }

// FilesetEntity is both the create/update input and the Get/GetRev
// output shape for fileset entities.
type FilesetEntity struct {
	Ident      fcid.FatCatId   `json:"ident,omitempty"`
	Revision   fcid.FatCatId   `json:"revision,omitempty"`
	Redirect   *fcid.FatCatId  `json:"redirect,omitempty"`
	IsLive     bool            `json:"is_live,omitempty"`
	Manifest   []byte          `json:"manifest,omitempty"`
	ReleaseIDs []fcid.FatCatId `json:"release_ids,omitempty"`
	ExtraJSON  []byte          `json:"extra_json,omitempty"`
}

func filesetRevToEntity(rev *FilesetRev, hide HideFlags) *FilesetEntity {
	out := &FilesetEntity{
		Revision:  rev.RevID,
		ExtraJSON: rev.ExtraJSON,
	}
	if !hide.Manifest {
		out.Manifest = rev.ManifestJSON
	}
	return out
}

// FilesetCrud implements EntityCrud for fileset entities.
type FilesetCrud struct{}

func (FilesetCrud) Kind() string { return "fileset" }

func (FilesetCrud) Get(tx *gorm.DB, ident fcid.FatCatId, hide HideFlags) (interface{}, error) {
	env, redirect, err := resolveRedirect(tx, filesetIdentTable, ident)
	if err != nil {
		return nil, err
	}
	if !env.IsLive || env.IsTombstone() {
		return nil, NewError(NotFound, "fileset not found or not live: %s", ident)
	}
	var rev FilesetRev
	if err := tx.Where("rev_id = ?", *env.CurrentRevID).First(&rev).Error; err != nil {
		return nil, WrapError(Internal, err, "fetching fileset revision %s", *env.CurrentRevID)
	}
	out := filesetRevToEntity(&rev, hide)
	out.Ident = ident
	out.IsLive = true
	out.Redirect = redirect
	return out, nil
}

func (FilesetCrud) GetRev(tx *gorm.DB, revID fcid.FatCatId, hide HideFlags) (interface{}, error) {
	var rev FilesetRev
	err := tx.Where("rev_id = ?", revID).First(&rev).Error
	if err == gorm.ErrRecordNotFound {
		return nil, NewError(NotFound, "fileset revision not found: %s", revID)
	}
	if err != nil {
		return nil, WrapError(Internal, err, "fetching fileset revision %s", revID)
	}
	return filesetRevToEntity(&rev, hide), nil
}

func (FilesetCrud) GetHistory(tx *gorm.DB, ident fcid.FatCatId, limit int) ([]HistoryEntry, error) {
	return getHistoryGeneric(tx, filesetEditTable, ident, limit)
}

func (FilesetCrud) GetRedirects(tx *gorm.DB, ident fcid.FatCatId) ([]fcid.FatCatId, error) {
	return getRedirectsGeneric(tx, filesetIdentTable, ident)
}

func (FilesetCrud) GetEdit(tx *gorm.DB, editID int64) (interface{}, error) {
	return getEditRow(tx, filesetEditTable, editID)
}

func (FilesetCrud) DeleteEdit(tx *gorm.DB, editID int64) error {
	return deleteEditRowChecked(tx, filesetEditTable, editID)
}

func (c FilesetCrud) Create(tx *gorm.DB, ec *EditContext, entity interface{}) (*EditEnvelope, error) {
	in, ok := entity.(*FilesetEntity)
	if !ok {
		return nil, NewError(OtherBadRequest, "create: expected *FilesetEntity, got %T", entity)
	}
	if err := ec.Check(tx); err != nil {
		return nil, err
	}

	rev := &FilesetRev{RevID: fcid.New(), ManifestJSON: in.Manifest, ExtraJSON: in.ExtraJSON}
	if err := tx.Create(rev).Error; err != nil {
		return nil, WrapError(Internal, err, "creating fileset revision")
	}
	if err := linkFilesetReleases(tx, rev.RevID, in.ReleaseIDs); err != nil {
		return nil, err
	}

	identID, err := insertIdent(tx, filesetIdentTable)
	if err != nil {
		return nil, err
	}
	edit := &EditEnvelope{EditgroupID: ec.EditgroupID, IdentID: identID, NewRevID: &rev.RevID, ExtraJSON: ec.ExtraJSON}
	if err := insertEditRow(tx, filesetEditTable, edit); err != nil {
		return nil, err
	}
	return edit, nil
}

func linkFilesetReleases(tx *gorm.DB, revID fcid.FatCatId, releaseIDs []fcid.FatCatId) error {
	for _, rid := range releaseIDs {
		link := &FilesetRelease{FilesetRevID: revID, ReleaseIdentID: rid}
		if err := tx.Create(link).Error; err != nil {
			return WrapError(Internal, err, "linking fileset revision %s to release %s", revID, rid)
		}
	}
	return nil
}

func (c FilesetCrud) Update(tx *gorm.DB, ec *EditContext, ident fcid.FatCatId, entity interface{}) (*EditEnvelope, error) {
	in, ok := entity.(*FilesetEntity)
	if !ok {
		return nil, NewError(OtherBadRequest, "update: expected *FilesetEntity, got %T", entity)
	}
	if err := ec.Check(tx); err != nil {
		return nil, err
	}

	env, err := getIdentRow(tx, filesetIdentTable, ident)
	if err != nil {
		return nil, err
	}
	if env.IsTombstone() {
		return nil, NewError(NotFound, "fileset is deleted: %s", ident)
	}
	if env.IsRedirect() {
		return nil, NewError(OtherBadRequest, "fileset %s is a redirect; update the canonical ident", ident)
	}

	rev := &FilesetRev{RevID: fcid.New(), ManifestJSON: in.Manifest, ExtraJSON: in.ExtraJSON}
	if err := tx.Create(rev).Error; err != nil {
		return nil, WrapError(Internal, err, "creating fileset revision")
	}
	if err := linkFilesetReleases(tx, rev.RevID, in.ReleaseIDs); err != nil {
		return nil, err
	}

	existing, err := findOpenEditForIdent(tx, filesetEditTable, ec.EditgroupID, ident)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.NewRevID = &rev.RevID
		existing.PrevRevID = env.CurrentRevID
		existing.ExtraJSON = ec.ExtraJSON
		if err := tx.Table(filesetEditTable).Where("edit_id = ?", existing.EditID).Updates(existing).Error; err != nil {
			return nil, WrapError(Internal, err, "replacing staged edit for fileset %s", ident)
		}
		return existing, nil
	}

	edit := &EditEnvelope{EditgroupID: ec.EditgroupID, IdentID: ident, NewRevID: &rev.RevID, PrevRevID: env.CurrentRevID, ExtraJSON: ec.ExtraJSON}
	if err := insertEditRow(tx, filesetEditTable, edit); err != nil {
		return nil, err
	}
	return edit, nil
}

func (c FilesetCrud) Delete(tx *gorm.DB, ec *EditContext, ident fcid.FatCatId) (*EditEnvelope, error) {
	if err := ec.Check(tx); err != nil {
		return nil, err
	}
	env, err := getIdentRow(tx, filesetIdentTable, ident)
	if err != nil {
		return nil, err
	}
	if env.IsTombstone() {
		return nil, NewError(NotFound, "fileset already deleted: %s", ident)
	}
	edit := &EditEnvelope{EditgroupID: ec.EditgroupID, IdentID: ident, PrevRevID: env.CurrentRevID, ExtraJSON: ec.ExtraJSON}
	if err := insertEditRow(tx, filesetEditTable, edit); err != nil {
		return nil, err
	}
	return edit, nil
}

func (c FilesetCrud) Redirect(tx *gorm.DB, ec *EditContext, ident, target fcid.FatCatId) (*EditEnvelope, error) {
	if ident.Equal(target) {
		return nil, NewError(OtherBadRequest, "fileset %s cannot redirect to itself", ident)
	}
	if err := ec.Check(tx); err != nil {
		return nil, err
	}
	env, err := getIdentRow(tx, filesetIdentTable, ident)
	if err != nil {
		return nil, err
	}
	targetEnv, err := getIdentRow(tx, filesetIdentTable, target)
	if err != nil {
		return nil, err
	}
	if err := validateRedirectTarget(targetEnv, target); err != nil {
		return nil, err
	}
	edit := &EditEnvelope{EditgroupID: ec.EditgroupID, IdentID: ident, PrevRevID: env.CurrentRevID, RedirectTo: &target, ExtraJSON: ec.ExtraJSON}
	if err := insertEditRow(tx, filesetEditTable, edit); err != nil {
		return nil, err
	}
	return edit, nil
}

func (FilesetCrud) AcceptEdits(tx *gorm.DB, editgroupID fcid.FatCatId) error {
	return acceptEditsGeneric(tx, filesetIdentTable, filesetEditTable, editgroupID)
}

// filesetsForRelease is the reverse index for release expansion's
// `filesets` flag.
func filesetsForRelease(tx *gorm.DB, releaseIdentID fcid.FatCatId, hide HideFlags) ([]*FilesetEntity, error) {
	var revIDs []fcid.FatCatId
	if err := tx.Model(&FilesetRelease{}).Where("release_ident_id = ?", releaseIdentID).
		Pluck("fileset_rev_id", &revIDs).Error; err != nil {
		return nil, WrapError(Internal, err, "finding filesets for release %s", releaseIdentID)
	}
	if len(revIDs) == 0 {
		return nil, nil
	}
	var idents []IdentEnvelope
	if err := tx.Table(filesetIdentTable).Where("current_rev_id IN ? AND is_live = ?", revIDs, true).Find(&idents).Error; err != nil {
		return nil, WrapError(Internal, err, "resolving fileset idents for release %s", releaseIdentID)
	}
	out := make([]*FilesetEntity, 0, len(idents))
	for _, env := range idents {
		var rev FilesetRev
		if err := tx.Where("rev_id = ?", *env.CurrentRevID).First(&rev).Error; err != nil {
			return nil, WrapError(Internal, err, "fetching fileset revision %s", *env.CurrentRevID)
		}
		e := filesetRevToEntity(&rev, hide)
		e.Ident = env.IdentID
		e.IsLive = true
		out = append(out, e)
	}
	return out, nil
}

var _ EntityCrud = FilesetCrud{}
