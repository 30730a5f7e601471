package catalog

import (
	"encoding/json"

	"github.com/mm--/fatcat/pkg/fcid"
	"github.com/mm--/fatcat/pkg/validate"
	"gorm.io/gorm"
)

const (
	fileIdentTable = "file_ident"
	fileRevTable   = "file_rev"
	fileEditTable  = "file_edit"
)

// FileRelease associates a file revision with a release ident (spec.md
// I7: "a file ... may reference zero or more release idents").
type FileRelease struct {
	FileRevID      fcid.FatCatId `gorm:"column:file_rev_id;primaryKey;type:uuid"`
	ReleaseIdentID fcid.FatCatId `gorm:"column:release_ident_id;primaryKey;type:uuid"`
}

func (FileRelease) TableName() string { return "file_release" }

// FileRev is the immutable revision content of a file entity (a concrete
// digital file backing one or more releases), per SPEC_FULL.md §4.1.
type FileRev struct {
	RevID     fcid.FatCatId `gorm:"column:rev_id;primaryKey;type:uuid"`
	Size      int64         `gorm:"column:size"`
	MD5       string        `gorm:"column:md5"`
	SHA1      string        `gorm:"column:sha1"`
	SHA256    string        `gorm:"column:sha256"`
	URLsJSON  []byte        `gorm:"column:urls;type:jsonb"`
	Mimetype  string        `gorm:"column:mimetype"`
	ExtraJSON []byte        `gorm:"column:extra_json;type:jsonb"`
}

func (FileRev) TableName() string { return fileRevTable }

// FileEntity is both the create/update input and the Get/GetRev output
// shape for file entities.
type FileEntity struct {
	Ident      fcid.FatCatId  `json:"ident,omitempty"`
	Revision   fcid.FatCatId  `json:"revision,omitempty"`
	Redirect   *fcid.FatCatId `json:"redirect,omitempty"`
	IsLive     bool           `json:"is_live,omitempty"`
	Size       int64          `json:"size,omitempty"`
	MD5        string         `json:"md5,omitempty"`
	SHA1       string         `json:"sha1,omitempty"`
	SHA256     string         `json:"sha256,omitempty"`
	URLs       []string       `json:"urls,omitempty"`
	Mimetype   string         `json:"mimetype,omitempty"`
	ReleaseIDs []fcid.FatCatId `json:"release_ids,omitempty"`
	ExtraJSON  []byte         `json:"extra_json,omitempty"`
}

func validateFileRev(e *FileEntity) error {
	if e.MD5 != "" {
		if err := validate.MD5(e.MD5); err != nil {
			return wrapValidateError(err)
		}
	}
	if e.SHA1 != "" {
		if err := validate.SHA1(e.SHA1); err != nil {
			return wrapValidateError(err)
		}
	}
	if e.SHA256 != "" {
		if err := validate.SHA256(e.SHA256); err != nil {
			return wrapValidateError(err)
		}
	}
	return nil
}

func fileRevToEntity(rev *FileRev) *FileEntity {
	out := &FileEntity{
		Revision:  rev.RevID,
		Size:      rev.Size,
		MD5:       rev.MD5,
		SHA1:      rev.SHA1,
		SHA256:    rev.SHA256,
		Mimetype:  rev.Mimetype,
		ExtraJSON: rev.ExtraJSON,
	}
	if len(rev.URLsJSON) > 0 {
		_ = json.Unmarshal(rev.URLsJSON, &out.URLs)
	}
	return out
}

func fileEntityToRev(in *FileEntity) (*FileRev, error) {
	rev := &FileRev{
		RevID:     fcid.New(),
		Size:      in.Size,
		MD5:       in.MD5,
		SHA1:      in.SHA1,
		SHA256:    in.SHA256,
		Mimetype:  in.Mimetype,
		ExtraJSON: in.ExtraJSON,
	}
	if len(in.URLs) > 0 {
		data, err := json.Marshal(in.URLs)
		if err != nil {
			return nil, WrapError(Internal, err, "encoding file urls")
		}
		rev.URLsJSON = data
	}
	return rev, nil
}

// FileCrud implements EntityCrud for file entities.
type FileCrud struct{}

func (FileCrud) Kind() string { return "file" }

func (FileCrud) Get(tx *gorm.DB, ident fcid.FatCatId, hide HideFlags) (interface{}, error) {
	env, redirect, err := resolveRedirect(tx, fileIdentTable, ident)
	if err != nil {
		return nil, err
	}
	if !env.IsLive || env.IsTombstone() {
		return nil, NewError(NotFound, "file not found or not live: %s", ident)
	}
	var rev FileRev
	if err := tx.Where("rev_id = ?", *env.CurrentRevID).First(&rev).Error; err != nil {
		return nil, WrapError(Internal, err, "fetching file revision %s", *env.CurrentRevID)
	}
	out := fileRevToEntity(&rev)
	out.Ident = ident
	out.IsLive = true
	out.Redirect = redirect
	return out, nil
}

func (FileCrud) GetRev(tx *gorm.DB, revID fcid.FatCatId, hide HideFlags) (interface{}, error) {
	var rev FileRev
	err := tx.Where("rev_id = ?", revID).First(&rev).Error
	if err == gorm.ErrRecordNotFound {
		return nil, NewError(NotFound, "file revision not found: %s", revID)
	}
	if err != nil {
		return nil, WrapError(Internal, err, "fetching file revision %s", revID)
	}
	return fileRevToEntity(&rev), nil
}

func (FileCrud) GetHistory(tx *gorm.DB, ident fcid.FatCatId, limit int) ([]HistoryEntry, error) {
	return getHistoryGeneric(tx, fileEditTable, ident, limit)
}

func (FileCrud) GetRedirects(tx *gorm.DB, ident fcid.FatCatId) ([]fcid.FatCatId, error) {
	return getRedirectsGeneric(tx, fileIdentTable, ident)
}

func (FileCrud) GetEdit(tx *gorm.DB, editID int64) (interface{}, error) {
	return getEditRow(tx, fileEditTable, editID)
}

func (FileCrud) DeleteEdit(tx *gorm.DB, editID int64) error {
	return deleteEditRowChecked(tx, fileEditTable, editID)
}

func (c FileCrud) Create(tx *gorm.DB, ec *EditContext, entity interface{}) (*EditEnvelope, error) {
	in, ok := entity.(*FileEntity)
	if !ok {
		return nil, NewError(OtherBadRequest, "create: expected *FileEntity, got %T", entity)
	}
	if err := validateFileRev(in); err != nil {
		return nil, err
	}
	if err := ec.Check(tx); err != nil {
		return nil, err
	}

	rev, err := fileEntityToRev(in)
	if err != nil {
		return nil, err
	}
	if err := tx.Create(rev).Error; err != nil {
		return nil, WrapError(Internal, err, "creating file revision")
	}
	if err := linkFileReleases(tx, rev.RevID, in.ReleaseIDs); err != nil {
		return nil, err
	}

	identID, err := insertIdent(tx, fileIdentTable)
	if err != nil {
		return nil, err
	}

	edit := &EditEnvelope{
		EditgroupID: ec.EditgroupID,
		IdentID:     identID,
		NewRevID:    &rev.RevID,
		ExtraJSON:   ec.ExtraJSON,
	}
	if err := insertEditRow(tx, fileEditTable, edit); err != nil {
		return nil, err
	}
	return edit, nil
}

func linkFileReleases(tx *gorm.DB, fileRevID fcid.FatCatId, releaseIDs []fcid.FatCatId) error {
	for _, rid := range releaseIDs {
		link := &FileRelease{FileRevID: fileRevID, ReleaseIdentID: rid}
		if err := tx.Create(link).Error; err != nil {
			return WrapError(Internal, err, "linking file revision %s to release %s", fileRevID, rid)
		}
	}
	return nil
}

func (c FileCrud) Update(tx *gorm.DB, ec *EditContext, ident fcid.FatCatId, entity interface{}) (*EditEnvelope, error) {
	in, ok := entity.(*FileEntity)
	if !ok {
		return nil, NewError(OtherBadRequest, "update: expected *FileEntity, got %T", entity)
	}
	if err := validateFileRev(in); err != nil {
		return nil, err
	}
	if err := ec.Check(tx); err != nil {
		return nil, err
	}

	env, err := getIdentRow(tx, fileIdentTable, ident)
	if err != nil {
		return nil, err
	}
	if env.IsTombstone() {
		return nil, NewError(NotFound, "file is deleted: %s", ident)
	}
	if env.IsRedirect() {
		return nil, NewError(OtherBadRequest, "file %s is a redirect; update the canonical ident", ident)
	}

	rev, err := fileEntityToRev(in)
	if err != nil {
		return nil, err
	}
	if err := tx.Create(rev).Error; err != nil {
		return nil, WrapError(Internal, err, "creating file revision")
	}
	if err := linkFileReleases(tx, rev.RevID, in.ReleaseIDs); err != nil {
		return nil, err
	}

	existing, err := findOpenEditForIdent(tx, fileEditTable, ec.EditgroupID, ident)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.NewRevID = &rev.RevID
		existing.PrevRevID = env.CurrentRevID
		existing.ExtraJSON = ec.ExtraJSON
		if err := tx.Table(fileEditTable).Where("edit_id = ?", existing.EditID).Updates(existing).Error; err != nil {
			return nil, WrapError(Internal, err, "replacing staged edit for file %s", ident)
		}
		return existing, nil
	}

	edit := &EditEnvelope{
		EditgroupID: ec.EditgroupID,
		IdentID:     ident,
		NewRevID:    &rev.RevID,
		PrevRevID:   env.CurrentRevID,
		ExtraJSON:   ec.ExtraJSON,
	}
	if err := insertEditRow(tx, fileEditTable, edit); err != nil {
		return nil, err
	}
	return edit, nil
}

func (c FileCrud) Delete(tx *gorm.DB, ec *EditContext, ident fcid.FatCatId) (*EditEnvelope, error) {
	if err := ec.Check(tx); err != nil {
		return nil, err
	}
	env, err := getIdentRow(tx, fileIdentTable, ident)
	if err != nil {
		return nil, err
	}
	if env.IsTombstone() {
		return nil, NewError(NotFound, "file already deleted: %s", ident)
	}
	edit := &EditEnvelope{
		EditgroupID: ec.EditgroupID,
		IdentID:     ident,
		PrevRevID:   env.CurrentRevID,
		ExtraJSON:   ec.ExtraJSON,
	}
	if err := insertEditRow(tx, fileEditTable, edit); err != nil {
		return nil, err
	}
	return edit, nil
}

func (c FileCrud) Redirect(tx *gorm.DB, ec *EditContext, ident, target fcid.FatCatId) (*EditEnvelope, error) {
	if ident.Equal(target) {
		return nil, NewError(OtherBadRequest, "file %s cannot redirect to itself", ident)
	}
	if err := ec.Check(tx); err != nil {
		return nil, err
	}
	env, err := getIdentRow(tx, fileIdentTable, ident)
	if err != nil {
		return nil, err
	}
	targetEnv, err := getIdentRow(tx, fileIdentTable, target)
	if err != nil {
		return nil, err
	}
	if err := validateRedirectTarget(targetEnv, target); err != nil {
		return nil, err
	}
	edit := &EditEnvelope{
		EditgroupID: ec.EditgroupID,
		IdentID:     ident,
		PrevRevID:   env.CurrentRevID,
		RedirectTo:  &target,
		ExtraJSON:   ec.ExtraJSON,
	}
	if err := insertEditRow(tx, fileEditTable, edit); err != nil {
		return nil, err
	}
	return edit, nil
}

func (FileCrud) AcceptEdits(tx *gorm.DB, editgroupID fcid.FatCatId) error {
	return acceptEditsGeneric(tx, fileIdentTable, fileEditTable, editgroupID)
}

// filesForRelease is the reverse index used by release expansion's
// `files` flag (spec.md §4.6): files whose current revision links to
// this release ident.
func filesForRelease(tx *gorm.DB, releaseIdentID fcid.FatCatId) ([]*FileEntity, error) {
	var revIDs []fcid.FatCatId
	if err := tx.Model(&FileRelease{}).Where("release_ident_id = ?", releaseIdentID).
		Pluck("file_rev_id", &revIDs).Error; err != nil {
		return nil, WrapError(Internal, err, "finding files for release %s", releaseIdentID)
	}
	if len(revIDs) == 0 {
		return nil, nil
	}
	var idents []IdentEnvelope
	if err := tx.Table(fileIdentTable).Where("current_rev_id IN ? AND is_live = ?", revIDs, true).Find(&idents).Error; err != nil {
		return nil, WrapError(Internal, err, "resolving file idents for release %s", releaseIdentID)
	}
	out := make([]*FileEntity, 0, len(idents))
	for _, env := range idents {
		var rev FileRev
		if err := tx.Where("rev_id = ?", *env.CurrentRevID).First(&rev).Error; err != nil {
			return nil, WrapError(Internal, err, "fetching file revision %s", *env.CurrentRevID)
		}
		e := fileRevToEntity(&rev)
		e.Ident = env.IdentID
		e.IsLive = true
		out = append(out, e)
	}
	return out, nil
}

var _ EntityCrud = FileCrud{}
