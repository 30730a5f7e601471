package catalog

import (
	"time"

	"github.com/mm--/fatcat/pkg/fcid"
	"gorm.io/gorm"
)

const (
	webcaptureIdentTable = "webcapture_ident"
	webcaptureRevTable   = "webcapture_rev"
	webcaptureEditTable  = "webcapture_edit"
)

// WebcaptureRelease associates a webcapture revision with a release
// ident.
type WebcaptureRelease struct {
	WebcaptureRevID fcid.FatCatId `gorm:"column:webcapture_rev_id;primaryKey;type:uuid"`
	ReleaseIdentID  fcid.FatCatId `gorm:"column:release_ident_id;primaryKey;type:uuid"`
}

func (WebcaptureRelease) TableName() string { return "webcapture_release" }

// WebcaptureRev is the immutable revision content of a webcapture entity
// (an archived web page snapshot), per SPEC_FULL.md §4.1. CDX is a large
// optional field, suppressed by HideFlags.Cdx.
type WebcaptureRev struct {
	RevID       fcid.FatCatId `gorm:"column:rev_id;primaryKey;type:uuid"`
	CdxJSON     []byte        `gorm:"column:cdx;type:jsonb"`
	ArchiveURL  string        `gorm:"column:archive_url"`
	OriginalURL string        `gorm:"column:original_url"`
	Timestamp   *time.Time    `gorm:"column:timestamp"`
	ExtraJSON   []byte        `gorm:"column:extra_json;type:jsonb"`
}

func (WebcaptureRev) TableName() string { return webcaptureRevTable }

// WebcaptureEntity is both the create/update input and the Get/GetRev
// output shape for webcapture entities.
type WebcaptureEntity struct {
	Ident       fcid.FatCatId   `json:"ident,omitempty"`
	Revision    fcid.FatCatId   `json:"revision,omitempty"`
	Redirect    *fcid.FatCatId  `json:"redirect,omitempty"`
	IsLive      bool            `json:"is_live,omitempty"`
	Cdx         []byte          `json:"cdx,omitempty"`
	ArchiveURL  string          `json:"archive_url,omitempty"`
	OriginalURL string          `json:"original_url,omitempty"`
	Timestamp   *time.Time      `json:"timestamp,omitempty"`
	ReleaseIDs  []fcid.FatCatId `json:"release_ids,omitempty"`
	ExtraJSON   []byte          `json:"extra_json,omitempty"`
}

func webcaptureRevToEntity(rev *WebcaptureRev, hide HideFlags) *WebcaptureEntity {
	out := &WebcaptureEntity{
		Revision:    rev.RevID,
		ArchiveURL:  rev.ArchiveURL,
		OriginalURL: rev.OriginalURL,
		Timestamp:   rev.Timestamp,
		ExtraJSON:   rev.ExtraJSON,
	}
	if !hide.Cdx {
		out.Cdx = rev.CdxJSON
	}
	return out
}

// WebcaptureCrud implements EntityCrud for webcapture entities.
type WebcaptureCrud struct{}

func (WebcaptureCrud) Kind() string { return "webcapture" }

func (WebcaptureCrud) Get(tx *gorm.DB, ident fcid.FatCatId, hide HideFlags) (interface{}, error) {
	env, redirect, err := resolveRedirect(tx, webcaptureIdentTable, ident)
	if err != nil {
		return nil, err
	}
	if !env.IsLive || env.IsTombstone() {
		return nil, NewError(NotFound, "webcapture not found or not live: %s", ident)
	}
	var rev WebcaptureRev
	if err := tx.Where("rev_id = ?", *env.CurrentRevID).First(&rev).Error; err != nil {
		return nil, WrapError(Internal, err, "fetching webcapture revision %s", *env.CurrentRevID)
	}
	out := webcaptureRevToEntity(&rev, hide)
	out.Ident = ident
	out.IsLive = true
	out.Redirect = redirect
	return out, nil
}

func (WebcaptureCrud) GetRev(tx *gorm.DB, revID fcid.FatCatId, hide HideFlags) (interface{}, error) {
	var rev WebcaptureRev
	err := tx.Where("rev_id = ?", revID).First(&rev).Error
	if err == gorm.ErrRecordNotFound {
		return nil, NewError(NotFound, "webcapture revision not found: %s", revID)
	}
	if err != nil {
		return nil, WrapError(Internal, err, "fetching webcapture revision %s", revID)
	}
	return webcaptureRevToEntity(&rev, hide), nil
}

func (WebcaptureCrud) GetHistory(tx *gorm.DB, ident fcid.FatCatId, limit int) ([]HistoryEntry, error) {
	return getHistoryGeneric(tx, webcaptureEditTable, ident, limit)
}

func (WebcaptureCrud) GetRedirects(tx *gorm.DB, ident fcid.FatCatId) ([]fcid.FatCatId, error) {
	return getRedirectsGeneric(tx, webcaptureIdentTable, ident)
}

func (WebcaptureCrud) GetEdit(tx *gorm.DB, editID int64) (interface{}, error) {
	return getEditRow(tx, webcaptureEditTable, editID)
}

func (WebcaptureCrud) DeleteEdit(tx *gorm.DB, editID int64) error {
	return deleteEditRowChecked(tx, webcaptureEditTable, editID)
}

func (c WebcaptureCrud) Create(tx *gorm.DB, ec *EditContext, entity interface{}) (*EditEnvelope, error) {
	in, ok := entity.(*WebcaptureEntity)
	if !ok {
		return nil, NewError(OtherBadRequest, "create: expected *WebcaptureEntity, got %T", entity)
	}
	if err := ec.Check(tx); err != nil {
		return nil, err
	}

	rev := &WebcaptureRev{
		RevID: fcid.New(), CdxJSON: in.Cdx, ArchiveURL: in.ArchiveURL,
		OriginalURL: in.OriginalURL, Timestamp: in.Timestamp, ExtraJSON: in.ExtraJSON,
	}
	if err := tx.Create(rev).Error; err != nil {
		return nil, WrapError(Internal, err, "creating webcapture revision")
	}
	if err := linkWebcaptureReleases(tx, rev.RevID, in.ReleaseIDs); err != nil {
		return nil, err
	}

	identID, err := insertIdent(tx, webcaptureIdentTable)
	if err != nil {
		return nil, err
	}
	edit := &EditEnvelope{EditgroupID: ec.EditgroupID, IdentID: identID, NewRevID: &rev.RevID, ExtraJSON: ec.ExtraJSON}
	if err := insertEditRow(tx, webcaptureEditTable, edit); err != nil {
		return nil, err
	}
	return edit, nil
}

func linkWebcaptureReleases(tx *gorm.DB, revID fcid.FatCatId, releaseIDs []fcid.FatCatId) error {
	for _, rid := range releaseIDs {
		link := &WebcaptureRelease{WebcaptureRevID: revID, ReleaseIdentID: rid}
		if err := tx.Create(link).Error; err != nil {
			return WrapError(Internal, err, "linking webcapture revision %s to release %s", revID, rid)
		}
	}
	return nil
}

func (c WebcaptureCrud) Update(tx *gorm.DB, ec *EditContext, ident fcid.FatCatId, entity interface{}) (*EditEnvelope, error) {
	in, ok := entity.(*WebcaptureEntity)
	if !ok {
		return nil, NewError(OtherBadRequest, "update: expected *WebcaptureEntity, got %T", entity)
	}
	if err := ec.Check(tx); err != nil {
		return nil, err
	}

	env, err := getIdentRow(tx, webcaptureIdentTable, ident)
	if err != nil {
		return nil, err
	}
	if env.IsTombstone() {
		return nil, NewError(NotFound, "webcapture is deleted: %s", ident)
	}
	if env.IsRedirect() {
		return nil, NewError(OtherBadRequest, "webcapture %s is a redirect; update the canonical ident", ident)
	}

	rev := &WebcaptureRev{
		RevID: fcid.New(), CdxJSON: in.Cdx, ArchiveURL: in.ArchiveURL,
		OriginalURL: in.OriginalURL, Timestamp: in.Timestamp, ExtraJSON: in.ExtraJSON,
	}
	if err := tx.Create(rev).Error; err != nil {
		return nil, WrapError(Internal, err, "creating webcapture revision")
	}
	if err := linkWebcaptureReleases(tx, rev.RevID, in.ReleaseIDs); err != nil {
		return nil, err
	}

	existing, err := findOpenEditForIdent(tx, webcaptureEditTable, ec.EditgroupID, ident)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.NewRevID = &rev.RevID
		existing.PrevRevID = env.CurrentRevID
		existing.ExtraJSON = ec.ExtraJSON
		if err := tx.Table(webcaptureEditTable).Where("edit_id = ?", existing.EditID).Updates(existing).Error; err != nil {
			return nil, WrapError(Internal, err, "replacing staged edit for webcapture %s", ident)
		}
		return existing, nil
	}

	edit := &EditEnvelope{EditgroupID: ec.EditgroupID, IdentID: ident, NewRevID: &rev.RevID, PrevRevID: env.CurrentRevID, ExtraJSON: ec.ExtraJSON}
	if err := insertEditRow(tx, webcaptureEditTable, edit); err != nil {
		return nil, err
	}
	return edit, nil
}

func (c WebcaptureCrud) Delete(tx *gorm.DB, ec *EditContext, ident fcid.FatCatId) (*EditEnvelope, error) {
	if err := ec.Check(tx); err != nil {
		return nil, err
	}
	env, err := getIdentRow(tx, webcaptureIdentTable, ident)
	if err != nil {
		return nil, err
	}
	if env.IsTombstone() {
		return nil, NewError(NotFound, "webcapture already deleted: %s", ident)
	}
	edit := &EditEnvelope{EditgroupID: ec.EditgroupID, IdentID: ident, PrevRevID: env.CurrentRevID, ExtraJSON: ec.ExtraJSON}
	if err := insertEditRow(tx, webcaptureEditTable, edit); err != nil {
		return nil, err
	}
	return edit, nil
}

func (c WebcaptureCrud) Redirect(tx *gorm.DB, ec *EditContext, ident, target fcid.FatCatId) (*EditEnvelope, error) {
	if ident.Equal(target) {
		return nil, NewError(OtherBadRequest, "webcapture %s cannot redirect to itself", ident)
	}
	if err := ec.Check(tx); err != nil {
		return nil, err
	}
	env, err := getIdentRow(tx, webcaptureIdentTable, ident)
	if err != nil {
		return nil, err
	}
	targetEnv, err := getIdentRow(tx, webcaptureIdentTable, target)
	if err != nil {
		return nil, err
	}
	if err := validateRedirectTarget(targetEnv, target); err != nil {
		return nil, err
	}
	edit := &EditEnvelope{EditgroupID: ec.EditgroupID, IdentID: ident, PrevRevID: env.CurrentRevID, RedirectTo: &target, ExtraJSON: ec.ExtraJSON}
	if err := insertEditRow(tx, webcaptureEditTable, edit); err != nil {
		return nil, err
	}
	return edit, nil
}

func (WebcaptureCrud) AcceptEdits(tx *gorm.DB, editgroupID fcid.FatCatId) error {
	return acceptEditsGeneric(tx, webcaptureIdentTable, webcaptureEditTable, editgroupID)
}

// webcapturesForRelease is the reverse index for release expansion's
// `webcaptures` flag.
func webcapturesForRelease(tx *gorm.DB, releaseIdentID fcid.FatCatId, hide HideFlags) ([]*WebcaptureEntity, error) {
	var revIDs []fcid.FatCatId
	if err := tx.Model(&WebcaptureRelease{}).Where("release_ident_id = ?", releaseIdentID).
		Pluck("webcapture_rev_id", &revIDs).Error; err != nil {
		return nil, WrapError(Internal, err, "finding webcaptures for release %s", releaseIdentID)
	}
	if len(revIDs) == 0 {
		return nil, nil
	}
	var idents []IdentEnvelope
	if err := tx.Table(webcaptureIdentTable).Where("current_rev_id IN ? AND is_live = ?", revIDs, true).Find(&idents).Error; err != nil {
		return nil, WrapError(Internal, err, "resolving webcapture idents for release %s", releaseIdentID)
	}
	out := make([]*WebcaptureEntity, 0, len(idents))
	for _, env := range idents {
		var rev WebcaptureRev
		if err := tx.Where("rev_id = ?", *env.CurrentRevID).First(&rev).Error; err != nil {
			return nil, WrapError(Internal, err, "fetching webcapture revision %s", *env.CurrentRevID)
		}
		e := webcaptureRevToEntity(&rev, hide)
		e.Ident = env.IdentID
		e.IsLive = true
		out = append(out, e)
	}
	return out, nil
}

var _ EntityCrud = WebcaptureCrud{}
