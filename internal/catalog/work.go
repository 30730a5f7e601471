package catalog

import (
	"github.com/mm--/fatcat/pkg/fcid"
	"gorm.io/gorm"
)

const (
	workIdentTable = "work_ident"
	workRevTable   = "work_rev"
	workEditTable  = "work_edit"
)

// WorkRev carries no fields of its own beyond the revision envelope: a
// work is largely a grouping node for releases (spec.md §4.1, matching
// the original implementation).
type WorkRev struct {
	RevID     fcid.FatCatId `gorm:"column:rev_id;primaryKey;type:uuid"`
	ExtraJSON []byte        `gorm:"column:extra_json;type:jsonb"`
}

func (WorkRev) TableName() string { return workRevTable }

// WorkEntity is both the create/update input and the Get/GetRev output
// shape for work entities.
type WorkEntity struct {
	Ident      fcid.FatCatId   `json:"ident,omitempty"`
	Revision   fcid.FatCatId   `json:"revision,omitempty"`
	Redirect   *fcid.FatCatId  `json:"redirect,omitempty"`
	IsLive     bool            `json:"is_live,omitempty"`
	ReleaseIDs []fcid.FatCatId `json:"release_ids,omitempty"`
	ExtraJSON  []byte          `json:"extra_json,omitempty"`
}

func workRevToEntity(rev *WorkRev) *WorkEntity {
	return &WorkEntity{Revision: rev.RevID, ExtraJSON: rev.ExtraJSON}
}

// WorkCrud implements EntityCrud for work entities.
type WorkCrud struct{}

func (WorkCrud) Kind() string { return "work" }

func (WorkCrud) Get(tx *gorm.DB, ident fcid.FatCatId, hide HideFlags) (interface{}, error) {
	env, redirect, err := resolveRedirect(tx, workIdentTable, ident)
	if err != nil {
		return nil, err
	}
	if !env.IsLive || env.IsTombstone() {
		return nil, NewError(NotFound, "work not found or not live: %s", ident)
	}
	var rev WorkRev
	if err := tx.Where("rev_id = ?", *env.CurrentRevID).First(&rev).Error; err != nil {
		return nil, WrapError(Internal, err, "fetching work revision %s", *env.CurrentRevID)
	}
	out := workRevToEntity(&rev)
	out.Ident = ident
	out.IsLive = true
	out.Redirect = redirect
	return out, nil
}

func (WorkCrud) GetRev(tx *gorm.DB, revID fcid.FatCatId, hide HideFlags) (interface{}, error) {
	var rev WorkRev
	err := tx.Where("rev_id = ?", revID).First(&rev).Error
	if err == gorm.ErrRecordNotFound {
		return nil, NewError(NotFound, "work revision not found: %s", revID)
	}
	if err != nil {
		return nil, WrapError(Internal, err, "fetching work revision %s", revID)
	}
	return workRevToEntity(&rev), nil
}

func (WorkCrud) GetHistory(tx *gorm.DB, ident fcid.FatCatId, limit int) ([]HistoryEntry, error) {
	return getHistoryGeneric(tx, workEditTable, ident, limit)
}

func (WorkCrud) GetRedirects(tx *gorm.DB, ident fcid.FatCatId) ([]fcid.FatCatId, error) {
	return getRedirectsGeneric(tx, workIdentTable, ident)
}

func (WorkCrud) GetEdit(tx *gorm.DB, editID int64) (interface{}, error) {
	return getEditRow(tx, workEditTable, editID)
}

func (WorkCrud) DeleteEdit(tx *gorm.DB, editID int64) error {
	return deleteEditRowChecked(tx, workEditTable, editID)
}

func (c WorkCrud) Create(tx *gorm.DB, ec *EditContext, entity interface{}) (*EditEnvelope, error) {
	in, ok := entity.(*WorkEntity)
	if !ok {
		return nil, NewError(OtherBadRequest, "create: expected *WorkEntity, got %T", entity)
	}
	if err := ec.Check(tx); err != nil {
		return nil, err
	}

	rev := &WorkRev{RevID: fcid.New(), ExtraJSON: in.ExtraJSON}
	if err := tx.Create(rev).Error; err != nil {
		return nil, WrapError(Internal, err, "creating work revision")
	}

	identID, err := insertIdent(tx, workIdentTable)
	if err != nil {
		return nil, err
	}
	edit := &EditEnvelope{EditgroupID: ec.EditgroupID, IdentID: identID, NewRevID: &rev.RevID, ExtraJSON: ec.ExtraJSON}
	if err := insertEditRow(tx, workEditTable, edit); err != nil {
		return nil, err
	}
	return edit, nil
}

func (c WorkCrud) Update(tx *gorm.DB, ec *EditContext, ident fcid.FatCatId, entity interface{}) (*EditEnvelope, error) {
	in, ok := entity.(*WorkEntity)
	if !ok {
		return nil, NewError(OtherBadRequest, "update: expected *WorkEntity, got %T", entity)
	}
	if err := ec.Check(tx); err != nil {
		return nil, err
	}

	env, err := getIdentRow(tx, workIdentTable, ident)
	if err != nil {
		return nil, err
	}
	if env.IsTombstone() {
		return nil, NewError(NotFound, "work is deleted: %s", ident)
	}
	if env.IsRedirect() {
		return nil, NewError(OtherBadRequest, "work %s is a redirect; update the canonical ident", ident)
	}

	rev := &WorkRev{RevID: fcid.New(), ExtraJSON: in.ExtraJSON}
	if err := tx.Create(rev).Error; err != nil {
		return nil, WrapError(Internal, err, "creating work revision")
	}

	existing, err := findOpenEditForIdent(tx, workEditTable, ec.EditgroupID, ident)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.NewRevID = &rev.RevID
		existing.PrevRevID = env.CurrentRevID
		existing.ExtraJSON = ec.ExtraJSON
		if err := tx.Table(workEditTable).Where("edit_id = ?", existing.EditID).Updates(existing).Error; err != nil {
			return nil, WrapError(Internal, err, "replacing staged edit for work %s", ident)
		}
		return existing, nil
	}

	edit := &EditEnvelope{EditgroupID: ec.EditgroupID, IdentID: ident, NewRevID: &rev.RevID, PrevRevID: env.CurrentRevID, ExtraJSON: ec.ExtraJSON}
	if err := insertEditRow(tx, workEditTable, edit); err != nil {
		return nil, err
	}
	return edit, nil
}

func (c WorkCrud) Delete(tx *gorm.DB, ec *EditContext, ident fcid.FatCatId) (*EditEnvelope, error) {
	if err := ec.Check(tx); err != nil {
		return nil, err
	}
	env, err := getIdentRow(tx, workIdentTable, ident)
	if err != nil {
		return nil, err
	}
	if env.IsTombstone() {
		return nil, NewError(NotFound, "work already deleted: %s", ident)
	}
	edit := &EditEnvelope{EditgroupID: ec.EditgroupID, IdentID: ident, PrevRevID: env.CurrentRevID, ExtraJSON: ec.ExtraJSON}
	if err := insertEditRow(tx, workEditTable, edit); err != nil {
		return nil, err
	}
	return edit, nil
}

func (c WorkCrud) Redirect(tx *gorm.DB, ec *EditContext, ident, target fcid.FatCatId) (*EditEnvelope, error) {
	if ident.Equal(target) {
		return nil, NewError(OtherBadRequest, "work %s cannot redirect to itself", ident)
	}
	if err := ec.Check(tx); err != nil {
		return nil, err
	}
	env, err := getIdentRow(tx, workIdentTable, ident)
	if err != nil {
		return nil, err
	}
	targetEnv, err := getIdentRow(tx, workIdentTable, target)
	if err != nil {
		return nil, err
	}
	if err := validateRedirectTarget(targetEnv, target); err != nil {
		return nil, err
	}
	edit := &EditEnvelope{EditgroupID: ec.EditgroupID, IdentID: ident, PrevRevID: env.CurrentRevID, RedirectTo: &target, ExtraJSON: ec.ExtraJSON}
	if err := insertEditRow(tx, workEditTable, edit); err != nil {
		return nil, err
	}
	return edit, nil
}

func (WorkCrud) AcceptEdits(tx *gorm.DB, editgroupID fcid.FatCatId) error {
	return acceptEditsGeneric(tx, workIdentTable, workEditTable, editgroupID)
}

// releasesForWork is the reverse index from a work to its releases: the
// live releases whose current revision's work_id is this work ident.
// WorkCrud.Get does not call it, so work entities are returned without
// their releases.
func releasesForWork(tx *gorm.DB, workIdentID fcid.FatCatId, hide HideFlags) ([]*ReleaseEntity, error) {
	var revIDs []fcid.FatCatId
	if err := tx.Model(&ReleaseRev{}).Where("work_ident_id = ?", workIdentID).
		Pluck("rev_id", &revIDs).Error; err != nil {
		return nil, WrapError(Internal, err, "finding release revisions for work %s", workIdentID)
	}
	if len(revIDs) == 0 {
		return nil, nil
	}
	var idents []IdentEnvelope
	if err := tx.Table(releaseIdentTable).Where("current_rev_id IN ? AND is_live = ?", revIDs, true).Find(&idents).Error; err != nil {
		return nil, WrapError(Internal, err, "resolving release idents for work %s", workIdentID)
	}
	out := make([]*ReleaseEntity, 0, len(idents))
	for _, env := range idents {
		var rev ReleaseRev
		if err := tx.Where("rev_id = ?", *env.CurrentRevID).First(&rev).Error; err != nil {
			return nil, WrapError(Internal, err, "fetching release revision %s", *env.CurrentRevID)
		}
		e := releaseRevToEntity(tx, &rev, hide)
		e.Ident = env.IdentID
		e.IsLive = true
		out = append(out, e)
	}
	return out, nil
}

var _ EntityCrud = WorkCrud{}
