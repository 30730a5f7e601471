package catalog

import (
	"github.com/mm--/fatcat/pkg/fcid"
	"github.com/mm--/fatcat/pkg/validate"
	"gorm.io/gorm"
)

const (
	creatorIdentTable = "creator_ident"
	creatorRevTable   = "creator_rev"
	creatorEditTable  = "creator_edit"
)

// CreatorRev is the immutable revision content of a creator entity (an
// author), per SPEC_FULL.md §4.1.
type CreatorRev struct {
	RevID       fcid.FatCatId `gorm:"column:rev_id;primaryKey;type:uuid"`
	DisplayName string        `gorm:"column:display_name;not null"`
	GivenName   string        `gorm:"column:given_name"`
	Surname     string        `gorm:"column:surname"`
	ORCID       string        `gorm:"column:orcid"`
	WikidataQID string        `gorm:"column:wikidata_qid"`
	ExtraJSON   []byte        `gorm:"column:extra_json;type:jsonb"`
}

func (CreatorRev) TableName() string { return creatorRevTable }

// CreatorEntity is both the create/update input and the Get/GetRev output
// shape for creator entities.
type CreatorEntity struct {
	Ident       fcid.FatCatId  `json:"ident,omitempty"`
	Revision    fcid.FatCatId  `json:"revision,omitempty"`
	Redirect    *fcid.FatCatId `json:"redirect,omitempty"`
	IsLive      bool           `json:"is_live,omitempty"`
	DisplayName string         `json:"display_name"`
	GivenName   string         `json:"given_name,omitempty"`
	Surname     string         `json:"surname,omitempty"`
	ORCID       string         `json:"orcid,omitempty"`
	WikidataQID string         `json:"wikidata_qid,omitempty"`
	ExtraJSON   []byte         `json:"extra_json,omitempty"`
}

func validateCreatorRev(e *CreatorEntity) error {
	if e.ORCID != "" {
		if err := validate.ORCID(e.ORCID); err != nil {
			return wrapValidateError(err)
		}
	}
	if e.WikidataQID != "" {
		if err := validate.WikidataQID(e.WikidataQID); err != nil {
			return wrapValidateError(err)
		}
	}
	return nil
}

func creatorRevToEntity(rev *CreatorRev) *CreatorEntity {
	return &CreatorEntity{
		Revision:    rev.RevID,
		DisplayName: rev.DisplayName,
		GivenName:   rev.GivenName,
		Surname:     rev.Surname,
		ORCID:       rev.ORCID,
		WikidataQID: rev.WikidataQID,
		ExtraJSON:   rev.ExtraJSON,
	}
}

// CreatorCrud implements EntityCrud for creator entities.
type CreatorCrud struct{}

func (CreatorCrud) Kind() string { return "creator" }

func (CreatorCrud) Get(tx *gorm.DB, ident fcid.FatCatId, hide HideFlags) (interface{}, error) {
	env, redirect, err := resolveRedirect(tx, creatorIdentTable, ident)
	if err != nil {
		return nil, err
	}
	if !env.IsLive || env.IsTombstone() {
		return nil, NewError(NotFound, "creator not found or not live: %s", ident)
	}
	var rev CreatorRev
	if err := tx.Where("rev_id = ?", *env.CurrentRevID).First(&rev).Error; err != nil {
		return nil, WrapError(Internal, err, "fetching creator revision %s", *env.CurrentRevID)
	}
	out := creatorRevToEntity(&rev)
	out.Ident = ident
	out.IsLive = true
	out.Redirect = redirect
	return out, nil
}

func (CreatorCrud) GetRev(tx *gorm.DB, revID fcid.FatCatId, hide HideFlags) (interface{}, error) {
	var rev CreatorRev
	err := tx.Where("rev_id = ?", revID).First(&rev).Error
	if err == gorm.ErrRecordNotFound {
		return nil, NewError(NotFound, "creator revision not found: %s", revID)
	}
	if err != nil {
		return nil, WrapError(Internal, err, "fetching creator revision %s", revID)
	}
	return creatorRevToEntity(&rev), nil
}

func (CreatorCrud) GetHistory(tx *gorm.DB, ident fcid.FatCatId, limit int) ([]HistoryEntry, error) {
	return getHistoryGeneric(tx, creatorEditTable, ident, limit)
}

func (CreatorCrud) GetRedirects(tx *gorm.DB, ident fcid.FatCatId) ([]fcid.FatCatId, error) {
	return getRedirectsGeneric(tx, creatorIdentTable, ident)
}

func (CreatorCrud) GetEdit(tx *gorm.DB, editID int64) (interface{}, error) {
	return getEditRow(tx, creatorEditTable, editID)
}

func (CreatorCrud) DeleteEdit(tx *gorm.DB, editID int64) error {
	return deleteEditRowChecked(tx, creatorEditTable, editID)
}

func (c CreatorCrud) Create(tx *gorm.DB, ec *EditContext, entity interface{}) (*EditEnvelope, error) {
	in, ok := entity.(*CreatorEntity)
	if !ok {
		return nil, NewError(OtherBadRequest, "create: expected *CreatorEntity, got %T", entity)
	}
	if err := validateCreatorRev(in); err != nil {
		return nil, err
	}
	if err := ec.Check(tx); err != nil {
		return nil, err
	}

	rev := &CreatorRev{
		RevID:       fcid.New(),
		DisplayName: in.DisplayName,
		GivenName:   in.GivenName,
		Surname:     in.Surname,
		ORCID:       in.ORCID,
		WikidataQID: in.WikidataQID,
		ExtraJSON:   in.ExtraJSON,
	}
	if err := tx.Create(rev).Error; err != nil {
		return nil, WrapError(Internal, err, "creating creator revision")
	}

	identID, err := insertIdent(tx, creatorIdentTable)
	if err != nil {
		return nil, err
	}

	edit := &EditEnvelope{
		EditgroupID: ec.EditgroupID,
		IdentID:     identID,
		NewRevID:    &rev.RevID,
		ExtraJSON:   ec.ExtraJSON,
	}
	if err := insertEditRow(tx, creatorEditTable, edit); err != nil {
		return nil, err
	}
	return edit, nil
}

func (c CreatorCrud) Update(tx *gorm.DB, ec *EditContext, ident fcid.FatCatId, entity interface{}) (*EditEnvelope, error) {
	in, ok := entity.(*CreatorEntity)
	if !ok {
		return nil, NewError(OtherBadRequest, "update: expected *CreatorEntity, got %T", entity)
	}
	if err := validateCreatorRev(in); err != nil {
		return nil, err
	}
	if err := ec.Check(tx); err != nil {
		return nil, err
	}

	env, err := getIdentRow(tx, creatorIdentTable, ident)
	if err != nil {
		return nil, err
	}
	if env.IsTombstone() {
		return nil, NewError(NotFound, "creator is deleted: %s", ident)
	}
	if env.IsRedirect() {
		return nil, NewError(OtherBadRequest, "creator %s is a redirect; update the canonical ident", ident)
	}

	rev := &CreatorRev{
		RevID:       fcid.New(),
		DisplayName: in.DisplayName,
		GivenName:   in.GivenName,
		Surname:     in.Surname,
		ORCID:       in.ORCID,
		WikidataQID: in.WikidataQID,
		ExtraJSON:   in.ExtraJSON,
	}
	if err := tx.Create(rev).Error; err != nil {
		return nil, WrapError(Internal, err, "creating creator revision")
	}

	existing, err := findOpenEditForIdent(tx, creatorEditTable, ec.EditgroupID, ident)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.NewRevID = &rev.RevID
		existing.PrevRevID = env.CurrentRevID
		existing.ExtraJSON = ec.ExtraJSON
		if err := tx.Table(creatorEditTable).Where("edit_id = ?", existing.EditID).Updates(existing).Error; err != nil {
			return nil, WrapError(Internal, err, "replacing staged edit for creator %s", ident)
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
	if err := insertEditRow(tx, creatorEditTable, edit); err != nil {
		return nil, err
	}
	return edit, nil
}

func (c CreatorCrud) Delete(tx *gorm.DB, ec *EditContext, ident fcid.FatCatId) (*EditEnvelope, error) {
	if err := ec.Check(tx); err != nil {
		return nil, err
	}
	env, err := getIdentRow(tx, creatorIdentTable, ident)
	if err != nil {
		return nil, err
	}
	if env.IsTombstone() {
		return nil, NewError(NotFound, "creator already deleted: %s", ident)
	}
	edit := &EditEnvelope{
		EditgroupID: ec.EditgroupID,
		IdentID:     ident,
		PrevRevID:   env.CurrentRevID,
		ExtraJSON:   ec.ExtraJSON,
	}
	if err := insertEditRow(tx, creatorEditTable, edit); err != nil {
		return nil, err
	}
	return edit, nil
}

func (c CreatorCrud) Redirect(tx *gorm.DB, ec *EditContext, ident, target fcid.FatCatId) (*EditEnvelope, error) {
	if ident.Equal(target) {
		return nil, NewError(OtherBadRequest, "creator %s cannot redirect to itself", ident)
	}
	if err := ec.Check(tx); err != nil {
		return nil, err
	}
	env, err := getIdentRow(tx, creatorIdentTable, ident)
	if err != nil {
		return nil, err
	}
	targetEnv, err := getIdentRow(tx, creatorIdentTable, target)
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
	if err := insertEditRow(tx, creatorEditTable, edit); err != nil {
		return nil, err
	}
	return edit, nil
}

func (CreatorCrud) AcceptEdits(tx *gorm.DB, editgroupID fcid.FatCatId) error {
	return acceptEditsGeneric(tx, creatorIdentTable, creatorEditTable, editgroupID)
}

var _ EntityCrud = CreatorCrud{}
