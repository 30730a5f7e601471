package catalog

import (
	"github.com/mm--/fatcat/pkg/fcid"
	"github.com/mm--/fatcat/pkg/validate"
	"gorm.io/gorm"
)

const (
	containerIdentTable = "container_ident"
	containerRevTable   = "container_rev"
	containerEditTable  = "container_edit"
)

// ContainerRev is the immutable revision content of a container entity
// (a publication venue: journal, conference series, repository), per
// SPEC_FULL.md §4.1.
type ContainerRev struct {
	RevID       fcid.FatCatId `gorm:"column:rev_id;primaryKey;type:uuid"`
	Name        string        `gorm:"column:name;not null"`
	ISSNL       string        `gorm:"column:issnl"`
	WikidataQID string        `gorm:"column:wikidata_qid"`
	Publisher   string        `gorm:"column:publisher"`
	ExtraJSON   []byte        `gorm:"column:extra_json;type:jsonb"`
}

func (ContainerRev) TableName() string { return containerRevTable }

// ContainerEntity is both the create/update input and the Get/GetRev
// output shape for container entities.
type ContainerEntity struct {
	Ident       fcid.FatCatId  `json:"ident,omitempty"`
	Revision    fcid.FatCatId  `json:"revision,omitempty"`
	Redirect    *fcid.FatCatId `json:"redirect,omitempty"`
	IsLive      bool           `json:"is_live,omitempty"`
	Name        string         `json:"name"`
	ISSNL       string         `json:"issnl,omitempty"`
	WikidataQID string         `json:"wikidata_qid,omitempty"`
	Publisher   string         `json:"publisher,omitempty"`
	ExtraJSON   []byte         `json:"extra_json,omitempty"`
}

func validateContainerRev(e *ContainerEntity) error {
	if e.ISSNL != "" {
		if err := validate.ISSN(e.ISSNL); err != nil {
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

func containerRevToEntity(rev *ContainerRev) *ContainerEntity {
	return &ContainerEntity{
		Revision:    rev.RevID,
		Name:        rev.Name,
		ISSNL:       rev.ISSNL,
		WikidataQID: rev.WikidataQID,
		Publisher:   rev.Publisher,
		ExtraJSON:   rev.ExtraJSON,
	}
}

// ContainerCrud implements EntityCrud for container entities.
type ContainerCrud struct{}

func (ContainerCrud) Kind() string { return "container" }

func (ContainerCrud) Get(tx *gorm.DB, ident fcid.FatCatId, hide HideFlags) (interface{}, error) {
	env, redirect, err := resolveRedirect(tx, containerIdentTable, ident)
	if err != nil {
		return nil, err
	}
	if !env.IsLive || env.IsTombstone() {
		return nil, NewError(NotFound, "container not found or not live: %s", ident)
	}
	var rev ContainerRev
	if err := tx.Where("rev_id = ?", *env.CurrentRevID).First(&rev).Error; err != nil {
		return nil, WrapError(Internal, err, "fetching container revision %s", *env.CurrentRevID)
	}
	out := containerRevToEntity(&rev)
	out.Ident = ident
	out.IsLive = true
	out.Redirect = redirect
	return out, nil
}

func (ContainerCrud) GetRev(tx *gorm.DB, revID fcid.FatCatId, hide HideFlags) (interface{}, error) {
	var rev ContainerRev
	err := tx.Where("rev_id = ?", revID).First(&rev).Error
	if err == gorm.ErrRecordNotFound {
		return nil, NewError(NotFound, "container revision not found: %s", revID)
	}
	if err != nil {
		return nil, WrapError(Internal, err, "fetching container revision %s", revID)
	}
	return containerRevToEntity(&rev), nil
}

func (ContainerCrud) GetHistory(tx *gorm.DB, ident fcid.FatCatId, limit int) ([]HistoryEntry, error) {
	return getHistoryGeneric(tx, containerEditTable, ident, limit)
}

func (ContainerCrud) GetRedirects(tx *gorm.DB, ident fcid.FatCatId) ([]fcid.FatCatId, error) {
	return getRedirectsGeneric(tx, containerIdentTable, ident)
}

func (ContainerCrud) GetEdit(tx *gorm.DB, editID int64) (interface{}, error) {
	return getEditRow(tx, containerEditTable, editID)
}

func (ContainerCrud) DeleteEdit(tx *gorm.DB, editID int64) error {
	return deleteEditRowChecked(tx, containerEditTable, editID)
}

func (c ContainerCrud) Create(tx *gorm.DB, ec *EditContext, entity interface{}) (*EditEnvelope, error) {
	in, ok := entity.(*ContainerEntity)
	if !ok {
		return nil, NewError(OtherBadRequest, "create: expected *ContainerEntity, got %T", entity)
	}
	if err := validateContainerRev(in); err != nil {
		return nil, err
	}
	if err := ec.Check(tx); err != nil {
		return nil, err
	}

	rev := &ContainerRev{
		RevID:       fcid.New(),
		Name:        in.Name,
		ISSNL:       in.ISSNL,
		WikidataQID: in.WikidataQID,
		Publisher:   in.Publisher,
		ExtraJSON:   in.ExtraJSON,
	}
	if err := tx.Create(rev).Error; err != nil {
		return nil, WrapError(Internal, err, "creating container revision")
	}

	identID, err := insertIdent(tx, containerIdentTable)
	if err != nil {
		return nil, err
	}

	edit := &EditEnvelope{
		EditgroupID: ec.EditgroupID,
		IdentID:     identID,
		NewRevID:    &rev.RevID,
		ExtraJSON:   ec.ExtraJSON,
	}
	if err := insertEditRow(tx, containerEditTable, edit); err != nil {
		return nil, err
	}
	return edit, nil
}

func (c ContainerCrud) Update(tx *gorm.DB, ec *EditContext, ident fcid.FatCatId, entity interface{}) (*EditEnvelope, error) {
	in, ok := entity.(*ContainerEntity)
	if !ok {
		return nil, NewError(OtherBadRequest, "update: expected *ContainerEntity, got %T", entity)
	}
	if err := validateContainerRev(in); err != nil {
		return nil, err
	}
	if err := ec.Check(tx); err != nil {
		return nil, err
	}

	env, err := getIdentRow(tx, containerIdentTable, ident)
	if err != nil {
		return nil, err
	}
	if env.IsTombstone() {
		return nil, NewError(NotFound, "container is deleted: %s", ident)
	}
	if env.IsRedirect() {
		return nil, NewError(OtherBadRequest, "container %s is a redirect; update the canonical ident", ident)
	}

	rev := &ContainerRev{
		RevID:       fcid.New(),
		Name:        in.Name,
		ISSNL:       in.ISSNL,
		WikidataQID: in.WikidataQID,
		Publisher:   in.Publisher,
		ExtraJSON:   in.ExtraJSON,
	}
	if err := tx.Create(rev).Error; err != nil {
		return nil, WrapError(Internal, err, "creating container revision")
	}

	existing, err := findOpenEditForIdent(tx, containerEditTable, ec.EditgroupID, ident)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.NewRevID = &rev.RevID
		existing.PrevRevID = env.CurrentRevID
		existing.ExtraJSON = ec.ExtraJSON
		if err := tx.Table(containerEditTable).Where("edit_id = ?", existing.EditID).Updates(existing).Error; err != nil {
			return nil, WrapError(Internal, err, "replacing staged edit for container %s", ident)
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
	if err := insertEditRow(tx, containerEditTable, edit); err != nil {
		return nil, err
	}
	return edit, nil
}

func (c ContainerCrud) Delete(tx *gorm.DB, ec *EditContext, ident fcid.FatCatId) (*EditEnvelope, error) {
	if err := ec.Check(tx); err != nil {
		return nil, err
	}
	env, err := getIdentRow(tx, containerIdentTable, ident)
	if err != nil {
		return nil, err
	}
	if env.IsTombstone() {
		return nil, NewError(NotFound, "container already deleted: %s", ident)
	}
	edit := &EditEnvelope{
		EditgroupID: ec.EditgroupID,
		IdentID:     ident,
		PrevRevID:   env.CurrentRevID,
		ExtraJSON:   ec.ExtraJSON,
	}
	if err := insertEditRow(tx, containerEditTable, edit); err != nil {
		return nil, err
	}
	return edit, nil
}

func (c ContainerCrud) Redirect(tx *gorm.DB, ec *EditContext, ident, target fcid.FatCatId) (*EditEnvelope, error) {
	if ident.Equal(target) {
		return nil, NewError(OtherBadRequest, "container %s cannot redirect to itself", ident)
	}
	if err := ec.Check(tx); err != nil {
		return nil, err
	}
	env, err := getIdentRow(tx, containerIdentTable, ident)
	if err != nil {
		return nil, err
	}
	targetEnv, err := getIdentRow(tx, containerIdentTable, target)
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
	if err := insertEditRow(tx, containerEditTable, edit); err != nil {
		return nil, err
	}
	return edit, nil
}

func (ContainerCrud) AcceptEdits(tx *gorm.DB, editgroupID fcid.FatCatId) error {
	return acceptEditsGeneric(tx, containerIdentTable, containerEditTable, editgroupID)
}

var _ EntityCrud = ContainerCrud{}
