package catalog

import (
	"time"

	"github.com/mm--/fatcat/pkg/fcid"
	"github.com/mm--/fatcat/pkg/validate"
	"gorm.io/gorm"
)

const (
	releaseIdentTable  = "release_ident"
	releaseRevTable    = "release_rev"
	releaseEditTable   = "release_edit"
	releaseContribTable = "release_contrib"
	releaseRefTable    = "release_ref"
)

// ReleaseContrib is one ordered contributor of a release revision
// (spec.md I7: "a release ... many creator idents via ordered
// contribs"). CreatorID is nullable: a contrib may name only a raw
// string, with no linked creator entity.
type ReleaseContrib struct {
	RevID     fcid.FatCatId  `gorm:"column:rev_id;primaryKey;type:uuid"`
	Index     int            `gorm:"column:contrib_index;primaryKey"`
	CreatorID *fcid.FatCatId `gorm:"column:creator_ident_id;type:uuid"`
	RawName   string         `gorm:"column:raw_name"`
	Role      string         `gorm:"column:role"`
}

func (ReleaseContrib) TableName() string { return releaseContribTable }

// ReleaseRef is one ordered outbound citation of a release revision.
// Hidden behind HideFlags.Refs, per spec.md §4.2's expand/hide surface.
type ReleaseRef struct {
	RevID      fcid.FatCatId `gorm:"column:rev_id;primaryKey;type:uuid"`
	Index      int           `gorm:"column:ref_index;primaryKey"`
	TargetID   *fcid.FatCatId `gorm:"column:target_release_ident_id;type:uuid"`
	RawDOI     string        `gorm:"column:raw_doi"`
	RawContent string        `gorm:"column:raw_content"`
}

func (ReleaseRef) TableName() string { return releaseRefTable }

// ReleaseRev is the immutable revision content of a release entity, the
// central entity kind in the catalog (spec.md §2, I7).
type ReleaseRev struct {
	RevID         fcid.FatCatId  `gorm:"column:rev_id;primaryKey;type:uuid"`
	Title         string         `gorm:"column:title;not null"`
	Subtitle      string         `gorm:"column:subtitle"`
	ReleaseType   string         `gorm:"column:release_type"`
	ReleaseStage  string         `gorm:"column:release_stage"`
	ReleaseDate   *time.Time     `gorm:"column:release_date"`
	ReleaseYear   *int           `gorm:"column:release_year"`
	DOI           string         `gorm:"column:doi"`
	PMID          string         `gorm:"column:pmid"`
	PMCID         string         `gorm:"column:pmcid"`
	WikidataQID   string         `gorm:"column:wikidata_qid"`
	ISBN13        string         `gorm:"column:isbn13"`
	CoreID        string         `gorm:"column:core_id"`
	Volume        string         `gorm:"column:volume"`
	Issue         string         `gorm:"column:issue"`
	Pages         string         `gorm:"column:pages"`
	Language      string         `gorm:"column:language"`
	ContainerID   *fcid.FatCatId `gorm:"column:container_ident_id;type:uuid"`
	WorkID        fcid.FatCatId  `gorm:"column:work_ident_id;not null;type:uuid"`
	AbstractsJSON []byte         `gorm:"column:abstracts;type:jsonb"`
	ExtraJSON     []byte         `gorm:"column:extra_json;type:jsonb"`
}

func (ReleaseRev) TableName() string { return releaseRevTable }

// ReleaseContribEntity is the wire shape of one ordered contributor.
type ReleaseContribEntity struct {
	Index     int            `json:"index"`
	CreatorID *fcid.FatCatId `json:"creator_id,omitempty"`
	RawName   string         `json:"raw_name,omitempty"`
	Role      string         `json:"role,omitempty"`
	Creator   *CreatorEntity `json:"creator,omitempty"`
}

// ReleaseRefEntity is the wire shape of one ordered outbound citation.
type ReleaseRefEntity struct {
	Index      int            `json:"index"`
	TargetID   *fcid.FatCatId `json:"target_release_id,omitempty"`
	RawDOI     string         `json:"raw_doi,omitempty"`
	RawContent string         `json:"raw_content,omitempty"`
}

// ReleaseEntity is both the create/update input and the Get/GetRev
// output shape for release entities.
type ReleaseEntity struct {
	Ident        fcid.FatCatId  `json:"ident,omitempty"`
	Revision     fcid.FatCatId  `json:"revision,omitempty"`
	Redirect     *fcid.FatCatId `json:"redirect,omitempty"`
	IsLive       bool           `json:"is_live,omitempty"`
	Title        string         `json:"title"`
	Subtitle     string         `json:"subtitle,omitempty"`
	ReleaseType  string         `json:"release_type,omitempty"`
	ReleaseStage string         `json:"release_stage,omitempty"`
	ReleaseDate  *time.Time     `json:"release_date,omitempty"`
	ReleaseYear  *int           `json:"release_year,omitempty"`
	DOI          string         `json:"doi,omitempty"`
	PMID         string         `json:"pmid,omitempty"`
	PMCID        string         `json:"pmcid,omitempty"`
	WikidataQID  string         `json:"wikidata_qid,omitempty"`
	ISBN13       string         `json:"isbn13,omitempty"`
	CoreID       string         `json:"core_id,omitempty"`
	Volume       string         `json:"volume,omitempty"`
	Issue        string         `json:"issue,omitempty"`
	Pages        string         `json:"pages,omitempty"`
	Language     string         `json:"language,omitempty"`
	ContainerID  *fcid.FatCatId `json:"container_id,omitempty"`
	WorkID       fcid.FatCatId  `json:"work_id,omitempty"`
	Abstracts    []byte         `json:"abstracts,omitempty"`
	Contribs     []ReleaseContribEntity `json:"contribs,omitempty"`
	Refs         []ReleaseRefEntity     `json:"refs,omitempty"`
	ExtraJSON    []byte         `json:"extra_json,omitempty"`

	Container *ContainerEntity     `json:"container,omitempty"`
	Files     []*FileEntity        `json:"files,omitempty"`
	Filesets  []*FilesetEntity     `json:"filesets,omitempty"`
	Webcaptures []*WebcaptureEntity `json:"webcaptures,omitempty"`
}

func validateReleaseRev(e *ReleaseEntity) error {
	if e.WorkID.IsNil() {
		return NewError(OtherBadRequest, "release requires a work_id")
	}
	if e.ReleaseType != "" {
		if err := validate.ReleaseType(e.ReleaseType); err != nil {
			return wrapValidateError(err)
		}
	}
	if e.DOI != "" {
		if err := validate.DOI(e.DOI); err != nil {
			return wrapValidateError(err)
		}
	}
	if e.PMID != "" {
		if err := validate.PMID(e.PMID); err != nil {
			return wrapValidateError(err)
		}
	}
	if e.PMCID != "" {
		if err := validate.PMCID(e.PMCID); err != nil {
			return wrapValidateError(err)
		}
	}
	if e.WikidataQID != "" {
		if err := validate.WikidataQID(e.WikidataQID); err != nil {
			return wrapValidateError(err)
		}
	}
	if e.ISBN13 != "" {
		if err := validate.ISBN13(e.ISBN13); err != nil {
			return wrapValidateError(err)
		}
	}
	for _, c := range e.Contribs {
		if c.Role != "" {
			if err := validate.ContribRole(c.Role); err != nil {
				return wrapValidateError(err)
			}
		}
	}
	return nil
}

func releaseRevToEntity(tx *gorm.DB, rev *ReleaseRev, hide HideFlags) *ReleaseEntity {
	out := &ReleaseEntity{
		Revision:     rev.RevID,
		Title:        rev.Title,
		Subtitle:     rev.Subtitle,
		ReleaseType:  rev.ReleaseType,
		ReleaseStage: rev.ReleaseStage,
		ReleaseDate:  rev.ReleaseDate,
		ReleaseYear:  rev.ReleaseYear,
		DOI:          rev.DOI,
		PMID:         rev.PMID,
		PMCID:        rev.PMCID,
		WikidataQID:  rev.WikidataQID,
		ISBN13:       rev.ISBN13,
		CoreID:       rev.CoreID,
		Volume:       rev.Volume,
		Issue:        rev.Issue,
		Pages:        rev.Pages,
		Language:     rev.Language,
		ContainerID:  rev.ContainerID,
		WorkID:       rev.WorkID,
		ExtraJSON:    rev.ExtraJSON,
	}
	if !hide.Abstracts {
		out.Abstracts = rev.AbstractsJSON
	}
	if !hide.Contribs {
		var contribs []ReleaseContrib
		if tx.Where("rev_id = ?", rev.RevID).Order("contrib_index asc").Find(&contribs).Error == nil {
			for _, c := range contribs {
				out.Contribs = append(out.Contribs, ReleaseContribEntity{
					Index: c.Index, CreatorID: c.CreatorID, RawName: c.RawName, Role: c.Role,
				})
			}
		}
	}
	if !hide.Refs {
		var refs []ReleaseRef
		if tx.Where("rev_id = ?", rev.RevID).Order("ref_index asc").Find(&refs).Error == nil {
			for _, r := range refs {
				out.Refs = append(out.Refs, ReleaseRefEntity{
					Index: r.Index, TargetID: r.TargetID, RawDOI: r.RawDOI, RawContent: r.RawContent,
				})
			}
		}
	}
	return out
}

func releaseEntityToRev(in *ReleaseEntity) *ReleaseRev {
	return &ReleaseRev{
		RevID:         fcid.New(),
		Title:         in.Title,
		Subtitle:      in.Subtitle,
		ReleaseType:   in.ReleaseType,
		ReleaseStage:  in.ReleaseStage,
		ReleaseDate:   in.ReleaseDate,
		ReleaseYear:   in.ReleaseYear,
		DOI:           in.DOI,
		PMID:          in.PMID,
		PMCID:         in.PMCID,
		WikidataQID:   in.WikidataQID,
		ISBN13:        in.ISBN13,
		CoreID:        in.CoreID,
		Volume:        in.Volume,
		Issue:         in.Issue,
		Pages:         in.Pages,
		Language:      in.Language,
		ContainerID:   in.ContainerID,
		WorkID:        in.WorkID,
		AbstractsJSON: in.Abstracts,
		ExtraJSON:     in.ExtraJSON,
	}
}

func writeReleaseChildren(tx *gorm.DB, revID fcid.FatCatId, in *ReleaseEntity) error {
	for _, c := range in.Contribs {
		row := &ReleaseContrib{RevID: revID, Index: c.Index, CreatorID: c.CreatorID, RawName: c.RawName, Role: c.Role}
		if err := tx.Create(row).Error; err != nil {
			return WrapError(Internal, err, "creating release contrib %d", c.Index)
		}
	}
	for _, r := range in.Refs {
		row := &ReleaseRef{RevID: revID, Index: r.Index, TargetID: r.TargetID, RawDOI: r.RawDOI, RawContent: r.RawContent}
		if err := tx.Create(row).Error; err != nil {
			return WrapError(Internal, err, "creating release ref %d", r.Index)
		}
	}
	return nil
}

// ReleaseCrud implements EntityCrud for release entities.
type ReleaseCrud struct{}

func (ReleaseCrud) Kind() string { return "release" }

func (ReleaseCrud) Get(tx *gorm.DB, ident fcid.FatCatId, hide HideFlags) (interface{}, error) {
	return getReleaseExpanded(tx, ident, hide, ExpandFlags{})
}

// GetExpanded is the release-specific Get variant that honors
// ExpandFlags (spec.md §4.6); the generic EntityCrud.Get above always
// passes an empty ExpandFlags.
func (ReleaseCrud) GetExpanded(tx *gorm.DB, ident fcid.FatCatId, hide HideFlags, expand ExpandFlags) (interface{}, error) {
	return getReleaseExpanded(tx, ident, hide, expand)
}

func getReleaseExpanded(tx *gorm.DB, ident fcid.FatCatId, hide HideFlags, expand ExpandFlags) (*ReleaseEntity, error) {
	env, redirect, err := resolveRedirect(tx, releaseIdentTable, ident)
	if err != nil {
		return nil, err
	}
	if !env.IsLive || env.IsTombstone() {
		return nil, NewError(NotFound, "release not found or not live: %s", ident)
	}
	var rev ReleaseRev
	if err := tx.Where("rev_id = ?", *env.CurrentRevID).First(&rev).Error; err != nil {
		return nil, WrapError(Internal, err, "fetching release revision %s", *env.CurrentRevID)
	}
	out := releaseRevToEntity(tx, &rev, hide)
	out.Ident = ident
	out.IsLive = true
	out.Redirect = redirect

	if expand.Container && rev.ContainerID != nil {
		if c, err := ContainerCrud{}.Get(tx, *rev.ContainerID, hide); err == nil {
			ce, _ := c.(*ContainerEntity)
			out.Container = ce
		}
	}
	if expand.Files {
		if files, err := filesForRelease(tx, ident); err == nil {
			out.Files = files
		}
	}
	if expand.Filesets {
		if filesets, err := filesetsForRelease(tx, ident, hide); err == nil {
			out.Filesets = filesets
		}
	}
	if expand.Webcaptures {
		if webcaptures, err := webcapturesForRelease(tx, ident, hide); err == nil {
			out.Webcaptures = webcaptures
		}
	}
	if expand.Creators {
		for i, c := range out.Contribs {
			if c.CreatorID == nil {
				continue
			}
			if resolved, err := CreatorCrud{}.Get(tx, *c.CreatorID, hide); err == nil {
				out.Contribs[i].Creator = resolved.(*CreatorEntity)
			}
		}
	}
	return out, nil
}

func (ReleaseCrud) GetRev(tx *gorm.DB, revID fcid.FatCatId, hide HideFlags) (interface{}, error) {
	var rev ReleaseRev
	err := tx.Where("rev_id = ?", revID).First(&rev).Error
	if err == gorm.ErrRecordNotFound {
		return nil, NewError(NotFound, "release revision not found: %s", revID)
	}
	if err != nil {
		return nil, WrapError(Internal, err, "fetching release revision %s", revID)
	}
	return releaseRevToEntity(tx, &rev, hide), nil
}

func (ReleaseCrud) GetHistory(tx *gorm.DB, ident fcid.FatCatId, limit int) ([]HistoryEntry, error) {
	return getHistoryGeneric(tx, releaseEditTable, ident, limit)
}

func (ReleaseCrud) GetRedirects(tx *gorm.DB, ident fcid.FatCatId) ([]fcid.FatCatId, error) {
	return getRedirectsGeneric(tx, releaseIdentTable, ident)
}

func (ReleaseCrud) GetEdit(tx *gorm.DB, editID int64) (interface{}, error) {
	return getEditRow(tx, releaseEditTable, editID)
}

func (ReleaseCrud) DeleteEdit(tx *gorm.DB, editID int64) error {
	return deleteEditRowChecked(tx, releaseEditTable, editID)
}

func (c ReleaseCrud) Create(tx *gorm.DB, ec *EditContext, entity interface{}) (*EditEnvelope, error) {
	in, ok := entity.(*ReleaseEntity)
	if !ok {
		return nil, NewError(OtherBadRequest, "create: expected *ReleaseEntity, got %T", entity)
	}
	if err := validateReleaseRev(in); err != nil {
		return nil, err
	}
	if err := ec.Check(tx); err != nil {
		return nil, err
	}

	rev := releaseEntityToRev(in)
	if err := tx.Create(rev).Error; err != nil {
		return nil, WrapError(Internal, err, "creating release revision")
	}
	if err := writeReleaseChildren(tx, rev.RevID, in); err != nil {
		return nil, err
	}

	identID, err := insertIdent(tx, releaseIdentTable)
	if err != nil {
		return nil, err
	}
	edit := &EditEnvelope{EditgroupID: ec.EditgroupID, IdentID: identID, NewRevID: &rev.RevID, ExtraJSON: ec.ExtraJSON}
	if err := insertEditRow(tx, releaseEditTable, edit); err != nil {
		return nil, err
	}
	return edit, nil
}

func (c ReleaseCrud) Update(tx *gorm.DB, ec *EditContext, ident fcid.FatCatId, entity interface{}) (*EditEnvelope, error) {
	in, ok := entity.(*ReleaseEntity)
	if !ok {
		return nil, NewError(OtherBadRequest, "update: expected *ReleaseEntity, got %T", entity)
	}
	if err := validateReleaseRev(in); err != nil {
		return nil, err
	}
	if err := ec.Check(tx); err != nil {
		return nil, err
	}

	env, err := getIdentRow(tx, releaseIdentTable, ident)
	if err != nil {
		return nil, err
	}
	if env.IsTombstone() {
		return nil, NewError(NotFound, "release is deleted: %s", ident)
	}
	if env.IsRedirect() {
		return nil, NewError(OtherBadRequest, "release %s is a redirect; update the canonical ident", ident)
	}

	rev := releaseEntityToRev(in)
	if err := tx.Create(rev).Error; err != nil {
		return nil, WrapError(Internal, err, "creating release revision")
	}
	if err := writeReleaseChildren(tx, rev.RevID, in); err != nil {
		return nil, err
	}

	existing, err := findOpenEditForIdent(tx, releaseEditTable, ec.EditgroupID, ident)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.NewRevID = &rev.RevID
		existing.PrevRevID = env.CurrentRevID
		existing.ExtraJSON = ec.ExtraJSON
		if err := tx.Table(releaseEditTable).Where("edit_id = ?", existing.EditID).Updates(existing).Error; err != nil {
			return nil, WrapError(Internal, err, "replacing staged edit for release %s", ident)
		}
		return existing, nil
	}

	edit := &EditEnvelope{EditgroupID: ec.EditgroupID, IdentID: ident, NewRevID: &rev.RevID, PrevRevID: env.CurrentRevID, ExtraJSON: ec.ExtraJSON}
	if err := insertEditRow(tx, releaseEditTable, edit); err != nil {
		return nil, err
	}
	return edit, nil
}

func (c ReleaseCrud) Delete(tx *gorm.DB, ec *EditContext, ident fcid.FatCatId) (*EditEnvelope, error) {
	if err := ec.Check(tx); err != nil {
		return nil, err
	}
	env, err := getIdentRow(tx, releaseIdentTable, ident)
	if err != nil {
		return nil, err
	}
	if env.IsTombstone() {
		return nil, NewError(NotFound, "release already deleted: %s", ident)
	}
	edit := &EditEnvelope{EditgroupID: ec.EditgroupID, IdentID: ident, PrevRevID: env.CurrentRevID, ExtraJSON: ec.ExtraJSON}
	if err := insertEditRow(tx, releaseEditTable, edit); err != nil {
		return nil, err
	}
	return edit, nil
}

func (c ReleaseCrud) Redirect(tx *gorm.DB, ec *EditContext, ident, target fcid.FatCatId) (*EditEnvelope, error) {
	if ident.Equal(target) {
		return nil, NewError(OtherBadRequest, "release %s cannot redirect to itself", ident)
	}
	if err := ec.Check(tx); err != nil {
		return nil, err
	}
	env, err := getIdentRow(tx, releaseIdentTable, ident)
	if err != nil {
		return nil, err
	}
	targetEnv, err := getIdentRow(tx, releaseIdentTable, target)
	if err != nil {
		return nil, err
	}
	if err := validateRedirectTarget(targetEnv, target); err != nil {
		return nil, err
	}
	edit := &EditEnvelope{EditgroupID: ec.EditgroupID, IdentID: ident, PrevRevID: env.CurrentRevID, RedirectTo: &target, ExtraJSON: ec.ExtraJSON}
	if err := insertEditRow(tx, releaseEditTable, edit); err != nil {
		return nil, err
	}
	return edit, nil
}

func (ReleaseCrud) AcceptEdits(tx *gorm.DB, editgroupID fcid.FatCatId) error {
	return acceptEditsGeneric(tx, releaseIdentTable, releaseEditTable, editgroupID)
}

var _ EntityCrud = ReleaseCrud{}
