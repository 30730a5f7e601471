package catalog

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/mm--/fatcat/pkg/fcid"
	"gorm.io/gorm"
)

// EditEnvelope is the common shape of every `{kind}_edit` row (spec.md §3
// "Edit"), embedded by each kind's concrete edit struct.
type EditEnvelope struct {
	EditID      int64          `gorm:"column:edit_id;primaryKey;autoIncrement"`
	EditgroupID fcid.FatCatId  `gorm:"column:editgroup_id;type:uuid;index;not null"`
	IdentID     fcid.FatCatId  `gorm:"column:ident_id;type:uuid;index;not null"`
	NewRevID    *fcid.FatCatId `gorm:"column:new_rev_id;type:uuid"`
	PrevRevID   *fcid.FatCatId `gorm:"column:prev_rev_id;type:uuid"`
	RedirectTo  *fcid.FatCatId `gorm:"column:redirect_to;type:uuid"`
	ExtraJSON   []byte         `gorm:"column:extra_json;type:jsonb"`
}

// IdentEnvelope is the common shape of every `{kind}_ident` row (spec.md
// §3 "Ident").
type IdentEnvelope struct {
	IdentID         fcid.FatCatId  `gorm:"column:ident_id;primaryKey;type:uuid"`
	IsLive          bool           `gorm:"column:is_live;not null;default:false"`
	CurrentRevID    *fcid.FatCatId `gorm:"column:current_rev_id;type:uuid"`
	RedirectToIdent *fcid.FatCatId `gorm:"column:redirect_to_ident;type:uuid"`
}

// IsTombstone reports whether this ident is live yet carries neither a
// revision nor a redirect (spec.md I2's "both null" tombstone state). An
// ident whose create is still staged is not live, so it is not a tombstone.
func (i IdentEnvelope) IsTombstone() bool {
	return i.IsLive && i.CurrentRevID == nil && i.RedirectToIdent == nil
}

// IsRedirect reports whether this ident currently redirects elsewhere.
func (i IdentEnvelope) IsRedirect() bool {
	return i.RedirectToIdent != nil
}

// HistoryEntry is one row of db_get_history's result (spec.md §4.4):
// the changelog entry, edit, and editgroup that produced it, ordered by
// changelog id descending.
type HistoryEntry struct {
	ChangelogID int64
	Editgroup   Editgroup
	EditID      int64
	EditgroupID fcid.FatCatId
}

// EntityCrud is the capability set every entity kind implements (spec.md
// §9): a tagged-dispatch table rather than an inheritance hierarchy. Each
// method operates within the transaction tx it is handed; callers own
// transaction boundaries.
type EntityCrud interface {
	// Kind returns the entity kind name (eg "release"), used for routing
	// and for the fixed kind order in acceptance (spec.md §4.5).
	Kind() string

	// Get returns the current live revision's contents for ident,
	// filtered by hide. Follows at most one redirect.
	Get(tx *gorm.DB, ident fcid.FatCatId, hide HideFlags) (interface{}, error)

	// GetRev returns a revision directly, with no ident context.
	GetRev(tx *gorm.DB, revID fcid.FatCatId, hide HideFlags) (interface{}, error)

	// GetHistory returns accepted edits against ident, newest first.
	GetHistory(tx *gorm.DB, ident fcid.FatCatId, limit int) ([]HistoryEntry, error)

	// GetRedirects enumerates idents that redirect to ident.
	GetRedirects(tx *gorm.DB, ident fcid.FatCatId) ([]fcid.FatCatId, error)

	// GetEdit fetches a single staged edit by id.
	GetEdit(tx *gorm.DB, editID int64) (interface{}, error)

	// DeleteEdit removes a staged edit. Fails OtherBadRequest if its
	// editgroup has already been accepted.
	DeleteEdit(tx *gorm.DB, editID int64) error

	// Create stages a new entity: new revision, new (non-live) ident,
	// new edit with PrevRevID nil.
	Create(tx *gorm.DB, ec *EditContext, entity interface{}) (*EditEnvelope, error)

	// Update stages a revision of ident. Fails NotFound if ident is
	// absent or tombstoned, OtherBadRequest if ident is a redirect.
	Update(tx *gorm.DB, ec *EditContext, ident fcid.FatCatId, entity interface{}) (*EditEnvelope, error)

	// Delete stages a tombstone edit (NewRevID nil) against ident.
	Delete(tx *gorm.DB, ec *EditContext, ident fcid.FatCatId) (*EditEnvelope, error)

	// Redirect stages a redirect edit from ident to target.
	Redirect(tx *gorm.DB, ec *EditContext, ident, target fcid.FatCatId) (*EditEnvelope, error)

	// AcceptEdits promotes every staged edit of this kind belonging to
	// editgroupID to the ident table, setting IsLive true.
	AcceptEdits(tx *gorm.DB, editgroupID fcid.FatCatId) error
}

// kindOrder is the fixed acceptance order spec.md §4.5 mandates for
// deterministic test output. Correctness does not depend on it: no
// kind's AcceptEdits reads another kind's just-accepted IsLive state (see
// SPEC_FULL.md §10's order-independence note for I7).
var kindOrder = []string{
	"container", "creator", "file", "fileset", "webcapture", "release", "work",
}

// Registry maps a kind name to its EntityCrud implementation, the
// Go-native analogue of the Rust wrap_entity_handlers! macro's per-kind
// dispatch.
type Registry struct {
	byKind map[string]EntityCrud
}

// NewRegistry builds a Registry from the seven kind implementations.
func NewRegistry(cruds ...EntityCrud) *Registry {
	r := &Registry{byKind: make(map[string]EntityCrud, len(cruds))}
	for _, c := range cruds {
		r.byKind[c.Kind()] = c
	}
	return r
}

// Get returns the EntityCrud for kind, or nil if unknown.
func (r *Registry) Get(kind string) EntityCrud {
	return r.byKind[kind]
}

// Kinds returns the fixed acceptance order, filtered to kinds actually
// registered.
func (r *Registry) Kinds() []string {
	out := make([]string, 0, len(kindOrder))
	for _, k := range kindOrder {
		if _, ok := r.byKind[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// CreateBatch stages a batch of same-kind entities in one transaction
// (spec.md §4.4 "Batch create"). Per-entity validation failures are
// aggregated with go-multierror rather than aborting on the first one, so
// a caller sees every malformed entity in a single response. If any
// entity fails validation the whole batch is rejected (OtherBadRequest)
// and no edits are staged. If ec.Autoaccept, the editgroup is accepted in
// the same transaction, yielding an atomic insert of the whole batch.
func CreateBatch(db *gorm.DB, registry *Registry, kind string, ec *EditContext, entities []interface{}) ([]*EditEnvelope, error) {
	crud := registry.Get(kind)
	if crud == nil {
		return nil, NewError(OtherBadRequest, "unknown entity kind: %s", kind)
	}

	var edits []*EditEnvelope
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := ec.Check(tx); err != nil {
			return err
		}

		var errs *multierror.Error
		staged := make([]*EditEnvelope, 0, len(entities))
		for i, entity := range entities {
			edit, err := crud.Create(tx, ec, entity)
			if err != nil {
				errs = multierror.Append(errs, fmt.Errorf("entity %d: %w", i, err))
				continue
			}
			staged = append(staged, edit)
		}
		if err := errs.ErrorOrNil(); err != nil {
			return WrapError(OtherBadRequest, err, "batch create failed validation")
		}

		if ec.Autoaccept {
			if _, err := acceptEditgroupTx(tx, registry, ec.EditgroupID); err != nil {
				return err
			}
		}

		edits = staged
		return nil
	})
	if err != nil {
		return nil, err
	}
	return edits, nil
}
