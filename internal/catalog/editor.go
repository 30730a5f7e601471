package catalog

import (
	"time"

	"github.com/mm--/fatcat/pkg/fcid"
	"gorm.io/gorm"
)

// Editor is an actor authorized to author edits (spec.md §3 "Editor").
type Editor struct {
	EditorID          fcid.FatCatId  `gorm:"column:editor_id;primaryKey;type:uuid"`
	Username          string         `gorm:"column:username;uniqueIndex;not null"`
	IsAdmin           bool           `gorm:"column:is_admin;not null;default:false"`
	IsBot             bool           `gorm:"column:is_bot;not null;default:false"`
	ActiveEditgroupID *fcid.FatCatId `gorm:"column:active_editgroup_id;type:uuid"`
	CreatedAt         time.Time      `gorm:"column:created_at;not null"`
}

func (Editor) TableName() string { return "editor" }

// GetEditor fetches an editor by its FatCatId. Returns NotFound if absent.
func GetEditor(tx *gorm.DB, editorID fcid.FatCatId) (*Editor, error) {
	var e Editor
	err := tx.Where("editor_id = ?", editorID).First(&e).Error
	if err == gorm.ErrRecordNotFound {
		return nil, NewError(NotFound, "editor not found: %s", editorID)
	}
	if err != nil {
		return nil, WrapError(Internal, err, "fetching editor %s", editorID)
	}
	return &e, nil
}

// CreateEditor inserts a new editor row. Used by the `operator editor-bootstrap` CLI
// command to seed the bootstrap editor (fcid.BootstrapEditorUUID).
func CreateEditor(tx *gorm.DB, editorID fcid.FatCatId, username string, isAdmin, isBot bool) (*Editor, error) {
	e := &Editor{
		EditorID:  editorID,
		Username:  username,
		IsAdmin:   isAdmin,
		IsBot:     isBot,
		CreatedAt: time.Now(),
	}
	if err := tx.Create(e).Error; err != nil {
		return nil, WrapError(Internal, err, "creating editor %s", username)
	}
	return e, nil
}
