package domain

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

const (
	ChangeTypeCreated = "created"
	ChangeTypeUpdated = "updated"
	ChangeTypeDeleted = "deleted"
)

// SnapshotSchemaVersion tags archived payloads so history written under an
// older item shape stays decodable after schema evolution.
const SnapshotSchemaVersion = 1

// Entry is one append-only audit record. Entries are never updated or
// deleted once written.
type Entry struct {
	ID         int64          `json:"id" gorm:"primaryKey"`
	MenuItemID int64          `json:"menu_item_id" gorm:"not null;index:ix_menu_archive_item_changed,priority:1"`
	Snapshot   datatypes.JSON `json:"snapshot" gorm:"not null"`
	ChangeType string         `json:"change_type" gorm:"type:text;not null"`
	ChangedAt  time.Time      `json:"changed_at" gorm:"not null;index:ix_menu_archive_item_changed,priority:2"`
}

func (Entry) TableName() string { return "menu_archive" }

type snapshotEnvelope struct {
	SchemaVersion int             `json:"schema_version"`
	Item          json.RawMessage `json:"item"`
}

// EncodeSnapshot wraps a full item copy in the versioned envelope.
func EncodeSnapshot(item any) (datatypes.JSON, error) {
	raw, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(snapshotEnvelope{
		SchemaVersion: SnapshotSchemaVersion,
		Item:          raw,
	})
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(payload), nil
}

// DecodeSnapshot unwraps the envelope into the caller's item shape.
func DecodeSnapshot(snapshot datatypes.JSON, item any) error {
	var envelope snapshotEnvelope
	if err := json.Unmarshal(snapshot, &envelope); err != nil {
		return err
	}
	return json.Unmarshal(envelope.Item, item)
}
