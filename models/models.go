// Package models defines the persistence schema for staged and applied loop
// rewrites.
package models

import (
	"time"

	"gorm.io/datatypes"
)

// Stage represents a pending loop rewrite staged against a file.
type Stage struct {
	ID        string `gorm:"primaryKey;type:varchar(20)"`
	SessionID string `gorm:"type:varchar(20);index"`

	// Operation details
	File      string `gorm:"type:varchar(512);not null;index"`
	Matcher   string `gorm:"type:varchar(50);not null"` // idiom family, e.g. "find"
	Operation string `gorm:"type:varchar(50);not null"` // chain operation, e.g. "firstOrNull{}"

	// Content
	Original string `gorm:"type:text"`
	Modified string `gorm:"type:text"`
	Diff     string `gorm:"type:text"`

	// Per-loop change details
	Changes datatypes.JSON `gorm:"type:jsonb"`

	// Checksums for validation
	BaseDigest  string `gorm:"type:varchar(64)"` // SHA1 of original
	AfterDigest string `gorm:"type:varchar(64)"` // SHA1 of modified

	// Status tracking
	Status    string    `gorm:"type:varchar(20);default:'pending'"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	AppliedAt *time.Time

	// Relationships
	Apply *Apply `gorm:"foreignKey:StageID"`
}

// Apply represents a committed rewrite.
type Apply struct {
	ID      string `gorm:"primaryKey;type:varchar(20)"`
	StageID string `gorm:"type:varchar(20);uniqueIndex"`

	// Checksums for validation
	BaseDigest  string `gorm:"type:varchar(64)"`
	AfterDigest string `gorm:"type:varchar(64)"`

	// Metadata
	AutoApplied bool      `gorm:"default:false"`
	AppliedBy   string    `gorm:"type:varchar(100)"` // User or "auto"
	AppliedAt   time.Time `gorm:"autoCreateTime"`

	// Relationship
	Stage Stage `gorm:"foreignKey:StageID"`
}

// Session tracks one rewrite run over a set of targets.
type Session struct {
	ID        string    `gorm:"primaryKey;type:varchar(20)"`
	StartedAt time.Time `gorm:"autoCreateTime"`
	EndedAt   *time.Time

	// Statistics
	StagesCount  int `gorm:"default:0"`
	AppliesCount int `gorm:"default:0"`

	// Invocation info
	ClientInfo datatypes.JSON `gorm:"type:jsonb"`
}

// TableName customizations for cleaner names
func (Stage) TableName() string   { return "stages" }
func (Apply) TableName() string   { return "applies" }
func (Session) TableName() string { return "sessions" }
