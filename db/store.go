package db

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/chainkt/chainkt/internal/model"
	"github.com/chainkt/chainkt/models"
)

// Store wraps the staging database with the operations the CLI needs.
type Store struct {
	db *gorm.DB
}

// NewStore wraps an open connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying connection, mainly for tests.
func (s *Store) DB() *gorm.DB { return s.db }

// BeginSession opens a new rewrite session.
func (s *Store) BeginSession(clientInfo map[string]any) (*models.Session, error) {
	session := &models.Session{ID: generateID("ses")}
	if clientInfo != nil {
		data, err := json.Marshal(clientInfo)
		if err != nil {
			return nil, fmt.Errorf("marshal client info: %w", err)
		}
		session.ClientInfo = datatypes.JSON(data)
	}
	if err := s.db.Create(session).Error; err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// EndSession stamps the session end time and final counters.
func (s *Store) EndSession(sessionID string) error {
	now := time.Now()
	return s.db.Model(&models.Session{}).
		Where("id = ?", sessionID).
		Update("ended_at", &now).Error
}

// StageResult stores a successful file rewrite as a pending stage.
func (s *Store) StageResult(sessionID string, res *model.Result, diff string) (*models.Stage, error) {
	if !res.Success {
		return nil, fmt.Errorf("refusing to stage failed result for %s", res.File)
	}

	changes, err := json.Marshal(res.Changes)
	if err != nil {
		return nil, fmt.Errorf("marshal changes: %w", err)
	}

	matcher, operation := "", ""
	if len(res.Changes) > 0 {
		matcher = res.Changes[0].Matcher
		operation = res.Changes[0].Operation
	}

	stage := &models.Stage{
		ID:          generateID("stg"),
		SessionID:   sessionID,
		File:        res.File,
		Matcher:     matcher,
		Operation:   operation,
		Original:    res.OriginalContent,
		Modified:    res.ModifiedContent,
		Diff:        diff,
		Changes:     datatypes.JSON(changes),
		BaseDigest:  res.OriginalSHA1,
		AfterDigest: res.ModifiedSHA1,
		Status:      "pending",
	}
	if err := s.db.Create(stage).Error; err != nil {
		return nil, fmt.Errorf("create stage: %w", err)
	}

	err = s.db.Model(&models.Session{}).
		Where("id = ?", sessionID).
		UpdateColumn("stages_count", gorm.Expr("stages_count + 1")).Error
	if err != nil {
		return nil, fmt.Errorf("bump session counter: %w", err)
	}
	return stage, nil
}

// ListPending returns the pending stages, oldest first.
func (s *Store) ListPending() ([]models.Stage, error) {
	var stages []models.Stage
	err := s.db.Where("status = ?", "pending").
		Order("created_at asc").
		Find(&stages).Error
	return stages, err
}

// GetStage fetches one stage by ID.
func (s *Store) GetStage(id string) (*models.Stage, error) {
	var stage models.Stage
	if err := s.db.First(&stage, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &stage, nil
}

// MarkApplied records a stage as committed to disk.
func (s *Store) MarkApplied(stageID, appliedBy string, auto bool) (*models.Apply, error) {
	stage, err := s.GetStage(stageID)
	if err != nil {
		return nil, err
	}

	apply := &models.Apply{
		ID:          generateID("apl"),
		StageID:     stage.ID,
		BaseDigest:  stage.BaseDigest,
		AfterDigest: stage.AfterDigest,
		AutoApplied: auto,
		AppliedBy:   appliedBy,
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(apply).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Stage{}).
			Where("id = ?", stage.ID).
			Updates(map[string]any{"status": "applied", "applied_at": &now}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Session{}).
			Where("id = ?", stage.SessionID).
			UpdateColumn("applies_count", gorm.Expr("applies_count + 1")).Error
	})
	if err != nil {
		return nil, fmt.Errorf("mark applied: %w", err)
	}
	return apply, nil
}

// MarkFailed marks a stage that could not be applied.
func (s *Store) MarkFailed(stageID string) error {
	return s.db.Model(&models.Stage{}).
		Where("id = ?", stageID).
		Update("status", "failed").Error
}

// History returns the most recent applies with their stages, newest first.
func (s *Store) History(limit int) ([]models.Apply, error) {
	var applies []models.Apply
	q := s.db.Preload("Stage").Order("applied_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&applies).Error
	return applies, err
}

// generateID produces a short random identifier with a type prefix.
func generateID(prefix string) string {
	bytes := make([]byte, 6)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
	}
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(bytes))
}
