// Package repos provides access to review-related database operations
package repos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/glrv/reviewd/internal/db/models"
)

// ErrAlreadyFinalized is returned when a finalize operation targets a review
// that already left the pending state. Terminal states are immutable.
var ErrAlreadyFinalized = errors.New("review already finalized")

// ErrStaleAnalysis is returned when an analysis finalize loses the race to a
// newer analysis run for the same repository.
var ErrStaleAnalysis = errors.New("analysis superseded by a newer run")

// ReviewRepository provides access to review job persistence
type ReviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new review repository instance
func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// CreateCommitReview creates a pending commit review. When the after-SHA
// already has a review for this repository (a redelivered push), the existing
// row is returned and created is false.
func (r *ReviewRepository) CreateCommitReview(ctx context.Context, repoID uint, before, after string) (review *models.CommitReview, created bool, err error) {
	var existing models.CommitReview
	err = r.db.WithContext(ctx).
		Where(&models.CommitReview{RepoID: repoID, AfterCommit: after}).
		First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("failed to look up commit review: %w", err)
	}

	review = &models.CommitReview{
		RepoID:       repoID,
		BeforeCommit: before,
		AfterCommit:  after,
		Status:       models.ReviewStatusPending,
	}
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return nil, false, fmt.Errorf("failed to create commit review: %w", err)
	}
	return review, true, nil
}

// GetCommitReviewByCommit retrieves a commit review by its after-SHA
func (r *ReviewRepository) GetCommitReviewByCommit(ctx context.Context, commitSHA string) (*models.CommitReview, error) {
	var review models.CommitReview
	err := r.db.WithContext(ctx).
		Where(&models.CommitReview{AfterCommit: commitSHA}).
		First(&review).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get commit review: %w", err)
	}
	return &review, nil
}

// FinalizeCommitReview moves a pending commit review to a terminal state,
// writing status and payload in a single update. Finalizing a review that is
// no longer pending returns ErrAlreadyFinalized.
func (r *ReviewRepository) FinalizeCommitReview(ctx context.Context, id uint, status models.ReviewStatus, reviewJSON json.RawMessage) error {
	if !status.IsTerminal() {
		return fmt.Errorf("cannot finalize to non-terminal status %s", status)
	}
	res := r.db.WithContext(ctx).Model(&models.CommitReview{}).
		Where("id = ? AND status = ?", id, models.ReviewStatusPending).
		Updates(map[string]interface{}{
			"status":      status,
			"review_json": reviewJSON,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to finalize commit review: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyFinalized
	}
	return nil
}

// CreateMergeRequestReview creates a pending merge request review. Each
// pipeline run produces a fresh row.
func (r *ReviewRepository) CreateMergeRequestReview(ctx context.Context, repoID, mrIID uint) (*models.MergeRequestReview, error) {
	review := &models.MergeRequestReview{
		RepoID: repoID,
		MrIID:  mrIID,
		Status: models.ReviewStatusPending,
	}
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return nil, fmt.Errorf("failed to create merge request review: %w", err)
	}
	return review, nil
}

// GetMergeRequestReview retrieves the most recent review for (repo, mr)
func (r *ReviewRepository) GetMergeRequestReview(ctx context.Context, repoID, mrIID uint) (*models.MergeRequestReview, error) {
	var review models.MergeRequestReview
	err := r.db.WithContext(ctx).
		Where(&models.MergeRequestReview{RepoID: repoID, MrIID: mrIID}).
		Order(models.CreatedAtField + " DESC").
		Order("id DESC").
		First(&review).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get merge request review: %w", err)
	}
	return &review, nil
}

// FinalizeMergeRequestReview moves a pending merge request review to a
// terminal state, writing status and payload atomically.
func (r *ReviewRepository) FinalizeMergeRequestReview(ctx context.Context, id uint, status models.ReviewStatus, reviewJSON json.RawMessage) error {
	if !status.IsTerminal() {
		return fmt.Errorf("cannot finalize to non-terminal status %s", status)
	}
	res := r.db.WithContext(ctx).Model(&models.MergeRequestReview{}).
		Where("id = ? AND status = ?", id, models.ReviewStatusPending).
		Updates(map[string]interface{}{
			"status":      status,
			"review_json": reviewJSON,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to finalize merge request review: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyFinalized
	}
	return nil
}

// CreateAnalysis creates a pending repository analysis and moves the
// repository's latest-analysis pointer to it.
func (r *ReviewRepository) CreateAnalysis(ctx context.Context, repoID uint) (*models.RepositoryAnalysis, error) {
	analysis := &models.RepositoryAnalysis{
		RepoID: repoID,
		Status: models.ReviewStatusPending,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(analysis).Error; err != nil {
			return err
		}
		return tx.Model(&models.Repository{}).
			Where("id = ?", repoID).
			Update("analysis_id", analysis.ID).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis: %w", err)
	}
	return analysis, nil
}

// FinalizeAnalysis moves a pending analysis to a terminal state. Only the run
// the repository currently points at may finalize; a superseded run gets
// ErrStaleAnalysis instead of silently overwriting newer state.
func (r *ReviewRepository) FinalizeAnalysis(ctx context.Context, repoID, analysisID uint, status models.ReviewStatus, analysisJSON json.RawMessage) error {
	if !status.IsTerminal() {
		return fmt.Errorf("cannot finalize to non-terminal status %s", status)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var repo models.Repository
		if err := tx.First(&repo, "id = ?", repoID).Error; err != nil {
			return fmt.Errorf("failed to get repository: %w", err)
		}
		if repo.AnalysisID == nil || *repo.AnalysisID != analysisID {
			return ErrStaleAnalysis
		}

		res := tx.Model(&models.RepositoryAnalysis{}).
			Where("id = ? AND status = ?", analysisID, models.ReviewStatusPending).
			Updates(map[string]interface{}{
				"status":        status,
				"analysis_json": analysisJSON,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to finalize analysis: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyFinalized
		}
		return nil
	})
}

// GetAnalysis retrieves an analysis by id
func (r *ReviewRepository) GetAnalysis(ctx context.Context, id uint) (*models.RepositoryAnalysis, error) {
	var analysis models.RepositoryAnalysis
	if err := r.db.WithContext(ctx).First(&analysis, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	return &analysis, nil
}

// ListAnalysisIDs returns the ids of all analyses for a repository, newest
// first.
func (r *ReviewRepository) ListAnalysisIDs(ctx context.Context, repoID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.RepositoryAnalysis{}).
		Where("repo_id = ?", repoID).
		Order(models.CreatedAtField + " DESC").
		Order("id DESC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	return ids, nil
}
