package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"gorm.io/gorm"

	"github.com/glrv/reviewd/internal/apperrors"
	"github.com/glrv/reviewd/internal/db/models"
	"github.com/glrv/reviewd/internal/db/repos"
	"github.com/glrv/reviewd/internal/llm"
	"github.com/glrv/reviewd/internal/logger"
)

// Runner drives one tool-calling conversation to completion.
type Runner interface {
	Run(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error)
}

// Review owns the pending -> completed/failed state machine for the three
// review kinds. Start* methods create a pending job and return once it is
// queued; the verdict is produced in the background and read back through
// the Get* methods.
type Review struct {
	reviews      *repos.ReviewRepository
	repositories *repos.RepositoryRepository
	orchestrator Runner
	dispatcher   *Dispatcher
	pool         *Pool
}

// NewReviewService creates a new review service instance
func NewReviewService(
	reviews *repos.ReviewRepository,
	repositories *repos.RepositoryRepository,
	orchestrator Runner,
	dispatcher *Dispatcher,
	pool *Pool,
) *Review {
	return &Review{
		reviews:      reviews,
		repositories: repositories,
		orchestrator: orchestrator,
		dispatcher:   dispatcher,
		pool:         pool,
	}
}

// StartCommitReview creates a pending commit review and queues its
// execution. A redelivered push (same repo and after-SHA) is a no-op.
func (s *Review) StartCommitReview(ctx context.Context, repoID uint, beforeSHA, afterSHA string) error {
	review, created, err := s.reviews.CreateCommitReview(ctx, repoID, beforeSHA, afterSHA)
	if err != nil {
		return err
	}
	if !created {
		logger.Infof("push %s on repo %d already has review %d, skipping", afterSHA, repoID, review.ID)
		return nil
	}

	name := fmt.Sprintf("commit-review-%d", review.ID)
	if err := s.pool.Submit(name, func(jobCtx context.Context) {
		s.executeCommitReview(jobCtx, review)
	}); err != nil {
		logger.Errorf("cannot queue %s: %v", name, err)
		return s.reviews.FinalizeCommitReview(ctx, review.ID, models.ReviewStatusFailed, nil)
	}
	return nil
}

// StartMergeRequestReview creates a pending merge request review and queues
// its execution with the collected pipeline artifacts as auxiliary context.
func (s *Review) StartMergeRequestReview(ctx context.Context, repoID, mrIID uint, artifacts map[string]map[string]string) error {
	review, err := s.reviews.CreateMergeRequestReview(ctx, repoID, mrIID)
	if err != nil {
		return err
	}

	name := fmt.Sprintf("mr-review-%d", review.ID)
	if err := s.pool.Submit(name, func(jobCtx context.Context) {
		s.executeMergeRequestReview(jobCtx, review, artifacts)
	}); err != nil {
		logger.Errorf("cannot queue %s: %v", name, err)
		return s.reviews.FinalizeMergeRequestReview(ctx, review.ID, models.ReviewStatusFailed, nil)
	}
	return nil
}

// StartRepositoryAnalysis creates a pending whole-repository analysis and
// queues its execution. The repository's latest-analysis pointer moves to the
// new run immediately.
func (s *Review) StartRepositoryAnalysis(ctx context.Context, repoID uint, ref string) error {
	analysis, err := s.reviews.CreateAnalysis(ctx, repoID)
	if err != nil {
		return err
	}

	name := fmt.Sprintf("repo-analysis-%d", analysis.ID)
	if err := s.pool.Submit(name, func(jobCtx context.Context) {
		s.executeAnalysis(jobCtx, analysis, ref)
	}); err != nil {
		logger.Errorf("cannot queue %s: %v", name, err)
		return s.reviews.FinalizeAnalysis(ctx, analysis.RepoID, analysis.ID, models.ReviewStatusFailed, nil)
	}
	return nil
}

// StartRepositoryAnalysisForUser starts an analysis on behalf of a user,
// verifying the user is bound to the repository first.
func (s *Review) StartRepositoryAnalysisForUser(ctx context.Context, userID, repoID uint, ref string) error {
	if err := s.checkBinding(ctx, userID, repoID); err != nil {
		return err
	}
	return s.StartRepositoryAnalysis(ctx, repoID, ref)
}

// GetCommitReview resolves a commit review by its after-SHA on behalf of a
// user. The permission check runs before any status is disclosed.
func (s *Review) GetCommitReview(ctx context.Context, userID uint, commitSHA string) (*models.CommitReview, error) {
	review, err := s.reviews.GetCommitReviewByCommit(ctx, commitSHA)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrCommitReviewNotExist
	}
	if err != nil {
		return nil, err
	}

	if err := s.checkBinding(ctx, userID, review.RepoID); err != nil {
		return nil, err
	}

	switch review.Status {
	case models.ReviewStatusPending:
		return nil, apperrors.ErrCommitReviewPending
	case models.ReviewStatusFailed:
		return nil, apperrors.ErrCommitReviewFailed
	case models.ReviewStatusCompleted:
		return review, nil
	default:
		return nil, fmt.Errorf("commit review %d has invalid status %d", review.ID, review.Status)
	}
}

// GetMergeRequestReview resolves the latest review for (repo, mr) on behalf
// of a user.
func (s *Review) GetMergeRequestReview(ctx context.Context, userID, repoID, mrIID uint) (*models.MergeRequestReview, error) {
	if err := s.checkBinding(ctx, userID, repoID); err != nil {
		return nil, err
	}

	review, err := s.reviews.GetMergeRequestReview(ctx, repoID, mrIID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrReviewNotExist
	}
	if err != nil {
		return nil, err
	}

	switch review.Status {
	case models.ReviewStatusPending:
		return nil, apperrors.ErrReviewPending
	case models.ReviewStatusFailed:
		return nil, apperrors.ErrReviewFailed
	case models.ReviewStatusCompleted:
		return review, nil
	default:
		return nil, fmt.Errorf("merge request review %d has invalid status %d", review.ID, review.Status)
	}
}

// GetAnalysis resolves a repository analysis by id on behalf of a user.
func (s *Review) GetAnalysis(ctx context.Context, userID, analysisID uint) (*models.RepositoryAnalysis, error) {
	analysis, err := s.reviews.GetAnalysis(ctx, analysisID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrAnalysisNotExist
	}
	if err != nil {
		return nil, err
	}

	if err := s.checkBinding(ctx, userID, analysis.RepoID); err != nil {
		return nil, err
	}

	switch analysis.Status {
	case models.ReviewStatusPending:
		return nil, apperrors.ErrAnalysisPending
	case models.ReviewStatusFailed:
		return nil, apperrors.ErrAnalysisFailed
	case models.ReviewStatusCompleted:
		return analysis, nil
	default:
		return nil, fmt.Errorf("analysis %d has invalid status %d", analysis.ID, analysis.Status)
	}
}

// GetAnalysisHistory lists a repository's analysis run ids, newest first.
func (s *Review) GetAnalysisHistory(ctx context.Context, userID, repoID uint) ([]uint, error) {
	if err := s.checkBinding(ctx, userID, repoID); err != nil {
		return nil, err
	}
	return s.reviews.ListAnalysisIDs(ctx, repoID)
}

func (s *Review) checkBinding(ctx context.Context, userID, repoID uint) error {
	bound, err := s.repositories.HasBinding(ctx, userID, repoID)
	if err != nil {
		return err
	}
	if !bound {
		return apperrors.ErrPermissionDenied
	}
	return nil
}

// executeCommitReview is the background unit for commit reviews. Every error
// path ends in a failed finalize; nothing escapes to the caller.
func (s *Review) executeCommitReview(ctx context.Context, review *models.CommitReview) {
	verdict, raw, err := s.produceVerdict(ctx, llm.CommitReviewPrompt(review.RepoID, review.BeforeCommit, review.AfterCommit))
	if err != nil {
		logger.Errorf("commit review %d failed: %v", review.ID, err)
		s.finalizeCommitFailed(ctx, review.ID)
		return
	}

	if err := s.reviews.FinalizeCommitReview(ctx, review.ID, models.ReviewStatusCompleted, raw); err != nil {
		logger.Errorf("cannot finalize commit review %d: %v", review.ID, err)
		return
	}
	s.dispatcher.DispatchAll(ctx, review.RepoID, verdict)
}

func (s *Review) executeMergeRequestReview(ctx context.Context, review *models.MergeRequestReview, artifacts map[string]map[string]string) {
	verdict, raw, err := s.produceVerdict(ctx, llm.MergeRequestReviewPrompt(review.RepoID, review.MrIID, artifacts))
	if err != nil {
		logger.Errorf("merge request review %d failed: %v", review.ID, err)
		if ferr := s.reviews.FinalizeMergeRequestReview(ctx, review.ID, models.ReviewStatusFailed, nil); ferr != nil {
			logger.Errorf("cannot mark merge request review %d failed: %v", review.ID, ferr)
		}
		return
	}

	if err := s.reviews.FinalizeMergeRequestReview(ctx, review.ID, models.ReviewStatusCompleted, raw); err != nil {
		logger.Errorf("cannot finalize merge request review %d: %v", review.ID, err)
		return
	}
	s.dispatcher.DispatchAll(ctx, review.RepoID, verdict)
}

func (s *Review) executeAnalysis(ctx context.Context, analysis *models.RepositoryAnalysis, ref string) {
	verdict, raw, err := s.produceVerdict(ctx, llm.RepositoryAnalysisPrompt(analysis.RepoID, ref))
	if err != nil {
		logger.Errorf("analysis %d failed: %v", analysis.ID, err)
		if ferr := s.reviews.FinalizeAnalysis(ctx, analysis.RepoID, analysis.ID, models.ReviewStatusFailed, nil); ferr != nil {
			logger.Errorf("cannot mark analysis %d failed: %v", analysis.ID, ferr)
		}
		return
	}

	err = s.reviews.FinalizeAnalysis(ctx, analysis.RepoID, analysis.ID, models.ReviewStatusCompleted, raw)
	if errors.Is(err, repos.ErrStaleAnalysis) {
		logger.Infof("analysis %d superseded before completion, dropping result", analysis.ID)
		return
	}
	if err != nil {
		logger.Errorf("cannot finalize analysis %d: %v", analysis.ID, err)
		return
	}
	s.dispatcher.DispatchAll(ctx, analysis.RepoID, verdict)
}

// produceVerdict runs the orchestrator and validates its output.
func (s *Review) produceVerdict(ctx context.Context, messages []openai.ChatCompletionMessage) (*Verdict, json.RawMessage, error) {
	out, err := s.orchestrator.Run(ctx, messages)
	if err != nil {
		return nil, nil, err
	}
	verdict, err := ParseVerdict(out)
	if err != nil {
		return nil, nil, err
	}
	return verdict, json.RawMessage(out), nil
}

func (s *Review) finalizeCommitFailed(ctx context.Context, id uint) {
	if err := s.reviews.FinalizeCommitReview(ctx, id, models.ReviewStatusFailed, nil); err != nil {
		logger.Errorf("cannot mark commit review %d failed: %v", id, err)
	}
}
