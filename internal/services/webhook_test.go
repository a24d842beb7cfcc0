package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	gitlabapi "github.com/xanzy/go-gitlab"

	"github.com/glrv/reviewd/internal/apperrors"
	"github.com/glrv/reviewd/internal/db/repos"
)

type fakePipelineSource struct {
	pipeline  *gitlabapi.Pipeline
	mrIIDs    []int
	jobs      []*gitlabapi.Job
	artifacts map[string]string // "jobID/path" -> content
	artErr    error
}

func (f *fakePipelineSource) Pipeline(_, _ int) (*gitlabapi.Pipeline, error) {
	return f.pipeline, nil
}

func (f *fakePipelineSource) MergeRequestIIDsForCommit(_ int, _ string) ([]int, error) {
	return f.mrIIDs, nil
}

func (f *fakePipelineSource) PipelineJobs(_, _ int) ([]*gitlabapi.Job, error) {
	return f.jobs, nil
}

func (f *fakePipelineSource) JobArtifactFile(_, jobID int, path string) (string, error) {
	if f.artErr != nil {
		return "", f.artErr
	}
	content, ok := f.artifacts[fmt.Sprintf("%d/%s", jobID, path)]
	if !ok {
		return "", fmt.Errorf("artifact %s not found", path)
	}
	return content, nil
}

type fakeReviewStarter struct {
	commitCalls []string // "repoID:before:after"
	mrCalls     []string // "repoID:mrIID"
	artifacts   map[string]map[string]string
}

func (f *fakeReviewStarter) StartCommitReview(_ context.Context, repoID uint, before, after string) error {
	f.commitCalls = append(f.commitCalls, fmt.Sprintf("%d:%s:%s", repoID, before, after))
	return nil
}

func (f *fakeReviewStarter) StartMergeRequestReview(_ context.Context, repoID, mrIID uint, artifacts map[string]map[string]string) error {
	f.mrCalls = append(f.mrCalls, fmt.Sprintf("%d:%d", repoID, mrIID))
	f.artifacts = artifacts
	return nil
}

func newTestIngestor(t *testing.T, source PipelineSource, starter ReviewStarter) (*Ingestor, *repos.WebhookLogRepository) {
	t.Helper()
	logs := repos.NewWebhookLogRepository(newServiceTestDB(t))
	return NewIngestor("hook-secret", logs, source, starter), logs
}

func TestIngestorRejectsBadToken(t *testing.T) {
	starter := &fakeReviewStarter{}
	ingestor, logs := newTestIngestor(t, &fakePipelineSource{}, starter)
	ctx := context.Background()

	err := ingestor.Receive(ctx, "wrong-secret", []byte(`{"event_name":"push"}`))
	require.ErrorIs(t, err, apperrors.ErrInvalidWebhookToken)
	require.Empty(t, starter.commitCalls)

	// Rejected deliveries are not recorded.
	count, err := logs.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestIngestorRecordsBeforeParsing(t *testing.T) {
	ingestor, logs := newTestIngestor(t, &fakePipelineSource{}, &fakeReviewStarter{})
	ctx := context.Background()

	// A garbage payload with a valid token is recorded and acknowledged.
	require.NoError(t, ingestor.Receive(ctx, "hook-secret", []byte("not json at all")))

	count, err := logs.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestIngestorDispatchesPushEvent(t *testing.T) {
	starter := &fakeReviewStarter{}
	ingestor, _ := newTestIngestor(t, &fakePipelineSource{}, starter)

	payload := []byte(`{"event_name":"push","project_id":42,"before":"aaa","after":"bbb"}`)
	require.NoError(t, ingestor.Receive(context.Background(), "hook-secret", payload))
	require.Equal(t, []string{"42:aaa:bbb"}, starter.commitCalls)
}

func TestIngestorIgnoresUnknownEvents(t *testing.T) {
	starter := &fakeReviewStarter{}
	ingestor, _ := newTestIngestor(t, &fakePipelineSource{}, starter)

	payload := []byte(`{"object_kind":"tag_push","project_id":42}`)
	require.NoError(t, ingestor.Receive(context.Background(), "hook-secret", payload))
	require.Empty(t, starter.commitCalls)
	require.Empty(t, starter.mrCalls)
}

func TestIngestorSkipsRunningPipeline(t *testing.T) {
	starter := &fakeReviewStarter{}
	source := &fakePipelineSource{
		pipeline: &gitlabapi.Pipeline{ID: 5, SHA: "bbb", Status: "running"},
	}
	ingestor, _ := newTestIngestor(t, source, starter)

	payload := []byte(`{"object_kind":"pipeline","project":{"id":42},"object_attributes":{"id":5,"status":"running"}}`)
	require.NoError(t, ingestor.Receive(context.Background(), "hook-secret", payload))
	require.Empty(t, starter.mrCalls)
}

func TestIngestorSkipsPipelineWithoutMergeRequest(t *testing.T) {
	starter := &fakeReviewStarter{}
	source := &fakePipelineSource{
		pipeline: &gitlabapi.Pipeline{ID: 5, SHA: "bbb", Status: "success"},
	}
	ingestor, _ := newTestIngestor(t, source, starter)

	payload := []byte(`{"object_kind":"pipeline","project":{"id":42},"object_attributes":{"id":5,"status":"success"}}`)
	require.NoError(t, ingestor.Receive(context.Background(), "hook-secret", payload))
	require.Empty(t, starter.mrCalls)
}

func TestIngestorCollectsRecognizedArtifacts(t *testing.T) {
	starter := &fakeReviewStarter{}
	source := &fakePipelineSource{
		pipeline: &gitlabapi.Pipeline{ID: 5, SHA: "bbb", Status: "success"},
		mrIIDs:   []int{7, 8},
		jobs: []*gitlabapi.Job{
			{ID: 100, Name: "semgrep"},
			{ID: 101, Name: "unit-tests"},
		},
		artifacts: map[string]string{
			"100/semgrep.json": `{"results":[]}`,
		},
	}
	ingestor, _ := newTestIngestor(t, source, starter)

	payload := []byte(`{"object_kind":"pipeline","project":{"id":42},"object_attributes":{"id":5,"status":"success"}}`)
	require.NoError(t, ingestor.Receive(context.Background(), "hook-secret", payload))

	// The first merge request wins; unrecognized jobs are dropped.
	require.Equal(t, []string{"42:7"}, starter.mrCalls)
	require.Equal(t, map[string]map[string]string{
		"semgrep": {"semgrep.json": `{"results":[]}`},
	}, starter.artifacts)
}

func TestIngestorToleratesArtifactDownloadFailure(t *testing.T) {
	starter := &fakeReviewStarter{}
	source := &fakePipelineSource{
		pipeline: &gitlabapi.Pipeline{ID: 5, SHA: "bbb", Status: "failed"},
		mrIIDs:   []int{7},
		jobs:     []*gitlabapi.Job{{ID: 100, Name: "semgrep"}},
		artErr:   fmt.Errorf("artifact expired"),
	}
	ingestor, _ := newTestIngestor(t, source, starter)

	payload := []byte(`{"object_kind":"pipeline","project":{"id":42},"object_attributes":{"id":5,"status":"failed"}}`)
	require.NoError(t, ingestor.Receive(context.Background(), "hook-secret", payload))

	// The review still starts, just without the artifact.
	require.Equal(t, []string{"42:7"}, starter.mrCalls)
	require.Empty(t, starter.artifacts)
}
