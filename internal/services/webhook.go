package services

import (
	"context"
	"encoding/json"

	gitlabapi "github.com/xanzy/go-gitlab"

	"github.com/glrv/reviewd/internal/apperrors"
	"github.com/glrv/reviewd/internal/db/repos"
	"github.com/glrv/reviewd/internal/logger"
)

// artifactJobs is the static allow-list of pipeline job names whose artifact
// files feed the merge request review. Unrecognized job names are skipped.
var artifactJobs = map[string][]string{
	"megalinter": {"megalinter-reports/copy-paste/html/jscpd-report.json"},
	"semgrep":    {"semgrep.json"},
}

// PipelineSource is the slice of the GitLab API the ingestor needs to turn a
// pipeline event into a merge request review.
type PipelineSource interface {
	Pipeline(projectID, pipelineID int) (*gitlabapi.Pipeline, error)
	MergeRequestIIDsForCommit(projectID int, sha string) ([]int, error)
	PipelineJobs(projectID, pipelineID int) ([]*gitlabapi.Job, error)
	JobArtifactFile(projectID, jobID int, path string) (string, error)
}

// ReviewStarter is the slice of the review service the ingestor dispatches to.
type ReviewStarter interface {
	StartCommitReview(ctx context.Context, repoID uint, beforeSHA, afterSHA string) error
	StartMergeRequestReview(ctx context.Context, repoID, mrIID uint, artifacts map[string]map[string]string) error
}

// Ingestor authenticates inbound GitLab webhooks, records them and turns
// recognized events into review jobs.
type Ingestor struct {
	webhookToken string
	logs         *repos.WebhookLogRepository
	source       PipelineSource
	reviews      ReviewStarter
}

// NewIngestor creates a new webhook ingestor
func NewIngestor(webhookToken string, logs *repos.WebhookLogRepository, source PipelineSource, reviews ReviewStarter) *Ingestor {
	return &Ingestor{
		webhookToken: webhookToken,
		logs:         logs,
		source:       source,
		reviews:      reviews,
	}
}

type webhookEvent struct {
	EventName  string `json:"event_name"`
	ObjectKind string `json:"object_kind"`

	// push fields
	ProjectID int    `json:"project_id"`
	Before    string `json:"before"`
	After     string `json:"after"`

	// pipeline fields
	Project struct {
		ID int `json:"id"`
	} `json:"project"`
	ObjectAttributes struct {
		ID     int    `json:"id"`
		Status string `json:"status"`
	} `json:"object_attributes"`
}

// Receive verifies the webhook token, records the raw payload and dispatches
// recognized events. The payload is recorded before interpretation so
// malformed events remain recoverable from the audit log.
func (i *Ingestor) Receive(ctx context.Context, token string, body []byte) error {
	if token != i.webhookToken {
		return apperrors.ErrInvalidWebhookToken
	}

	if err := i.logs.Record(ctx, string(body)); err != nil {
		return err
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		logger.Warnf("unparseable webhook payload: %v", err)
		return nil
	}

	kind := event.EventName
	if kind == "" {
		kind = event.ObjectKind
	}

	switch kind {
	case "push":
		logger.Infof("received push event from repo %d", event.ProjectID)
		return i.reviews.StartCommitReview(ctx, uint(event.ProjectID), event.Before, event.After)
	case "pipeline":
		logger.Infof("received pipeline event from repo %d", event.Project.ID)
		return i.handlePipelineEvent(ctx, event)
	default:
		logger.Debugf("ignoring webhook event %q", kind)
		return nil
	}
}

// handlePipelineEvent starts a merge request review once a pipeline reaches a
// terminal state, enriched with the artifact files of recognized jobs.
func (i *Ingestor) handlePipelineEvent(ctx context.Context, event webhookEvent) error {
	projectID := event.Project.ID

	pipeline, err := i.source.Pipeline(projectID, event.ObjectAttributes.ID)
	if err != nil {
		return err
	}
	if pipeline.Status != "success" && pipeline.Status != "failed" {
		logger.Infof("skipping pipeline %d in state %s", pipeline.ID, pipeline.Status)
		return nil
	}

	iids, err := i.source.MergeRequestIIDsForCommit(projectID, pipeline.SHA)
	if err != nil {
		return err
	}
	if len(iids) == 0 {
		logger.Warnf("no merge request found for pipeline %d", pipeline.ID)
		return nil
	}
	mrIID := iids[0]

	jobs, err := i.source.PipelineJobs(projectID, pipeline.ID)
	if err != nil {
		return err
	}

	artifacts := make(map[string]map[string]string)
	for _, job := range jobs {
		files, ok := artifactJobs[job.Name]
		if !ok {
			logger.Infof("skipping unrecognized pipeline job %s", job.Name)
			continue
		}
		collected := make(map[string]string)
		for _, file := range files {
			content, err := i.source.JobArtifactFile(projectID, job.ID, file)
			if err != nil {
				// One missing artifact must not sink the review.
				logger.Errorf("failed to download %s from job %s: %v", file, job.Name, err)
				continue
			}
			collected[file] = content
		}
		if len(collected) > 0 {
			artifacts[job.Name] = collected
		}
	}

	return i.reviews.StartMergeRequestReview(ctx, uint(projectID), uint(mrIID), artifacts)
}
