package gitlab

import (
	"fmt"
	"io"

	"github.com/xanzy/go-gitlab"
)

// Pipeline returns one pipeline of a project
func (c *Client) Pipeline(projectID, pipelineID int) (*gitlab.Pipeline, error) {
	pipeline, _, err := c.Pipelines.GetPipeline(projectID, pipelineID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pipeline %d: %w", pipelineID, err)
	}
	return pipeline, nil
}

// MergeRequestIIDsForCommit returns the iids of merge requests associated
// with a commit. Pipelines do not link to their merge request directly, so
// the pipeline SHA is the join point.
func (c *Client) MergeRequestIIDsForCommit(projectID int, sha string) ([]int, error) {
	mrs, _, err := c.Client.Commits.ListMergeRequestsByCommit(projectID, sha)
	if err != nil {
		return nil, fmt.Errorf("failed to list merge requests for commit %s: %w", sha, err)
	}
	iids := make([]int, 0, len(mrs))
	for _, mr := range mrs {
		iids = append(iids, mr.IID)
	}
	return iids, nil
}

// PipelineJobs returns the jobs of a pipeline
func (c *Client) PipelineJobs(projectID, pipelineID int) ([]*gitlab.Job, error) {
	jobs := []*gitlab.Job{}
	opts := &gitlab.ListJobsOptions{
		ListOptions: gitlab.ListOptions{PerPage: 100},
	}
	for {
		page, resp, err := c.Jobs.ListPipelineJobs(projectID, pipelineID, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list pipeline jobs: %w", err)
		}
		jobs = append(jobs, page...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return jobs, nil
}

// JobArtifactFile downloads a single named artifact file from a job
func (c *Client) JobArtifactFile(projectID, jobID int, path string) (string, error) {
	reader, _, err := c.Jobs.DownloadSingleArtifactsFile(projectID, jobID, path)
	if err != nil {
		return "", fmt.Errorf("failed to download artifact %s: %w", path, err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read artifact %s: %w", path, err)
	}
	return string(data), nil
}
