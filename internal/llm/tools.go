package llm

import (
	"context"
	"encoding/json"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/glrv/reviewd/internal/gitlab"
)

func functionTool(name, description string, params jsonschema.Definition) openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        name,
			Description: description,
			Parameters:  params,
		},
	}
}

func objectSchema(properties map[string]jsonschema.Definition, required ...string) jsonschema.Definition {
	return jsonschema.Definition{
		Type:       jsonschema.Object,
		Properties: properties,
		Required:   required,
	}
}

var projectIDProp = jsonschema.Definition{
	Type:        jsonschema.Integer,
	Description: "The GitLab project id.",
}

// NewRepositoryToolbox builds the fixed registry of repository-introspection
// functions backed by the given GitLab client. The client holds the service
// credential; model-supplied arguments never carry it.
func NewRepositoryToolbox(gl *gitlab.Client) *Toolbox {
	b := NewToolbox()

	b.Register(functionTool(
		"get_repo_info",
		"Get basic information about a GitLab repository.",
		objectSchema(map[string]jsonschema.Definition{
			"project_id": projectIDProp,
		}, "project_id"),
	), func(_ context.Context, args json.RawMessage) (interface{}, error) {
		var a struct {
			ProjectID int `json:"project_id"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
		return gl.ProjectInfo(a.ProjectID)
	})

	b.Register(functionTool(
		"get_repo_branches",
		"List the branches of a GitLab repository.",
		objectSchema(map[string]jsonschema.Definition{
			"project_id": projectIDProp,
		}, "project_id"),
	), func(_ context.Context, args json.RawMessage) (interface{}, error) {
		var a struct {
			ProjectID int `json:"project_id"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
		return gl.BranchNames(a.ProjectID)
	})

	b.Register(functionTool(
		"get_repo_tree",
		"Get the file tree of a GitLab repository.",
		objectSchema(map[string]jsonschema.Definition{
			"project_id": projectIDProp,
			"ref": {
				Type:        jsonschema.String,
				Description: "Branch, tag or commit to read. Defaults to the default branch.",
			},
		}, "project_id"),
	), func(_ context.Context, args json.RawMessage) (interface{}, error) {
		var a struct {
			ProjectID int    `json:"project_id"`
			Ref       string `json:"ref"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
		return gl.Tree(a.ProjectID, a.Ref)
	})

	b.Register(functionTool(
		"get_file_content",
		"Get the content of a file in a GitLab repository.",
		objectSchema(map[string]jsonschema.Definition{
			"project_id": projectIDProp,
			"ref": {
				Type:        jsonschema.String,
				Description: "Branch, tag or commit the file lives on.",
			},
			"file_path": {
				Type:        jsonschema.String,
				Description: "Full path of the file inside the repository.",
			},
		}, "project_id", "ref", "file_path"),
	), func(_ context.Context, args json.RawMessage) (interface{}, error) {
		var a struct {
			ProjectID int    `json:"project_id"`
			Ref       string `json:"ref"`
			FilePath  string `json:"file_path"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
		return gl.FileContent(a.ProjectID, a.Ref, a.FilePath)
	})

	b.Register(functionTool(
		"get_project_commits",
		"List the commits of a GitLab project.",
		objectSchema(map[string]jsonschema.Definition{
			"project_id": projectIDProp,
			"ref_name": {
				Type:        jsonschema.String,
				Description: "Branch name, tag name or commit SHA.",
			},
			"per_page": {
				Type:        jsonschema.Integer,
				Description: "Number of commits to return. Defaults to 20.",
			},
		}, "project_id"),
	), func(_ context.Context, args json.RawMessage) (interface{}, error) {
		var a struct {
			ProjectID int    `json:"project_id"`
			RefName   string `json:"ref_name"`
			PerPage   int    `json:"per_page"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
		return gl.Commits(a.ProjectID, a.RefName, a.PerPage)
	})

	b.Register(functionTool(
		"get_commit_details",
		"Get the details of a single commit, including stats.",
		objectSchema(map[string]jsonschema.Definition{
			"project_id": projectIDProp,
			"commit_sha": {
				Type:        jsonschema.String,
				Description: "SHA of the commit.",
			},
		}, "project_id", "commit_sha"),
	), func(_ context.Context, args json.RawMessage) (interface{}, error) {
		var a struct {
			ProjectID int    `json:"project_id"`
			CommitSHA string `json:"commit_sha"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
		return gl.CommitDetails(a.ProjectID, a.CommitSHA)
	})

	b.Register(functionTool(
		"get_commit_compare",
		"Get the diff between two commits. Use it to read the diff of a whole push at once.",
		objectSchema(map[string]jsonschema.Definition{
			"project_id": projectIDProp,
			"before_sha": {
				Type:        jsonschema.String,
				Description: "SHA the comparison starts from.",
			},
			"after_sha": {
				Type:        jsonschema.String,
				Description: "SHA the comparison ends at.",
			},
		}, "project_id", "before_sha", "after_sha"),
	), func(_ context.Context, args json.RawMessage) (interface{}, error) {
		var a struct {
			ProjectID int    `json:"project_id"`
			BeforeSHA string `json:"before_sha"`
			AfterSHA  string `json:"after_sha"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
		return gl.Compare(a.ProjectID, a.BeforeSHA, a.AfterSHA)
	})

	b.Register(functionTool(
		"get_branch",
		"Get the details of a branch, including its head commit.",
		objectSchema(map[string]jsonschema.Definition{
			"project_id": projectIDProp,
			"branch_name": {
				Type:        jsonschema.String,
				Description: "Name of the branch.",
			},
		}, "project_id", "branch_name"),
	), func(_ context.Context, args json.RawMessage) (interface{}, error) {
		var a struct {
			ProjectID  int    `json:"project_id"`
			BranchName string `json:"branch_name"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
		return gl.Branch(a.ProjectID, a.BranchName)
	})

	b.Register(functionTool(
		"get_merge_request_changes",
		"Get a merge request with its list of changed files and diffs.",
		objectSchema(map[string]jsonschema.Definition{
			"project_id": projectIDProp,
			"mr_iid": {
				Type:        jsonschema.Integer,
				Description: "Project-local iid of the merge request.",
			},
		}, "project_id", "mr_iid"),
	), func(_ context.Context, args json.RawMessage) (interface{}, error) {
		var a struct {
			ProjectID int `json:"project_id"`
			MrIID     int `json:"mr_iid"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
		return gl.MergeRequestChanges(a.ProjectID, a.MrIID)
	})

	return b
}
