package llm

import (
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const verdictInstructions = `Respond with a single JSON object of the form ` +
	`{"info": "<free-text explanation>", "suggestion": {<structured suggestions>}, "level": <0-3>} ` +
	`where level is the risk level: 0 informational, 1 bug, 2 security weakness, 3 credential or data leak. ` +
	`Do not wrap the JSON in markdown fences.`

// CommitReviewPrompt builds the opening transcript for a commit review.
func CommitReviewPrompt(repoID uint, beforeSHA, afterSHA string) []openai.ChatCompletionMessage {
	content := fmt.Sprintf(
		"Review the push to project %d covering commits %s..%s. "+
			"Use the available functions to read the diff and any files you need, "+
			"then judge correctness, style and security of the change. %s",
		repoID, beforeSHA, afterSHA, verdictInstructions,
	)
	return []openai.ChatCompletionMessage{{
		Role:    openai.ChatMessageRoleUser,
		Content: content,
	}}
}

// MergeRequestReviewPrompt builds the opening transcript for a merge request
// review. artifacts maps pipeline job names to file name/content pairs
// collected from the pipeline run.
func MergeRequestReviewPrompt(repoID, mrIID uint, artifacts map[string]map[string]string) []openai.ChatCompletionMessage {
	var sb strings.Builder
	fmt.Fprintf(&sb,
		"Review merge request !%d of project %d. "+
			"Use the available functions to read its changes and any files you need.",
		mrIID, repoID,
	)

	if len(artifacts) > 0 {
		sb.WriteString("\n\nThe CI pipeline produced these analysis reports; fold their findings into your review:\n")
		for jobName, files := range artifacts {
			for fileName, content := range files {
				fmt.Fprintf(&sb, "\n--- %s: %s ---\n%s\n", jobName, fileName, content)
			}
		}
	}

	sb.WriteString("\n")
	sb.WriteString(verdictInstructions)

	return []openai.ChatCompletionMessage{{
		Role:    openai.ChatMessageRoleUser,
		Content: sb.String(),
	}}
}

// RepositoryAnalysisPrompt builds the opening transcript for a whole
// repository analysis. An empty ref means the default branch.
func RepositoryAnalysisPrompt(repoID uint, ref string) []openai.ChatCompletionMessage {
	target := "the default branch"
	if ref != "" {
		target = fmt.Sprintf("branch %s", ref)
	}
	content := fmt.Sprintf(
		"Analyze project %d in depth on %s. "+
			"Read the repository tree and the files you consider important, then report on "+
			"architecture, code quality and risks. %s",
		repoID, target, verdictInstructions,
	)
	return []openai.ChatCompletionMessage{{
		Role:    openai.ChatMessageRoleUser,
		Content: content,
	}}
}
