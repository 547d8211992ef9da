package source

import (
	"strings"

	"github.com/reposage/reposage/internal/chunk"
	"github.com/reposage/reposage/internal/knowledge"
)

// PrepareIssue turns an issue into embedding record candidates, one per
// chunk. Title and body are joined by a blank line; the combined text is
// chunked with the given policy (non-positive values fall back to the
// chunk package defaults). An issue with no text contributes nothing to
// the index.
//
// The returned records carry no vectors yet; the sync pipeline embeds
// all candidates in one batch.
func PrepareIssue(issue Issue, userID int64, maxLength, overlap int) []knowledge.Record {
	fullText := strings.TrimSpace(issue.Title + "\n\n" + issue.Body)
	if fullText == "" {
		return nil
	}

	chunks := chunk.Split(fullText, maxLength, overlap)

	records := make([]knowledge.Record, 0, len(chunks))
	for i, c := range chunks {
		records = append(records, knowledge.Record{
			Content:    c,
			SourceType: knowledge.SourceTypeIssue,
			SourceID:   issue.ID,
			UserID:     userID,
			Metadata: knowledge.IssueMetadata{
				Title:       issue.Title,
				Repository:  issue.RepositoryName,
				State:       issue.State,
				URL:         issue.URL,
				ChunkIndex:  i,
				TotalChunks: len(chunks),
			},
		})
	}
	return records
}

// PrepareRepository turns a repository into exactly one embedding record
// candidate. Summaries are short, so they are never chunked; a repository
// with no description falls back to its name as content.
func PrepareRepository(repo Repository, userID int64) knowledge.Record {
	text := strings.TrimSpace(repo.Name + "\n" + repo.Description)
	if text == "" {
		text = repo.Name
	}

	return knowledge.Record{
		Content:    text,
		SourceType: knowledge.SourceTypeRepository,
		SourceID:   repo.ID,
		UserID:     userID,
		Metadata: knowledge.RepositoryMetadata{
			Name:     repo.Name,
			Language: repo.Language,
			Stars:    repo.Stars,
			URL:      repo.URL,
		},
	}
}
