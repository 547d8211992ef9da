package retrieval

import "fmt"

// groundedPromptTemplate instructs the model to answer strictly from the
// retrieved context and to cite the numbered sources.
const groundedPromptTemplate = `You are an AI assistant with access to the user's GitHub data. Answer the following question using ONLY the provided context from their repositories and issues.

CONTEXT FROM GITHUB (%d sources):
%s

QUESTION: %s

INSTRUCTIONS:
1. Answer based ONLY on the provided context above
2. Always cite your sources using [Source 1], [Source 2], etc. when making claims
3. If the context doesn't contain enough information to fully answer the question, acknowledge this
4. Be concise but comprehensive
5. When referencing specific issues or repositories, include their names
6. If multiple sources say similar things, you can cite them all: [Source 1, 2, 3]

ANSWER:`

// BuildPrompt renders the grounded instruction prompt for question. When
// retrieval found nothing, the question passes through unmodified and
// the model answers without context.
func BuildPrompt(question string, rc Context) string {
	if rc.SourceCount == 0 {
		return question
	}
	return fmt.Sprintf(groundedPromptTemplate, rc.SourceCount, rc.Text, question)
}
