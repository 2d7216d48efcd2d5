package domain

// Paper source labels as reported to users.
const (
	PaperSourceArxiv           = "arXiv"
	PaperSourceSemanticScholar = "Semantic Scholar"
	PaperSourceInternal        = "Workspace"
)

// PaperCandidate is a transient candidate produced by an external paper
// search. It lives only for the duration of one recommendation batch; the
// orchestrator scores it and turns it into a Recommendation or drops it.
type PaperCandidate struct {
	Title      string
	Authors    string // Comma-joined author names
	Source     string
	ExternalID string
	URL        string
	Abstract   string
}
