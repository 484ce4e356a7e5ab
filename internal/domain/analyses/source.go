package analyses

// SourceFile is one fetched file from the repository sample. Produced by the
// fetcher, consumed once by the prompt builder, never persisted.
type SourceFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	Lines   int    `json:"lines"`
	Size    int    `json:"size"`
}

// CodeSample is the bounded set of files selected for one analysis run.
type CodeSample struct {
	Files      []SourceFile `json:"files"`
	Language   string       `json:"language"`
	TotalFiles int          `json:"total_files"`
	TotalLines int          `json:"total_lines"`
}
