package model

// Result holds the outcome of rewriting a single file.
type Result struct {
	File            string    `json:"file"`
	Time            string    `json:"time"`
	SchemaVersion   int       `json:"schema_version"`
	ToolVersion     string    `json:"tool_version"`
	Success         bool      `json:"success"`
	LoopsFound      int       `json:"loops_found"`
	LoopsRewritten  int       `json:"loops_rewritten"`
	ChangedBytes    int       `json:"changed_bytes"`
	Error           string    `json:"error,omitempty"`
	ErrorCode       ErrorCode `json:"error_code,omitempty"`
	OriginalSHA1    string    `json:"original_sha1,omitempty"`
	ModifiedSHA1    string    `json:"modified_sha1,omitempty"`
	OriginalContent string    `json:"-"` // Omitted from JSON for brevity
	ModifiedContent string    `json:"-"` // Omitted from JSON for brevity
	Changes         []Change  `json:"changes,omitempty"`
}

// Change represents one rewritten loop within a file.
type Change struct {
	Matcher      string `json:"matcher"`
	Operation    string `json:"operation"`
	Presentation string `json:"presentation"`
	LineStart    int    `json:"line_start"`
	LineEnd      int    `json:"line_end"`
	Start        int    `json:"start"` // byte offsets into the original content
	End          int    `json:"end"`
	Original     string `json:"original"`
	New          string `json:"new"`
	ChainCalls   int    `json:"chain_calls"`
}

const (
	CurrentSchemaVersion = 1
	CurrentToolVersion   = "0.2.0"
)
