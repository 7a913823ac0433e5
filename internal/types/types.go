package types

// Category tags the kind of artifact a URL points at.
type Category string

const (
	CategoryModel   Category = "MODEL"
	CategoryDataset Category = "DATASET"
	CategoryCode    Category = "CODE"
)

// ArtifactURL is a classified artifact location. A model URL carries the
// dataset and code repository URLs it was submitted with.
type ArtifactURL struct {
	URL      string   `json:"url"`
	Category Category `json:"category"`
	Datasets []string `json:"datasets,omitempty"`
	Code     []string `json:"code,omitempty"`
}

// HostMetadata is the hosting-service (model hub) section of a bundle.
type HostMetadata struct {
	RepoURL      string   `json:"repo_url"`
	RepoID       string   `json:"repo_id"`
	Downloads    int64    `json:"downloads"`
	Likes        int64    `json:"likes"`
	LastModified string   `json:"last_modified"`
	NumFiles     int      `json:"num_files"`
	License      string   `json:"license"`
	SizeMB       float64  `json:"size_mb"`
	ReadmeText   string   `json:"readme_text"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags,omitempty"`
	Files        []string `json:"files,omitempty"`
	DatasetURL   string   `json:"dataset_url,omitempty"`
}

// RepoMetadata is the linked code-repository section of a bundle.
type RepoMetadata struct {
	RepoURL            string         `json:"repo_url"`
	RecentCommitters   int            `json:"recent_committers"`
	CommitsByCommitter map[string]int `json:"commit_count_by_committer,omitempty"`
	LastCommitDate     string         `json:"last_commit_date,omitempty"`
}

// LinkCounts records how many code repositories and datasets were linked to
// the artifact when it was submitted.
type LinkCounts struct {
	Code     int `json:"nof_code"`
	Datasets int `json:"nof_ds"`
}

// Bundle aggregates everything the external collaborators know about one
// artifact. Metrics read it, never write it. A nil section means the data
// was not available; metrics must treat that as absence, not as an error.
type Bundle struct {
	ArtifactID string        `json:"artifact_id,omitempty"`
	Host       *HostMetadata `json:"hf_metadata,omitempty"`
	Repo       *RepoMetadata `json:"repo_metadata,omitempty"`
	Links      LinkCounts    `json:"nof_code_ds"`
}

// Readme returns the hub README text, or "" when the host section is absent.
func (b *Bundle) Readme() string {
	if b == nil || b.Host == nil {
		return ""
	}
	return b.Host.ReadmeText
}

// ArtifactScore is a previously scored artifact as returned by the artifact
// index, used by the lineage metric to look up parent net scores.
type ArtifactScore struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	NetScore float64 `json:"net_score"`
}
