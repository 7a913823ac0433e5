package types

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
)

// RepoID extracts the "org/name" identifier from a model hub URL.
// Falls back to whatever path is present when the URL is shallower.
func RepoID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) >= 2 {
		return parts[0] + "/" + parts[1]
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return ""
}

// DatasetID extracts the dataset identifier from a hub dataset URL,
// e.g. /datasets/glue -> "glue", /datasets/org/name -> "org/name".
func DatasetID(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] != "datasets" {
		return "", fmt.Errorf("not a dataset URL: %s", rawURL)
	}
	if len(parts) == 2 {
		return parts[1], nil
	}
	return parts[1] + "/" + parts[2], nil
}

// ShortName returns the last path segment of a repo id ("org/name" -> "name").
func ShortName(repoID string) string {
	if i := strings.LastIndex(repoID, "/"); i >= 0 {
		return repoID[i+1:]
	}
	return repoID
}

// ParseURLFile reads a batch input where each line is "code,dataset,model".
// Code and dataset may be empty; lines without a model are skipped. A
// dataset URL is attached only the first time it appears in the file.
func ParseURLFile(path string) ([]ArtifactURL, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open url file: %w", err)
	}
	defer f.Close()
	return ParseURLs(f)
}

// ParseURLs is ParseURLFile over any reader.
func ParseURLs(r io.Reader) ([]ArtifactURL, error) {
	var models []ArtifactURL
	seenDatasets := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		parts := strings.SplitN(scanner.Text(), ",", 3)
		if len(parts) < 3 {
			continue
		}
		codeRaw := strings.TrimSpace(parts[0])
		datasetRaw := strings.TrimSpace(parts[1])
		modelRaw := strings.TrimSpace(parts[2])
		if modelRaw == "" {
			continue
		}

		m := ArtifactURL{URL: modelRaw, Category: CategoryModel}
		if codeRaw != "" {
			m.Code = append(m.Code, codeRaw)
		}
		if datasetRaw != "" && !seenDatasets[datasetRaw] {
			m.Datasets = append(m.Datasets, datasetRaw)
			seenDatasets[datasetRaw] = true
		}
		models = append(models, m)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read url file: %w", err)
	}
	return models, nil
}
