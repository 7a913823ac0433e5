package metrics

import "fmt"

// Deps carries the collaborators individual metrics need. A metric either
// receives its collaborator at construction or is not constructed; there is
// no post-construction injection.
type Deps struct {
	Index    ArtifactIndex // lineage score lookups
	Tokens   TokenSource   // credentials for secondary services
	Runner   SnippetRunner // sandboxed demo execution
	Datasets DatasetFetcher
	Client   HTTPDoer // nil means a default client with a 30s timeout
}

// DefaultRegistry returns the full, statically maintained metric set.
// The registry is an explicit list on purpose: no reflection, no runtime
// discovery, and the set is testable like any other value.
func DefaultRegistry(deps Deps) []Metric {
	return []Metric{
		NewRampUpTimeMetric(),
		NewLicenseMetric(),
		NewDatasetAndCodeMetric(),
		NewPerformanceClaimsMetric(),
		NewBusFactorMetric(),
		NewCodeQualityMetric(),
		NewDatasetQualityMetric(deps.Datasets),
		NewSizeScoreMetric(),
		NewReproducibilityMetric(deps.Runner),
		NewReviewednessMetric(deps.Tokens, deps.Client),
		NewTreeScoreMetric(deps.Index),
	}
}

// ValidateRegistry checks the one registry invariant: metric names are
// unique and non-empty.
func ValidateRegistry(registry []Metric) error {
	seen := make(map[string]bool, len(registry))
	for _, m := range registry {
		name := m.Name()
		if name == "" {
			return fmt.Errorf("metric %T has an empty name", m)
		}
		if seen[name] {
			return fmt.Errorf("duplicate metric name %q", name)
		}
		seen[name] = true
	}
	return nil
}
