package analysis

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// DefaultWeightVersion is the extended table covering the full metric set.
const DefaultWeightVersion = "v2"

//go:embed weights.yaml
var weightsYAML []byte

// weightTolerance absorbs float drift when validating table sums.
const weightTolerance = 1e-9

// Weights returns the named weight-table version. Known versions are "v1"
// (the original smaller metric set) and "v2" (extended with
// reproducibility, reviewedness and tree_score).
func Weights(version string) (map[string]float64, error) {
	tables, err := loadWeightTables()
	if err != nil {
		return nil, err
	}
	table, ok := tables[version]
	if !ok {
		return nil, fmt.Errorf("unknown weight version %q", version)
	}
	return table, nil
}

func loadWeightTables() (map[string]map[string]float64, error) {
	var tables map[string]map[string]float64
	if err := yaml.Unmarshal(weightsYAML, &tables); err != nil {
		return nil, fmt.Errorf("parse weight tables: %w", err)
	}
	for version, table := range tables {
		sum := 0.0
		for name, w := range table {
			if w < 0 {
				return nil, fmt.Errorf("weight table %s: negative weight for %s", version, name)
			}
			sum += w
		}
		if sum > 1+weightTolerance {
			return nil, fmt.Errorf("weight table %s sums to %.4f, must be <= 1", version, sum)
		}
	}
	return tables, nil
}
