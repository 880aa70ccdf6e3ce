package vectors

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/algoparity/parity-go/internal/domain"
)

// DirStore serves validated suites from a directory of <algorithm>.json
// documents. Satisfies activities.SuiteLoader.
type DirStore struct {
	Dir string
}

// LoadSuite loads and validates the suite for one algorithm. The name
// is caller supplied, so anything that would resolve outside Dir is
// rejected before touching the filesystem.
func (s *DirStore) LoadSuite(_ context.Context, algorithm string) (domain.Suite, error) {
	if err := validateAlgorithmName(algorithm); err != nil {
		return domain.Suite{}, err
	}
	return LoadValidated(filepath.Join(s.Dir, algorithm+".json"))
}

func validateAlgorithmName(name string) error {
	if name == "" {
		return fmt.Errorf("algorithm name is empty")
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("invalid algorithm name %q", name)
	}
	return nil
}
