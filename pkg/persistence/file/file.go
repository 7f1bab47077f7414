// Package file provides file-based persistence for automators, one JSON
// document per automator. Default backend for local development and tests.
package file

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/guidely/automator/pkg/persistence"
)

// Persistence implements persistence.Persistence on the file system.
type Persistence struct {
	root          string
	automatorRepo *AutomatorRepository
}

// NewPersistence creates a file persistence layer rooted at the given
// directory. A "file://" scheme prefix is stripped.
func NewPersistence(root string, logger *slog.Logger) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:          cleanRoot,
		automatorRepo: NewAutomatorRepository(cleanRoot, logger),
	}
}

// AutomatorRepository returns the automator repository.
func (fp *Persistence) AutomatorRepository() persistence.AutomatorRepository {
	return fp.automatorRepo
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup; nothing to do for files.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}
