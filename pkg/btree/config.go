package btree

import (
	"errors"
	"fmt"

	"github.com/sukryu/godegreetree/pkg/utils"
)

// Config controls how a Tree is opened. Grounded in
// sukryu-golite/pkg/adapters/lsmtree/config.go's Config/DefaultConfig/
// Validate triad: a plain struct of knobs, a constructor that fills in
// sane defaults, and a Validate that rejects nonsensical combinations
// before anything touches disk.
type Config struct {
	// StoragePath is the path to the read-side file P. The write-side file
	// is always StoragePath + ".tmp".
	StoragePath string

	// MinimumDegree is t in the Cormen sense: every non-root node holds
	// between t-1 and 2t-1 elements, t and 2t children. Only consulted
	// when StoragePath names an empty or nonexistent store; an existing
	// store's minimumDegree is the one recorded in its root node.
	MinimumDegree int

	// ReadOnly opens the store without a write side. Mutating calls return
	// storage.ErrStorageReadOnly.
	ReadOnly bool

	// Logger receives structural tracing (root splits, record appends,
	// commits). Nil
	// means no logging.
	Logger utils.Logger

	// CacheSize bounds the number of decoded nodes kept in the in-memory
	// LRU cache. 0 disables caching.
	CacheSize int
}

// ErrInvalidConfig is returned by Validate when a Config cannot be used to
// open a Tree.
var ErrInvalidConfig = errors.New("btree: invalid config")

// DefaultConfig returns a Config with a minimum degree of 128 (see
// DESIGN.md for the reasoning, in short: there is no fixed on-disk page
// size to size the degree around, so this is a deliberately generous
// starting point rather than a derived value) and no caching.
func DefaultConfig(storagePath string) Config {
	return Config{
		StoragePath:   storagePath,
		MinimumDegree: 128,
		CacheSize:     0,
	}
}

// Validate rejects a Config that cannot produce a working Tree.
func (c Config) Validate() error {
	if c.StoragePath == "" {
		return fmt.Errorf("%w: storage path must not be empty", ErrInvalidConfig)
	}
	if c.MinimumDegree < 2 {
		return fmt.Errorf("%w: minimum degree must be >= 2, got %d", ErrInvalidConfig, c.MinimumDegree)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("%w: cache size must not be negative, got %d", ErrInvalidConfig, c.CacheSize)
	}
	return nil
}
