package btree_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sukryu/godegreetree/pkg/adapters/osfile"
	"github.com/sukryu/godegreetree/pkg/btree"
	"github.com/sukryu/godegreetree/pkg/codec"
	"github.com/sukryu/godegreetree/pkg/node"
)

func openTree(t *testing.T, minimumDegree, cacheSize int) *btree.Tree[codec.Int64Key, string] {
	t.Helper()
	cfg := btree.DefaultConfig(filepath.Join(t.TempDir(), "index.db"))
	cfg.MinimumDegree = minimumDegree
	cfg.CacheSize = cacheSize
	tr, err := btree.Open[codec.Int64Key, string](osfile.New(), codec.Int64StringCodec{}, cfg)
	assert.NoError(t, err)
	return tr
}

// S1: a single insert into a freshly-opened tree is immediately findable.
func TestSingleInsertIsFindable(t *testing.T) {
	tr := openTree(t, 2, 0)
	defer tr.Close()

	assert.NoError(t, tr.Insert(1, "one"))
	value, ok, err := tr.Find(1)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "one", value)
}

// S2: ascending inserts with t=2 drive the root through a split.
func TestSequentialFillTriggersSplit(t *testing.T) {
	tr := openTree(t, 2, 0)
	defer tr.Close()

	for i := int64(1); i <= 10; i++ {
		assert.NoError(t, tr.Insert(codec.Int64Key(i), "v"))
	}
	stats, err := tr.Stats()
	assert.NoError(t, err)
	assert.Greater(t, stats.Height, 1, "root should have split at least once by the tenth insert")

	for i := int64(1); i <= 10; i++ {
		_, ok, err := tr.Find(codec.Int64Key(i))
		assert.NoError(t, err)
		assert.True(t, ok, "key %d should be findable", i)
	}
}

// S3: non-sequential (shuffled) inserts land in the right place regardless
// of arrival order.
func TestNonSequentialFillPreservesLookup(t *testing.T) {
	tr := openTree(t, 2, 0)
	defer tr.Close()

	keys := []int64{50, 10, 90, 30, 70, 20, 80, 40, 60, 5}
	for _, k := range keys {
		assert.NoError(t, tr.Insert(codec.Int64Key(k), "v"))
	}
	for _, k := range keys {
		_, ok, err := tr.Find(codec.Int64Key(k))
		assert.NoError(t, err)
		assert.True(t, ok, "key %d should be findable", k)
	}
	_, ok, err := tr.Find(999)
	assert.NoError(t, err)
	assert.False(t, ok)
}

// S4: a duplicate key is rejected rather than silently overwriting.
func TestDuplicateKeyRejected(t *testing.T) {
	tr := openTree(t, 2, 0)
	defer tr.Close()

	assert.NoError(t, tr.Insert(1, "first"))
	err := tr.Insert(1, "second")
	assert.ErrorIs(t, err, node.ErrDuplicateKey)

	value, ok, findErr := tr.Find(1)
	assert.NoError(t, findErr)
	assert.True(t, ok)
	assert.Equal(t, "first", value, "rejected insert must not overwrite the existing value")
}

// S5: data survives a Close and a fresh Open against the same path.
func TestPersistenceAcrossCloseAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	fs := osfile.New()

	cfg := btree.DefaultConfig(path)
	cfg.MinimumDegree = 2
	tr1, err := btree.Open[codec.Int64Key, string](fs, codec.Int64StringCodec{}, cfg)
	assert.NoError(t, err)
	for i := int64(1); i <= 5; i++ {
		assert.NoError(t, tr1.Insert(codec.Int64Key(i), "v"))
	}
	assert.NoError(t, tr1.Close())

	tr2, err := btree.Open[codec.Int64Key, string](fs, codec.Int64StringCodec{}, cfg)
	assert.NoError(t, err)
	defer tr2.Close()
	for i := int64(1); i <= 5; i++ {
		_, ok, err := tr2.Find(codec.Int64Key(i))
		assert.NoError(t, err)
		assert.True(t, ok, "key %d should survive reopen", i)
	}
}

// S6: three ascending inserts at t=2 fill the root to exactly 2t-1=3
// elements; the fourth insert must grow the tree by splitting the root.
func TestRootGrowsOnFourthInsertAtMinimumDegreeTwo(t *testing.T) {
	tr := openTree(t, 2, 0)
	defer tr.Close()

	for _, k := range []int64{1, 2, 3} {
		assert.NoError(t, tr.Insert(codec.Int64Key(k), "v"))
	}
	stats, err := tr.Stats()
	assert.NoError(t, err)
	assert.Equal(t, 1, stats.Height)
	assert.Equal(t, 3, stats.RootElements)

	assert.NoError(t, tr.Insert(4, "v"))
	stats, err = tr.Stats()
	assert.NoError(t, err)
	assert.Equal(t, 2, stats.Height, "root split must grow the tree by one level")
	assert.Equal(t, 1, stats.RootElements, "a freshly split root holds exactly the promoted median")
}

func TestFindMissingKeyOnEmptyTree(t *testing.T) {
	tr := openTree(t, 2, 0)
	defer tr.Close()

	_, ok, err := tr.Find(1)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestReadOnlyOpenOfNonexistentStoreFails(t *testing.T) {
	cfg := btree.DefaultConfig(filepath.Join(t.TempDir(), "missing.db"))
	cfg.ReadOnly = true
	_, err := btree.Open[codec.Int64Key, string](osfile.New(), codec.Int64StringCodec{}, cfg)
	assert.Error(t, err)
}

func TestCachingProducesSameResultsAsUncached(t *testing.T) {
	tr := openTree(t, 2, 8)
	defer tr.Close()

	for i := int64(1); i <= 20; i++ {
		assert.NoError(t, tr.Insert(codec.Int64Key(i), "v"))
	}
	for i := int64(1); i <= 20; i++ {
		value, ok, err := tr.Find(codec.Int64Key(i))
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "v", value)
	}
}

func TestInvalidConfigRejected(t *testing.T) {
	cfg := btree.Config{StoragePath: "", MinimumDegree: 2}
	assert.ErrorIs(t, cfg.Validate(), btree.ErrInvalidConfig)

	cfg = btree.Config{StoragePath: "x", MinimumDegree: 1}
	assert.ErrorIs(t, cfg.Validate(), btree.ErrInvalidConfig)

	cfg = btree.Config{StoragePath: "x", MinimumDegree: 2, CacheSize: -1}
	assert.ErrorIs(t, cfg.Validate(), btree.ErrInvalidConfig)
}
