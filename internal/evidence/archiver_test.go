package evidence

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cybercell/internal/evidence/cas"
	dErrors "cybercell/pkg/domain-errors"
)

type failingCAS struct{}

func (failingCAS) Add(context.Context, string, []byte) (string, error) {
	return "", errors.New("pinning service down")
}

func (failingCAS) AddBatch(context.Context, []cas.NamedContent) ([]string, error) {
	return nil, errors.New("pinning service down")
}

type countingBackup struct {
	puts atomic.Int32
	err  error
}

func (b *countingBackup) Put(context.Context, string, string, []byte) error {
	b.puts.Add(1)
	return b.err
}

func testFiles() []File {
	return []File{
		{Name: "screenshot.png", MediaType: "image/png", Bytes: []byte("png-bytes")},
		{Name: "call.mp3", MediaType: "audio/mpeg", Bytes: []byte("mp3-bytes")},
	}
}

func TestArchive_ReturnsCanonicalAndPerFileAddresses(t *testing.T) {
	a := NewArchiver(cas.NewInMemoryStore(), nil)

	result, err := a.Archive(context.Background(), testFiles())
	require.NoError(t, err)
	require.Len(t, result.Addresses, 2)
	assert.Equal(t, result.Addresses[0], result.CanonicalAddress)
	assert.NotEqual(t, result.Addresses[0], result.Addresses[1])
}

func TestArchive_FailsAtomicallyWhenCASFails(t *testing.T) {
	backupStore := &countingBackup{}
	a := NewArchiver(failingCAS{}, backupStore)

	result, err := a.Archive(context.Background(), testFiles())
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	// Backup is only attempted after the required CAS path succeeds.
	assert.Zero(t, backupStore.puts.Load())
}

func TestArchive_BackupFailureIsSwallowed(t *testing.T) {
	backupStore := &countingBackup{err: errors.New("bucket gone")}
	a := NewArchiver(cas.NewInMemoryStore(), backupStore)

	result, err := a.Archive(context.Background(), testFiles())
	require.NoError(t, err)
	assert.NotEmpty(t, result.CanonicalAddress)
	assert.Equal(t, int32(2), backupStore.puts.Load())
}

func TestArchive_BackupCircuitOpensAfterRepeatedFailures(t *testing.T) {
	backupStore := &countingBackup{err: errors.New("bucket gone")}
	a := NewArchiver(cas.NewInMemoryStore(), backupStore)

	// Threshold is 3 failures; the first archive's two puts plus the next
	// one's first put trip the breaker, after which backup is skipped.
	_, err := a.Archive(context.Background(), testFiles())
	require.NoError(t, err)
	_, err = a.Archive(context.Background(), testFiles())
	require.NoError(t, err)

	before := backupStore.puts.Load()
	_, err = a.Archive(context.Background(), testFiles())
	require.NoError(t, err)
	assert.Equal(t, before, backupStore.puts.Load(), "backup must be skipped once the circuit is open")
}

func TestArchive_RequiresFiles(t *testing.T) {
	a := NewArchiver(cas.NewInMemoryStore(), nil)

	_, err := a.Archive(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestAddressFile_IndependentOfBatchAddress(t *testing.T) {
	store := cas.NewInMemoryStore()
	a := NewArchiver(store, nil)
	files := testFiles()

	result, err := a.Archive(context.Background(), files)
	require.NoError(t, err)

	// The per-record write is a separate call; identical bytes may or may
	// not produce the same address depending on the store, so callers only
	// rely on the address being valid.
	address, err := a.AddressFile(context.Background(), files[0])
	require.NoError(t, err)
	assert.NotEmpty(t, address)
	_, ok := store.Get(address)
	assert.True(t, ok)
	_, ok = store.Get(result.CanonicalAddress)
	assert.True(t, ok)
}
