package repository

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bank-ledger/internal/errors"
)

func newFileRepo(t *testing.T) (*FileBankRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bank.dat")
	return NewFileBankRepository(path, NewTextBankSerializer(nil), nil), path
}

func TestFileBankRepository_SaveLoad(t *testing.T) {
	repo, path := newFileRepo(t)

	require.NoError(t, repo.Save(sampleBank(t)))
	_, err := os.Stat(path)
	require.NoError(t, err)

	bank, err := repo.Load()
	require.NoError(t, err)

	accounts := bank.Accounts()
	require.Len(t, accounts, 3)
	assert.Equal(t, "SA-1001", accounts[0].ID())
	assert.Equal(t, 250.0, accounts[0].Balance())
	assert.Empty(t, accounts[0].History())
}

func TestFileBankRepository_LoadMissingFile(t *testing.T) {
	repo, _ := newFileRepo(t)

	_, err := repo.Load()
	require.Error(t, err)
	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.PersistenceError, appErr.Code)
	assert.ErrorIs(t, err, fs.ErrNotExist, "callers can tell a fresh medium apart from corruption")
}

func TestFileBankRepository_LoadMalformedFile(t *testing.T) {
	repo, path := newFileRepo(t)
	require.NoError(t, os.WriteFile(path, []byte("ACCOUNT;SAVINGS;borked"), 0o644))

	_, err := repo.Load()
	require.Error(t, err)
	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.PersistenceError, appErr.Code)
}

func TestInMemoryBankRepository(t *testing.T) {
	repo := NewInMemoryBankRepository(NewTextBankSerializer(nil))

	bank, err := repo.Load()
	require.NoError(t, err)
	assert.Empty(t, bank.Accounts())

	require.NoError(t, repo.Save(sampleBank(t)))

	bank, err = repo.Load()
	require.NoError(t, err)
	require.Len(t, bank.Accounts(), 3)
	assert.Empty(t, bank.Accounts()[0].History(), "memory store mirrors the lossy reload semantics")
}
