package repository

import (
	"io"
	"log/slog"
	"os"

	"bank-ledger/internal/domain"
	"bank-ledger/internal/errors"
)

// BankRepository persists and restores the whole registry in one blocking,
// all-or-nothing operation.
type BankRepository interface {
	Save(bank *domain.Bank) error
	Load() (*domain.Bank, error)
}

// FileBankRepository writes the serialized registry to a single flat file.
type FileBankRepository struct {
	path       string
	serializer BankSerializer
	logger     *slog.Logger
}

func NewFileBankRepository(path string, serializer BankSerializer, logger *slog.Logger) *FileBankRepository {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &FileBankRepository{
		path:       path,
		serializer: serializer,
		logger:     logger,
	}
}

func (r *FileBankRepository) Save(bank *domain.Bank) error {
	data, err := r.serializer.Serialize(bank)
	if err != nil {
		return err
	}
	if err := os.WriteFile(r.path, []byte(data), 0o644); err != nil {
		return errors.NewAppErrorf(errors.PersistenceError, "writing %s", r.path).WithCause(err)
	}
	r.logger.Debug("bank saved", "path", r.path)
	return nil
}

// Load restores the registry from the file. A missing file fails like any
// other read error; the cause stays wrapped so callers that treat a fresh
// medium as a fresh start can tell it apart with errors.Is(err,
// fs.ErrNotExist).
func (r *FileBankRepository) Load() (*domain.Bank, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, errors.NewAppErrorf(errors.PersistenceError, "reading %s", r.path).WithCause(err)
	}
	return r.serializer.Deserialize(string(data))
}
