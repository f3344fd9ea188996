package repository

import (
	"bank-ledger/internal/domain"
)

// InMemoryBankRepository keeps the serialized registry in memory. It backs
// tests and the "memory" storage mode, and still round-trips through the
// serializer so it exhibits the same reload semantics as the file store
// (history is dropped).
type InMemoryBankRepository struct {
	serializer BankSerializer
	data       string
}

func NewInMemoryBankRepository(serializer BankSerializer) *InMemoryBankRepository {
	return &InMemoryBankRepository{serializer: serializer}
}

func (r *InMemoryBankRepository) Save(bank *domain.Bank) error {
	data, err := r.serializer.Serialize(bank)
	if err != nil {
		return err
	}
	r.data = data
	return nil
}

func (r *InMemoryBankRepository) Load() (*domain.Bank, error) {
	return r.serializer.Deserialize(r.data)
}
