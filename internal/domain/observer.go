package domain

// AccountObserver is notified synchronously after every recorded transaction,
// in registration order, with the owning account and the transaction. A
// failed operation records nothing and therefore notifies nobody. Observers
// must not break the calling mutation: panics are caught and logged by the
// account.
type AccountObserver interface {
	OnTransaction(account *Account, tx Transaction)
}
