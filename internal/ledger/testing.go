package ledger

// SeedTransactions appends postings to an in-memory ledger without the
// funds check, assigning ids the same way Record does. Test helper.
func SeedTransactions(l Ledger, accountID string, txs ...Transaction) {
	mem, ok := l.(*inMemoryLedger)
	if !ok {
		return
	}
	mem.mu.Lock()
	defer mem.mu.Unlock()
	for _, tx := range txs {
		history := mem.accounts[accountID]
		tx.AccountID = accountID
		tx.Sequence = nextSequence(history, tx.Date)
		tx.ID = TransactionID(tx.Date, tx.Sequence)
		mem.accounts[accountID] = append(history, tx)
	}
}
