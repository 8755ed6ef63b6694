package eventhandling

import (
	"log/slog"
	"sync/atomic"

	"github.com/matteriben/hedera-services/event"
)

// TransactionPrehandler warms application transactions before consensus:
// signature expansion and other per-transaction preparation that is safe
// to do out of order. It runs on a CONCURRENT scheduler.
type TransactionPrehandler struct {
	logger *slog.Logger

	prehandled atomic.Int64
}

// NewTransactionPrehandler creates a prehandler.
func NewTransactionPrehandler(logger *slog.Logger) *TransactionPrehandler {
	return &TransactionPrehandler{logger: logger}
}

// PrehandleApplicationTransactions prepares the event's application
// transactions. The reference implementation only accounts for them; real
// applications hook their prehandle logic here.
func (p *TransactionPrehandler) PrehandleApplicationTransactions(e *event.Event) {
	p.prehandled.Add(int64(len(e.Transactions)))
}

// PrehandledCount returns the number of transactions prehandled so far.
func (p *TransactionPrehandler) PrehandledCount() int64 {
	return p.prehandled.Load()
}
