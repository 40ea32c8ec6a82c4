package solana

import (
	"time"
)

// Summary is the wallet-level view of a raw getTransaction payload: who paid,
// what moved, and any memo attached.
type Summary struct {
	Signature string
	Slot      uint64
	BlockTime time.Time
	Fee       uint64  // lamports
	FeePayer  *string // first account key, nil if the message has none
	Transfers []Transfer
	Memo      *string // parsed from transaction instructions
	Err       *string // nil if transaction succeeded, contains error message if failed
}

// Transfer is one native SOL or SPL token transfer instruction.
type Transfer struct {
	Native      bool    // System Program transfer of lamports
	Amount      uint64  // lamports or base token units
	TokenMint   *string // nil for native SOL and plain Transfer instructions
	FromAddress *string // source wallet (sender), nil if cannot be determined
	ToAddress   *string // receiving wallet or token account
}

// IsNative reports whether the transfer moved native SOL.
func (t Transfer) IsNative() bool {
	return t.Native
}

// TotalNative sums the lamports moved by native SOL transfers.
func (s *Summary) TotalNative() uint64 {
	var total uint64
	for _, t := range s.Transfers {
		if t.IsNative() {
			total += t.Amount
		}
	}
	return total
}
