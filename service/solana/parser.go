package solana

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Well-known Solana program IDs
var (
	// SystemProgramID is the native SOL transfer program
	SystemProgramID = solana.SystemProgramID

	// TokenProgramID is the SPL Token program
	TokenProgramID = solana.TokenProgramID

	// Token2022ProgramID is the Token Extensions program (Token-2022)
	Token2022ProgramID = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")

	// MemoProgramIDSPL is the SPL Memo program (most common)
	MemoProgramIDSPL = solana.MustPublicKeyFromBase58("MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr")

	// MemoProgramIDLegacy is the legacy memo program (v1)
	MemoProgramIDLegacy = solana.MustPublicKeyFromBase58("Memo1UhkJRfHyvLMcVucJwxXeuD728EqVDDwQDxFMNo")
)

// System Program instruction types
const (
	SystemProgramTransferInstruction = uint32(2)
)

// Token Program instruction types
const (
	TokenProgramTransferInstruction        = uint8(3)
	TokenProgramTransferCheckedInstruction = uint8(12)
)

// ErrNoTransaction is returned when a raw result carries no transaction body.
var ErrNoTransaction = errors.New("raw result has no transaction")

// Summarize extracts fee, transfers, and memo from a raw getTransaction result,
// such as the one returned alongside a parsed transaction when raw output is
// enabled.
func Summarize(result *rpc.GetTransactionResult) (*Summary, error) {
	if result == nil || result.Transaction == nil {
		return nil, ErrNoTransaction
	}

	tx, err := result.Transaction.GetTransaction()
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}

	summary := &Summary{Slot: result.Slot}
	if result.BlockTime != nil {
		summary.BlockTime = result.BlockTime.Time()
	}
	if len(tx.Signatures) > 0 {
		summary.Signature = tx.Signatures[0].String()
	}
	if result.Meta != nil {
		summary.Fee = result.Meta.Fee
		if result.Meta.Err != nil {
			errMsg := fmt.Sprintf("transaction failed: %v", result.Meta.Err)
			summary.Err = &errMsg
		}
	}

	accountKeys := tx.Message.AccountKeys
	if len(accountKeys) > 0 {
		payer := accountKeys[0].String()
		summary.FeePayer = &payer
	}

	for _, instruction := range tx.Message.Instructions {
		if int(instruction.ProgramIDIndex) >= len(accountKeys) {
			continue
		}
		programID := accountKeys[instruction.ProgramIDIndex]

		switch {
		case programID.Equals(SystemProgramID):
			if transfer, err := parseSystemTransfer(instruction, accountKeys); err == nil {
				summary.Transfers = append(summary.Transfers, transfer)
			}

		case programID.Equals(TokenProgramID) || programID.Equals(Token2022ProgramID):
			if transfer, err := parseTokenTransfer(instruction, accountKeys); err == nil {
				summary.Transfers = append(summary.Transfers, transfer)
			}

		case programID.Equals(MemoProgramIDSPL) || programID.Equals(MemoProgramIDLegacy):
			if memo := parseMemo(instruction.Data); memo != "" {
				summary.Memo = &memo
			}
		}
	}

	return summary, nil
}

// parseSystemTransfer extracts a native transfer from a System Program Transfer instruction.
func parseSystemTransfer(instruction solana.CompiledInstruction, accountKeys []solana.PublicKey) (Transfer, error) {
	// System Transfer instruction format:
	// [0..4]  = instruction type (u32, should be 2 for Transfer)
	// [4..12] = lamports (u64)
	if len(instruction.Data) < 12 {
		return Transfer{}, fmt.Errorf("instruction data too short: %d bytes", len(instruction.Data))
	}

	instructionType := binary.LittleEndian.Uint32(instruction.Data[0:4])
	if instructionType != SystemProgramTransferInstruction {
		return Transfer{}, fmt.Errorf("not a transfer instruction: type %d", instructionType)
	}

	// System Transfer accounts: [from, to]
	return Transfer{
		Native:      true,
		Amount:      binary.LittleEndian.Uint64(instruction.Data[4:12]),
		FromAddress: accountAt(instruction, accountKeys, 0),
		ToAddress:   accountAt(instruction, accountKeys, 1),
	}, nil
}

// parseTokenTransfer extracts a token transfer from an SPL Token Transfer or
// TransferChecked instruction.
func parseTokenTransfer(instruction solana.CompiledInstruction, accountKeys []solana.PublicKey) (Transfer, error) {
	if len(instruction.Data) == 0 {
		return Transfer{}, fmt.Errorf("empty instruction data")
	}

	switch instructionType := instruction.Data[0]; instructionType {
	case TokenProgramTransferInstruction:
		// [0] = type, [1..9] = amount
		if len(instruction.Data) < 9 {
			return Transfer{}, fmt.Errorf("transfer instruction data too short")
		}
		// Accounts: [source, destination, authority]. The mint is not part
		// of a plain Transfer.
		return Transfer{
			Amount:      binary.LittleEndian.Uint64(instruction.Data[1:9]),
			FromAddress: accountAt(instruction, accountKeys, 2),
			ToAddress:   accountAt(instruction, accountKeys, 1),
		}, nil

	case TokenProgramTransferCheckedInstruction:
		// [0] = type, [1..9] = amount, [9] = decimals
		if len(instruction.Data) < 10 {
			return Transfer{}, fmt.Errorf("transferChecked instruction data too short")
		}
		// Accounts: [source, mint, destination, authority, ...]
		if len(instruction.Accounts) < 4 {
			return Transfer{}, fmt.Errorf("transferChecked missing accounts")
		}
		mint := accountAt(instruction, accountKeys, 1)
		if mint == nil {
			return Transfer{}, fmt.Errorf("mint account index out of bounds")
		}
		return Transfer{
			Amount:      binary.LittleEndian.Uint64(instruction.Data[1:9]),
			TokenMint:   mint,
			FromAddress: accountAt(instruction, accountKeys, 3),
			ToAddress:   accountAt(instruction, accountKeys, 2),
		}, nil

	default:
		return Transfer{}, fmt.Errorf("unknown token instruction type: %d", instructionType)
	}
}

// accountAt resolves the n-th instruction account, or nil if out of range.
func accountAt(instruction solana.CompiledInstruction, accountKeys []solana.PublicKey, n int) *string {
	if n >= len(instruction.Accounts) {
		return nil
	}
	index := int(instruction.Accounts[n])
	if index >= len(accountKeys) {
		return nil
	}
	addr := accountKeys[index].String()
	return &addr
}

// parseMemo extracts the memo text from a Memo Program instruction.
// Some memos are base64 encoded, others are plain UTF-8.
func parseMemo(data []byte) string {
	memo := string(data)

	if decoded, err := base64.StdEncoding.DecodeString(memo); err == nil && isPrintableUTF8(decoded) {
		return string(decoded)
	}

	return memo
}

// isPrintableUTF8 reports whether b is valid UTF-8 without NUL bytes.
func isPrintableUTF8(b []byte) bool {
	if !utf8.Valid(b) {
		return false
	}
	for _, c := range b {
		if c == 0 {
			return false
		}
	}
	return true
}
