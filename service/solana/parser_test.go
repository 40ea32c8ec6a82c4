package solana

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create a TransactionResultEnvelope from a Transaction.
// Since TransactionResultEnvelope has unexported fields, we use JSON marshaling.
func makeTransactionEnvelope(tx *solana.Transaction) (*rpc.TransactionResultEnvelope, error) {
	txJSON, err := json.Marshal(tx)
	if err != nil {
		return nil, err
	}

	var temp struct {
		Transaction json.RawMessage `json:"transaction"`
	}
	temp.Transaction = txJSON

	envelopeJSON, err := json.Marshal(temp)
	if err != nil {
		return nil, err
	}

	var result rpc.GetTransactionResult
	if err := json.Unmarshal(envelopeJSON, &result); err != nil {
		return nil, err
	}

	return result.Transaction, nil
}

// makeResult wraps tx in a getTransaction result with the given fee.
func makeResult(t *testing.T, tx *solana.Transaction, fee uint64) *rpc.GetTransactionResult {
	t.Helper()
	envelope, err := makeTransactionEnvelope(tx)
	require.NoError(t, err)

	blockTime := solana.UnixTimeSeconds(1710754867)
	return &rpc.GetTransactionResult{
		Slot:        254789123,
		BlockTime:   &blockTime,
		Transaction: envelope,
		Meta:        &rpc.TransactionMeta{Fee: fee},
	}
}

func systemTransferData(lamports uint64) []byte {
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[0:4], SystemProgramTransferInstruction)
	binary.LittleEndian.PutUint64(data[4:12], lamports)
	return data
}

var testSignature = solana.MustSignatureFromBase58("5j7s6NiJS3JAkvgkoc18WVAsiSaci2pxB2A6ueCJP4tprA2TFg9wSyTLeYouxPBJEMzJinENTkpA52YStRW5Dia7")

// TestSummarize_SOLTransfer tests summarizing a native SOL transfer.
func TestSummarize_SOLTransfer(t *testing.T) {
	fromAddr := solana.MustPublicKeyFromBase58("8R5brRqNa1CDMtcQRaLPQfJeLBrtyqpjDPTSKbBvmsna")
	toAddr := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

	tx := &solana.Transaction{
		Signatures: []solana.Signature{testSignature},
		Message: solana.Message{
			AccountKeys: []solana.PublicKey{fromAddr, toAddr, SystemProgramID},
			Instructions: []solana.CompiledInstruction{
				{
					ProgramIDIndex: 2,
					Accounts:       []uint16{0, 1},
					Data:           systemTransferData(1000000000),
				},
			},
		},
	}

	summary, err := Summarize(makeResult(t, tx, 5000))

	require.NoError(t, err)
	assert.Equal(t, testSignature.String(), summary.Signature)
	assert.Equal(t, uint64(254789123), summary.Slot)
	assert.Equal(t, time.Unix(1710754867, 0), summary.BlockTime)
	assert.Equal(t, uint64(5000), summary.Fee)
	require.NotNil(t, summary.FeePayer)
	assert.Equal(t, fromAddr.String(), *summary.FeePayer)
	assert.Nil(t, summary.Err)
	assert.Nil(t, summary.Memo)

	require.Len(t, summary.Transfers, 1)
	transfer := summary.Transfers[0]
	assert.True(t, transfer.IsNative())
	assert.Equal(t, uint64(1000000000), transfer.Amount)
	require.NotNil(t, transfer.FromAddress)
	assert.Equal(t, fromAddr.String(), *transfer.FromAddress)
	require.NotNil(t, transfer.ToAddress)
	assert.Equal(t, toAddr.String(), *transfer.ToAddress)
	assert.Equal(t, uint64(1000000000), summary.TotalNative())
}

// TestSummarize_SPLTokenTransfer tests summarizing a TransferChecked instruction.
func TestSummarize_SPLTokenTransfer(t *testing.T) {
	authority := solana.MustPublicKeyFromBase58("8R5brRqNa1CDMtcQRaLPQfJeLBrtyqpjDPTSKbBvmsna")
	sourceTokenAccount := solana.MustPublicKeyFromBase58("11111111111111111111111111111112")
	mintAddr := solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v") // USDC mainnet
	destTokenAccount := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

	// [0] = 12 (TransferChecked), [1..9] = amount, [9] = decimals
	instructionData := make([]byte, 10)
	instructionData[0] = TokenProgramTransferCheckedInstruction
	binary.LittleEndian.PutUint64(instructionData[1:9], 1000000)
	instructionData[9] = 6

	tx := &solana.Transaction{
		Signatures: []solana.Signature{testSignature},
		Message: solana.Message{
			AccountKeys: []solana.PublicKey{authority, sourceTokenAccount, mintAddr, destTokenAccount, TokenProgramID},
			Instructions: []solana.CompiledInstruction{
				{
					ProgramIDIndex: 4,
					Accounts:       []uint16{1, 2, 3, 0}, // source, mint, dest, authority
					Data:           instructionData,
				},
			},
		},
	}

	summary, err := Summarize(makeResult(t, tx, 5000))

	require.NoError(t, err)
	require.Len(t, summary.Transfers, 1)
	transfer := summary.Transfers[0]
	assert.False(t, transfer.IsNative())
	assert.Equal(t, uint64(1000000), transfer.Amount)
	assert.Equal(t, mintAddr.String(), *transfer.TokenMint)
	assert.Equal(t, authority.String(), *transfer.FromAddress)
	assert.Equal(t, destTokenAccount.String(), *transfer.ToAddress)
	assert.Equal(t, uint64(0), summary.TotalNative())
}

// TestSummarize_WithMemo tests summarizing a transfer with a memo.
func TestSummarize_WithMemo(t *testing.T) {
	fromAddr := solana.MustPublicKeyFromBase58("8R5brRqNa1CDMtcQRaLPQfJeLBrtyqpjDPTSKbBvmsna")
	toAddr := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	memoText := `{"invoice": "inv-123"}`

	tx := &solana.Transaction{
		Signatures: []solana.Signature{testSignature},
		Message: solana.Message{
			AccountKeys: []solana.PublicKey{fromAddr, toAddr, SystemProgramID, MemoProgramIDSPL},
			Instructions: []solana.CompiledInstruction{
				{
					ProgramIDIndex: 2,
					Accounts:       []uint16{0, 1},
					Data:           systemTransferData(1000000000),
				},
				{
					ProgramIDIndex: 3,
					Accounts:       []uint16{},
					Data:           []byte(memoText),
				},
			},
		},
	}

	summary, err := Summarize(makeResult(t, tx, 5000))

	require.NoError(t, err)
	require.NotNil(t, summary.Memo)
	assert.Equal(t, memoText, *summary.Memo)
	assert.Len(t, summary.Transfers, 1)
}

// TestSummarize_Failed tests that a failed transaction carries its error.
func TestSummarize_Failed(t *testing.T) {
	fromAddr := solana.MustPublicKeyFromBase58("8R5brRqNa1CDMtcQRaLPQfJeLBrtyqpjDPTSKbBvmsna")
	tx := &solana.Transaction{
		Signatures: []solana.Signature{testSignature},
		Message: solana.Message{
			AccountKeys: []solana.PublicKey{fromAddr},
		},
	}

	result := makeResult(t, tx, 5000)
	result.Meta.Err = map[string]interface{}{"InstructionError": []interface{}{0, "InsufficientFunds"}}

	summary, err := Summarize(result)

	require.NoError(t, err)
	require.NotNil(t, summary.Err)
	assert.Contains(t, *summary.Err, "transaction failed")
	assert.Contains(t, *summary.Err, "InsufficientFunds")
	assert.Empty(t, summary.Transfers)
}

// TestSummarize_SkipsMalformedInstructions tests that unparsable instructions are ignored.
func TestSummarize_SkipsMalformedInstructions(t *testing.T) {
	fromAddr := solana.MustPublicKeyFromBase58("8R5brRqNa1CDMtcQRaLPQfJeLBrtyqpjDPTSKbBvmsna")
	tx := &solana.Transaction{
		Signatures: []solana.Signature{testSignature},
		Message: solana.Message{
			AccountKeys: []solana.PublicKey{fromAddr, SystemProgramID, TokenProgramID},
			Instructions: []solana.CompiledInstruction{
				{ProgramIDIndex: 1, Accounts: []uint16{0}, Data: []byte{2, 0}},
				{ProgramIDIndex: 2, Accounts: []uint16{0}, Data: []byte{7}},
				{ProgramIDIndex: 9, Accounts: []uint16{0}, Data: []byte{3}},
			},
		},
	}

	summary, err := Summarize(makeResult(t, tx, 0))

	require.NoError(t, err)
	assert.Empty(t, summary.Transfers)
}

func TestSummarize_NoTransaction(t *testing.T) {
	_, err := Summarize(nil)
	assert.ErrorIs(t, err, ErrNoTransaction)

	_, err = Summarize(&rpc.GetTransactionResult{Slot: 1})
	assert.ErrorIs(t, err, ErrNoTransaction)
}

// TestParseMemo_PlainText tests parsing plain text memos.
func TestParseMemo_PlainText(t *testing.T) {
	memoText := "test payment"
	result := parseMemo([]byte(memoText))
	assert.Equal(t, memoText, result)
}

// TestParseMemo_Base64 tests parsing base64-encoded memos.
func TestParseMemo_Base64(t *testing.T) {
	originalText := "secret message"
	encoded := base64.StdEncoding.EncodeToString([]byte(originalText))
	result := parseMemo([]byte(encoded))
	assert.Equal(t, originalText, result)
}

// TestParseSystemTransfer tests parsing System Program transfer instructions.
func TestParseSystemTransfer(t *testing.T) {
	fromAddr := solana.MustPublicKeyFromBase58("11111111111111111111111111111112")
	toAddr := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

	instruction := solana.CompiledInstruction{
		ProgramIDIndex: 0,
		Accounts:       []uint16{0, 1},
		Data:           systemTransferData(2000000000),
	}

	transfer, err := parseSystemTransfer(instruction, []solana.PublicKey{fromAddr, toAddr})

	require.NoError(t, err)
	assert.Equal(t, uint64(2000000000), transfer.Amount)
	require.NotNil(t, transfer.FromAddress)
	assert.Equal(t, fromAddr.String(), *transfer.FromAddress)
	assert.Equal(t, toAddr.String(), *transfer.ToAddress)
}

func TestParseSystemTransfer_NotATransfer(t *testing.T) {
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[0:4], 0) // CreateAccount

	_, err := parseSystemTransfer(solana.CompiledInstruction{Data: data}, nil)
	assert.ErrorContains(t, err, "not a transfer instruction")
}

// TestParseTokenTransfer_Plain tests that a plain Transfer has no mint.
func TestParseTokenTransfer_Plain(t *testing.T) {
	source := solana.MustPublicKeyFromBase58("11111111111111111111111111111112")
	dest := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	authority := solana.MustPublicKeyFromBase58("8R5brRqNa1CDMtcQRaLPQfJeLBrtyqpjDPTSKbBvmsna")

	data := make([]byte, 9)
	data[0] = TokenProgramTransferInstruction
	binary.LittleEndian.PutUint64(data[1:9], 42)

	transfer, err := parseTokenTransfer(solana.CompiledInstruction{
		Accounts: []uint16{0, 1, 2},
		Data:     data,
	}, []solana.PublicKey{source, dest, authority})

	require.NoError(t, err)
	assert.Equal(t, uint64(42), transfer.Amount)
	assert.False(t, transfer.IsNative())
	assert.Nil(t, transfer.TokenMint)
	assert.Equal(t, authority.String(), *transfer.FromAddress)
	assert.Equal(t, dest.String(), *transfer.ToAddress)
}

func TestParseTokenTransfer_MissingAccounts(t *testing.T) {
	data := make([]byte, 10)
	data[0] = TokenProgramTransferCheckedInstruction

	_, err := parseTokenTransfer(solana.CompiledInstruction{Accounts: []uint16{0, 1}, Data: data}, nil)
	assert.ErrorContains(t, err, "missing accounts")
}
