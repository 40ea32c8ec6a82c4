package client

import (
	"encoding/json"
	"fmt"
)

// Action type discriminators with a typed info payload. The API emits many
// more; those remain available through Action.Info.
const (
	ActionCreatePool    = "CREATE_POOL"
	ActionSolTransfer   = "SOL_TRANSFER"
	ActionTokenCreate   = "TOKEN_CREATE"
	ActionTokenMint     = "TOKEN_MINT"
	ActionTokenTransfer = "TOKEN_TRANSFER"
	ActionSwap          = "SWAP"
)

// Action is one step of a parsed transaction. Info is kept as raw JSON since
// its shape depends on Type.
type Action struct {
	Info           json.RawMessage `json:"info"`
	SourceProtocol Protocol        `json:"source_protocol"`
	Type           string          `json:"type"`
	ParentProtocol *string         `json:"parent_protocol,omitempty"`
	IxIndex        *uint32         `json:"ix_index,omitempty"`
}

// DecodeInfo unmarshals the info payload into v.
func (a *Action) DecodeInfo(v any) error {
	if len(a.Info) == 0 {
		return fmt.Errorf("action %s has no info", a.Type)
	}
	if err := json.Unmarshal(a.Info, v); err != nil {
		return fmt.Errorf("failed to decode %s info: %w", a.Type, err)
	}
	return nil
}

// CreatePoolInfo is the info payload of CREATE_POOL actions.
type CreatePoolInfo struct {
	PoolCreator          string `json:"pool_creator"`
	LiquidityPoolAddress string `json:"liquidity_pool_address"`
	TokenMintOne         string `json:"token_mint_one"`
	TokenMintTwo         string `json:"token_mint_two"`
	TokenVaultOne        string `json:"token_vault_one"`
	TokenVaultTwo        string `json:"token_vault_two"`
}

// SolTransferInfo is the info payload of SOL_TRANSFER actions.
type SolTransferInfo struct {
	Sender    string  `json:"sender"`
	Receiver  string  `json:"receiver"`
	Amount    float64 `json:"amount"`
	AmountRaw float64 `json:"amount_raw"`
}

// TokenCreateInfo is the info payload of TOKEN_CREATE actions.
type TokenCreateInfo struct {
	TokenAddress string `json:"token_address"`
}

// TokenMintInfo is the info payload of TOKEN_MINT actions.
type TokenMintInfo struct {
	TokenAddress    string  `json:"token_address"`
	Amount          float64 `json:"amount"`
	AmountRaw       uint64  `json:"amount_raw"`
	ReceiverAddress string  `json:"receiver_address"`
}

// TokenTransferInfo is the info payload of TOKEN_TRANSFER actions.
type TokenTransferInfo struct {
	Amount                    float64 `json:"amount"`
	AmountRaw                 uint64  `json:"amount_raw"`
	Receiver                  string  `json:"receiver"`
	Sender                    string  `json:"sender"`
	ReceiverAssociatedAccount string  `json:"receiver_associated_account"`
	TokenAddress              string  `json:"token_address"`
}

// SwapInfo is the info payload of SWAP actions.
type SwapInfo struct {
	Swapper           string            `json:"swapper"`
	TokensSwapped     TokensSwapped     `json:"tokens_swapped"`
	Swaps             []json.RawMessage `json:"swaps"`
	SlippageInPercent *float64          `json:"slippage_in_percent,omitempty"`
	QuotedOutAmount   *float64          `json:"quoted_out_amount,omitempty"`
	SlippagePaid      *float64          `json:"slippage_paid,omitempty"`
}

// TokensSwapped holds both legs of a swap.
type TokensSwapped struct {
	In  TokenInfo `json:"in"`
	Out TokenInfo `json:"out"`
}

// TokenInfo describes one token leg of a swap.
type TokenInfo struct {
	TokenAddress string  `json:"token_address"`
	Name         string  `json:"name"`
	Symbol       string  `json:"symbol"`
	ImageURI     string  `json:"image_uri"`
	Amount       float64 `json:"amount"`
	AmountRaw    uint64  `json:"amount_raw"`
}

// CreatePool returns the typed info of a CREATE_POOL action.
func (a *Action) CreatePool() (*CreatePoolInfo, error) {
	return decodeAs[CreatePoolInfo](a, ActionCreatePool)
}

// SolTransfer returns the typed info of a SOL_TRANSFER action.
func (a *Action) SolTransfer() (*SolTransferInfo, error) {
	return decodeAs[SolTransferInfo](a, ActionSolTransfer)
}

// TokenCreate returns the typed info of a TOKEN_CREATE action.
func (a *Action) TokenCreate() (*TokenCreateInfo, error) {
	return decodeAs[TokenCreateInfo](a, ActionTokenCreate)
}

// TokenMint returns the typed info of a TOKEN_MINT action.
func (a *Action) TokenMint() (*TokenMintInfo, error) {
	return decodeAs[TokenMintInfo](a, ActionTokenMint)
}

// TokenTransfer returns the typed info of a TOKEN_TRANSFER action.
func (a *Action) TokenTransfer() (*TokenTransferInfo, error) {
	return decodeAs[TokenTransferInfo](a, ActionTokenTransfer)
}

// Swap returns the typed info of a SWAP action.
func (a *Action) Swap() (*SwapInfo, error) {
	return decodeAs[SwapInfo](a, ActionSwap)
}

func decodeAs[T any](a *Action, want string) (*T, error) {
	if a.Type != want {
		return nil, fmt.Errorf("action type is %s, not %s", a.Type, want)
	}
	var info T
	if err := a.DecodeInfo(&info); err != nil {
		return nil, err
	}
	return &info, nil
}
