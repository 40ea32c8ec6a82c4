package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"github.com/brojonat/shyft/client"
	"github.com/brojonat/shyft/service/solana"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const lamportsPerSOLExp = 9

var (
	successStyle = color.New(color.FgGreen)
	failureStyle = color.New(color.FgRed)
	labelStyle   = color.New(color.Bold)
	faintStyle   = color.New(color.Faint)
)

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// formatSOL renders a SOL amount without float formatting artefacts.
func formatSOL(amount float64) string {
	return decimal.NewFromFloat(amount).String()
}

// formatLamports renders lamports as SOL.
func formatLamports(lamports uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -lamportsPerSOLExp).String()
}

func shortSignature(sig string) string {
	if len(sig) <= 16 {
		return sig
	}
	return sig[:8] + "…" + sig[len(sig)-8:]
}

func formatStatus(txn *client.ParsedTransaction) string {
	if txn.Succeeded() {
		return successStyle.Sprint(txn.Status)
	}
	return failureStyle.Sprint(txn.Status)
}

func formatTime(txn *client.ParsedTransaction) string {
	ts, err := txn.Time()
	if err != nil {
		return txn.Timestamp
	}
	return ts.UTC().Format(time.DateTime)
}

// renderTransactionTable renders one row per transaction.
func renderTransactionTable(txns []client.ParsedTransaction) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Format.Footer = text.FormatDefault
	t.AppendHeader(table.Row{"Time (UTC)", "Signature", "Type", "Protocol", "Fee (SOL)", "Status"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight},
	})

	rows := lo.Map(txns, func(txn client.ParsedTransaction, _ int) table.Row {
		return table.Row{
			formatTime(&txn),
			shortSignature(txn.Signature()),
			txn.Type,
			txn.Protocol.Name,
			formatSOL(txn.Fee),
			formatStatus(&txn),
		}
	})
	t.AppendRows(rows)
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d transactions", len(txns))})

	return t.Render()
}

// printTransactionDetailed prints one transaction with its actions and, when
// available, the transfer summary of its raw payload.
func printTransactionDetailed(w io.Writer, txn *client.ParsedTransaction, summary *solana.Summary) {
	rule := strings.Repeat("━", 72)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Sprint("Signature:"), txn.Signature())
	fmt.Fprintf(w, "%s      %s\n", labelStyle.Sprint("Time:"), formatTime(txn))
	fmt.Fprintf(w, "%s    %s\n", labelStyle.Sprint("Status:"), formatStatus(txn))
	fmt.Fprintf(w, "%s      %s\n", labelStyle.Sprint("Type:"), txn.Type)
	fmt.Fprintf(w, "%s  %s (%s)\n", labelStyle.Sprint("Protocol:"), txn.Protocol.Name, txn.Protocol.Address)
	fmt.Fprintf(w, "%s       %s SOL\n", labelStyle.Sprint("Fee:"), formatSOL(txn.Fee))
	fmt.Fprintf(w, "%s %s\n", labelStyle.Sprint("Fee payer:"), txn.FeePayer)
	fmt.Fprintln(w, rule)

	if len(txn.Actions) > 0 {
		t := table.NewWriter()
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"#", "Action", "Program", "Details"})
		for i, action := range txn.Actions {
			t.AppendRow(table.Row{i + 1, action.Type, action.SourceProtocol.Name, describeAction(&action)})
		}
		fmt.Fprintln(w, t.Render())
	}

	if summary != nil {
		fmt.Fprintln(w, labelStyle.Sprint("Raw summary"))
		fmt.Fprintf(w, "  Slot:  %d\n", summary.Slot)
		fmt.Fprintf(w, "  Fee:   %s SOL\n", formatLamports(summary.Fee))
		for _, transfer := range summary.Transfers {
			fmt.Fprintf(w, "  %s\n", describeTransfer(transfer))
		}
		if summary.Memo != nil {
			fmt.Fprintf(w, "  Memo:  %s\n", *summary.Memo)
		}
		if summary.Err != nil {
			fmt.Fprintf(w, "  Error: %s\n", failureStyle.Sprint(*summary.Err))
		}
	}
}

// describeAction renders the typed info of well-known actions in one line.
func describeAction(action *client.Action) string {
	switch action.Type {
	case client.ActionSolTransfer:
		if info, err := action.SolTransfer(); err == nil {
			return fmt.Sprintf("%s SOL %s → %s", formatSOL(info.Amount), info.Sender, info.Receiver)
		}
	case client.ActionTokenTransfer:
		if info, err := action.TokenTransfer(); err == nil {
			return fmt.Sprintf("%s of %s %s → %s", formatSOL(info.Amount), info.TokenAddress, info.Sender, info.Receiver)
		}
	case client.ActionTokenMint:
		if info, err := action.TokenMint(); err == nil {
			return fmt.Sprintf("%s of %s to %s", formatSOL(info.Amount), info.TokenAddress, info.ReceiverAddress)
		}
	case client.ActionTokenCreate:
		if info, err := action.TokenCreate(); err == nil {
			return info.TokenAddress
		}
	case client.ActionCreatePool:
		if info, err := action.CreatePool(); err == nil {
			return fmt.Sprintf("pool %s (%s / %s)", info.LiquidityPoolAddress, info.TokenMintOne, info.TokenMintTwo)
		}
	case client.ActionSwap:
		if info, err := action.Swap(); err == nil {
			in, out := info.TokensSwapped.In, info.TokensSwapped.Out
			return fmt.Sprintf("%s %s → %s %s", formatSOL(in.Amount), in.Symbol, formatSOL(out.Amount), out.Symbol)
		}
	}
	return faintStyle.Sprint("-")
}

func describeTransfer(t solana.Transfer) string {
	from := lo.FromPtrOr(t.FromAddress, "?")
	to := lo.FromPtrOr(t.ToAddress, "?")
	if t.IsNative() {
		return fmt.Sprintf("Transfer: %s SOL %s → %s", formatLamports(t.Amount), from, to)
	}
	mint := lo.FromPtrOr(t.TokenMint, "unknown mint")
	return fmt.Sprintf("Transfer: %d units of %s %s → %s", t.Amount, mint, from, to)
}
