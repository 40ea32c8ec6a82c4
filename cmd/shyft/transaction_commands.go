package main

import (
	"context"
	"fmt"

	"github.com/brojonat/shyft/client"
	"github.com/brojonat/shyft/service/solana"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
)

var jqFlag = &cli.StringSliceFlag{
	Name:    "must-jq",
	Usage:   "jq filter expression that must evaluate to true (can be specified multiple times, all must match)",
	Aliases: []string{"jq"},
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "List the parsed transaction history of an account, newest first",
		ArgsUsage: "ACCOUNT",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "Number of transactions to fetch (tx_num)",
			},
			&cli.StringFlag{
				Name:  "before",
				Usage: "Only transactions older than this signature",
			},
			&cli.StringFlag{
				Name:  "until",
				Usage: "Stop at this signature",
			},
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "Include the raw RPC payload",
			},
			&cli.BoolFlag{
				Name:  "events",
				Usage: "Include program events",
			},
			jqFlag,
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("account address is required")
			}
			account := c.Args().Get(0)
			if err := solana.ValidateAddress(account); err != nil {
				return err
			}

			filters, err := compileFilters(c.StringSlice("must-jq"))
			if err != nil {
				return err
			}

			opts := &client.HistoryOptions{}
			if c.IsSet("limit") {
				opts.TxNum = lo.ToPtr(c.Int("limit"))
			}
			if c.IsSet("before") {
				opts.BeforeTxSignature = lo.ToPtr(c.String("before"))
			}
			if c.IsSet("until") {
				opts.UntilTxSignature = lo.ToPtr(c.String("until"))
			}
			if c.IsSet("raw") {
				opts.EnableRaw = lo.ToPtr(c.Bool("raw"))
			}
			if c.IsSet("events") {
				opts.EnableEvents = lo.ToPtr(c.Bool("events"))
			}

			cl, err := newClient(c)
			if err != nil {
				return err
			}

			txns, err := cl.GetTransactionHistory(context.Background(), account, opts)
			if err != nil {
				return fmt.Errorf("failed to fetch transaction history: %w", err)
			}

			txns, err = filterTransactions(filters, txns)
			if err != nil {
				return err
			}
			return writeTransactions(c, txns)
		},
	}
}

func parsedCommand() *cli.Command {
	return &cli.Command{
		Name:      "parsed",
		Usage:     "Show one parsed transaction",
		ArgsUsage: "SIGNATURE",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "summary",
				Usage: "Also fetch the raw payload and summarize its transfers and memo",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("transaction signature is required")
			}
			signature := c.Args().Get(0)
			if err := solana.ValidateSignature(signature); err != nil {
				return err
			}

			cl, err := newClient(c)
			if err != nil {
				return err
			}

			ctx := context.Background()
			txn, err := cl.GetParsedTransaction(ctx, signature)
			if err != nil {
				return fmt.Errorf("failed to fetch transaction: %w", err)
			}

			// The single-transaction endpoint has no raw option, so the raw
			// payload comes from parse_selected.
			var summary *solana.Summary
			if c.Bool("summary") {
				withRaw, err := cl.ParseSelectedTransactions(ctx, []string{signature}, &client.SelectedOptions{EnableRaw: true})
				if err != nil {
					return fmt.Errorf("failed to fetch raw transaction: %w", err)
				}
				if len(withRaw) > 0 {
					summary, err = summarize(&withRaw[0])
					if err != nil {
						return err
					}
				}
			}

			if c.Bool("json") {
				return writeJSON(c.App.Writer, map[string]any{
					"transaction": txn,
					"summary":     summary,
				})
			}
			printTransactionDetailed(c.App.Writer, txn, summary)
			return nil
		},
	}
}

func parseSelectedCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse-selected",
		Usage:     "Parse several transactions in one request",
		ArgsUsage: "SIGNATURE [SIGNATURE...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "Include the raw RPC payload",
			},
			&cli.BoolFlag{
				Name:  "events",
				Usage: "Include program events",
			},
			jqFlag,
		},
		Action: func(c *cli.Context) error {
			signatures := c.Args().Slice()
			if len(signatures) == 0 {
				return fmt.Errorf("at least one transaction signature is required")
			}
			for _, signature := range signatures {
				if err := solana.ValidateSignature(signature); err != nil {
					return err
				}
			}

			filters, err := compileFilters(c.StringSlice("must-jq"))
			if err != nil {
				return err
			}

			cl, err := newClient(c)
			if err != nil {
				return err
			}

			txns, err := cl.ParseSelectedTransactions(context.Background(), signatures, &client.SelectedOptions{
				EnableRaw:    c.Bool("raw"),
				EnableEvents: c.Bool("events"),
			})
			if err != nil {
				return fmt.Errorf("failed to parse transactions: %w", err)
			}

			if missing := missingSignatures(signatures, txns); len(missing) > 0 && !c.Bool("json") {
				fmt.Fprintf(c.App.ErrWriter, "Not returned by the API: %v\n", missing)
			}

			txns, err = filterTransactions(filters, txns)
			if err != nil {
				return err
			}
			return writeTransactions(c, txns)
		},
	}
}

// missingSignatures lists requested signatures absent from txns.
func missingSignatures(requested []string, txns []client.ParsedTransaction) []string {
	returned := lo.FlatMap(txns, func(txn client.ParsedTransaction, _ int) []string {
		return txn.Signatures
	})
	return lo.Without(requested, returned...)
}

// summarize decodes the raw payload of txn into a transfer summary.
func summarize(txn *client.ParsedTransaction) (*solana.Summary, error) {
	raw, err := txn.DecodeRaw()
	if err != nil {
		return nil, err
	}
	summary, err := solana.Summarize(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize raw transaction: %w", err)
	}
	return summary, nil
}

// writeTransactions prints txns as JSON or as a table.
func writeTransactions(c *cli.Context, txns []client.ParsedTransaction) error {
	if c.Bool("json") {
		return writeJSON(c.App.Writer, txns)
	}
	if len(txns) == 0 {
		fmt.Fprintln(c.App.Writer, "No transactions found")
		return nil
	}
	fmt.Fprintln(c.App.Writer, renderTransactionTable(txns))
	return nil
}
