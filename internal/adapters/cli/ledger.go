package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/fabtycoon-go/internal/application/ledger/queries"
)

// NewLedgerCommand creates the ledger command with subcommands
func NewLedgerCommand() *cobra.Command {
	var company string

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Financial ledger operations",
		Long: `View and analyze the journal of a company.

Every month posts revenue, cost of goods, foundry contract charges and
R&D spend to the ledger. Use these commands to page through entries and
build monthly reports. Months are given as YYYY-MM.

Examples:
  fabtycoon ledger list --limit 20
  fabtycoon ledger list --category MANUFACTURING
  fabtycoon ledger report profit-loss --start 1990-01 --end 1990-12
  fabtycoon ledger report cash-flow --group-by month`,
	}

	cmd.PersistentFlags().StringVar(&company, "company", "", "Company ID (default: the player)")

	// Add subcommands
	cmd.AddCommand(newLedgerListCommand(&company))
	cmd.AddCommand(newLedgerReportCommand(&company))

	return cmd
}

// newLedgerListCommand creates the ledger list subcommand
func newLedgerListCommand(company *string) *cobra.Command {
	var (
		start     string
		end       string
		category  string
		entryType string
		limit     int
		offset    int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journal entries",
		Long: `List journal entries, newest first, with optional filtering.

Categories:
  SALES          - Product revenue
  MANUFACTURING  - Cost of goods and foundry contracts
  RESEARCH       - R&D budget and tape-out expedites
  OTHER          - Adjustments

Entry Types:
  REVENUE, COGS, CONTRACT_COST, RD, EXPEDITE, ADJUSTMENT`,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := &queries.GetTransactionsQuery{
				CompanyID: *company,
				Start:     start,
				End:       end,
				Limit:     limit,
				Offset:    offset,
			}
			if category != "" {
				query.Category = &category
			}
			if entryType != "" {
				query.EntryType = &entryType
			}
			return withBackend(shortTimeout, func(ctx context.Context, b backend) error {
				resp, err := b.Send(ctx, query)
				if err != nil {
					return fmt.Errorf("failed to query transactions: %w", err)
				}
				response := resp.(*queries.GetTransactionsResponse)
				if outputJSON {
					return printJSON(response)
				}
				displayTransactionList(response)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "First month (YYYY-MM)")
	cmd.Flags().StringVar(&end, "end", "", "Last month (YYYY-MM)")
	cmd.Flags().StringVar(&category, "category", "", "Filter by category")
	cmd.Flags().StringVar(&entryType, "type", "", "Filter by entry type")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of entries to return")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of entries to skip")

	return cmd
}

// newLedgerReportCommand creates the ledger report command group
func newLedgerReportCommand(company *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate financial reports",
		Long: `Generate profit & loss and cash flow reports over a month range.
Without --start and --end the whole campaign so far is covered.`,
	}

	cmd.AddCommand(newLedgerProfitLossCommand(company))
	cmd.AddCommand(newLedgerCashFlowCommand(company))

	return cmd
}

// newLedgerProfitLossCommand creates the profit & loss report subcommand
func newLedgerProfitLossCommand(company *string) *cobra.Command {
	var (
		start string
		end   string
	)

	cmd := &cobra.Command{
		Use:   "profit-loss",
		Short: "Generate profit & loss statement",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(shortTimeout, func(ctx context.Context, b backend) error {
				resp, err := b.Send(ctx, &queries.GetProfitLossQuery{CompanyID: *company, Start: start, End: end})
				if err != nil {
					return fmt.Errorf("failed to generate P&L report: %w", err)
				}
				response := resp.(*queries.GetProfitLossResponse)
				if outputJSON {
					return printJSON(response)
				}
				displayProfitLoss(response)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "First month (YYYY-MM)")
	cmd.Flags().StringVar(&end, "end", "", "Last month (YYYY-MM)")

	return cmd
}

// newLedgerCashFlowCommand creates the cash flow report subcommand
func newLedgerCashFlowCommand(company *string) *cobra.Command {
	var (
		start   string
		end     string
		groupBy string
	)

	cmd := &cobra.Command{
		Use:   "cash-flow",
		Short: "Generate cash flow statement",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(shortTimeout, func(ctx context.Context, b backend) error {
				resp, err := b.Send(ctx, &queries.GetCashFlowQuery{CompanyID: *company, Start: start, End: end, GroupBy: groupBy})
				if err != nil {
					return fmt.Errorf("failed to generate cash flow report: %w", err)
				}
				response := resp.(*queries.GetCashFlowResponse)
				if outputJSON {
					return printJSON(response)
				}
				displayCashFlow(response)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "First month (YYYY-MM)")
	cmd.Flags().StringVar(&end, "end", "", "Last month (YYYY-MM)")
	cmd.Flags().StringVar(&groupBy, "group-by", "category", "Group by (category, month)")

	return cmd
}

// displayTransactionList formats and displays transaction list
func displayTransactionList(response *queries.GetTransactionsResponse) {
	if len(response.Transactions) == 0 {
		fmt.Println("No transactions found")
		return
	}

	fmt.Printf("\nTRANSACTIONS (Showing %d of %d total)\n", len(response.Transactions), response.Total)
	fmt.Println(rule)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Month\tType\tCategory\tAmount\tBalance")
	fmt.Fprintln(w, "─────\t────\t────────\t──────\t───────")

	for _, tx := range response.Transactions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			tx.Month,
			tx.Type,
			tx.Category,
			formatAmount(tx.Amount),
			formatCents(tx.BalanceAfter),
		)
	}

	w.Flush()
	fmt.Println(rule)
	fmt.Printf("Total: %d transactions\n\n", response.Total)
}

// displayProfitLoss formats and displays P&L report
func displayProfitLoss(response *queries.GetProfitLossResponse) {
	fmt.Printf("\nPROFIT & LOSS STATEMENT (%s)\n", response.CompanyID)
	fmt.Printf("Period: %s\n", response.Period)
	fmt.Println(rule)

	fmt.Println("\nREVENUE")
	for _, category := range sortedKeys(response.RevenueBreakdown) {
		fmt.Printf("  %-25s %s\n", category+":", formatCents(response.RevenueBreakdown[category]))
	}
	fmt.Println("                          ─────────────")
	fmt.Printf("  %-25s %s\n", "Total Revenue:", formatCents(response.TotalRevenue))

	fmt.Println("\nEXPENSES")
	for _, category := range sortedKeys(response.ExpenseBreakdown) {
		fmt.Printf("  %-25s %s\n", category+":", formatCents(-response.ExpenseBreakdown[category]))
	}
	fmt.Println("                          ─────────────")
	fmt.Printf("  %-25s %s\n", "Total Expenses:", formatCents(-response.TotalExpenses))

	fmt.Println("\n" + rule)
	fmt.Printf("NET PROFIT:               %s\n", formatAmount(response.NetProfit))
	fmt.Println(rule)
}

// displayCashFlow formats and displays cash flow report
func displayCashFlow(response *queries.GetCashFlowResponse) {
	fmt.Printf("\nCASH FLOW STATEMENT (By %s)\n", response.GroupBy)
	fmt.Printf("Period: %s\n", response.Period)
	fmt.Println(rule)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Key\tInflow\tOutflow\tNet Flow\tTransactions")
	fmt.Fprintln(w, "───\t──────\t───────\t────────\t────────────")

	var totalInflow, totalOutflow, totalNetFlow int64
	totalTransactions := 0

	for _, flow := range response.Flows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			flow.Key,
			formatCents(flow.TotalInflow),
			formatCents(-flow.TotalOutflow),
			formatAmount(flow.NetFlow),
			flow.Transactions,
		)
		totalInflow += flow.TotalInflow
		totalOutflow += flow.TotalOutflow
		totalNetFlow += flow.NetFlow
		totalTransactions += flow.Transactions
	}

	fmt.Fprintln(w, "───\t──────\t───────\t────────\t────────────")
	fmt.Fprintf(w, "TOTAL\t%s\t%s\t%s\t%d\n",
		formatCents(totalInflow),
		formatCents(-totalOutflow),
		formatAmount(totalNetFlow),
		totalTransactions,
	)

	w.Flush()
	fmt.Println(rule)
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
