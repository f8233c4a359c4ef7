package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrader/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query trade journal data",
	Long: `Query and display trade journal records from the SQLite database.

Subcommands:
  trades - List an account's trade history
  equity - List an account's equity snapshots
  trade  - Get one journal record by ID
  day    - List every record written on a day

Examples:
  papertrader journal trades --account 01HX... --limit 20
  papertrader journal day 2024-01-15`,
}

var journalTradesCmd = &cobra.Command{
	Use:   "trades",
	Short: "List an account's trade history",
	Args:  cobra.NoArgs,
	RunE:  runJournalTrades,
}

var journalEquityCmd = &cobra.Command{
	Use:   "equity",
	Short: "List an account's equity snapshots",
	Args:  cobra.NoArgs,
	RunE:  runJournalEquity,
}

var journalTradeCmd = &cobra.Command{
	Use:   "trade <record-id>",
	Short: "Get one journal record",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrade,
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List records written on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDay,
}

var (
	journalDBPath  string
	journalAccount string
	journalLimit   int
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalTradesCmd)
	journalCmd.AddCommand(journalEquityCmd)
	journalCmd.AddCommand(journalTradeCmd)
	journalCmd.AddCommand(journalDayCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./papertrader.sqlite", "path to SQLite journal DB")
	for _, c := range []*cobra.Command{journalTradesCmd, journalEquityCmd} {
		c.Flags().StringVarP(&journalAccount, "account", "a", "", "account ID (required)")
		_ = c.MarkFlagRequired("account")
	}
	journalTradesCmd.Flags().IntVarP(&journalLimit, "limit", "n", 0, "most recent N records (0 for all)")
}

func runJournalTrades(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	recs, err := j.Trades(journalAccount, journalLimit)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	return writeTrades(cmd.OutOrStdout(), recs)
}

func runJournalEquity(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	snaps, err := j.ListEquity(journalAccount)
	if err != nil {
		return fmt.Errorf("query equity: %w", err)
	}
	return writeEquity(cmd.OutOrStdout(), snaps)
}

func runJournalTrade(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	rec, err := j.GetTrade(args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}
	return writeTrades(cmd.OutOrStdout(), []journal.TradeRecord{rec})
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	start, end, err := dayBounds(time.Local, args[0])
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	recs, err := j.ListTradesBetween(start, end)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	return writeTrades(cmd.OutOrStdout(), recs)
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start, end, nil
}
