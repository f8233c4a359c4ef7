package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/papertrader/journal"
	"github.com/rustyeddy/papertrader/market"
)

// money renders an amount with two fixed decimals.
func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// price renders a quote with precision suited to its magnitude.
func price(class market.AssetClass, v float64) string {
	places := int32(2)
	if class == market.Forex || v < 10 {
		places = 5
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

func writeQuotes(w io.Writer, quotes []market.Quote) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tASSET\tBID\tASK\tMID\tSPREAD")
	for _, q := range quotes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			q.Symbol, q.AssetClass,
			price(q.AssetClass, q.Bid), price(q.AssetClass, q.Ask),
			price(q.AssetClass, q.Mid()), price(q.AssetClass, q.Spread))
	}
	return tw.Flush()
}

func writeTrades(w io.Writer, recs []journal.TradeRecord) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tTYPE\tSYMBOL\tSIDE\tQTY\tPRICE\tPNL\tREASON\tPOSITION")
	total := decimal.Zero
	for _, r := range recs {
		pnl := "-"
		if r.PnL != nil {
			d := decimal.NewFromFloat(*r.PnL)
			total = total.Add(d)
			pnl = d.StringFixed(2)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Time.Local().Format("2006-01-02 15:04:05"),
			r.Type, r.Symbol, r.Side,
			decimal.NewFromFloat(r.Quantity).String(),
			price(r.AssetClass, r.Price),
			pnl, r.Reason, r.PositionID)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d records, realized P&L %s\n", len(recs), total.StringFixed(2))
	return err
}

func writeEquity(w io.Writer, snaps []journal.EquitySnapshot) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tBALANCE\tEQUITY\tMARGIN USED\tFREE MARGIN")
	for _, s := range snaps {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			s.Time.Local().Format("2006-01-02 15:04:05"),
			money(s.Balance), money(s.Equity), money(s.MarginUsed), money(s.FreeMargin))
	}
	return tw.Flush()
}
