package notifier

import (
	"fmt"
	"strings"
	"time"

	"BrickWatch/internal/broker"
	"BrickWatch/internal/model"

	"github.com/dustin/go-humanize"
)

// FormatOverview renders the account and open-position summary.
func FormatOverview(clock *model.MarketClock, acct *model.Account, brokers []*broker.PositionBroker) string {
	var b strings.Builder

	status := "Closed"
	if clock != nil && clock.IsOpen {
		status = "Open"
	}
	b.WriteString(fmt.Sprintf("Market is %s. | %s\n", status, time.Now().Format("2006-01-02 15:04")))

	b.WriteString("--- Open positions ---\n")
	if len(brokers) == 0 {
		b.WriteString("(none)\n")
	}
	for _, pb := range brokers {
		b.WriteString(pb.String())
		b.WriteString("\n")
	}

	if acct != nil {
		portfolio, _ := acct.PortfolioValue.Float64()
		cash, _ := acct.Cash.Float64()
		b.WriteString("--- Account totals ---\n")
		b.WriteString(fmt.Sprintf("Portfolio value: *%s* $\n", humanize.CommafWithDigits(portfolio, 2)))
		b.WriteString(fmt.Sprintf("Cash: *%s* $\n", humanize.CommafWithDigits(cash, 2)))
	}

	return b.String()
}

// FormatSignals renders the per-symbol reversal notifications.
func FormatSignals(events []string) string {
	var b strings.Builder
	b.WriteString("Something happened\n")
	for _, evt := range events {
		b.WriteString(fmt.Sprintf("%s >\n", evt))
	}
	return b.String()
}

// FormatExit renders an exit-order message for one position.
func FormatExit(pb *broker.PositionBroker, reason string) string {
	value, _ := pb.MarketValue().Float64()
	return fmt.Sprintf("Selling *%s*: %s shares at ~%s $ (%s), %s total",
		pb.Symbol, pb.Qty, pb.Report().Price.StringFixed(2),
		reason, humanize.CommafWithDigits(value, 2))
}
