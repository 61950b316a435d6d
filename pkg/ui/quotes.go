package ui

import (
	"fmt"
	"strings"

	"github.com/fd1az/tokenprice/business/pricing/domain"
)

// QuoteRow is one line of a quote table.
type QuoteRow struct {
	Label  string
	Quote  domain.QuoteCurrency
	Result domain.PriceQuote
	Err    error
}

// RenderQuotes lays out rows as an aligned table under title.
func RenderQuotes(title string, rows []QuoteRow) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "  %-10s  %-6s  %-10s  %-24s  %s\n", "Token", "Quote", "Venue", "Price", "Path")
	b.WriteString(MutedValue.Render("  " + strings.Repeat("─", 72)))
	b.WriteString("\n")

	for _, row := range rows {
		b.WriteString(renderRow(row))
		b.WriteString("\n")
	}

	return b.String()
}

func renderRow(row QuoteRow) string {
	prefix := fmt.Sprintf("  %-10s  %-6s  ", row.Label, row.Quote)

	switch {
	case row.Err != nil:
		return prefix + ErrorStyle.Render("error: "+row.Err.Error())
	case !row.Result.Resolved():
		return prefix + UnresolvedStyle.Render(fmt.Sprintf("%-10s  %-24s", "-", "unresolved"))
	}

	return prefix +
		HeaderStyle.Render(fmt.Sprintf("%-10s", row.Result.Venue)) + "  " +
		PriceStyle.Render(fmt.Sprintf("%-24s", row.Result.Price)) + "  " +
		MutedValue.Render(strings.Join(row.Result.Path, " -> "))
}
