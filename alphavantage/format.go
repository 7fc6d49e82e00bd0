package alphavantage

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// MaxDays is the number of most recent trading days rendered by Format
const MaxDays = 5

// Format renders the series header followed by up to MaxDays most recent
// trading days, newest first.
// Prices are rounded to two decimal places, volume uses thousands separators.
func Format(s *Series) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Stock: %s\n", s.MetaData.Symbol)
	fmt.Fprintf(&b, "Last Updated: %s\n", s.MetaData.LastRefreshed)
	fmt.Fprintf(&b, "Time Zone: %s\n", s.MetaData.TimeZone)
	b.WriteString("\nDaily Prices:\n")

	for _, q := range s.Recent(MaxDays) {
		fmt.Fprintf(&b, "Date: %s\n", q.Date)
		fmt.Fprintf(&b, "Open: $%s\n", q.Open.StringFixed(2))
		fmt.Fprintf(&b, "High: $%s\n", q.High.StringFixed(2))
		fmt.Fprintf(&b, "Low: $%s\n", q.Low.StringFixed(2))
		fmt.Fprintf(&b, "Close: $%s\n", q.Close.StringFixed(2))
		fmt.Fprintf(&b, "Volume: %s\n", humanize.Comma(q.Volume))
		b.WriteString("---\n")
	}
	return b.String()
}
