package cli

import (
	"github.com/cockroachdb/errors"
	"github.com/effective-security/stockmcp/alphavantage"
	"github.com/effective-security/stockmcp/encoding"
	"github.com/effective-security/stockmcp/tools/stockdata"
	"github.com/spf13/cobra"
)

func (a *app) newQuoteCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "quote SYMBOL",
		Short: "Print the daily prices for a symbol",
		Long: `Fetch the daily time series for a ticker symbol and print it.
Text output lists the five most recent trading days, structured outputs
include the full series.
Example: stockmcp quote IBM -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !encoding.IsSupported(output) {
				return errors.Newf("unsupported output format %q, expected one of %v", output, encoding.Modes)
			}

			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			tool, err := stockdata.New(alphavantage.NewClient(cfg, nil))
			if err != nil {
				return err
			}

			res, err := tool.Run(cmd.Context(), &stockdata.Request{Symbol: args[0]})
			if err != nil {
				if alphavantage.IsShape(err) {
					return errors.Wrapf(err, "invalid or empty data received for symbol: %s", args[0])
				}
				return errors.Wrapf(err, "failed to retrieve stock data for symbol: %s", args[0])
			}

			var v any = res.Series
			if output == encoding.ModePlainText {
				v = res
			}
			return encoding.Encode(cmd.OutOrStdout(), output, v)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", encoding.ModePlainText, "Output format: text, json, yaml or toml")
	return cmd
}
