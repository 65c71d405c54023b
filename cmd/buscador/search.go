package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/SoyJotaGS/buscador-rrv-web/internal/model"
)

func newSearchCommand(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search <plate>",
		Short: "Search a plate once and print the matches",
		Example: `  buscador search ABC-123
  buscador search abc --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.wire(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := w.service.Search(cmd.Context(), args[0], nil)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			return printResults(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full response as JSON")
	return cmd
}

func printResults(out io.Writer, resp *model.SearchResponse) error {
	if len(resp.Records) == 0 {
		fmt.Fprintf(out, "Sin resultados para %q\n", resp.Query)
	} else {
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "FECHA\tPLACA\tEMPRESA\tÚLTIMO ESTADO\tSISTEMA\tPESTAÑA\tHOJA\tFILA")
		for _, r := range resp.Records {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
				r.Date, r.Plate, r.Company, r.Status, r.System, r.Worksheet, r.Spreadsheet, r.Row)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if st := resp.Stats; st != nil {
		fmt.Fprintf(out, "\n%d registros con fecha de %d; %d días entre el más antiguo y el más reciente, %.1f días de intervalo promedio\n",
			st.Dated, st.Total, st.TotalDays, st.MeanIntervalDays)
	}

	verdict := string(resp.Verdict.Status)
	if resp.Verdict.Detail != "" {
		verdict += " (" + resp.Verdict.Detail + ")"
	}
	fmt.Fprintf(out, "Registro: %s\n", verdict)

	for _, s := range resp.Sheets {
		if s.Status == model.SheetError {
			fmt.Fprintf(out, "aviso: no se pudo leer %s / %s: %s\n", s.Spreadsheet, s.Worksheet, s.Error)
		}
	}
	return nil
}
