package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/SoyJotaGS/buscador-rrv-web/internal/exporter"
)

func newExportCommand(a *app) *cobra.Command {
	var (
		outDir  string
		summary bool
	)

	cmd := &cobra.Command{
		Use:   "export <plate>",
		Short: "Search a plate and write one workbook per match",
		Example: `  buscador export ABC-123 --out ./exportes
  buscador export ABC --summary`,
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
			if len(resp.Records) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Sin resultados para %q\n", resp.Query)
				return nil
			}
			if err := os.MkdirAll(outDir, 0755); err != nil {
				return err
			}

			now := time.Now()
			if summary {
				wb, err := exporter.ResultsWorkbook(resp)
				if err != nil {
					return err
				}
				path := filepath.Join(outDir, exporter.FileName(resp.Query, now))
				return writeWorkbook(cmd, path, wb)
			}

			for i, rec := range resp.Records {
				wb, err := exporter.RecordWorkbook(rec, now)
				if err != nil {
					return err
				}
				// several matches share the timestamp, keep names unique
				name := strings.TrimSuffix(exporter.FileName(rec.Plate, now), ".xlsx")
				name = fmt.Sprintf("%s_%d.xlsx", name, i+1)
				if err := writeWorkbook(cmd, filepath.Join(outDir, name), wb); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().BoolVar(&summary, "summary", false, "write a single workbook listing every match")
	return cmd
}

func writeWorkbook(cmd *cobra.Command, path string, wb *excelize.File) error {
	data, err := exporter.Bytes(wb)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
