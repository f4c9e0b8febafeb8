package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"reimburse/internal/export"
	"reimburse/internal/repository/postgres"
	"reimburse/internal/service"
)

func newExportCmd(e *env) *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the report of completed invoices",
		Long: "Write the report of completed invoices to --out. " +
			"Without --out the report is saved under its generated name; --out - writes to stdout.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := openDB(ctx, e, false)
			if err != nil {
				return err
			}
			defer db.Close()

			invoiceRepo := postgres.NewInvoicePostgres(db)
			svc := service.NewExportService(invoiceRepo, postgres.NewAttachmentPostgres(db), postgres.NewTransactor(db), export.Options{
				BOM:      e.cfg.Export.UTF8BOM,
				Location: e.loc,
			})

			res, err := svc.Export(ctx, format)
			if err != nil {
				return err
			}

			switch out {
			case "-":
				_, err = cmd.OutOrStdout().Write(res.Body)
			case "":
				out = res.Filename
				fallthrough
			default:
				err = os.WriteFile(out, res.Body, 0o644)
			}
			if err != nil {
				return fmt.Errorf("write report: %w", err)
			}

			e.logger.Info().Str("format", format).Int("rows", res.Rows).Str("out", out).Msg("report exported")
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatCSV), "report format")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout")
	return cmd
}
