package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/labasprak/asprak/core/importer"
	"github.com/labasprak/asprak/services/spreadsheet"
)

func (cli *commandLine) seedCommand() *cobra.Command {
	var (
		file string
		opts importer.Options
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import a seed workbook (praktikum, mata_kuliah, asprak, jadwal, asprak_praktikum sheets)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				_ = cmd.Usage()
				return errHelp
			}
			res, err := cli.seed(file, opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cli.writer(), res.Message)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "path of the .xlsx workbook")
	cmd.Flags().StringVar(&opts.Term, "term", "", "tahun ajaran of praktikum rows that do not name one")
	cmd.Flags().BoolVar(&opts.SkipConflicts, "skip-conflicts", false, "skip asprak rows whose code is held by another active asprak")
	return cmd
}

func (cli *commandLine) seed(file string, opts importer.Options) (importer.Result, error) {
	if !spreadsheet.IsXLSX(file) {
		return importer.Result{}, errors.Errorf("%s: not an .xlsx file", file)
	}
	f, err := os.Open(file)
	if err != nil {
		return importer.Result{}, err
	}
	defer f.Close()

	wb, err := spreadsheet.ReadWorkbook(f)
	if err != nil {
		return importer.Result{}, err
	}
	return cli.importerSvc.Import(context.Background(), wb, opts)
}

func (cli *commandLine) clearCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every praktikum, mata kuliah, asprak, jadwal, plotting and pelanggaran row. Pengguna are kept.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				fmt.Fprintln(cli.writer(), "refusing to clear the database without --yes")
				return errHelp
			}
			if err := cli.importerSvc.Clear(context.Background()); err != nil {
				return err
			}
			fmt.Fprintln(cli.writer(), "Database cleared")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm")
	return cmd
}
