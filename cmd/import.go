/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gitmo/internal/iodb"
	"github.com/gnames/gitmo/internal/ioimport"
	"github.com/gnames/gitmo/pkg/config"
	"github.com/gnames/gitmo/pkg/db"
	"github.com/gnames/gitmo/pkg/errcode"
	"github.com/gnames/gitmo/pkg/lifecycle"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/spf13/cobra"
)

// getImportCmd returns the import command.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getImportCmd() *cobra.Command {
	var countriesPath string

	importCmd := &cobra.Command{
		Use:   "import [detainees.csv]",
		Short: "Import countries and detainees from CSV files",
		Long: `Replace table contents with records from headerless CSV files.

This command:
  1. Connects to the database using configuration settings
  2. Parses the whole file, a wrong number of fields stops the import
     before anything is changed
  3. Deletes all rows of the table
  4. Decodes and inserts records one by one in file order

Detainee files have 7 fields: name, isn, nationality, iso,
arrival_date, transfer_reason, capture_details.
Country files have 2 fields: name, iso.

A header row is not skipped, it is imported as a record.
Blank lines are skipped and do not count as records.

By default the import is atomic: if a record fails (for example a
repeated isn) the table keeps its previous content. With --atomic=false
records inserted before the failure stay in the table.

Examples:
  gitmo import detainees.csv
  gitmo import -c countries.csv detainees.csv
  gitmo import -c countries.csv
  gitmo import -e windows-1252 --on-decode-error replace detainees.csv
  gitmo import --atomic=false -p detainees.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var detaineesPath string
			if len(args) > 0 {
				detaineesPath = args[0]
			}
			err := runImport(cmd, countriesPath, detaineesPath)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	importCmd.Flags().StringVarP(
		&countriesPath, "countries", "c", "",
		"CSV file with countries (name, iso)",
	)
	importCmd.Flags().BoolP(
		"atomic", "a", true,
		"keep previous table content if import fails",
	)
	importCmd.Flags().StringP(
		"encoding", "e", "",
		"character set of CSV files (utf-8, windows-1252, ...)",
	)
	importCmd.Flags().String(
		"on-decode-error", "",
		"ignore or replace bytes that cannot be decoded",
	)
	importCmd.Flags().BoolP(
		"progress", "p", false,
		"show progress bar",
	)

	return importCmd
}

func runImport(
	cmd *cobra.Command,
	countriesPath string,
	detaineesPath string,
) error {
	if countriesPath == "" && detaineesPath == "" {
		return NoImportFilesError()
	}

	if importOpts := importFlags(cmd); len(importOpts) > 0 {
		cfg.Update(importOpts)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(), syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	op := iodb.NewOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		return err
	}
	defer op.Close()

	gn.Info("Connected to database: <em>%s</em>", iodb.Target(&cfg.Database))

	return importFiles(ctx, cfg, op, countriesPath, detaineesPath)
}

// importFiles loads countries first, then detainees. Empty paths
// are skipped.
func importFiles(
	ctx context.Context,
	cfg *config.Config,
	op db.Operator,
	countriesPath string,
	detaineesPath string,
) error {
	hasTables, err := op.HasTables(ctx)
	if err != nil {
		return err
	}
	if !hasTables {
		return iodb.EmptyDatabaseError(iodb.Target(&cfg.Database))
	}

	imp, err := ioimport.New(cfg, op)
	if err != nil {
		return err
	}

	if countriesPath != "" {
		gn.Info("Importing countries from <em>%s</em>...", countriesPath)
		res, err := imp.ImportCountries(ctx, countriesPath)
		if err != nil {
			return err
		}
		reportImport(res)
	}

	if detaineesPath != "" {
		gn.Info("Importing detainees from <em>%s</em>...", detaineesPath)
		res, err := imp.ImportDetainees(ctx, detaineesPath)
		if err != nil {
			return err
		}
		reportImport(res)
	}

	return nil
}

func reportImport(res *lifecycle.ImportResult) {
	gn.Info("Imported <em>%s</em> rows into <em>%s</em> in %s",
		humanize.Comma(int64(res.Rows)),
		res.Table,
		gnfmt.TimeString(res.Duration.Seconds()),
	)
}

// NoImportFilesError creates an error for an import without sources.
func NoImportFilesError() error {
	return &gn.Error{
		Code: errcode.ImportOpenFileError,
		Msg: `<err>Nothing to import.</err>
   Give a detainees CSV file and/or <em>--countries</em> CSV file.`,
		Err: errors.New("no import files given"),
	}
}
