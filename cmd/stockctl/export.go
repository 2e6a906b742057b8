package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	inventorySvcs "github.com/ghuser/stockledger/services/inventory/application/services"
	"github.com/ghuser/stockledger/services/inventory/domain/models"
)

type exportCmd struct {
	open     opener
	out      io.Writer
	category string
	query    string
	format   string
	output   string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export one category as csv or xlsx" }
func (*exportCmd) Usage() string {
	return `stockctl export [-c part|product] [-q <text>] [-f csv|xlsx] [-o <file>|-]

  Writes the export under its dated default name (e.g. parts_2026-10-17.csv)
  unless -o is given. Use -o - for stdout.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.category, "c", "part", "Item category (part, product).")
	f.StringVar(&c.query, "q", "", "Only items whose name or code (or product serial) contains this text.")
	f.StringVar(&c.format, "f", "csv", "Output format (csv, xlsx).")
	f.StringVar(&c.output, "o", "", "Output file; '-' writes to stdout.")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	category, err := models.ParseItemType(c.category)
	if err != nil {
		return fail(err)
	}
	format, err := inventorySvcs.ParseExportFormat(c.format)
	if err != nil {
		return fail(err)
	}
	svcs, cleanup, err := c.open(ctx)
	if err != nil {
		return fail(err)
	}
	defer cleanup()

	file, err := svcs.Export.Export(ctx, category, c.query, format)
	if err != nil {
		return fail(err)
	}

	if c.output == "-" {
		if _, err := c.out.Write(file.Body); err != nil {
			return fail(err)
		}
		return subcommands.ExitSuccess
	}
	name := c.output
	if name == "" {
		name = file.Name
	}
	if err := os.WriteFile(name, file.Body, 0o644); err != nil {
		return fail(err)
	}
	fmt.Fprintln(c.out, name)
	return subcommands.ExitSuccess
}
