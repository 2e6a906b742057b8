package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/ghuser/stockledger/services/inventory/domain/models"
	domainsvcs "github.com/ghuser/stockledger/services/inventory/domain/services"
)

type stockCmd struct {
	open     opener
	out      io.Writer
	category string
	query    string
}

func (*stockCmd) Name() string     { return "stock" }
func (*stockCmd) Synopsis() string { return "list items of one category with their current stock" }
func (*stockCmd) Usage() string {
	return `stockctl stock [-c part|product] [-q <query>]

  Prints code, name and stock for every matching item, newest first.
  The query matches name or code, and serial numbers for products.
`
}

func (c *stockCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.category, "c", "part", "Item category (part, product).")
	f.StringVar(&c.query, "q", "", "Case-insensitive search text.")
}

func (c *stockCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	category, err := models.ParseItemType(c.category)
	if err != nil {
		return fail(err)
	}
	svcs, cleanup, err := c.open(ctx)
	if err != nil {
		return fail(err)
	}
	defer cleanup()

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME\tSTOCK")
	for it := range domainsvcs.Filter(svcs.Ledger.Items(ctx), category, c.query) {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", it.Code, it.Name, domainsvcs.StockOf(it))
	}
	if err := tw.Flush(); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}
