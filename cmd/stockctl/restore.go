package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	domainsvcs "github.com/ghuser/stockledger/services/inventory/domain/services"
)

type restoreCmd struct {
	open opener
	out  io.Writer
	file string
}

func (*restoreCmd) Name() string     { return "restore" }
func (*restoreCmd) Synopsis() string { return "replace the whole ledger with a backup payload" }
func (*restoreCmd) Usage() string {
	return `stockctl restore -f <file>

  Validates the payload and swaps it in as the entire ledger. Items not in
  the payload are gone afterwards. A running API on the same Redis store
  picks the restored ledger up within LEDGER_REFRESH_INTERVAL, and any write
  it makes in between is replayed on top of the restored ledger.
`
}

func (c *restoreCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "Backup payload to restore (required).")
}

func (c *restoreCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.file == "" {
		return fail(errors.New("restore: -f is required"))
	}
	data, err := os.ReadFile(c.file)
	if err != nil {
		return fail(err)
	}
	payload, err := domainsvcs.DecodeBackup(data)
	if err != nil {
		return fail(err)
	}

	svcs, cleanup, err := c.open(ctx)
	if err != nil {
		return fail(err)
	}
	defer cleanup()

	n, err := svcs.Ledger.Restore(ctx, payload)
	if err != nil {
		return fail(err)
	}
	fmt.Fprintf(c.out, "restored %d items from backup of %s\n", n, payload.BackupDate.Format("2006-01-02 15:04:05 MST"))
	return subcommands.ExitSuccess
}
