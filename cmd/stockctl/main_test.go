package main

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/subcommands"

	"github.com/ghuser/stockledger/pkg/app"
	"github.com/ghuser/stockledger/pkg/auth"
	"github.com/ghuser/stockledger/pkg/config"
	"github.com/ghuser/stockledger/pkg/logger"
	inventorySvcs "github.com/ghuser/stockledger/services/inventory/application/services"
	"github.com/ghuser/stockledger/services/inventory/domain/models"
	"github.com/ghuser/stockledger/services/inventory/infrastructure/persistence/memory"
)

// memoryOpener opens services over one shared in-memory store, so state
// survives between commands like it does with Redis.
func memoryOpener(t *testing.T, seed func(*inventorySvcs.Services)) opener {
	t.Helper()
	store := memory.NewInventoryRepository()
	a := &app.Application{
		Config:        &config.Config{},
		Logger:        logger.NewDiscard(),
		Authenticator: auth.NewAuthenticator(auth.StaticSecret("a"), auth.StaticSecret("r")),
	}
	first := true
	return func(ctx context.Context) (*inventorySvcs.Services, func(), error) {
		svcs, err := inventorySvcs.NewWithStore(ctx, a, store)
		if err != nil {
			return nil, nil, err
		}
		if first && seed != nil {
			seed(svcs)
		}
		first = false
		return svcs, func() {}, nil
	}
}

func seedWidget(t *testing.T) func(*inventorySvcs.Services) {
	return func(svcs *inventorySvcs.Services) {
		ctx := context.Background()
		if _, err := svcs.Ledger.CreateItem(ctx, inventorySvcs.NewItemInput{Type: models.ItemTypePart, Code: "X1", Name: "widget"}, 3); err != nil {
			t.Fatal(err)
		}
		if _, err := svcs.Ledger.CreateItem(ctx, inventorySvcs.NewItemInput{Type: models.ItemTypeProduct, Code: "G1", Name: "gearbox"}, 1); err != nil {
			t.Fatal(err)
		}
	}
}

func run(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	return cmd.Execute(context.Background(), f)
}

func TestStockCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := &stockCmd{open: memoryOpener(t, seedWidget(t)), out: &out}

	if got := run(t, cmd, "-c", "part"); got != subcommands.ExitSuccess {
		t.Fatalf("exit status %v", got)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %q", out.String())
	}
	if fields := strings.Fields(lines[1]); len(fields) != 3 || fields[0] != "X1" || fields[2] != "3" {
		t.Errorf("unexpected row %q", lines[1])
	}

	if got := run(t, cmd, "-c", "tool"); got != subcommands.ExitFailure {
		t.Errorf("unknown category should fail, got %v", got)
	}
}

func TestExportCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := &exportCmd{open: memoryOpener(t, seedWidget(t)), out: &out}

	if got := run(t, cmd, "-c", "part", "-o", "-"); got != subcommands.ExitSuccess {
		t.Fatalf("exit status %v", got)
	}
	if !strings.Contains(out.String(), `"X1","WIDGET","-","3"`) {
		t.Errorf("unexpected csv %q", out.String())
	}

	dest := filepath.Join(t.TempDir(), "products.xlsx")
	out.Reset()
	if got := run(t, cmd, "-c", "product", "-f", "xlsx", "-o", dest); got != subcommands.ExitSuccess {
		t.Fatalf("exit status %v", got)
	}
	if info, err := os.Stat(dest); err != nil || info.Size() == 0 {
		t.Errorf("expected a workbook at %s: %v", dest, err)
	}

	if got := run(t, cmd, "-f", "pdf"); got != subcommands.ExitFailure {
		t.Errorf("unknown format should fail, got %v", got)
	}
}

func TestExportCmd_Query(t *testing.T) {
	var out bytes.Buffer
	open := memoryOpener(t, func(svcs *inventorySvcs.Services) {
		seedWidget(t)(svcs)
		if _, err := svcs.Ledger.CreateItem(context.Background(), inventorySvcs.NewItemInput{Type: models.ItemTypePart, Code: "S1", Name: "sprocket"}, 1); err != nil {
			t.Fatal(err)
		}
	})
	cmd := &exportCmd{open: open, out: &out}

	if got := run(t, cmd, "-c", "part", "-q", "sprock", "-o", "-"); got != subcommands.ExitSuccess {
		t.Fatalf("exit status %v", got)
	}
	if !strings.Contains(out.String(), `"S1","SPROCKET"`) {
		t.Errorf("matching row missing from %q", out.String())
	}
	if strings.Contains(out.String(), "WIDGET") {
		t.Errorf("export ignored -q: %q", out.String())
	}
}

func TestBackupThenRestore(t *testing.T) {
	var out bytes.Buffer
	open := memoryOpener(t, seedWidget(t))
	file := filepath.Join(t.TempDir(), "backup.json")

	if got := run(t, &backupCmd{open: open, out: &out}, "-local", file); got != subcommands.ExitSuccess {
		t.Fatalf("backup exit status %v", got)
	}
	if !strings.Contains(out.String(), "wrote 2 items") {
		t.Errorf("unexpected backup output %q", out.String())
	}

	fresh := memoryOpener(t, nil)
	out.Reset()
	if got := run(t, &restoreCmd{open: fresh, out: &out}, "-f", file); got != subcommands.ExitSuccess {
		t.Fatalf("restore exit status %v", got)
	}
	if !strings.Contains(out.String(), "restored 2 items") {
		t.Errorf("unexpected restore output %q", out.String())
	}

	out.Reset()
	if got := run(t, &stockCmd{open: fresh, out: &out}, "-c", "product"); got != subcommands.ExitSuccess {
		t.Fatalf("stock exit status %v", got)
	}
	if !strings.Contains(out.String(), "GEARBOX") {
		t.Errorf("restored ledger should list the product, got %q", out.String())
	}
}

func TestRestoreCmd_Rejects(t *testing.T) {
	var out bytes.Buffer
	cmd := &restoreCmd{open: memoryOpener(t, nil), out: &out}

	if got := run(t, cmd); got != subcommands.ExitFailure {
		t.Errorf("missing -f should fail, got %v", got)
	}
	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte(`{"inventory":[{"id":""}]}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := run(t, cmd, "-f", bad); got != subcommands.ExitFailure {
		t.Errorf("invalid payload should fail, got %v", got)
	}
}

func TestBackupCmd_UploadNotConfigured(t *testing.T) {
	var out bytes.Buffer
	cmd := &backupCmd{open: memoryOpener(t, nil), out: &out}
	if got := run(t, cmd); got != subcommands.ExitFailure {
		t.Errorf("upload without a client id should fail, got %v", got)
	}
}
