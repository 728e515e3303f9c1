package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/yungbote/sheetshare-backend/internal/data/db"
	"github.com/yungbote/sheetshare-backend/internal/data/repos"
	"github.com/yungbote/sheetshare-backend/internal/pkg/dbctx"
	"github.com/yungbote/sheetshare-backend/internal/platform/envutil"
	"github.com/yungbote/sheetshare-backend/internal/platform/logger"
)

const (
	exitOK         = 0
	exitFailure    = 1
	exitCollisions = 2
)

// rowkey-audit lists row keys that more than one owner has written on the same
// sheet. Such rows are kept apart by owner, but the client generated the same
// key twice, which is worth investigating.
func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("rowkey-audit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	sheetID := fs.Int64("sheet", 0, "sheet id to audit (0 = every sheet)")
	asJSON := fs.Bool("json", false, "print results as JSON")
	if err := fs.Parse(args); err != nil {
		return exitFailure
	}

	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		fmt.Fprintf(stderr, "init logger: %v\n", err)
		return exitFailure
	}
	defer log.Sync()

	pg, err := db.NewPostgresService(log)
	if err != nil {
		fmt.Fprintf(stderr, "init postgres: %v\n", err)
		return exitFailure
	}
	defer func() { _ = pg.Close() }()

	cells := repos.NewCellRepo(pg.DB(), log)
	found, err := cells.ListRowKeyCollisions(dbctx.Context{Ctx: context.Background()}, *sheetID)
	if err != nil {
		fmt.Fprintf(stderr, "audit row keys: %v\n", err)
		return exitFailure
	}
	return report(stdout, found, *asJSON)
}

// report prints the collisions and picks the exit code.
func report(w io.Writer, found []repos.RowKeyCollision, asJSON bool) int {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if found == nil {
			found = []repos.RowKeyCollision{}
		}
		if err := enc.Encode(found); err != nil {
			return exitFailure
		}
	} else {
		for _, c := range found {
			fmt.Fprintf(w, "sheet=%d row_key=%s owners=%d\n", c.SheetID, c.RowKey, c.Owners)
		}
		fmt.Fprintf(w, "%d shared row key(s)\n", len(found))
	}
	if len(found) > 0 {
		return exitCollisions
	}
	return exitOK
}
