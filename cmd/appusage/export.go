package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"git.home.luguber.info/inful/appusage/internal/export"
	"git.home.luguber.info/inful/appusage/internal/report"
	"git.home.luguber.info/inful/appusage/internal/store"
)

func runExport(ctx context.Context, st store.Store, formatArg, windowArg, out string) error {
	format, err := export.ParseFormat(formatArg)
	if err != nil {
		return err
	}
	window, err := report.ParseWindow(windowArg)
	if err != nil {
		return err
	}

	records, err := st.Records(ctx, window.Range(time.Now()))
	if err != nil {
		return fmt.Errorf("query records: %w", err)
	}

	var w io.Writer = os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		defer f.Close()
		w = f
	}

	if err := export.Write(w, format, records); err != nil {
		return err
	}
	if out != "" {
		fmt.Fprintf(os.Stderr, "Exported %d records to %s\n", len(records), out)
	}
	return nil
}
