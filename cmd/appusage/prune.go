package main

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/appusage/internal/store"
)

func runPrune(ctx context.Context, st store.Store, keepDays int) error {
	if keepDays <= 0 {
		return fmt.Errorf("keep-days must be positive")
	}

	cutoff := time.Now().AddDate(0, 0, -keepDays)
	deleted, err := st.Prune(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("prune records: %w", err)
	}

	fmt.Printf("Deleted %d records older than %s\n", deleted, cutoff.Format("2006-01-02"))
	return nil
}
