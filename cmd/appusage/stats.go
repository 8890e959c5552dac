package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"git.home.luguber.info/inful/appusage/internal/report"
)

func runStats(ctx context.Context, r *report.Reporter, windowArg string) error {
	window, err := report.ParseWindow(windowArg)
	if err != nil {
		return err
	}

	apps, err := r.TopApps(ctx, window)
	if err != nil {
		return fmt.Errorf("query usage: %w", err)
	}
	total, err := r.Total(ctx, window)
	if err != nil {
		return fmt.Errorf("query total: %w", err)
	}

	color.New(color.FgHiCyan, color.Bold).Printf("App Usage: %s\n\n", window.Label())

	if len(apps) == 0 {
		fmt.Println("No usage recorded.")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"App", "Time", "Share"})
	table.SetBorder(false)
	table.SetColumnSeparator("")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, app := range apps {
		share := "0%"
		if total > 0 {
			share = fmt.Sprintf("%.0f%%", 100*float64(app.Total)/float64(total))
		}
		table.Append([]string{app.App, report.FormatDuration(app.Total), share})
	}
	table.Render()

	fmt.Println()
	color.New(color.Bold).Print("Total: ")
	fmt.Println(report.FormatDuration(total))
	return nil
}
