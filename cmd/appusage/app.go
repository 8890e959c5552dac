package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"git.home.luguber.info/inful/appusage/internal/report"
)

func runApp(ctx context.Context, r *report.Reporter, name string) error {
	summary, err := r.AppSummary(ctx, name)
	if err != nil {
		return err
	}

	color.New(color.FgHiCyan, color.Bold).Printf("Usage for %s\n\n", summary.App)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetBorder(false)
	table.SetColumnSeparator("")
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.Append([]string{"Today", report.FormatDuration(summary.Today)})
	table.Append([]string{"Past Week", report.FormatDuration(summary.Week)})
	table.Append([]string{"All Time", report.FormatDuration(summary.AllTime)})
	table.Render()

	if summary.AllTime == 0 {
		fmt.Println("\nNo usage recorded for this application.")
	}
	return nil
}
