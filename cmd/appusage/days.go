package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"git.home.luguber.info/inful/appusage/internal/report"
	"git.home.luguber.info/inful/appusage/internal/store"
)

const barWidth = 30

func runDays(ctx context.Context, r *report.Reporter, n int) error {
	days, err := r.Days(ctx, n)
	if err != nil {
		return err
	}

	color.New(color.FgHiCyan, color.Bold).Printf("Daily usage, past %d days\n\n", len(days))

	max := maxTotal(days)
	green := color.New(color.FgGreen)
	for _, day := range days {
		bar := report.Bar(day.Total, max, barWidth)
		// Pad by rune count; the bar is multi-byte block characters.
		pad := strings.Repeat(" ", barWidth-len([]rune(bar)))
		fmt.Printf("%s  %s%s  %s\n",
			day.Day.Format("Mon 2006-01-02"),
			green.Sprint(bar), pad,
			report.FormatDuration(day.Total))
	}
	return nil
}

func maxTotal(days []store.DayTotal) time.Duration {
	var max time.Duration
	for _, day := range days {
		if day.Total > max {
			max = day.Total
		}
	}
	return max
}
