package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/noah-isme/sikampus-api/internal/models"
	"github.com/noah-isme/sikampus-api/internal/service"
)

var (
	headingColor = color.New(color.FgYellow, color.Bold)
	warnColor    = color.New(color.FgRed)
)

func newTable(w io.Writer, headers []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

func renderModules(w io.Writer, modules []models.ModuleAvailability) {
	headingColor.Fprintln(w, "\nModule Catalogue")
	if len(modules) == 0 {
		fmt.Fprintln(w, "No modules found.")
		return
	}
	table := newTable(w, []string{"Code", "Title", "Credits", "Status", "Occupied", "Max Slots", "Available", "Fee"})
	for _, m := range modules {
		table.Append([]string{
			m.Module.Code,
			m.Module.Title,
			strconv.Itoa(m.Module.Credits),
			string(m.Module.Status),
			strconv.Itoa(m.Occupied),
			strconv.Itoa(m.Module.MaxSlots),
			strconv.Itoa(m.Available),
			strconv.FormatInt(m.Fee, 10),
		})
	}
	table.Render()
}

func renderRegistrations(w io.Writer, items []models.RegistrationDetail, pagination *models.Pagination) {
	headingColor.Fprintln(w, "\nRegistrations")
	if len(items) == 0 {
		fmt.Fprintln(w, "No registrations found.")
		return
	}
	table := newTable(w, service.RegistrationExportHeaders())
	for _, item := range items {
		table.Append(service.RegistrationRow(item))
	}
	table.Render()
	if pagination != nil {
		fmt.Fprintf(w, "page %d, %d of %d shown\n", pagination.Page, len(items), pagination.TotalCount)
	}
}

func renderSummary(w io.Writer, summary *models.MetricsSummary) {
	headingColor.Fprintf(w, "\nSummary since %s\n", summary.PeriodStart.Format(time.DateOnly))
	table := newTable(w, []string{"Metric", "Value"})
	table.AppendBulk([][]string{
		{"Active registrations", strconv.Itoa(summary.ActiveRegistrationCount)},
		{"Open capacity", strconv.Itoa(summary.TotalOpenCapacity)},
		{"Occupied (open)", strconv.Itoa(summary.OccupiedOpenCapacity)},
		{"Available (open)", strconv.Itoa(summary.AvailableOpenCapacity)},
		{"Period fee projection", strconv.FormatInt(summary.PeriodFeeProjection, 10)},
	})
	table.Render()
	if summary.CapacityAnomaly {
		warnColor.Fprintln(w, "Warning: open modules hold more registrations than slots.")
	}
}
