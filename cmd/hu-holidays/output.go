package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"

	"github.com/username/hu-holidays/internal/holiday"
	"github.com/username/hu-holidays/internal/sources"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

func validateOutput(format string) error {
	switch format {
	case outputTable, outputJSON, outputYAML:
		return nil
	default:
		return errors.WithHint(errors.Newf("unknown output format %q", format), "Use table, json or yaml.")
	}
}

// encode writes v as JSON or YAML; it reports false for the table format
func encode(w io.Writer, format string, v any) (bool, error) {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, errors.Wrap(enc.Encode(v), "encode json")
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, errors.Wrap(err, "encode yaml")
		}
		return true, errors.Wrap(enc.Close(), "encode yaml")
	default:
		return false, nil
	}
}

func renderTable(w io.Writer, data pterm.TableData) error {
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Wrap(err, "render table")
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func printResult(w io.Writer, format string, result holiday.YearResult) error {
	if done, err := encode(w, format, result); done {
		return err
	}

	fmt.Fprintf(w, "%s %d  (source: %s, fetched %s)\n\n",
		pterm.LightCyan("Hungarian holidays"), result.Year,
		result.Source.Name, result.Source.ScrapedAt.Format("2006-01-02 15:04 MST"))

	data := pterm.TableData{{"Date", "Day", "Name", "English", "National"}}
	for _, h := range result.Holidays {
		data = append(data, []string{
			h.Date.String(), h.Date.Weekday().String(), h.Name, h.NameEN, yesNo(h.IsNational),
		})
	}
	if err := renderTable(w, data); err != nil {
		return err
	}

	if len(result.WeekendWorkdays) > 0 {
		fmt.Fprintln(w)
		if err := printWorkdays(w, format, result.WeekendWorkdays); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "\n%d holidays, %d weekend workdays\n", result.TotalHolidays, result.TotalWeekendWorkdays)
	return nil
}

func printWorkdays(w io.Writer, format string, workdays []holiday.WeekendWorkday) error {
	if done, err := encode(w, format, workdays); done {
		return err
	}
	if len(workdays) == 0 {
		_, err := fmt.Fprintln(w, "No weekend workdays")
		return err
	}

	data := pterm.TableData{{"Date", "Day", "Reason", "Related holiday"}}
	for _, wd := range workdays {
		related := "-"
		if wd.RelatedHoliday != nil {
			related = wd.RelatedHoliday.String()
		}
		data = append(data, []string{wd.Date.String(), string(wd.OriginalDay), wd.Reason, related})
	}
	return renderTable(w, data)
}

func printStatus(w io.Writer, format string, status holiday.DayStatus) error {
	if done, err := encode(w, format, status); done {
		return err
	}

	name := "-"
	if status.HolidayName != nil {
		name = *status.HolidayName
	}
	data := pterm.TableData{
		{"Field", "Value"},
		{"Date", status.Date.String()},
		{"Day of week", status.DayOfWeek},
		{"Holiday", yesNo(status.IsHoliday)},
		{"Holiday name", name},
		{"Weekend", yesNo(status.IsWeekend)},
		{"Weekend workday", yesNo(status.IsWeekendWorkday)},
		{"Working day", yesNo(status.IsWorkingDay)},
	}
	return renderTable(w, data)
}

func printChoices(w io.Writer, format string, year int, choices []sources.Choice) error {
	if done, err := encode(w, format, choices); done {
		return err
	}

	fmt.Fprintf(w, "%s %d\n\n", pterm.LightCyan("Source selection for"), year)
	data := pterm.TableData{{"Rank", "Source", "Tier", "Coverage", "Selected", "Reason"}}
	for _, c := range choices {
		data = append(data, []string{
			strconv.Itoa(c.Rank), c.Source, c.Tier, c.Coverage.String(), yesNo(c.Selected), c.Reason,
		})
	}
	return renderTable(w, data)
}
