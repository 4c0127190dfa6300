package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"onlyremote-engine/internal/domain"
	"onlyremote-engine/internal/logger"
)

const (
	titleColumnWidth   = 48
	companyColumnWidth = 24
	locationWidth      = 24
)

type searchFlags struct {
	query    domain.Query
	asJSON   bool
	logLevel string
}

func searchCommand() *cobra.Command {
	var f searchFlags
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run one aggregated search and print the results",
		Long: `Runs the same pipeline as GET /api/jobs against the live sources.

Examples:
  # Go jobs from the default sources
  engine search -q golang

  # Internships from two specific sources, as JSON
  engine search -q "software engineer OR developer" --job-type internship --sources active-intern,remote-intern --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, f, os.Stdout)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.query.Q, "query", "q", "", "search text; OR separates alternatives")
	fl.StringVar(&f.query.Category, "category", "", "category filter")
	fl.StringVar(&f.query.Location, "location", "", "location substring filter")
	fl.StringVar(&f.query.JobType, "job-type", "", "job type filter (internship, global-sponsorship, h1b, ...)")
	fl.BoolVar(&f.query.H1B, "h1b", false, "only H1B sponsoring postings")
	fl.StringSliceVar(&f.query.Sources, "sources", nil, "comma-separated source names (default set when empty)")
	fl.IntVarP(&f.query.Limit, "limit", "n", 20, "maximum jobs to print")
	fl.IntVar(&f.query.Page, "page", 0, "page number, with --limit as page size")
	fl.StringVar(&f.query.Sort, "sort", domain.SortNewest, "newest or oldest")
	fl.BoolVar(&f.asJSON, "json", false, "print the raw result as JSON")
	fl.StringVar(&f.logLevel, "log-level", "warn", "log level for the search run")
	return cmd
}

func runSearch(cmd *cobra.Command, f searchFlags, out io.Writer) error {
	cfg, _, _, err := loadConfig(dataDir, defaultCfgPath, os.Getenv)
	if err != nil {
		return err
	}
	cfg.App.LogLevel = f.logLevel
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	eng, err := newEngine(cfg, resolver(), nil, log)
	if err != nil {
		return err
	}
	defer eng.Close()

	res, err := eng.FetchAggregated(cmd.Context(), f.query)
	if err != nil {
		log.Error("search failed", logger.Error(err))
		return err
	}

	if f.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	renderJobs(out, res, f.query.Q)
	return nil
}

func renderJobs(out io.Writer, res domain.Result, query string) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: titleColumnWidth},
		{Number: 3, WidthMax: companyColumnWidth},
		{Number: 4, WidthMax: locationWidth},
	})
	t.AppendHeader(table.Row{"#", "Title", "Company", "Location", "Source", "Published"})

	for i, j := range res.Jobs {
		published := j.PublishedAt
		if len(published) > 10 {
			published = published[:10]
		}
		t.AppendRow(table.Row{i + 1, strings.TrimSpace(j.Title), j.Company, j.Location, j.Source, published})
	}

	t.AppendFooter(table.Row{"Total", res.Total, fmt.Sprintf("Query: %s", query), "", "", fmt.Sprintf("Shown: %d", len(res.Jobs))})
	t.Render()
}
