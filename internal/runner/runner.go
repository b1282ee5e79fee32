package runner

import (
	"context"
	"fmt"
	"log/slog"
	"meetlog/internal/calendar"
	"meetlog/internal/config"
	"meetlog/internal/extract"
	"meetlog/internal/filename"
	"meetlog/internal/models"
	"meetlog/internal/report"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const icsSuffix = ".ics"

// FileResult summarizes the processing of one calendar file.
type FileResult struct {
	Name     string
	Kind     filename.Kind
	Category string
	Count    int
	Err      error

	records []models.MeetingRecord
}

// Result is the outcome of a full run.
type Result struct {
	Records []models.MeetingRecord
	Files   []FileResult
}

// Runner orchestrates the extraction of every calendar file in a directory.
type Runner struct {
	logger    *slog.Logger
	cfg       *config.Config
	loader    *calendar.Loader
	extractor *extract.Extractor
	dryRun    bool
}

// NewRunner creates a new Runner. cfg must be validated.
func NewRunner(logger *slog.Logger, cfg *config.Config, dryRun bool) *Runner {
	return &Runner{
		logger:    logger,
		cfg:       cfg,
		loader:    calendar.NewLoader(logger),
		extractor: extract.NewExtractor(logger),
		dryRun:    dryRun,
	}
}

// Run processes every calendar file and writes the report.
// A file that cannot be read or decoded contributes no records; only listing
// the directory and writing the report can fail the run.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	r.logger.Info("Starting extraction.", "dir", r.cfg.InputDir)

	files, err := listCalendars(r.cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar files: %w", err)
	}

	res := &Result{}
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fr := r.processFile(name)
		if fr.Err != nil {
			r.logger.Error("Failed to process calendar file", "file", name, "error", fr.Err)
			// Continue with the next file even if one fails.
		}
		res.Files = append(res.Files, fr)
		res.Records = append(res.Records, fr.records...)
	}

	if r.dryRun {
		for _, rec := range res.Records {
			r.logger.Info("[DRY RUN] Would write row", "name", rec.OtherPersonName, "email", rec.OtherPersonEmail, "date", rec.MeetingDate, "summary", rec.Summary)
		}
		r.logger.Info("Extraction finished.", "records", len(res.Records))
		return res, nil
	}

	if err := report.WriteFile(r.cfg.OutputFile, res.Records); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}

	r.logger.Info("Extraction finished.", "records", len(res.Records), "output", r.cfg.OutputFile)
	return res, nil
}

func (r *Runner) processFile(name string) FileResult {
	info := filename.Classify(name)
	fr := FileResult{Name: name, Kind: info.Kind, Category: info.Category}

	path := filepath.Join(r.cfg.InputDir, name)
	events, err := r.loader.LoadFile(path)
	if err != nil {
		fr.Err = err
		return fr
	}

	switch info.Kind {
	case filename.KindGroup:
		r.logger.Info("Processing group calendar", "file", name, "category", info.Category)
		fr.records = r.extractor.Group(events, r.cfg.GroupRules(info.Email))
	default:
		r.logger.Info("Processing personal calendar", "file", name, "contact", info.Name, "category", info.Category)
		fr.records = r.extractor.Personal(events, r.cfg.PersonalRules(info.Email))
	}

	fr.Count = len(fr.records)
	r.logger.Info("Found meetings", "file", name, "count", fr.Count, "events", len(events))
	return fr
}

// listCalendars returns the names of the .ics files in dir, sorted.
func listCalendars(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), icsSuffix) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
