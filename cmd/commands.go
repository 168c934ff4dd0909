package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"insurecalc/config"
	"insurecalc/spreadsheet"
)

// Import replaces a dataset with the records of an .xlsx workbook.
// dataset is "cities" or "salaries".
func Import(ctx context.Context, dataset, path string) error {
	if err := spreadsheet.CheckFileName(path); err != nil {
		return err
	}

	return withApp(ctx, func(app *App) error {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()

		switch dataset {
		case "cities":
			standards, err := spreadsheet.ParseCityStandards(f)
			if err != nil {
				return err
			}
			count, err := app.Imports.ImportCityStandards(ctx, standards)
			if err != nil {
				return err
			}
			fmt.Printf("imported %d city standards\n", count)
		case "salaries":
			salaries, err := spreadsheet.ParseSalaries(f)
			if err != nil {
				return err
			}
			count, err := app.Imports.ImportSalaries(ctx, salaries)
			if err != nil {
				return err
			}
			fmt.Printf("imported %d salary records\n", count)
		default:
			return fmt.Errorf("unknown dataset %q (want cities or salaries)", dataset)
		}
		return nil
	})
}

// Compute runs one calculation and prints the new results as JSON
func Compute(ctx context.Context, cityName, year string) error {
	return withApp(ctx, func(app *App) error {
		results, err := app.Contributions.ComputeContributions(ctx, cityName, year)
		if err != nil {
			return err
		}
		fmt.Printf("computed contributions for %d employees\n", len(results))
		return printJSON(os.Stdout, results)
	})
}

// ListCities prints the selectable (city, year) pairs
func ListCities(ctx context.Context) error {
	return withApp(ctx, func(app *App) error {
		pairs, err := app.Contributions.ListAvailableCityYearPairs(ctx)
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, pairs)
	})
}

// ListResults prints the stored results
func ListResults(ctx context.Context) error {
	return withApp(ctx, func(app *App) error {
		results, err := app.Contributions.ListResults(ctx)
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, results)
	})
}

// Stats prints the dataset counts
func Stats(ctx context.Context) error {
	return withApp(ctx, func(app *App) error {
		stats, err := app.Contributions.Statistics(ctx)
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, stats)
	})
}

func withApp(ctx context.Context, fn func(app *App) error) error {
	cfg := config.Get()
	SetupLogging(cfg)

	app, err := NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := fn(app); err != nil {
		log.WithError(err).Debug("Command failed")
		return err
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
