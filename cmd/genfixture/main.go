// Command genfixture generates a synthetic biweekly NDVI CSV and a matching
// seasonal model artifact for local development and testing. The CSV follows a
// sinusoidal seasonal cycle with a mild downward trend plus deterministic
// noise, and the artifact carries the same level, trend, and seasonal shape so
// forecasts line up with the tail of the series.
//
// Usage:
//
//	go run ./cmd/genfixture \
//	  -csv-out data/ndvi_biweekly.csv \
//	  -model-out data/ndvi_seasonal_model.json \
//	  -years 9
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rangewatch/drought-predictor/internal/domain"
	"github.com/rangewatch/drought-predictor/internal/forecast"
)

const (
	periodsPerYear = 26
	level          = 0.31
	trendPerStep   = -0.0004
	seasonalAmp    = 0.05
	sigma          = 0.032
	intervalZ      = 1.28
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvOut := flag.String("csv-out", "", "output path for NDVI CSV")
	modelOut := flag.String("model-out", "", "output path for model artifact JSON")
	years := flag.Int("years", 9, "years of history to generate")
	flag.Parse()

	if *csvOut == "" || *modelOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -csv-out, -model-out")
	}
	if *years < 1 {
		return fmt.Errorf("-years must be at least 1")
	}

	end := time.Date(2026, time.January, 29, 0, 0, 0, 0, time.UTC)
	steps := *years * periodsPerYear
	start := end.AddDate(0, 0, -(steps-1)*domain.StepDays)

	samples := generateSeries(start, steps)
	if err := writeCSV(*csvOut, samples); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	log.Printf("wrote %d samples to %s (%s through %s)",
		len(samples), *csvOut,
		samples[0].Date.Format(time.DateOnly), samples[len(samples)-1].Date.Format(time.DateOnly))

	artifact := forecast.Artifact{
		Version:        1,
		TrainedThrough: end,
		Level:          level + trendPerStep*float64(steps),
		TrendPerStep:   trendPerStep,
		Seasonal:       seasonalCoefficients(),
		Sigma:          sigma,
		IntervalZ:      intervalZ,
	}
	if err := writeJSON(*modelOut, artifact); err != nil {
		return fmt.Errorf("writing model artifact: %w", err)
	}
	log.Printf("wrote model artifact to %s", *modelOut)

	return nil
}

func generateSeries(start time.Time, steps int) []domain.NDVISample {
	samples := make([]domain.NDVISample, steps)
	for i := range samples {
		date := start.AddDate(0, 0, i*domain.StepDays)
		v := level +
			trendPerStep*float64(i) +
			seasonal(date) +
			noise(i)
		samples[i] = domain.NDVISample{Date: date, Value: round4(v)}
	}
	return samples
}

func seasonalCoefficients() []float64 {
	coeffs := make([]float64, periodsPerYear)
	for i := range coeffs {
		coeffs[i] = seasonalAmp * math.Sin(2*math.Pi*float64(i)/periodsPerYear)
	}
	return coeffs
}

func seasonal(date time.Time) float64 {
	period := ((date.YearDay() - 1) / domain.StepDays) % periodsPerYear
	return seasonalAmp * math.Sin(2*math.Pi*float64(period)/periodsPerYear)
}

// noise is a small deterministic wobble so regenerated fixtures stay stable.
func noise(i int) float64 {
	return 0.008 * math.Sin(float64(i)*2.399963)
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func writeCSV(path string, samples []domain.NDVISample) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"start_date", "mean_ndvi"}); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			s.Date.Format("02/01/2006"),
			strconv.FormatFloat(s.Value, 'f', 4, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}
