// ABOUTME: Export and import functionality for caff data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats over any Repository.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/caff/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportVersion is the current export format version.
const ExportVersion = "1.0"

// ExportData represents the full export format for caff data.
type ExportData struct {
	Version    string                  `json:"version" yaml:"version"`
	ExportedAt time.Time               `json:"exported_at" yaml:"exported_at"`
	Tool       string                  `json:"tool" yaml:"tool"`
	Profiles   []*models.Profile       `json:"profiles" yaml:"profiles"`
	Drinks     []*models.DrinkEvent    `json:"drinks" yaml:"drinks"`
	Sleep      []*models.SleepSample   `json:"sleep,omitempty" yaml:"sleep,omitempty"`
	Stress     []*models.StressSample  `json:"stress,omitempty" yaml:"stress,omitempty"`
	Meals      []*models.MealEvent     `json:"meals,omitempty" yaml:"meals,omitempty"`
	Exercise   []*models.ExerciseEvent `json:"exercise,omitempty" yaml:"exercise,omitempty"`
}

func newExportData() *ExportData {
	return &ExportData{
		Version:    ExportVersion,
		ExportedAt: time.Now(),
		Tool:       "caff",
	}
}

// GetAllData retrieves all data for export.
func (d *DB) GetAllData(ctx context.Context) (*ExportData, error) {
	data := newExportData()

	profiles, err := d.listProfiles(ctx)
	if err != nil {
		return nil, err
	}
	data.Profiles = profiles

	drinks, err := d.listAllDrinks(ctx)
	if err != nil {
		return nil, err
	}
	data.Drinks = drinks

	if err := d.listSignals(ctx, data); err != nil {
		return nil, err
	}
	return data, nil
}

// ImportData imports data from an export file.
func (d *DB) ImportData(ctx context.Context, data *ExportData) error {
	return importInto(ctx, d, data)
}

// importInto writes every entity of data through the Repository write API.
func importInto(ctx context.Context, r Repository, data *ExportData) error {
	for _, p := range data.Profiles {
		if err := r.SaveProfile(ctx, p); err != nil {
			return fmt.Errorf("import profile: %w", err)
		}
	}
	for _, e := range data.Drinks {
		if err := r.CreateDrinkEvent(ctx, e); err != nil {
			return fmt.Errorf("import drink: %w", err)
		}
	}
	for _, s := range data.Sleep {
		if err := r.SaveSleepSample(ctx, s); err != nil {
			return fmt.Errorf("import sleep sample: %w", err)
		}
	}
	for _, s := range data.Stress {
		if err := r.SaveStressSample(ctx, s); err != nil {
			return fmt.Errorf("import stress sample: %w", err)
		}
	}
	for _, m := range data.Meals {
		if err := r.CreateMealEvent(ctx, m); err != nil {
			return fmt.Errorf("import meal: %w", err)
		}
	}
	for _, e := range data.Exercise {
		if err := r.CreateExerciseEvent(ctx, e); err != nil {
			return fmt.Errorf("import exercise: %w", err)
		}
	}
	return nil
}

// ExportJSON exports all data as JSON.
func ExportJSON(ctx context.Context, r Repository) ([]byte, error) {
	data, err := r.GetAllData(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportYAML exports all data as YAML.
func ExportYAML(ctx context.Context, r Repository) ([]byte, error) {
	data, err := r.GetAllData(ctx)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(data)
}

// ExportMarkdown renders one user's profile and drinks since an optional cutoff.
func ExportMarkdown(ctx context.Context, r Repository, userID string, since *time.Time) (string, error) {
	profile, err := r.GetProfile(ctx, userID)
	if err != nil {
		return "", err
	}

	w := models.Window{}
	if since != nil {
		w.Start = *since
	}
	drinks, err := r.GetDrinkEvents(ctx, userID, w)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	now := time.Now()

	sb.WriteString(fmt.Sprintf("# Caff Export - %s\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	if profile != nil {
		sb.WriteString("## Profile\n\n")
		sb.WriteString(fmt.Sprintf("- Weight: %.1f kg\n", profile.WeightKg))
		sb.WriteString(fmt.Sprintf("- Age: %d\n", profile.Age))
		sb.WriteString(fmt.Sprintf("- Sex: %s\n", profile.Sex))
		sb.WriteString(fmt.Sprintf("- Metabolism: %s\n\n", profile.Metabolism()))
	}

	sb.WriteString("## Drinks\n\n")
	sb.WriteString("| Date | Drink | Caffeine | Finished | Consumed |\n")
	sb.WriteString("|------|-------|----------|----------|----------|\n")
	for _, e := range drinks {
		sb.WriteString(fmt.Sprintf("| %s | %s | %.0f mg | %.0f%% | %.1f mg |\n",
			e.Timestamp.Format("2006-01-02 15:04"),
			e.Name, e.CaffeineMg, e.CompletionPercentage, e.ActualCaffeineConsumed()))
	}

	return sb.String(), nil
}

// ImportJSON imports data from JSON bytes.
func ImportJSON(ctx context.Context, r Repository, data []byte) error {
	var exportData ExportData
	if err := json.Unmarshal(data, &exportData); err != nil {
		return fmt.Errorf("unmarshal JSON: %w", err)
	}
	return r.ImportData(ctx, &exportData)
}

// ImportYAML imports data from YAML bytes.
func ImportYAML(ctx context.Context, r Repository, data []byte) error {
	var exportData ExportData
	if err := yaml.Unmarshal(data, &exportData); err != nil {
		return fmt.Errorf("unmarshal YAML: %w", err)
	}
	return r.ImportData(ctx, &exportData)
}
