// ABOUTME: Tests for export and import functionality.
// ABOUTME: Verifies JSON, YAML, and Markdown export formats.
package storage

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/caff/internal/models"
)

func seedExportData(t *testing.T, r Repository) {
	t.Helper()
	ctx := context.Background()

	p := models.NewProfile("alice", 70, 30, models.SexMale)
	if err := r.SaveProfile(ctx, p); err != nil {
		t.Fatalf("SaveProfile failed: %v", err)
	}
	e := models.NewDrinkEvent("alice", 95).WithName("espresso").WithTimestamp(testNow.Add(-time.Hour))
	if err := r.CreateDrinkEvent(ctx, e); err != nil {
		t.Fatalf("CreateDrinkEvent failed: %v", err)
	}
	if err := r.SaveSleepSample(ctx, &models.SleepSample{UserID: "alice", Date: testNow, HoursSlept: 6}); err != nil {
		t.Fatalf("SaveSleepSample failed: %v", err)
	}
	if err := r.SaveStressSample(ctx, &models.StressSample{UserID: "alice", Date: testNow, Level: 5}); err != nil {
		t.Fatalf("SaveStressSample failed: %v", err)
	}
	if err := r.CreateMealEvent(ctx, models.NewMealEvent("alice", testNow.Add(-2*time.Hour))); err != nil {
		t.Fatalf("CreateMealEvent failed: %v", err)
	}
	ex := models.NewExerciseEvent("alice", models.ExerciseCompleted, testNow.Add(-3*time.Hour))
	if err := r.CreateExerciseEvent(ctx, ex); err != nil {
		t.Fatalf("CreateExerciseEvent failed: %v", err)
	}
}

func TestExportJSON(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r Repository) {
		seedExportData(t, r)

		data, err := ExportJSON(context.Background(), r)
		if err != nil {
			t.Fatalf("ExportJSON failed: %v", err)
		}

		var export ExportData
		if err := json.Unmarshal(data, &export); err != nil {
			t.Fatalf("Failed to parse JSON: %v", err)
		}
		if export.Version != ExportVersion {
			t.Errorf("Expected version %s, got %s", ExportVersion, export.Version)
		}
		if export.Tool != "caff" {
			t.Errorf("Expected tool caff, got %s", export.Tool)
		}
		if len(export.Profiles) != 1 || len(export.Drinks) != 1 {
			t.Errorf("Expected 1 profile and 1 drink, got %d and %d", len(export.Profiles), len(export.Drinks))
		}
		if len(export.Sleep) != 1 || len(export.Stress) != 1 || len(export.Meals) != 1 || len(export.Exercise) != 1 {
			t.Errorf("signals missing from export: %+v", export)
		}
	})
}

func TestImportJSONIntoOtherBackend(t *testing.T) {
	src := setupTestDB(t)
	seedExportData(t, src)

	data, err := ExportJSON(context.Background(), src)
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	dst := setupTestKV(t)
	if err := ImportJSON(context.Background(), dst, data); err != nil {
		t.Fatalf("ImportJSON failed: %v", err)
	}

	drinks, err := dst.ListDrinkEvents(context.Background(), "alice", 0)
	if err != nil {
		t.Fatalf("ListDrinkEvents failed: %v", err)
	}
	if len(drinks) != 1 || drinks[0].Name != "espresso" {
		t.Errorf("unexpected imported drinks: %v", drinks)
	}
	sleep, _ := dst.GetSleepSample(context.Background(), "alice", testNow)
	if sleep == nil || sleep.HoursSlept != 6 {
		t.Errorf("sleep not imported: %+v", sleep)
	}
}

func TestImportJSONInvalid(t *testing.T) {
	if err := ImportJSON(context.Background(), setupTestKV(t), []byte("{not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestExportYAMLRoundTrip(t *testing.T) {
	src := setupTestKV(t)
	seedExportData(t, src)

	data, err := ExportYAML(context.Background(), src)
	if err != nil {
		t.Fatalf("ExportYAML failed: %v", err)
	}
	if !strings.Contains(string(data), "tool: caff") {
		t.Errorf("YAML missing tool field:\n%s", data)
	}

	dst := setupTestDB(t)
	if err := ImportYAML(context.Background(), dst, data); err != nil {
		t.Fatalf("ImportYAML failed: %v", err)
	}
	p, err := dst.GetProfile(context.Background(), "alice")
	if err != nil || p == nil {
		t.Fatalf("profile not imported: %v", err)
	}
	if p.WeightKg != 70 {
		t.Errorf("WeightKg = %v, want 70", p.WeightKg)
	}
}

func TestExportMarkdown(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r Repository) {
		seedExportData(t, r)

		md, err := ExportMarkdown(context.Background(), r, "alice", nil)
		if err != nil {
			t.Fatalf("ExportMarkdown failed: %v", err)
		}
		for _, want := range []string{"# Caff Export", "## Profile", "## Drinks", "espresso", "95 mg"} {
			if !strings.Contains(md, want) {
				t.Errorf("markdown missing %q:\n%s", want, md)
			}
		}

		since := testNow
		md, err = ExportMarkdown(context.Background(), r, "alice", &since)
		if err != nil {
			t.Fatalf("ExportMarkdown with since failed: %v", err)
		}
		if strings.Contains(md, "espresso") {
			t.Error("drink before cutoff should be excluded")
		}
	})
}
