// ABOUTME: Data migration between caff storage backends.
// ABOUTME: Copies profiles, drinks and daily signals from source to destination.

package storage

import (
	"context"
	"fmt"
	"os"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Profiles int
	Drinks   int
	Sleep    int
	Stress   int
	Meals    int
	Exercise int
}

// MigrateData copies all data from src to dst storage. The destination
// should be empty before calling this function.
func MigrateData(ctx context.Context, src, dst Repository) (*MigrateSummary, error) {
	data, err := src.GetAllData(ctx)
	if err != nil {
		return nil, fmt.Errorf("read source data: %w", err)
	}

	if err := dst.ImportData(ctx, data); err != nil {
		return nil, fmt.Errorf("write destination data: %w", err)
	}

	return &MigrateSummary{
		Profiles: len(data.Profiles),
		Drinks:   len(data.Drinks),
		Sleep:    len(data.Sleep),
		Stress:   len(data.Stress),
		Meals:    len(data.Meals),
		Exercise: len(data.Exercise),
	}, nil
}

// IsDirNonEmpty checks whether a directory exists and contains any files or subdirectories.
// Returns false if the directory does not exist or is empty.
func IsDirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read directory %q: %w", path, err)
	}
	return len(entries) > 0, nil
}
