// ABOUTME: MCP resource implementations for caff.
// ABOUTME: Provides caff://status and caff://today resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/caff/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	statusURI = "caff://status"
	todayURI  = "caff://today"
)

func (s *Server) registerResources() {
	// caff://status - current crash risk and CaffScore
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         statusURI,
		Name:        "Caffeine Status",
		Description: "Current crash risk and CaffScore with interpretations",
		MIMEType:    "application/json",
	}, s.handleStatusResource)

	// caff://today - everything logged today
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         todayURI,
		Name:        "Today's Caffeine Log",
		Description: "Drinks, sleep, stress and meals logged today",
		MIMEType:    "application/json",
	}, s.handleTodayResource)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// Resource handlers

func (s *Server) handleStatusResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	eval, err := s.eval.Evaluate(ctx, s.userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate: %w", err)
	}
	return jsonResource(statusURI, eval)
}

func (s *Server) handleTodayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	now := s.now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	drinks, err := s.repo.GetDrinkEvents(ctx, s.userID, models.Window{Start: todayStart, End: now})
	if err != nil {
		return nil, fmt.Errorf("failed to list drinks: %w", err)
	}

	var totalMg float64
	for _, d := range drinks {
		totalMg += d.ActualCaffeineConsumed()
	}

	sleep, err := s.repo.GetSleepSample(ctx, s.userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get sleep: %w", err)
	}
	stress, err := s.repo.GetStressSample(ctx, s.userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get stress: %w", err)
	}
	var meals []time.Time
	if hours := now.Sub(todayStart).Hours(); hours > 0 {
		meals, err = s.repo.GetRecentMealTimes(ctx, s.userID, now, hours)
		if err != nil {
			return nil, fmt.Errorf("failed to list meals: %w", err)
		}
	}

	result := map[string]interface{}{
		"date":              models.DateKey(todayStart),
		"drinks":            drinks,
		"total_caffeine_mg": totalMg,
		"sleep":             sleep,
		"stress":            stress,
		"meals":             meals,
		"counts": map[string]int{
			"drinks": len(drinks),
			"meals":  len(meals),
		},
	}

	return jsonResource(todayURI, result)
}
