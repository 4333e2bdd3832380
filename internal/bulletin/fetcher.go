// Package bulletin retrieves daily quotes and company publications from the
// exchange website.
package bulletin

import (
	"context"
	"fmt"

	"BoursePulse/internal/model"
)

// Fetcher defines the interface for retrieving exchange data.
type Fetcher interface {
	FetchDailyQuotes(ctx context.Context) ([]model.Quote, error)
	FetchReports(ctx context.Context) ([]model.Report, error)
	FetchReportText(ctx context.Context, report model.Report) (string, error)
	Name() string
}

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Quotes  []model.Quote
	Reports []model.Report
	Texts   map[string]string
	Err     error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyQuotes(_ context.Context) ([]model.Quote, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Quotes, nil
}

func (m *MockFetcher) FetchReports(_ context.Context) ([]model.Report, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Reports, nil
}

func (m *MockFetcher) FetchReportText(_ context.Context, report model.Report) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if text, ok := m.Texts[report.URL]; ok {
		return text, nil
	}
	return "", fmt.Errorf("no text for %s", report.URL)
}
