package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/formpulse/formpulse-backend/internal/logger"
	"github.com/formpulse/formpulse-backend/internal/report"
	"github.com/formpulse/formpulse-backend/internal/types"
)

// Client fetches survey structure and pre-aggregated analytics from the
// analytics API. Failures here are fatal for report generation; there is no
// partial fallback for missing survey structure.
type Client interface {
	GetSurvey(ctx context.Context, surveyID uuid.UUID) (*types.Survey, error)
	GetQuestionAnalytics(ctx context.Context, surveyID, questionID uuid.UUID, filter string) (*types.AnalyticsPayload, error)
	GetDemographics(ctx context.Context, surveyID uuid.UUID, filter string) ([]report.DemographicBlock, error)
}

type client struct {
	log     *logger.Logger
	http    *http.Client
	baseURL string
	apiKey  string
}

func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(os.Getenv("ANALYTICS_API_URL")), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("missing ANALYTICS_API_URL")
	}
	return &client{
		log:     log.With("service", "AnalyticsClient"),
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(os.Getenv("ANALYTICS_API_KEY")),
	}, nil
}

func (c *client) GetSurvey(ctx context.Context, surveyID uuid.UUID) (*types.Survey, error) {
	var survey types.Survey
	path := fmt.Sprintf("/surveys/%s", surveyID)
	if err := c.getJSON(ctx, path, nil, &survey); err != nil {
		return nil, fmt.Errorf("%w: fetch survey: %v", report.ErrFatalIO, err)
	}
	return &survey, nil
}

func (c *client) GetQuestionAnalytics(ctx context.Context, surveyID, questionID uuid.UUID, filter string) (*types.AnalyticsPayload, error) {
	var payload types.AnalyticsPayload
	path := fmt.Sprintf("/surveys/%s/questions/%s/analytics", surveyID, questionID)
	query := url.Values{}
	if filter != "" {
		query.Set("filter", filter)
	}
	if err := c.getJSON(ctx, path, query, &payload); err != nil {
		return nil, fmt.Errorf("%w: fetch analytics for question %s: %v", report.ErrFatalIO, questionID, err)
	}
	return &payload, nil
}

func (c *client) GetDemographics(ctx context.Context, surveyID uuid.UUID, filter string) ([]report.DemographicBlock, error) {
	var raw []struct {
		Category types.DemographicCategory `json:"category"`
		Payload  *types.AnalyticsPayload   `json:"payload"`
	}
	path := fmt.Sprintf("/surveys/%s/demographics", surveyID)
	query := url.Values{}
	if filter != "" {
		query.Set("filter", filter)
	}
	if err := c.getJSON(ctx, path, query, &raw); err != nil {
		return nil, fmt.Errorf("%w: fetch demographics: %v", report.ErrFatalIO, err)
	}
	out := make([]report.DemographicBlock, 0, len(raw))
	for _, r := range raw {
		out = append(out, report.DemographicBlock{Category: r.Category, Payload: r.Payload})
	}
	return out, nil
}

func (c *client) getJSON(ctx context.Context, path string, query url.Values, dst any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.log.Warn("analytics API error", "path", path, "status", resp.StatusCode)
		return fmt.Errorf("analytics API %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}
