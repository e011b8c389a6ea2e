package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/formpulse/formpulse-backend/internal/clients/analytics"
	"github.com/formpulse/formpulse-backend/internal/clients/gcp"
	"github.com/formpulse/formpulse-backend/internal/clients/redis"
	"github.com/formpulse/formpulse-backend/internal/logger"
	"github.com/formpulse/formpulse-backend/internal/report"
	"github.com/formpulse/formpulse-backend/internal/repos"
	"github.com/formpulse/formpulse-backend/internal/types"
)

const analyticsPrefetchLimit = 4

// GenerateOptions are the per-request knobs for one generation run.
type GenerateOptions struct {
	// Filter is an opaque respondent-filter expression forwarded to the
	// analytics API and described on the report's filter block.
	Filter string
	// FilterDescription is the human-readable form printed in the document.
	FilterDescription string
}

type ReportService interface {
	Generate(ctx context.Context, surveyID uuid.UUID, opts GenerateOptions) (*types.ReportArtifact, error)
	GetArtifact(ctx context.Context, id uuid.UUID) (*types.ReportArtifact, error)
	ListArtifacts(ctx context.Context, surveyID uuid.UUID, limit int) ([]*types.ReportArtifact, error)
	DownloadArtifact(ctx context.Context, artifact *types.ReportArtifact) (io.ReadCloser, error)
	DeleteArtifact(ctx context.Context, artifact *types.ReportArtifact) error
}

type reportService struct {
	db           *gorm.DB
	log          *logger.Logger
	analytics    analytics.Client
	settings     SettingsService
	builder      *report.Builder
	bucket       gcp.BucketService
	progressBus  redis.ProgressBus
	artifactRepo repos.ReportArtifactRepo
}

func NewReportService(
	db *gorm.DB,
	log *logger.Logger,
	analyticsClient analytics.Client,
	settingsService SettingsService,
	builder *report.Builder,
	bucketService gcp.BucketService,
	progressBus redis.ProgressBus,
	artifactRepo repos.ReportArtifactRepo,
) ReportService {
	return &reportService{
		db:           db,
		log:          log.With("service", "ReportService"),
		analytics:    analyticsClient,
		settings:     settingsService,
		builder:      builder,
		bucket:       bucketService,
		progressBus:  progressBus,
		artifactRepo: artifactRepo,
	}
}

// Generate runs one full report pass: prefetch analytics concurrently, build
// the document sequentially, upload the result, and record the artifact. A
// failed run still records a failed artifact row before returning the error.
func (s *reportService) Generate(ctx context.Context, surveyID uuid.UUID, opts GenerateOptions) (*types.ReportArtifact, error) {
	reportID := uuid.New()
	started := time.Now()
	publish := s.progressPublisher(ctx, reportID, surveyID)
	publish("fetch", 0)

	artifact, err := s.generate(ctx, reportID, surveyID, opts, publish)
	if err != nil {
		publishErr := s.publishFailure(ctx, reportID, surveyID, err)
		if publishErr != nil {
			s.log.Warn("could not publish failure event", "report_id", reportID, "error", publishErr)
		}
		failedRow := &types.ReportArtifact{
			ID:       reportID,
			SurveyID: surveyID,
			Status:   types.ReportStatusFailed,
			Error:    err.Error(),
		}
		if _, recErr := s.artifactRepo.Create(ctx, nil, failedRow); recErr != nil {
			s.log.Error("could not record failed artifact", "report_id", reportID, "error", recErr)
		}
		return nil, err
	}

	s.log.Info("report generated",
		"report_id", reportID,
		"survey_id", surveyID,
		"pages", artifact.PageCount,
		"duration_ms", time.Since(started).Milliseconds())
	return artifact, nil
}

func (s *reportService) generate(ctx context.Context, reportID, surveyID uuid.UUID, opts GenerateOptions, publish func(stage string, percent int)) (*types.ReportArtifact, error) {
	survey, err := s.analytics.GetSurvey(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Get(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	publish("fetch", 5)

	payloads, err := s.prefetchAnalytics(ctx, survey, opts.Filter)
	if err != nil {
		return nil, err
	}
	publish("fetch", 15)

	var demographics []report.DemographicBlock
	if settings.ExportOpts.IncludeDemographics {
		demographics, err = s.analytics.GetDemographics(ctx, surveyID, opts.Filter)
		if err != nil {
			return nil, err
		}
	}
	publish("fetch", 20)

	now := time.Now().UTC()
	result, err := s.builder.Build(ctx, report.BuildInput{
		Survey:            survey,
		Settings:          *settings,
		Analytics:         payloads,
		Demographics:      demographics,
		FilterDescription: opts.FilterDescription,
		GeneratedAt:       now,
	}, func(stage string, percent int) {
		// Builder progress maps onto the 20..90 band of the run.
		publish(stage, 20+percent*70/100)
	})
	if err != nil {
		return nil, err
	}
	for qid, qerr := range result.Failed {
		s.log.Warn("question rendered degraded", "report_id", reportID, "question_id", qid, "error", qerr)
	}

	filename := report.ReportFilename(survey.Title, now)
	key := fmt.Sprintf("reports/%s/%s", surveyID, filename)
	if err := s.bucket.UploadReport(ctx, key, bytes.NewReader(result.PDF)); err != nil {
		return nil, fmt.Errorf("%w: upload report: %v", report.ErrFatalIO, err)
	}
	publish("upload", 95)

	artifact := &types.ReportArtifact{
		ID:        reportID,
		SurveyID:  surveyID,
		Filename:  filename,
		BucketKey: key,
		URL:       s.bucket.GetPublicURL(key),
		PageCount: result.PageCount,
		Status:    types.ReportStatusCompleted,
	}
	if _, err := s.artifactRepo.Create(ctx, nil, artifact); err != nil {
		return nil, fmt.Errorf("record artifact: %w", err)
	}
	publish("done", 100)
	return artifact, nil
}

// prefetchAnalytics fetches every question's payload with bounded
// concurrency. Any fetch failure aborts the run; missing data for a question
// is not an error here (the API returns an empty payload, which the builder
// degrades to a notice).
func (s *reportService) prefetchAnalytics(ctx context.Context, survey *types.Survey, filter string) (map[uuid.UUID]*types.AnalyticsPayload, error) {
	var mu sync.Mutex
	payloads := make(map[uuid.UUID]*types.AnalyticsPayload, len(survey.Questions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(analyticsPrefetchLimit)
	for _, q := range survey.Questions {
		q := q
		g.Go(func() error {
			payload, err := s.analytics.GetQuestionAnalytics(gctx, survey.ID, q.ID, filter)
			if err != nil {
				return err
			}
			mu.Lock()
			payloads[q.ID] = payload
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return payloads, nil
}

func (s *reportService) progressPublisher(ctx context.Context, reportID, surveyID uuid.UUID) func(stage string, percent int) {
	return func(stage string, percent int) {
		if s.progressBus == nil {
			return
		}
		err := s.progressBus.Publish(ctx, redis.ProgressEvent{
			ReportID: reportID,
			SurveyID: surveyID,
			Stage:    stage,
			Percent:  percent,
		})
		if err != nil {
			s.log.Debug("progress publish failed", "report_id", reportID, "error", err)
		}
	}
}

func (s *reportService) publishFailure(ctx context.Context, reportID, surveyID uuid.UUID, cause error) error {
	if s.progressBus == nil {
		return nil
	}
	return s.progressBus.Publish(ctx, redis.ProgressEvent{
		ReportID: reportID,
		SurveyID: surveyID,
		Stage:    "failed",
		Percent:  100,
		Error:    cause.Error(),
	})
}

func (s *reportService) GetArtifact(ctx context.Context, id uuid.UUID) (*types.ReportArtifact, error) {
	return s.artifactRepo.GetByID(ctx, nil, id)
}

func (s *reportService) ListArtifacts(ctx context.Context, surveyID uuid.UUID, limit int) ([]*types.ReportArtifact, error) {
	return s.artifactRepo.ListBySurveyID(ctx, nil, surveyID, limit)
}

// DownloadArtifact streams the stored document from the bucket. Failed runs
// never uploaded anything and have no bucket key.
func (s *reportService) DownloadArtifact(ctx context.Context, artifact *types.ReportArtifact) (io.ReadCloser, error) {
	if artifact == nil || artifact.BucketKey == "" {
		return nil, fmt.Errorf("%w: artifact has no stored document", report.ErrMissingData)
	}
	rd, err := s.bucket.DownloadReport(ctx, artifact.BucketKey)
	if err != nil {
		return nil, fmt.Errorf("%w: download report: %v", report.ErrFatalIO, err)
	}
	return rd, nil
}

// DeleteArtifact removes the bucket object first, then the database row. A
// failed bucket delete keeps the row so the artifact stays discoverable.
func (s *reportService) DeleteArtifact(ctx context.Context, artifact *types.ReportArtifact) error {
	if artifact == nil {
		return nil
	}
	if artifact.BucketKey != "" {
		if err := s.bucket.DeleteReport(ctx, artifact.BucketKey); err != nil {
			return fmt.Errorf("%w: delete report object: %v", report.ErrFatalIO, err)
		}
	}
	if err := s.artifactRepo.DeleteByID(ctx, nil, artifact.ID); err != nil {
		return fmt.Errorf("delete artifact row: %w", err)
	}
	s.log.Info("report artifact deleted", "report_id", artifact.ID, "survey_id", artifact.SurveyID)
	return nil
}
