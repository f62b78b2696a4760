package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/Dosada05/tournament-generator/export"
	"github.com/Dosada05/tournament-generator/models"
	"github.com/Dosada05/tournament-generator/repositories"
	"github.com/Dosada05/tournament-generator/storage"
)

// PublishedFiles holds the uploads made for one tournament. Chart is nil when no games exist yet.
type PublishedFiles struct {
	Document *storage.UploadResult `json:"document"`
	Workbook *storage.UploadResult `json:"workbook"`
	Chart    *storage.UploadResult `json:"chart,omitempty"`
}

type ExportService interface {
	Workbook(ctx context.Context, tournamentID string) ([]byte, error)
	RoundChart(ctx context.Context, tournamentID string) ([]byte, error)
	DurationChart(ctx context.Context, tournamentID string, runs int) ([]byte, error)
	Publish(ctx context.Context, tournamentID string) (*PublishedFiles, error)
}

type exportService struct {
	tournamentRepo repositories.TournamentRepository
	simulations    SimulationService
	uploader       storage.FileUploader
	logger         *slog.Logger
	tracer         trace.Tracer
}

// NewExportService builds the export service. A nil uploader makes Publish fail with
// ErrStorageUnavailable.
func NewExportService(
	tournamentRepo repositories.TournamentRepository,
	simulations SimulationService,
	uploader storage.FileUploader,
	logger *slog.Logger,
	tracer trace.Tracer,
) ExportService {
	return &exportService{
		tournamentRepo: tournamentRepo,
		simulations:    simulations,
		uploader:       uploader,
		logger:         logger,
		tracer:         tracer,
	}
}

func (s *exportService) Workbook(ctx context.Context, tournamentID string) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "ExportService.Workbook")
	defer span.End()

	t, _, err := loadTournament(ctx, s.tournamentRepo, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	return export.ScheduleWorkbook(t)
}

func (s *exportService) RoundChart(ctx context.Context, tournamentID string) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "ExportService.RoundChart")
	defer span.End()

	t, _, err := loadTournament(ctx, s.tournamentRepo, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	return export.RoundChart(t)
}

// DurationChart simulates the tournament runs times and plots how long each run took.
func (s *exportService) DurationChart(ctx context.Context, tournamentID string, runs int) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "ExportService.DurationChart")
	defer span.End()

	t, _, err := loadTournament(ctx, s.tournamentRepo, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	report, err := s.simulations.Estimate(ctx, export.Export(t), runs)
	if err != nil {
		return nil, err
	}
	return export.DurationChart(report.Durations)
}

func (s *exportService) Publish(ctx context.Context, tournamentID string) (*PublishedFiles, error) {
	ctx, span := s.tracer.Start(ctx, "ExportService.Publish")
	defer span.End()

	if s.uploader == nil {
		return nil, ErrStorageUnavailable
	}
	t, _, err := loadTournament(ctx, s.tournamentRepo, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	prefix := fmt.Sprintf("tournaments/%s/", t.ID)
	out := &PublishedFiles{}

	var doc bytes.Buffer
	if err := export.WriteJSON(&doc, export.Export(t)); err != nil {
		return nil, err
	}
	if out.Document, err = s.upload(ctx, prefix+"document.json", storage.ContentTypeJSON, doc.Bytes()); err != nil {
		return nil, err
	}

	workbook, err := export.ScheduleWorkbook(t)
	if err != nil {
		return nil, err
	}
	if out.Workbook, err = s.upload(ctx, prefix+"schedule.xlsx", storage.ContentTypeXLSX, workbook); err != nil {
		return nil, err
	}

	chart, err := export.RoundChart(t)
	switch {
	case errors.Is(err, models.ErrInsufficientData):
	case err != nil:
		return nil, err
	default:
		if out.Chart, err = s.upload(ctx, prefix+"rounds.png", storage.ContentTypePNG, chart); err != nil {
			return nil, err
		}
	}

	s.logger.InfoContext(ctx, "tournament published",
		slog.String("tournament_id", t.ID),
		slog.String("document", out.Document.Location),
	)
	return out, nil
}

func (s *exportService) upload(ctx context.Context, key, contentType string, data []byte) (*storage.UploadResult, error) {
	res, err := s.uploader.Upload(ctx, key, contentType, bytes.NewReader(data))
	if err != nil {
		s.logger.ErrorContext(ctx, "upload failed", slog.String("key", key), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return res, nil
}
