package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"DataScope/src/config"
	"DataScope/src/dataset"
	"DataScope/src/storage"

	"github.com/google/uuid"
	"github.com/robfig/cron"
)

// Scheduler runs the report builder on the configured cron spec. Each run
// gets its own uuid so report files never collide.
type Scheduler struct {
	cfg     config.ReportConfig
	manager *dataset.Manager
	logger  *storage.Logger
	mailer  *Mailer
	cron    *cron.Cron
}

func NewScheduler(cfg config.ReportConfig, manager *dataset.Manager, logger *storage.Logger) *Scheduler {
	s := &Scheduler{
		cfg:     cfg,
		manager: manager,
		logger:  logger,
		cron:    cron.New(),
	}
	if cfg.SMTP.Host != "" {
		s.mailer = NewMailer(cfg.SMTP)
	}
	return s
}

// Start registers the cron entry and begins scheduling. A disabled
// scheduler is a no-op.
func (s *Scheduler) Start() error {
	if !s.cfg.Enabled {
		return nil
	}
	if err := s.cron.AddFunc(s.cfg.Schedule, s.runScheduled); err != nil {
		return fmt.Errorf("report schedule %q: %w", s.cfg.Schedule, err)
	}
	s.cron.Start()
	s.logger.Info("report scheduler started", "schedule", s.cfg.Schedule)
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) runScheduled() {
	_, err := s.RunNow()
	switch {
	case errors.Is(err, dataset.ErrNoDataset):
		s.logger.Warn("skipping report, no dataset ready")
	case err != nil:
		s.logger.Error("report run failed", "error", err)
	}
}

// RunNow builds one workbook for the active dataset, writes it to the
// report dir and mails it when recipients are configured. Returns the
// written file path.
func (s *Scheduler) RunNow() (string, error) {
	name, tbl, err := s.manager.Active()
	if err != nil {
		return "", err
	}

	runID := uuid.NewString()
	wb, err := BuildWorkbook(tbl, name)
	if err != nil {
		return "", fmt.Errorf("build workbook: %w", err)
	}
	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(s.cfg.Dir, fmt.Sprintf("report_%s_%s.xlsx", name, runID))
	if err := wb.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	s.logger.Info("report written", "path", path, "run_id", runID)

	if s.mailer != nil && len(s.cfg.Recipients) > 0 {
		subject := fmt.Sprintf("DataScope report: %s", name)
		body := fmt.Sprintf("Attached: descriptive report for dataset %s (run %s).", name, runID)
		if err := s.mailer.Send(s.cfg.Recipients, subject, body, path); err != nil {
			s.logger.Error("report mail failed", "error", err)
		} else {
			s.logger.Info("report mailed", "recipients", len(s.cfg.Recipients))
		}
	}
	return path, nil
}
