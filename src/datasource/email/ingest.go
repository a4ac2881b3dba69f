package email

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"DataScope/src/config"
	"DataScope/src/storage"

	"github.com/robfig/cron"
)

// Ingestor polls the mailbox on a cron schedule and writes matching
// attachments into the data directory. Rediscovery is left to the file
// monitor watching that directory.
type Ingestor struct {
	cfg     config.MailboxConfig
	dataDir string
	fetcher Fetcher
	logger  *storage.Logger
	cron    *cron.Cron
}

func NewIngestor(cfg config.MailboxConfig, dataDir string, fetcher Fetcher, logger *storage.Logger) *Ingestor {
	if fetcher == nil {
		fetcher = NewClient(cfg.Server, cfg.Username, cfg.Password, cfg.Folder)
	}
	return &Ingestor{
		cfg:     cfg,
		dataDir: dataDir,
		fetcher: fetcher,
		logger:  logger,
		cron:    cron.New(),
	}
}

// Start schedules mailbox polls. A disabled mailbox is a no-op.
func (in *Ingestor) Start() error {
	if !in.cfg.Enabled {
		return nil
	}
	if err := in.cron.AddFunc(in.cfg.Poll, in.runScheduled); err != nil {
		return fmt.Errorf("mailbox poll %q: %w", in.cfg.Poll, err)
	}
	in.cron.Start()
	in.logger.Info("mailbox poller started", "server", in.cfg.Server, "poll", in.cfg.Poll)
	return nil
}

func (in *Ingestor) Stop() {
	in.cron.Stop()
}

func (in *Ingestor) runScheduled() {
	if _, err := in.Run(); err != nil {
		in.logger.Error("mailbox poll failed", "error", err)
	}
}

// Run performs one poll: connect, fetch unseen mail within the lookback
// window, and save every dataset attachment of the marked messages.
// Returns the number of files written.
func (in *Ingestor) Run() (int, error) {
	if err := in.fetcher.Connect(); err != nil {
		return 0, fmt.Errorf("connect: %w", err)
	}
	defer in.fetcher.Disconnect()

	lookback := time.Duration(in.cfg.LookbackDays) * 24 * time.Hour
	if lookback <= 0 {
		lookback = 24 * time.Hour
	}
	msgs, err := in.fetcher.FetchUnseen(time.Now().Add(-lookback))
	if err != nil {
		return 0, fmt.Errorf("fetch: %w", err)
	}
	if len(msgs) == 0 {
		in.logger.Info("no new mail")
		return 0, nil
	}

	// Newest first, so a fresh export wins when filenames repeat.
	sort.Slice(msgs, func(i, j int) bool {
		return msgs[i].Date.After(msgs[j].Date)
	})

	saved := 0
	seen := make(map[string]bool)
	for _, msg := range msgs {
		if in.cfg.SubjectMarker != "" && !strings.Contains(msg.Subject, in.cfg.SubjectMarker) {
			continue
		}
		for _, att := range msg.Attachments {
			name := safeFilename(att.Filename)
			if name == "" || !isDatasetAttachment(name) {
				continue
			}
			if seen[name] {
				continue
			}
			seen[name] = true
			path := filepath.Join(in.dataDir, name)
			if err := os.WriteFile(path, att.Content, 0o644); err != nil {
				in.logger.Error("save attachment failed", "file", name, "error", err)
				continue
			}
			in.logger.Info("attachment saved",
				"file", name, "from", msg.From, "subject", msg.Subject)
			saved++
		}
	}
	if saved == 0 {
		in.logger.Info("no dataset attachments in new mail")
	}
	return saved, nil
}

// safeFilename strips any path components a sender may have smuggled into
// the attachment name.
func safeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return ""
	}
	return name
}

func isDatasetAttachment(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return true
	default:
		return false
	}
}
