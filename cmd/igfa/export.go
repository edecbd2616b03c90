package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/Zuo-Peng/igfa/internal/analyze"
	"github.com/Zuo-Peng/igfa/internal/config"
	"github.com/Zuo-Peng/igfa/internal/index"
)

// exportSession is an analyzed export loaded into a session index.
type exportSession struct {
	cfg    *config.Config
	logger *slog.Logger
	report *analyze.Report
	db     *index.DB
}

func (s *exportSession) Close() error {
	return s.db.Close()
}

// exportPath picks the archive from the arguments or the config.
func exportPath(cfg *config.Config, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Analysis.Export != "" {
		return cfg.Analysis.Export, nil
	}
	return "", errors.New("no export given: pass a .zip path or set analysis.export in the config")
}

func newLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}

// openExport loads the config, analyzes the export and indexes the report.
func openExport(args []string) (*exportSession, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	path, err := exportPath(cfg, args)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}

	logger := newLogger(cfg)
	report, err := analyze.New(logger).Analyze(data)
	if err != nil {
		return nil, err
	}

	db, stats, err := index.Build(report)
	if err != nil {
		return nil, fmt.Errorf("index report: %w", err)
	}
	logger.Debug("session index loaded", "session", report.SessionID, "stats", stats.String())

	return &exportSession{cfg: cfg, logger: logger, report: report, db: db}, nil
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
