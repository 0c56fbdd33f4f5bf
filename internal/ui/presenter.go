package ui

import (
	"io"

	"github.com/bamsammich/cuesplit/internal/stats"
)

// Presenter consumes events and displays progress.
type Presenter interface {
	// Run consumes events until the channel closes. Blocks until done.
	Run(events <-chan Event) error
	// Summary returns the final summary line.
	Summary() string
}

// Config configures a Presenter.
type Config struct {
	Writer     io.Writer
	ErrWriter  io.Writer
	Stats      stats.ReadTicker
	OutDir     string
	Workers    int
	IsTTY      bool
	Quiet      bool
	Verbose    bool
	NoProgress bool
}

// NewPresenter creates the appropriate presenter based on configuration.
//
//nolint:ireturn // factory function returns interface by design
func NewPresenter(
	cfg Config,
) Presenter {
	if cfg.Quiet {
		return quietPresenter{}
	}
	if !cfg.IsTTY || cfg.NoProgress {
		return &plainPresenter{
			w:      cfg.Writer,
			errW:   cfg.ErrWriter,
			stats:  cfg.Stats,
			outDir: cfg.OutDir,
		}
	}
	return &hudPresenter{
		w:       cfg.ErrWriter, // HUD renders to stderr (the TTY)
		stats:   cfg.Stats,
		workers: cfg.Workers,
		outDir:  cfg.OutDir,
		width:   hudWidth(cfg.ErrWriter),
	}
}
