package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"StudyBoard/internal/config"
	"StudyBoard/internal/export"
	"StudyBoard/internal/logging"
	"StudyBoard/internal/pdfnote"
	"StudyBoard/internal/render"
	"StudyBoard/internal/state"
	"StudyBoard/internal/store"
	"StudyBoard/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "studyboard:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", config.DefaultPath(), "settings file")
	noteID := flag.String("note", "", "note to open or export (default: most recent, or all notes on export)")
	exportPath := flag.String("export", "", "write a PDF to this path and exit")
	pagesDir := flag.String("pages", "", "directory of page images to annotate")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger, closer, err := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(logger)

	st, err := store.Open(cfg.Storage.Path, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	fonts, err := render.NewFonts()
	if err != nil {
		return err
	}

	var pages []string
	var pagesID string
	if *pagesDir != "" {
		if pages, err = ui.PageImages(*pagesDir); err != nil {
			return err
		}
		if len(pages) == 0 {
			return fmt.Errorf("no page images in %s", *pagesDir)
		}
		if pagesID, err = filepath.Abs(*pagesDir); err != nil {
			return err
		}
	}

	if *exportPath != "" {
		exp := export.New(fonts, logger)
		var out []export.Page
		if pages != nil {
			out, err = annotatedPages(st, pagesID, pages, cfg, logger)
		} else {
			out, err = notePages(st, *noteID, cfg)
		}
		if err != nil {
			return err
		}
		if err := exp.File(*exportPath, out); err != nil {
			return fmt.Errorf("export %s: %w", *exportPath, err)
		}
		logger.Info("exported", "path", *exportPath, "pages", len(out))
		return nil
	}

	return ui.RunApp(ui.Options{
		Config:     cfg,
		ConfigPath: *configPath,
		Store:      st,
		NoteID:     *noteID,
		Pages:      pages,
		PagesID:    pagesID,
		Fonts:      fonts,
		Logger:     logger,
	})
}

// notePages renders one note, or every note when id is empty.
func notePages(st *store.Store, id string, cfg *config.Config) ([]export.Page, error) {
	var notes []*store.Note
	if id != "" {
		n, err := st.Note(id)
		if err != nil {
			return nil, err
		}
		notes = []*store.Note{n}
	} else {
		var err error
		if notes, err = st.Notes(); err != nil {
			return nil, err
		}
	}
	if len(notes) == 0 {
		return nil, errors.New("no notes to export")
	}
	out := make([]export.Page, len(notes))
	for i, n := range notes {
		out[i] = export.Page{
			Doc:      n.Content,
			Width:    cfg.Canvas.Width,
			Height:   cfg.Canvas.Height,
			Theme:    render.Theme(cfg.Canvas.Theme),
			NoteType: render.NoteType(cfg.Canvas.NoteType),
		}
	}
	return out, nil
}

// annotatedPages renders stored annotations over the page images.
func annotatedPages(st *store.Store, fileID string, paths []string, cfg *config.Config, logger *slog.Logger) ([]export.Page, error) {
	docs, err := st.Annotations(fileID)
	if err != nil {
		return nil, err
	}
	for len(docs) < len(paths) {
		docs = append(docs, state.NewDocument())
	}
	docs = docs[:len(paths)]
	return pdfnote.ExportPages(docs, ui.LoadPages(paths, logger), 1, render.Theme(cfg.Canvas.Theme)), nil
}
