package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/browser"

	"github.com/csheth/pastechannel/internal/config"
	"github.com/csheth/pastechannel/internal/pastebin"
	"github.com/csheth/pastechannel/internal/tui"
)

type options struct {
	settings    config.Config
	noAltScreen bool
}

// parseOptions loads the config file and applies the flags that were set on
// top of it. Unset flags never override the file.
func parseOptions(args []string) (options, error) {
	fs := flag.NewFlagSet("pastechannel", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a YAML config file")
	noAltScreen := fs.Bool("no-alt-screen", false, "disable the alternate screen buffer")
	archiveURL := fs.String("archive-url", "", "archive page listing recent entries")
	rawURL := fs.String("raw-url", "", "prefix of raw entry bodies")
	pageURL := fs.String("page-url", "", "prefix of entry pages opened on click")
	speed := fs.Int("speed", 0, "scroll speed in pixels per frame (0-16)")
	fontSize := fs.Int("font-size", 0, "font size (14-46, even steps)")
	fps := fs.Int("fps", 0, "frames per second")
	noHelp := fs.Bool("no-help", false, "skip the key help shown at startup")
	noCache := fs.Bool("no-cache", false, "do not cache entry bodies on disk")
	historyPath := fs.String("history", "", "append shown entries to this JSON file")
	logPath := fs.String("log", "", "write debug logs to this file")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	settings, err := config.Load(*configPath)
	if err != nil {
		return options{}, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "archive-url":
			settings.ArchiveURL = *archiveURL
		case "raw-url":
			settings.RawURL = *rawURL
		case "page-url":
			settings.PageURL = *pageURL
		case "speed":
			settings.ScrollRate = *speed
		case "font-size":
			settings.FontSize = *fontSize
		case "fps":
			settings.FPS = *fps
		case "no-help":
			settings.ShowIntro = !*noHelp
		case "no-cache":
			settings.Cache = !*noCache
		case "history":
			settings.HistoryPath = *historyPath
		case "log":
			settings.LogPath = *logPath
		}
	})
	if err := settings.Validate(); err != nil {
		return options{}, err
	}
	return options{settings: settings, noAltScreen: *noAltScreen}, nil
}

func main() {
	opts, err := parseOptions(os.Args[1:])
	if err == flag.ErrHelp {
		return
	}
	if err != nil {
		fmt.Println("invalid options:", err)
		os.Exit(1)
	}
	settings := opts.settings

	if settings.LogPath != "" {
		logFile, err := tea.LogToFile(settings.LogPath, "pastechannel")
		if err != nil {
			fmt.Println("failed to open log file:", err)
			os.Exit(1)
		}
		defer logFile.Close()
	} else {
		log.SetOutput(io.Discard)
	}
	// browser helpers print to the terminal the TUI owns
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard

	client, err := pastebin.New(pastebin.Config{
		ArchiveURL: settings.ArchiveURL,
		RawURL:     settings.RawURL,
		PageURL:    settings.PageURL,
		Cache:      settings.Cache,
	})
	if err != nil {
		fmt.Println("failed to create client:", err)
		os.Exit(1)
	}

	programOpts := []tea.ProgramOption{tea.WithMouseCellMotion()}
	if !opts.noAltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	program := tea.NewProgram(
		tui.New(tui.Config{
			Settings: settings,
			Fetcher:  client,
		}),
		programOpts...,
	)

	if _, err := program.Run(); err != nil {
		fmt.Println("program error:", err)
		os.Exit(1)
	}
}
