package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/pastechannel/internal/history"
	"github.com/csheth/pastechannel/internal/pastebin"
)

const (
	listingTimeout = 20 * time.Second
	entryTimeout   = 20 * time.Second
)

// Fetcher is the part of the pastebin client the ticker needs.
type Fetcher interface {
	FetchListing(ctx context.Context) (*pastebin.Listing, error)
	FetchEntry(ctx context.Context, id string) (pastebin.Body, error)
	EntryURL(id string) string
}

type frameMsg time.Time

type retryListingMsg struct{}

type listingResultMsg struct {
	listing *pastebin.Listing
	err     error
}

type entryResultMsg struct {
	entry pastebin.Entry
	body  pastebin.Body
	err   error
}

type historyResultMsg struct {
	err error
}

type linkResultMsg struct {
	status string
	err    error
}

func frameCmd(fps int) tea.Cmd {
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func retryListingCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return retryListingMsg{}
	})
}

func fetchListingJob(fetcher Fetcher) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, listingTimeout)
		defer cancel()
		listing, err := fetcher.FetchListing(ctx)
		return listingResultMsg{listing: listing, err: err}, err
	}
}

func fetchEntryJob(fetcher Fetcher, entry pastebin.Entry) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, entryTimeout)
		defer cancel()
		body, err := fetcher.FetchEntry(ctx, entry.ID)
		return entryResultMsg{entry: entry, body: body, err: err}, err
	}
}

func recordHistoryJob(path string, records ...history.Record) jobRunner {
	return func(context.Context) (tea.Msg, error) {
		err := history.Append(path, records...)
		return historyResultMsg{err: err}, err
	}
}

// openLinkJob opens url in the browser and falls back to the clipboard.
func openLinkJob(url string, openFn, copyFn func(string) error) jobRunner {
	return func(context.Context) (tea.Msg, error) {
		if openFn != nil {
			if err := openFn(url); err == nil {
				return linkResultMsg{status: "Opened " + url}, nil
			}
		}
		if copyFn != nil {
			if err := copyFn(url); err == nil {
				return linkResultMsg{status: "Could not open browser, link copied"}, nil
			}
		}
		err := fmt.Errorf("could not open %s or copy it to the clipboard", url)
		return linkResultMsg{err: err}, err
	}
}

func copyLinkJob(url string, copyFn func(string) error) jobRunner {
	return func(context.Context) (tea.Msg, error) {
		if copyFn != nil {
			if err := copyFn(url); err == nil {
				return linkResultMsg{status: "Link copied: " + url}, nil
			}
		}
		err := fmt.Errorf("could not copy %s to the clipboard", url)
		return linkResultMsg{err: err}, err
	}
}
