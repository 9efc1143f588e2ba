package viewer

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/xiaoyuanzhu-com/debug-viewer/log"
	"github.com/xiaoyuanzhu-com/debug-viewer/notifications"
)

// Tail prints the newest page of a running server and then every pushed image
type Tail struct {
	Client   *Client
	Out      io.Writer
	ShowInfo bool // Fetch dimensions for each pushed image

	// Overrides the server's reconnect delay when positive
	ReconnectDelay time.Duration
}

// Run blocks until ctx is done
func (t *Tail) Run(ctx context.Context) error {
	delay := t.ReconnectDelay
	pageSize := 0
	limit := DefaultDisplayLimit

	cfg, err := t.Client.Config(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("could not fetch server config, using defaults")
	} else {
		pageSize = cfg.PageSize
		limit = cfg.DisplayLimit
		if delay <= 0 {
			delay = time.Duration(cfg.ReconnectDelayMs) * time.Millisecond
		}
	}

	list := NewDisplayList(limit)
	loader := NewLoader(t.Client, list, pageSize)
	if _, err := loader.LoadNext(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// The push channel retries on its own; new images still get printed
		log.Warn().Err(err).Msg("could not load first page, following new images only")
	}

	// Oldest first so the newest ends up at the bottom of the terminal
	existing := list.Items()
	slices.Reverse(existing)
	for _, name := range existing {
		fmt.Fprintln(t.Out, name)
	}
	fmt.Fprintf(t.Out, "-- %d image(s) shown, waiting for new images --\n", len(existing))

	push := &Push{
		URL:   t.Client.PushURL(),
		Delay: delay,
		OnEvent: func(event notifications.Event) {
			list.Prepend(event.File)
			t.printEvent(ctx, event.File)
		},
		OnState: func(s State) {
			log.Debug().Str("state", s.String()).Msg("push channel")
		},
	}
	return push.Run(ctx)
}

func (t *Tail) printEvent(ctx context.Context, file string) {
	stamp := time.Now().Format("15:04:05")
	if !t.ShowInfo {
		fmt.Fprintf(t.Out, "%s %s\n", stamp, file)
		return
	}

	info, err := t.Client.ImageInfo(ctx, file)
	if err != nil || info.Width == 0 {
		fmt.Fprintf(t.Out, "%s %s\n", stamp, file)
		return
	}
	fmt.Fprintf(t.Out, "%s %s %dx%d %s %d bytes\n", stamp, file, info.Width, info.Height, info.Format, info.Size)
}
