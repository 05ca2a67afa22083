package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/playperu/eventmap/internal/client"
	"github.com/playperu/eventmap/internal/eventmap"
	"github.com/playperu/eventmap/internal/viewer"
	"github.com/playperu/eventmap/internal/viewport"
)

type walkOptions struct {
	api      string
	mapID    string
	email    string
	name     string
	dwell    time.Duration
	quizSize int
}

func newWalkCmd() *cobra.Command {
	var o walkOptions
	cmd := &cobra.Command{
		Use:   "walk",
		Short: "Visit every event on a map through the API, like a visitor would",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
			return walk(cmd.Context(), cmd.OutOrStdout(), client.New(o.api, logger), logger, o)
		},
	}
	cmd.Flags().StringVar(&o.api, "api", "http://localhost:8080", "Event map API base URL")
	cmd.Flags().StringVar(&o.mapID, "map", "", "Map id (default: the active map)")
	cmd.Flags().StringVar(&o.email, "email", "", "Visitor email; progress is only recorded when set")
	cmd.Flags().StringVar(&o.name, "name", "", "Visitor name")
	cmd.Flags().DurationVar(&o.dwell, "dwell", 6*time.Second, "How long to keep each event open")
	cmd.Flags().IntVar(&o.quizSize, "quiz", 0, "Fetch this many quiz questions at the end")
	return cmd
}

func walk(ctx context.Context, out io.Writer, backend viewer.Backend, logger *slog.Logger, o walkOptions) error {
	j := viewer.New(backend, eventmap.Identity{UserEmail: o.email, UserName: o.name}, logger)
	j.OnCelebrate = func(msg string) {
		if msg == "" {
			msg = "all events visited"
		}
		fmt.Fprintf(out, "celebration: %s\n", msg)
	}
	if err := j.Load(ctx, o.mapID, viewport.Size{Width: 390, Height: 844}); err != nil {
		return err
	}
	cat := j.Catalog()
	fmt.Fprintf(out, "map %s (%s): %d events\n", cat.Map.Name, cat.Map.ID, len(cat.Events))

	sessCtx, stopSession := context.WithCancel(ctx)
	sessDone := make(chan struct{})
	go func() {
		defer close(sessDone)
		j.RunSession(sessCtx)
	}()
	defer func() {
		stopSession()
		<-sessDone
	}()

	for _, e := range cat.Events {
		if !e.IsActive() {
			continue
		}
		action, err := j.Open(ctx, e.ID)
		if err != nil {
			return err
		}
		if action.Kind != eventmap.ClickPanel {
			fmt.Fprintf(out, "  %-24s %s %s\n", e.Title, action.Kind, action.Target)
			continue
		}
		j.PlayAudio(false)
		select {
		case <-ctx.Done():
			j.Close(context.WithoutCancel(ctx))
			return ctx.Err()
		case <-time.After(o.dwell):
		}
		j.Close(ctx)
		p := j.Progress()
		fmt.Fprintf(out, "  %-24s viewed %d/%d\n", e.Title, p.Viewed(), p.Total())
	}

	if o.quizSize > 0 {
		qs, err := j.Quiz(ctx, o.quizSize)
		if err != nil {
			return err
		}
		for i, q := range qs {
			fmt.Fprintf(out, "quiz %d: %s %v\n", i+1, q.Text, q.Options)
		}
	}
	return nil
}
