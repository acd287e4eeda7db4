package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-formwizard/internal/bootstrap"
	"github.com/goliatone/go-formwizard/internal/players"
	"github.com/goliatone/go-formwizard/pkg/field"
	"github.com/goliatone/go-formwizard/pkg/liststore"
	"github.com/goliatone/go-formwizard/pkg/progress"
	"github.com/goliatone/go-formwizard/pkg/renderers/tui"
	"github.com/goliatone/go-formwizard/pkg/upload"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

func main() {
	storeKind := flag.String("store", bootstrap.StoreDir, "progress store: memory, dir or sqlite")
	storePath := flag.String("path", "", "directory (dir) or database file (sqlite)")
	encoding := flag.String("encoding", bootstrap.EncodingJSON, "stored value encoding: json or msgpack")
	instance := flag.String("key", "cli", "wizard instance key used for saved progress")
	uploadURL := flag.String("upload-url", "", "file upload endpoint")
	deleteURL := flag.String("delete-url", "", "file delete endpoint (defaults to the upload endpoint)")
	definition := flag.String("definition", "", "form definition file or URL (built-in player registration if empty)")
	list := flag.Bool("list", false, "print registered players and exit")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closer, err := bootstrap.OpenStore(ctx, *storeKind, *storePath)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer closer.Close()

	serializer, err := bootstrap.Serializer(*encoding)
	if err != nil {
		log.Fatalf("Invalid encoding: %v", err)
	}

	roster, err := players.OpenRoster(ctx, store,
		liststore.WithSerializer(serializer),
		liststore.WithLogger(logger),
	)
	if err != nil {
		log.Fatalf("Failed to open roster: %v", err)
	}
	if *list {
		printRoster(roster.All())
		return
	}

	def, err := bootstrap.LoadDefinition(ctx, *definition)
	if err != nil {
		log.Fatalf("Failed to load definition: %v", err)
	}

	submit := roster.SubmitFunc(func(p players.Profile) {
		fmt.Printf("Player profile created: %s (%s)\n", p.FullName(), p.ID)
	})
	if *definition != "" {
		submit = printValues
	}

	opts := []wizard.Option{
		wizard.WithInstanceKey(*instance),
		wizard.WithProgressStore(progress.NewKV(store,
			progress.WithSerializer(serializer),
			progress.WithLogger(logger),
		)),
		wizard.WithSubmitText(def.SubmitText),
		wizard.WithLogger(logger),
	}
	if *uploadURL != "" {
		opts = append(opts, wizard.WithUploader(upload.NewHTTPClient(*uploadURL, upload.WithDeleteURL(*deleteURL))))
	}

	var w *wizard.Wizard
	if len(def.Steps) > 0 {
		w, err = wizard.New(def.Steps, submit, opts...)
	} else {
		w, err = wizard.NewForm(def.Fields, submit, opts...)
	}
	if err != nil {
		log.Fatalf("Failed to build wizard: %v", err)
	}
	if w.Restore(ctx) {
		fmt.Printf("Resuming saved progress at step %d.\n", w.State().CurrentStep+1)
	}
	if def.Title != "" {
		fmt.Println(def.Title)
	}

	outcome, err := tui.New(tui.WithLogger(logger)).Run(ctx, w)
	switch {
	case errors.Is(err, tui.ErrAborted), errors.Is(err, context.Canceled):
		fmt.Println("Aborted. Your progress is saved.")
		return
	case err != nil:
		log.Fatalf("Wizard failed: %v", err)
	}
	logger.Debug("cli_session_finished", "outcome", outcome.String(), "key", w.StorageKey())
}

func printValues(_ context.Context, values field.Values) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(values)
}

func printRoster(profiles []players.Profile) {
	if len(profiles) == 0 {
		fmt.Println("No players registered yet.")
		return
	}
	for _, p := range profiles {
		status := "active"
		if !p.IsActive {
			status = "inactive"
		}
		fmt.Printf("%-12s %-24s %-12s %-14s %s\n", p.ID[:min(len(p.ID), 12)], p.FullName(), p.Position, p.SkillLevel, status)
	}
}
