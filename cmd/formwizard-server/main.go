package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/goliatone/go-formwizard/internal/accounts"
	"github.com/goliatone/go-formwizard/internal/bootstrap"
	"github.com/goliatone/go-formwizard/internal/players"
	"github.com/goliatone/go-formwizard/internal/webapp"
	"github.com/goliatone/go-formwizard/pkg/field"
	"github.com/goliatone/go-formwizard/pkg/liststore"
	"github.com/goliatone/go-formwizard/pkg/progress"
	"github.com/goliatone/go-formwizard/pkg/render"
	"github.com/goliatone/go-formwizard/pkg/renderers/vanilla"
	"github.com/goliatone/go-formwizard/pkg/upload"
)

func main() {
	var (
		addrFlag      = flag.String("addr", ":8383", "HTTP listen address")
		storeFlag     = flag.String("store", bootstrap.StoreDir, "progress store: memory, dir or sqlite")
		pathFlag      = flag.String("path", "", "directory (dir) or database file (sqlite)")
		encodingFlag  = flag.String("encoding", bootstrap.EncodingJSON, "stored value encoding: json or msgpack")
		definitionArg = flag.String("definition", "", "form definition file or URL (built-in player registration if empty)")
		uploadsFlag   = flag.String("uploads", filepath.Join(".formwizard", "uploads"), "directory for uploaded files")
		uploadURLFlag = flag.String("upload-url", "", "remote upload endpoint (files are stored locally if empty)")
		deleteURLFlag = flag.String("delete-url", "", "remote delete endpoint (defaults to the upload endpoint)")
		csrfKeyFlag   = flag.String("csrf-key", "", "hex encoded 32 byte CSRF key (random if empty)")
		secureFlag    = flag.Bool("secure", false, "serve cookies with the Secure flag")
		shutdownGrace = flag.Duration("grace", 5*time.Second, "Shutdown grace period")
		maxInstances  = flag.Int("max-instances", webapp.DefaultMaxInstances, "wizards kept in memory")
		instanceTTL   = flag.Duration("instance-ttl", webapp.DefaultInstanceTTL, "drop wizards idle for longer")
		verboseFlag   = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verboseFlag {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closer, err := bootstrap.OpenStore(ctx, *storeFlag, *pathFlag)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer closer.Close()

	serializer, err := bootstrap.Serializer(*encodingFlag)
	if err != nil {
		log.Fatalf("encoding: %v", err)
	}

	roster, err := players.OpenRoster(ctx, store,
		liststore.WithSerializer(serializer),
		liststore.WithLogger(logger),
	)
	if err != nil {
		log.Fatalf("roster: %v", err)
	}

	directory, err := accounts.OpenDirectory(ctx, store,
		liststore.WithSerializer(serializer),
		liststore.WithLogger(logger),
	)
	if err != nil {
		log.Fatalf("accounts: %v", err)
	}
	signup, err := accounts.LoadSignup(ctx)
	if err != nil {
		log.Fatalf("signup form: %v", err)
	}
	login, err := accounts.LoadLogin(ctx)
	if err != nil {
		log.Fatalf("login form: %v", err)
	}

	def, err := bootstrap.LoadDefinition(ctx, *definitionArg)
	if err != nil {
		log.Fatalf("definition: %v", err)
	}
	if len(def.Steps) == 0 {
		def.Steps = []field.Step{{Title: def.Title, Fields: def.Fields}}
	}

	uploads, err := webapp.NewDiskUploads(*uploadsFlag, "/files", logger)
	if err != nil {
		log.Fatalf("uploads: %v", err)
	}
	var uploader upload.Client = uploads
	if *uploadURLFlag != "" {
		uploader = upload.NewHTTPClient(*uploadURLFlag, upload.WithDeleteURL(*deleteURLFlag))
	}

	html, err := vanilla.New(
		vanilla.WithStylesheet(webapp.AssetsPath+vanilla.StylesheetName),
		vanilla.WithTitle(def.Title),
	)
	if err != nil {
		log.Fatalf("renderer: %v", err)
	}
	registry := render.NewRegistry()
	registry.MustRegister(html)
	registry.MustRegister(render.JSONRenderer{})

	srv, err := webapp.New(webapp.Config{
		Definition: def,
		Roster:     roster,
		Accounts:   directory,
		Signup:     signup,
		Login:      login,
		Progress: progress.NewKV(store,
			progress.WithSerializer(serializer),
			progress.WithLogger(logger),
		),
		Renderers:    registry,
		Uploader:     uploader,
		Uploads:      uploads,
		Logger:       logger,
		MaxInstances: *maxInstances,
		InstanceTTL:  *instanceTTL,
	})
	if err != nil {
		log.Fatalf("server: %v", err)
	}

	key, err := csrfKey(*csrfKeyFlag)
	if err != nil {
		log.Fatalf("csrf key: %v", err)
	}
	handler := webapp.Protect(srv.Handler(http.FileServer(http.FS(vanilla.AssetsFS()))), key, *secureFlag)

	httpServer := &http.Server{
		Addr:              *addrFlag,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("server_listening", "addr", *addrFlag, "store", *storeFlag, "steps", len(def.Steps))

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				srv.Cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()

	select {
	case err := <-errChan:
		log.Fatalf("listen: %v", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), *shutdownGrace)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// csrfKey decodes raw or, when empty, generates a key valid for this process
// only. Tokens issued before a restart are then rejected.
func csrfKey(raw string) ([]byte, error) {
	if raw != "" {
		return hex.DecodeString(raw)
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}
