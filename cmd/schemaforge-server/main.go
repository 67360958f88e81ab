package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-schemaforge/internal/config"
	"github.com/goliatone/go-schemaforge/pkg/export"
	"github.com/goliatone/go-schemaforge/pkg/fieldtree"
	"github.com/goliatone/go-schemaforge/pkg/jsonschema"
	"github.com/goliatone/go-schemaforge/pkg/server"
	"github.com/goliatone/go-schemaforge/pkg/session"
)

func main() {
	var (
		configPath    = flag.String("config", "", "config file (JSON or YAML)")
		addrFlag      = flag.String("addr", "", "HTTP listen address")
		formatFlag    = flag.String("format", "", "default export format for /api/schema")
		titleFlag     = flag.String("title", "", "schema title and page heading")
		idFlag        = flag.String("id", "", "schema $id")
		dialectFlag   = flag.Bool("dialect", false, "stamp $schema with the 2020-12 meta-schema")
		shutdownGrace = flag.Duration("grace", 0, "Shutdown grace period")
		debugFlag     = flag.Bool("debug", false, "log debug entries")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = *addrFlag
		case "format":
			cfg.Format = *formatFlag
		case "title":
			cfg.Title = *titleFlag
		case "id":
			cfg.ID = *idFlag
		case "dialect":
			cfg.Dialect = *dialectFlag
		case "grace":
			cfg.Grace = *shutdownGrace
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := server.NewStdLogger(log.Default(), *debugFlag)

	compiler := jsonschema.New(cfg.CompilerOptions()...)
	sess := session.New(
		session.WithEditor(fieldtree.NewEditor(fieldtree.WithIDGenerator(cfg.IDs()))),
		session.WithCompiler(compiler),
		session.WithExporters(export.NewDefaultRegistry(compiler, export.WithInfo(cfg.Title, ""))),
		// Copies happen in the browser; the server has no clipboard of its own.
		session.WithClipboard(nil),
	)

	tel := newTelemetry()
	srv, err := server.New(sess, append(tel.options(),
		server.WithLogger(logger),
		server.WithDefaultFormat(cfg.Format),
		server.WithTitle(cfg.Title),
	)...)
	if err != nil {
		log.Fatalf("server: %v", err)
	}
	defer srv.Close()

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Handler(),
	}

	log.Printf("listening on %s (format %s)", cfg.Addr, cfg.Format)

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errChan:
		log.Fatalf("listen: %v", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Grace)
	defer cancel()

	srv.Close()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	tel.summarize(shutdownCtx, logger)
	if err := tel.shutdown(shutdownCtx); err != nil {
		log.Printf("telemetry shutdown: %v", err)
	}
}
