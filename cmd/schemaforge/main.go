package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/davecgh/go-spew/spew"

	"github.com/goliatone/go-schemaforge/internal/config"
	"github.com/goliatone/go-schemaforge/pkg/export"
	"github.com/goliatone/go-schemaforge/pkg/fieldtree"
	"github.com/goliatone/go-schemaforge/pkg/jsonschema"
	"github.com/goliatone/go-schemaforge/pkg/renderers/tui"
	"github.com/goliatone/go-schemaforge/pkg/session"
)

func main() {
	configPath := flag.String("config", "", "config file (JSON or YAML)")
	format := flag.String("format", "", "export format for show/copy/output (json, yaml, openapi)")
	title := flag.String("title", "", "schema title")
	id := flag.String("id", "", "schema $id")
	dialect := flag.Bool("dialect", false, "stamp $schema with the 2020-12 meta-schema")
	output := flag.String("output", "", "write the final schema to this file on quit")
	noClipboard := flag.Bool("no-clipboard", false, "disable clipboard copies")
	dump := flag.Bool("dump", false, "dump the final field tree to stderr on quit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "format":
			cfg.Format = *format
		case "title":
			cfg.Title = *title
		case "id":
			cfg.ID = *id
		case "dialect":
			cfg.Dialect = *dialect
		case "no-clipboard":
			cfg.Clipboard = !*noClipboard
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess := newSession(cfg)
	editor, err := tui.New(sess, tui.WithExportFormat(cfg.Format))
	if err != nil {
		log.Fatalf("editor: %v", err)
	}

	if err := editor.Run(ctx); err != nil {
		if errors.Is(err, tui.ErrAborted) || errors.Is(err, context.Canceled) {
			fmt.Println("aborted")
		} else {
			log.Fatalf("editor: %v", err)
		}
	}

	if *dump {
		spew.Fdump(os.Stderr, sess.Forest())
	}
	if *output != "" {
		doc, err := sess.Export(context.Background(), cfg.Format)
		if err != nil {
			log.Fatalf("export: %v", err)
		}
		if err := os.WriteFile(*output, doc.Raw(), 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Schema written to %s\n", *output)
	}
}

func newSession(cfg config.Config) *session.Session {
	compiler := jsonschema.New(cfg.CompilerOptions()...)
	opts := []session.Option{
		session.WithEditor(fieldtree.NewEditor(fieldtree.WithIDGenerator(cfg.IDs()))),
		session.WithCompiler(compiler),
		session.WithExporters(export.NewDefaultRegistry(compiler, export.WithInfo(cfg.Title, ""))),
		session.WithNotifier(session.NewWriterNotifier(os.Stdout)),
		session.WithCopyFormat(cfg.Format),
	}
	if cfg.Clipboard {
		opts = append(opts, session.WithClipboard(session.SystemClipboard{}))
	} else {
		opts = append(opts, session.WithClipboard(nil))
	}
	return session.New(opts...)
}
