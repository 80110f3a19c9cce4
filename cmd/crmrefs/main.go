// Command crmrefs prints the CRM lookup tables (organizations, trade points,
// payment options, nomenclatures and so on) so operators can maintain
// internal/crm/mapping.yaml. Pass ref names as arguments to fetch a subset.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/imrishuroy/go-chat-orderflow/internal/config"
	"github.com/imrishuroy/go-chat-orderflow/internal/crm"
	"github.com/imrishuroy/go-chat-orderflow/internal/observability"
)

type fetcher interface {
	Fetch(ctx context.Context, ref crm.Ref) ([]byte, error)
}

// run prints every selected ref and returns how many failed.
func run(ctx context.Context, f fetcher, refs []crm.Ref, out io.Writer) int {
	logger := observability.FromContext(ctx)
	failed := 0
	for _, ref := range refs {
		fmt.Fprintf(out, "=== %s (%s) ===\n", ref.Name, ref.Path)
		body, err := f.Fetch(ctx, ref)
		if err != nil {
			failed++
			logger.Error("fetch failed", zap.String("ref", ref.Name), zap.Error(err))
			fmt.Fprintf(out, "error: %v\n\n", err)
			continue
		}
		fmt.Fprintf(out, "%s\n\n", body)
	}
	return failed
}

// selectRefs keeps the refs named in args; no args keeps all.
func selectRefs(all []crm.Ref, args []string) []crm.Ref {
	if len(args) == 0 {
		return all
	}
	var out []crm.Ref
	for _, ref := range all {
		for _, name := range args {
			if strings.EqualFold(ref.Name, name) || ref.Path == name {
				out = append(out, ref)
				break
			}
		}
	}
	return out
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := observability.NewLogger()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.CRM.Token == "" {
		logger.Fatal("CRM_TOKEN is not set")
	}
	refs := selectRefs(crm.DefaultRefs(), os.Args[1:])
	if len(refs) == 0 {
		logger.Fatal("no matching refs", zap.Strings("args", os.Args[1:]))
	}

	shutdownTracing, err := observability.InitTracing(context.Background(), "go-chat-orderflow-crmrefs", cfg.TraceEndpoint)
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}

	ctx, span := observability.StartSpan(observability.WithLogger(context.Background(), logger), "fetch crm refs")
	client := crm.NewRefsClient(cfg.CRM.RefsBaseURL, cfg.CRM.Token, cfg.CRM.Timeout)
	failed := run(ctx, client, refs, os.Stdout)
	span.End()
	// os.Exit skips defers, so flush explicitly.
	_ = shutdownTracing(context.Background())

	if failed > 0 {
		logger.Warn("some refs could not be fetched", zap.Int("failed", failed))
		os.Exit(1)
	}
}
