package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/itsmostafa/codegrab/internal/config"
	"github.com/itsmostafa/codegrab/internal/icc"
	"github.com/itsmostafa/codegrab/internal/store"
)

// env bundles the collaborators every subcommand wires up the same way.
type env struct {
	cfg    config.Config
	client *icc.Client
	store  *store.Store
}

func newEnv(baseDirectory string) (*env, error) {
	cfg := config.Load()

	st, err := store.New(baseDirectory)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if os.Getenv("CODEGRAB_DEBUG") != "" {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	client := icc.NewClient(icc.ClientOptions{
		BaseURL:   cfg.BaseURL,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout,
		Limiter:   icc.NewLimiter(cfg.RatePeriod, cfg.RateBurst),
		Logger:    logger,
	})

	return &env{cfg: cfg, client: client, store: st}, nil
}

func parseDocumentID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, &invalidDocumentIDError{arg: arg}
	}
	return id, nil
}

type invalidDocumentIDError struct{ arg string }

func (e *invalidDocumentIDError) Error() string {
	return "document ID must be a positive integer, got " + strconv.Quote(e.arg)
}

// documentInfo loads the info record store-first, fetching and caching it
// on a miss.
func (e *env) documentInfo(ctx context.Context, documentID int) (icc.DocumentInfo, error) {
	key := icc.InfoPath(documentID)
	if e.store.Has(key) {
		raw, err := e.store.Read(key)
		if err != nil {
			return icc.DocumentInfo{}, err
		}
		return icc.ParseInfo(key, raw)
	}

	info, raw, err := e.client.Info(ctx, documentID)
	if err != nil {
		return icc.DocumentInfo{}, err
	}
	if err := e.store.Write(key, raw); err != nil {
		return icc.DocumentInfo{}, err
	}
	return info, nil
}
