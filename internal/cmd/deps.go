package cmd

import (
	"context"
	"os"

	"github.com/salmonumbrella/jumpviz/internal/api"
	"github.com/salmonumbrella/jumpviz/internal/attempts"
	"github.com/salmonumbrella/jumpviz/internal/labels"
	"github.com/salmonumbrella/jumpviz/internal/secrets"
	"github.com/salmonumbrella/jumpviz/internal/server"
)

var (
	openSecretsStore = secrets.OpenDefault
	envGet           = os.Getenv
	newAttemptsStore = func(dataDir, root string) api.Attempts {
		return attempts.New(dataDir, root)
	}
	newLabelsStore = func(dir string, onErr func(name string, err error)) api.Labels {
		store := labels.New(dir)
		store.OnError = onErr
		return store
	}
	startServer = func(ctx context.Context, srv *server.Server) error {
		return srv.Start(ctx)
	}
)
