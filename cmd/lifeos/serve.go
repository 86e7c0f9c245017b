package main

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/lifeos/lifeos/pkg/enrichment"
	"github.com/lifeos/lifeos/pkg/flags"
	"github.com/lifeos/lifeos/pkg/flags/configflags"
	"github.com/lifeos/lifeos/pkg/lifeosserver"
	"github.com/lifeos/lifeos/pkg/study"
	"github.com/lifeos/lifeos/pkg/summary"
	"github.com/lifeos/lifeos/pkg/vector"
)

type ServerFlags struct {
	AIFlags     *flags.AIFlags
	APIFlags    *flags.APIFlags
	AuthFlags   *flags.AuthFlags
	CacheFlags  *flags.CacheFlags
	ConfigFlags *configflags.ConfigFlags
	DBFlags     *flags.PostgresFlags
	QueueFlags  *flags.QueueFlags

	WorkerCount int
}

func NewServerFlags() *ServerFlags {
	return &ServerFlags{
		AIFlags:     flags.NewAIFlags(),
		APIFlags:    flags.NewAPIFlags(),
		AuthFlags:   flags.NewAuthFlags(),
		CacheFlags:  flags.NewCacheFlags(),
		ConfigFlags: configflags.NewConfigFlags(),
		DBFlags:     flags.NewPostgresDatabaseFlags(),
		QueueFlags:  flags.NewQueueFlags(),
		WorkerCount: 2,
	}
}

func (f *ServerFlags) BindFlags(flagSet *pflag.FlagSet) {
	f.AIFlags.BindFlags(flagSet)
	f.APIFlags.BindFlags(flagSet)
	f.AuthFlags.BindFlags(flagSet)
	f.CacheFlags.BindFlags(flagSet)
	f.ConfigFlags.BindFlags(flagSet)
	f.DBFlags.BindFlags(flagSet)
	f.QueueFlags.BindFlags(flagSet)

	flagSet.IntVar(&f.WorkerCount, "enrichment-workers", f.WorkerCount, "Number of concurrent enrichment workers")
}

func NewServeCommand() *cobra.Command {
	f := NewServerFlags()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the lifeos server",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := f.ConfigFlags.GetConfig()
			if err != nil {
				return errors.WithMessage(err, "couldn't load config")
			}

			dbc, err := f.DBFlags.GetDBClient()
			if err != nil {
				return errors.WithMessage(err, "couldn't get DB client")
			}

			cacheClient, err := f.CacheFlags.GetCacheClient()
			if err != nil {
				return errors.WithMessage(err, "couldn't get cache client")
			}

			q, err := f.QueueFlags.GetQueue()
			if err != nil {
				return errors.WithMessage(err, "couldn't get queue")
			}

			tokenManager, err := lifeosserver.NewTokenManager(f.AuthFlags.JWTSecret, f.AuthFlags.SessionDuration)
			if err != nil {
				return errors.WithMessage(err, "couldn't configure sessions")
			}

			if config.AI.ChatModel != "" {
				f.AIFlags.Model = config.AI.ChatModel
			}
			if config.AI.EmbeddingModel != "" {
				f.AIFlags.EmbeddingModel = config.AI.EmbeddingModel
			}
			llm := f.AIFlags.GetLLMClient()
			embedder := f.AIFlags.GetEmbeddingClient()
			index := vector.NewPostgresIndex(dbc)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			enricher := enrichment.NewEnricher(llm, embedder, index, enrichment.NewDBStore(dbc))
			for i := 0; i < f.WorkerCount; i++ {
				worker := enrichment.NewWorker(q, enricher, enrichment.DefaultMaxAttempts)
				go worker.Run(ctx)
			}

			server := lifeosserver.NewServer(lifeosserver.Options{
				DB:          dbc,
				ListenAddr:  f.APIFlags.ListenAddr,
				Config:      config,
				Queue:       q,
				Assistant:   study.NewAssistant(llm, embedder, index),
				Embedder:    embedder,
				Index:       index,
				Generator:   summary.NewGenerator(summary.DBSource{DB: dbc}, llm, cacheClient),
				Auth:        tokenManager,
				GoogleOAuth: f.AuthFlags.GetGoogleOAuthConfig(config.Server.BaseURL),
			})

			if f.APIFlags.MetricsAddr != "" {
				// Serve our metrics endpoint for prometheus to scrape
				go func() {
					http.Handle("/metrics", promhttp.Handler())
					err := http.ListenAndServe(f.APIFlags.MetricsAddr, nil) //nolint
					if err != nil {
						panic(err)
					}
				}()
			}

			server.Serve()
			return nil
		},
	}

	f.BindFlags(cmd.Flags())
	return cmd
}
