package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rushteam/citykit/catalog"
	"github.com/rushteam/citykit/config"
	"github.com/rushteam/citykit/core"
	"github.com/rushteam/citykit/feature"
	"github.com/rushteam/citykit/model"
	"github.com/rushteam/citykit/pipeline"
	"github.com/rushteam/citykit/rerank"
	"github.com/rushteam/citykit/service"
	"github.com/rushteam/citykit/store"
)

// New loads every artifact named by cfg and builds the engine. Any load
// error or shape mismatch between encoder, artifact and catalog fails here,
// before a request is served.
func New(ctx context.Context, cfg *config.AppConfig) (*Engine, error) {
	cat, err := catalog.LoadFiles(cfg.Catalog.CitiesPath, cfg.Catalog.EmbeddingsPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	st, err := feature.LoaderFor(cfg.Encoder.Path).Load(ctx, cfg.Encoder.Path)
	if err != nil {
		return nil, err
	}
	enc, err := feature.NewEncoderFromState(st)
	if err != nil {
		return nil, fmt.Errorf("build encoder: %w", err)
	}

	artifact, ml, err := newArtifact(ctx, cfg.Model)
	if err != nil {
		return nil, err
	}
	closeML := func() {
		if ml != nil {
			_ = ml.Close()
		}
	}

	emb, err := model.NewEmbedder(artifact, enc.Segments(), cfg.Model.Slots)
	if err != nil {
		closeML()
		return nil, fmt.Errorf("bind artifact %s: %w", artifact.Name(), err)
	}

	kv, err := store.New(ctx, store.Config{
		Kind:      cfg.Store.Kind,
		RedisAddr: cfg.Store.RedisAddr,
		RedisDB:   cfg.Store.RedisDB,
	})
	if err != nil {
		closeML()
		return nil, fmt.Errorf("open store: %w", err)
	}
	fb := store.NewFeedbackStore(kv, cfg.Store.KeyPrefix, store.WithExclusiveSwipes(cfg.Feedback.Exclusive))

	p, err := newPipeline(cfg, cat, fb)
	if err != nil {
		closeML()
		_ = kv.Close()
		return nil, err
	}

	e, err := NewEngine(Components{
		Encoder:   enc,
		Embedder:  emb,
		Catalog:   cat,
		Pipeline:  p,
		Feedback:  fb,
		Profiles:  store.NewProfileStore(kv, cfg.Store.KeyPrefix),
		KV:        kv,
		MLService: ml,
		DefaultK:  cfg.Ranking.DefaultK,
		Weights:   []rerank.FeedbackOption{rerank.WithWeights(cfg.Ranking.Alpha, cfg.Ranking.Beta, cfg.Ranking.Gamma)},
	})
	if err != nil {
		closeML()
		_ = kv.Close()
		return nil, err
	}

	s := e.Summary()
	log.Info().
		Int("cities", s.Cities).
		Int("dim", s.Dim).
		Str("encoder_version", s.EncoderVersion).
		Int("encoded_len", s.EncodedLen).
		Str("artifact", s.Artifact).
		Str("artifact_version", s.ArtifactVersion).
		Interface("slots", s.Slots).
		Strs("pipeline", s.Pipeline).
		Str("store", kv.Name()).
		Bool("exclusive_swipes", cfg.Feedback.Exclusive).
		Msg("engine ready")
	return e, nil
}

func newArtifact(ctx context.Context, mc config.ModelSection) (model.Artifact, core.MLService, error) {
	switch mc.Kind {
	case "dense", "":
		a, err := model.LoadDenseArtifact(mc.Path)
		if err != nil {
			return nil, nil, err
		}
		return a, nil, nil

	case string(service.ServiceTypeTFServing):
		svc, err := service.NewMLService(serviceConfig(mc))
		if err != nil {
			return nil, nil, err
		}
		a, err := model.NewRemoteArtifact(ctx, mc.Name, svc, mc.Output)
		if err != nil {
			_ = svc.Close()
			return nil, nil, err
		}
		return a, svc, nil

	default:
		return nil, nil, fmt.Errorf("unsupported model kind: %s", mc.Kind)
	}
}

func serviceConfig(mc config.ModelSection) *service.ServiceConfig {
	timeout := 0
	if mc.Timeout > 0 {
		timeout = max(1, int(mc.Timeout/time.Second))
	}
	sc := &service.ServiceConfig{
		Type:          service.ServiceTypeTFServing,
		Endpoint:      mc.Endpoint,
		ModelName:     mc.Name,
		ModelVersion:  mc.Version,
		SignatureName: mc.Signature,
		OutputName:    mc.Output,
		Timeout:       timeout,
	}
	if mc.Auth.Type != "" {
		sc.Auth = &service.AuthConfig{
			Type:     mc.Auth.Type,
			Username: mc.Auth.Username,
			Password: mc.Auth.Password,
			Token:    mc.Auth.Token,
			APIKey:   mc.Auth.APIKey,
		}
	}
	return sc
}

func newPipeline(cfg *config.AppConfig, cat *catalog.Catalog, fb core.FeedbackReader) (*pipeline.Pipeline, error) {
	pcfg := config.DefaultPipelineConfig()
	if cfg.Pipeline.Path != "" {
		var err error
		if pcfg, err = pipeline.LoadFromFile(cfg.Pipeline.Path); err != nil {
			return nil, fmt.Errorf("load pipeline: %w", err)
		}
	}
	p, err := config.BuildPipeline(pcfg, &config.Deps{
		Catalog:       cat,
		DistanceRules: cfg.Filter.DistanceRules,
		Blacklist:     cfg.Filter.Blacklist,
		Feedback:      fb,
	})
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}
	return p, nil
}
