// Package engine composes the encoder, the embedder, the catalog and the
// stores into the two recommendation flows:
//
//	Recommend: answers -> encode -> embed -> pipeline (recall, rank, filter, topn)
//	NextCity:  answers -> encode -> (embed || feedback) -> feedback-adjusted pick
//
// An Engine is immutable after construction and safe for concurrent use.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/citykit/catalog"
	"github.com/rushteam/citykit/core"
	"github.com/rushteam/citykit/feature"
	"github.com/rushteam/citykit/model"
	"github.com/rushteam/citykit/pipeline"
	"github.com/rushteam/citykit/pkg/dsl"
	"github.com/rushteam/citykit/rank"
	"github.com/rushteam/citykit/rerank"
	"github.com/rushteam/citykit/store"
)

// Components are the parts an Engine is built from. Every field but
// MLService is required.
type Components struct {
	Encoder  *feature.Encoder
	Embedder *model.Embedder
	Catalog  *catalog.Catalog
	Pipeline *pipeline.Pipeline
	Feedback *store.FeedbackStore
	Profiles *store.ProfileStore

	// KV is the backend under Feedback and Profiles, closed by Engine.Close.
	KV core.Store

	// MLService is the model server behind a remote artifact, if any.
	MLService core.MLService

	DefaultK int
	Weights  []rerank.FeedbackOption
}

type Engine struct {
	encoder  *feature.Encoder
	embedder *model.Embedder
	catalog  *catalog.Catalog
	pipeline *pipeline.Pipeline
	ranker   *rerank.FeedbackRanker
	feedback *store.FeedbackStore
	profiles *store.ProfileStore
	kv       core.Store
	ml       core.MLService
	defaultK int
}

// NewEngine checks that the parts fit together: the embedder output must
// have the catalog's embedding dimensionality.
func NewEngine(c Components) (*Engine, error) {
	switch {
	case c.Encoder == nil:
		return nil, fmt.Errorf("engine: encoder is required")
	case c.Embedder == nil:
		return nil, fmt.Errorf("engine: embedder is required")
	case c.Catalog == nil:
		return nil, fmt.Errorf("engine: catalog is required")
	case c.Pipeline == nil:
		return nil, fmt.Errorf("engine: pipeline is required")
	case c.Feedback == nil || c.Profiles == nil:
		return nil, fmt.Errorf("engine: feedback and profile stores are required")
	}
	if err := c.Catalog.CheckDim(c.Embedder.Dim()); err != nil {
		return nil, fmt.Errorf("embedder output vs catalog: %w", err)
	}

	k := c.DefaultK
	if k <= 0 {
		k = rank.DefaultK
	}
	return &Engine{
		encoder:  c.Encoder,
		embedder: c.Embedder,
		catalog:  c.Catalog,
		pipeline: c.Pipeline,
		ranker:   rerank.NewFeedbackRanker(c.Catalog, c.Feedback, c.Weights...),
		feedback: c.Feedback,
		profiles: c.Profiles,
		kv:       c.KV,
		ml:       c.MLService,
		defaultK: k,
	}, nil
}

// DefaultK is the result count used when a request does not set one.
func (e *Engine) DefaultK() int { return e.defaultK }

// Catalog returns the city catalog.
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// Metadata returns the fitted vocabularies of the encoder.
func (e *Engine) Metadata() *feature.Metadata { return e.encoder.Metadata() }

// Embed encodes answers and runs the user tower. An answer outside the
// fitted vocabulary fails before the artifact is called.
func (e *Engine) Embed(ctx context.Context, answers *core.UserAnswers) ([]float64, error) {
	enc, err := e.encoder.Encode(answers)
	if err != nil {
		return nil, err
	}
	return e.embedder.Embed(ctx, enc)
}

// Recommend returns up to k cities for answers, best first. A nil k means
// DefaultK; k <= 0 yields an empty list. Cities ruled out by the distance
// answer, and for a non-empty userID cities already swiped, are dropped
// after ranking, so fewer than k may be returned.
func (e *Engine) Recommend(ctx context.Context, userID string, answers *core.UserAnswers, k *int) ([]core.ScoredCity, error) {
	n := e.defaultK
	if k != nil {
		n = *k
	}

	user, err := e.Embed(ctx, answers)
	if err != nil {
		return nil, err
	}

	rctx := &core.RecommendContext{UserID: userID, Answers: answers, UserVector: user}
	rctx.SetParam(rerank.ParamK, n)
	if cont, ok := e.catalog.ContinentOf(answers.OriginCountry); ok {
		rctx.SetParam(dsl.ParamOriginContinent, cont)
	}

	items, err := e.pipeline.Run(ctx, rctx, nil)
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", e.pipeline.Name, err)
	}

	out := make([]core.ScoredCity, 0, len(items))
	for _, it := range items {
		if it == nil || it.City == nil {
			continue
		}
		out = append(out, it.Scored())
	}
	return out, nil
}

// NextCity returns the best city the user has not swiped yet, or
// core.ErrNoMoreCities. Without answers the stored profile is used.
//
// Encoding runs first so that invalid answers never reach the artifact or
// the store; the embedding and the feedback read then run concurrently.
func (e *Engine) NextCity(ctx context.Context, userID string, answers *core.UserAnswers) (core.ScoredCity, error) {
	if userID == "" {
		return core.ScoredCity{}, core.NewDomainError(core.ModuleService, core.ErrorCodeInvalidInput, "user_id is required")
	}

	if answers.IsEmpty() {
		stored, err := e.profiles.Load(ctx, userID)
		if err != nil {
			if core.IsStoreNotFound(err) {
				return core.ScoredCity{}, core.NewDomainError(core.ModuleService, core.ErrorCodeInvalidInput,
					"no answers given and no stored profile for "+userID)
			}
			return core.ScoredCity{}, err
		}
		answers = stored
	}

	enc, err := e.encoder.Encode(answers)
	if err != nil {
		return core.ScoredCity{}, err
	}

	var (
		user []float64
		fb   *core.Feedback
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = e.embedder.Embed(gctx, enc)
		return err
	})
	g.Go(func() error {
		var err error
		fb, err = e.feedback.Get(gctx, userID)
		if err != nil {
			return fmt.Errorf("get feedback: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.ScoredCity{}, err
	}

	city, err := e.ranker.Select(user, fb)
	if err != nil {
		return core.ScoredCity{}, err
	}
	log.Debug().Str("user_id", userID).Str("city_id", city.CityID).
		Int("liked", len(fb.Liked)).Int("disliked", len(fb.Disliked)).
		Float64("score", city.Score).Msg("next city")
	return city, nil
}

// RecordSwipe stores a like or dislike. A city outside the catalog is
// rejected with core.ErrCityNotFound and nothing is written.
func (e *Engine) RecordSwipe(ctx context.Context, userID, cityID string, liked bool) error {
	if _, err := e.catalog.Lookup(cityID); err != nil {
		return err
	}
	if err := e.feedback.RecordSwipe(ctx, userID, cityID, liked); err != nil {
		return err
	}
	log.Debug().Str("user_id", userID).Str("city_id", cityID).Bool("liked", liked).Msg("swipe recorded")
	return nil
}

// Favorites returns the liked cities of a user in catalog order. Liked ids
// no longer in the catalog are skipped.
func (e *Engine) Favorites(ctx context.Context, userID string) ([]core.CityRecord, error) {
	if userID == "" {
		return nil, core.NewDomainError(core.ModuleService, core.ErrorCodeInvalidInput, "user_id is required")
	}
	fb, err := e.feedback.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get feedback: %w", err)
	}
	idx := e.catalog.Resolve(fb.Liked)
	out := make([]core.CityRecord, 0, len(idx))
	for _, i := range idx {
		out = append(out, *e.catalog.City(i))
	}
	return out, nil
}

// SaveProfile stores answers for later NextCity calls. Answers the encoder
// rejects are not stored.
func (e *Engine) SaveProfile(ctx context.Context, userID string, answers *core.UserAnswers) error {
	if _, err := e.encoder.Encode(answers); err != nil {
		return err
	}
	return e.profiles.Save(ctx, userID, answers)
}

// ResetFeedback forgets every swipe of a user.
func (e *Engine) ResetFeedback(ctx context.Context, userID string) error {
	return e.feedback.Reset(ctx, userID)
}

// Health reports whether the model server, if any, is serving.
func (e *Engine) Health(ctx context.Context) error {
	if e.ml == nil {
		return nil
	}
	return e.ml.Health(ctx)
}

// Summary describes the loaded parts, for startup logs and `citykit validate`.
type Summary struct {
	Cities          int               `json:"cities"`
	Dim             int               `json:"dim"`
	EncoderVersion  string            `json:"encoder_version"`
	EncodedLen      int               `json:"encoded_len"`
	Artifact        string            `json:"artifact"`
	ArtifactVersion string            `json:"artifact_version"`
	Slots           map[string]string `json:"slots"`
	Pipeline        []string          `json:"pipeline"`
	DefaultK        int               `json:"default_k"`
}

func (e *Engine) Summary() Summary {
	art := e.embedder.Artifact()
	return Summary{
		Cities:          e.catalog.Len(),
		Dim:             e.catalog.Dim(),
		EncoderVersion:  e.encoder.Version(),
		EncodedLen:      e.encoder.Len(),
		Artifact:        art.Name(),
		ArtifactVersion: art.Signature().Version,
		Slots:           e.embedder.Routes(),
		Pipeline:        e.pipeline.Describe(),
		DefaultK:        e.defaultK,
	}
}

// Close releases the store and the model server connection.
func (e *Engine) Close() error {
	var errs []error
	if e.ml != nil {
		errs = append(errs, e.ml.Close())
	}
	if e.kv != nil {
		errs = append(errs, e.kv.Close())
	}
	return errors.Join(errs...)
}
