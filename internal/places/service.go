package places

import (
	"context"
	"errors"
	"time"

	"github.com/welcometomycity/citycore/internal/cache"
	"github.com/welcometomycity/citycore/internal/dataset"
	"github.com/welcometomycity/citycore/internal/models"
	"go.uber.org/zap"
)

// Catalog provides cities and their curated attractions
type Catalog interface {
	City(id string) (models.City, bool)
	CuratedPlaces(cityID string) []models.Place
}

// Result is the outcome of a generation request
type Result struct {
	Places        []models.Place `json:"places"`
	Error         string         `json:"error,omitempty"`
	SetupRequired bool           `json:"setup_required,omitempty"`
	IsFallback    bool           `json:"is_fallback,omitempty"`
	Cached        bool           `json:"cached,omitempty"`
}

// Options tunes the service
type Options struct {
	Model    string
	CacheTTL time.Duration
	LockTTL  time.Duration
	Timeout  time.Duration
}

// Service generates city attractions, caching successful results and falling
// back to curated data on failure
type Service struct {
	catalog   Catalog
	generator Generator
	cache     cache.Cache
	logger    *zap.Logger
	opts      Options
}

// NewService creates a service. A nil generator behaves as not configured;
// a nil cache disables caching.
func NewService(catalog Catalog, generator Generator, c cache.Cache, logger *zap.Logger, opts Options) *Service {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		catalog:   catalog,
		generator: generator,
		cache:     c,
		logger:    logger,
		opts:      opts,
	}
}

// Configured reports whether a generator is available
func (s *Service) Configured() bool {
	return s.generator != nil
}

// Generate returns attractions for a city. It never returns an error: failures
// are reported through Result.
func (s *Service) Generate(ctx context.Context, cityID string) Result {
	city, ok := s.catalog.City(cityID)
	if !ok {
		return Result{Places: []models.Place{}, Error: "City not found"}
	}

	log := s.logger.With(zap.String("city", city.ID))
	key := cache.PlacesKey(city.ID, s.opts.Model)

	if places, ok := s.cached(ctx, key); ok {
		log.Debug("serving cached places")
		return Result{Places: places, Cached: true}
	}

	if s.cache != nil && s.generator != nil {
		lockKey := cache.LockKey(key)
		acquired, err := s.cache.AcquireLock(ctx, lockKey, s.opts.LockTTL)
		if err != nil {
			log.Warn("failed to acquire generation lock", zap.Error(err))
		}

		if acquired {
			defer func() {
				if err := s.cache.ReleaseLock(context.WithoutCancel(ctx), lockKey); err != nil {
					log.Warn("failed to release generation lock", zap.Error(err))
				}
			}()
		} else if err == nil {
			// Another request is generating the same city
			var places []models.Place
			found, err := cache.WaitFor(ctx, s.cache, key, &places, s.opts.LockTTL)
			if err == nil && found {
				return Result{Places: places, Cached: true}
			}
			log.Debug("lock holder produced no result, generating", zap.Error(err))
		}
	}

	places, err := s.generate(ctx, city)
	if err == nil {
		if s.cache != nil {
			if err := s.cache.Set(ctx, key, places, s.opts.CacheTTL); err != nil {
				log.Warn("failed to cache generated places", zap.Error(err))
			}
		}
		log.Info("generated places", zap.Int("count", len(places)))
		return Result{Places: places}
	}

	if fallback := s.catalog.CuratedPlaces(city.ID); len(fallback) > 0 {
		log.Info("using curated fallback", zap.Error(err))
		return Result{Places: withFallbackImages(fallback), IsFallback: true}
	}

	msg, setup := Message(err)
	if setup {
		log.Warn("place generation unavailable", zap.Error(err))
	} else {
		log.Error("place generation failed", zap.Error(err))
	}
	return Result{Places: []models.Place{}, Error: msg, SetupRequired: setup}
}

func (s *Service) cached(ctx context.Context, key string) ([]models.Place, bool) {
	if s.cache == nil {
		return nil, false
	}

	var places []models.Place
	found, err := s.cache.Get(ctx, key, &places)
	if err != nil {
		s.logger.Warn("failed to read cached places", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return places, found && len(places) > 0
}

func (s *Service) generate(ctx context.Context, city models.City) ([]models.Place, error) {
	if s.generator == nil {
		return nil, ErrNotConfigured
	}

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	raw, err := s.generator.Generate(ctx, city)
	if err != nil {
		return nil, Classify(err)
	}

	return Validate(city, raw)
}

// Validate cleans generated places and attaches image URLs. Lists shorter than
// MinGenerated after cleaning are rejected; longer lists are truncated.
func Validate(city models.City, raw []models.Place) ([]models.Place, error) {
	places := dataset.CleanPlaces(city.ID, raw)
	if len(places) < MinGenerated {
		return nil, errors.Join(ErrInvalidResponse,
			errors.New("too few valid places in response"))
	}
	if len(places) > MaxGenerated {
		places = places[:MaxGenerated]
	}

	for i := range places {
		query := places[i].ImageQuery
		if query == "" {
			query = places[i].Name
		}
		places[i].Image = ImageURL(query + " " + city.Name + " India landmark")
	}

	return places, nil
}

func withFallbackImages(curated []models.Place) []models.Place {
	out := make([]models.Place, len(curated))
	for i, p := range curated {
		query := p.ImageQuery
		if query == "" {
			query = p.Name
		}
		p.Image = ImageURL(query)
		out[i] = p
	}
	return out
}
