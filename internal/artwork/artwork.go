// Package artwork generates and caches festival card artwork with Google's
// generative image models.
package artwork

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/skytint/internal/cache"
	"github.com/jmylchreest/skytint/internal/colour"
	"github.com/jmylchreest/skytint/internal/festival"
	"github.com/jmylchreest/skytint/internal/image"
	"github.com/jmylchreest/skytint/internal/logging"
)

// paletteSize is the number of swatches extracted from each artwork.
const paletteSize = 3

// Artwork is a generated image for one festival.
type Artwork struct {
	Festival string          `json:"festival"`
	City     string          `json:"city"`
	Prompt   string          `json:"prompt"`
	Path     string          `json:"path"`
	Swatches []colour.Swatch `json:"swatches,omitempty"`
	Cached   bool            `json:"cached"`
}

// Options configures a Service.
type Options struct {
	// Dir receives generated image files.
	Dir string

	// TTL bounds how long a cached artwork is reused. Zero keeps it forever.
	TTL time.Duration

	// MaxElapsed bounds retries of transient generation failures.
	MaxElapsed time.Duration

	// AspectRatio is passed to the generator.
	AspectRatio string

	// Seed makes palette extraction deterministic.
	Seed *int64

	Logger hclog.Logger
}

// Service produces festival artwork, memoising results in a cache.Store
// keyed by prompt hash.
type Service struct {
	gen        Generator
	store      cache.Store
	dir        string
	ttl        time.Duration
	aspect     string
	maxElapsed time.Duration
	extractor  colour.Extractor
	loader     image.Loader
	log        hclog.Logger

	newBackOff func() backoff.BackOff
}

// NewService creates a Service. The image directory is created if missing.
func NewService(gen Generator, store cache.Store, opts Options) (*Service, error) {
	if gen == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if store == nil {
		return nil, fmt.Errorf("cache store is required")
	}

	dir := opts.Dir
	if dir == "" {
		defaultDir, err := cache.DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(defaultDir, "artwork")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil { // #nosec G301 - Cache directory needs standard permissions
		return nil, fmt.Errorf("failed to create artwork directory: %w", err)
	}

	aspect := opts.AspectRatio
	if aspect == "" {
		aspect = DefaultAspectRatio
	}
	maxElapsed := opts.MaxElapsed
	if maxElapsed == 0 {
		maxElapsed = 2 * time.Minute
	}

	extractor, err := colour.NewExtractor(colour.AlgorithmKMeans, colour.ExtractorOptions{Seed: opts.Seed})
	if err != nil {
		return nil, err
	}

	s := &Service{
		gen:        gen,
		store:      store,
		dir:        dir,
		ttl:        opts.TTL,
		aspect:     aspect,
		maxElapsed: maxElapsed,
		extractor:  extractor,
		loader:     image.NewFileLoader(),
		log:        logging.OrDiscard(opts.Logger).Named("artwork"),
	}
	s.newBackOff = func() backoff.BackOff {
		bo := backoff.NewExponentialBackOff()
		bo.MaxElapsedTime = s.maxElapsed
		return bo
	}
	return s, nil
}

// Prompt builds the generation prompt for a festival in city.
func Prompt(f festival.Festival, city string) string {
	if city == "" {
		city = f.City()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "A vibrant celebratory illustration of %s in %s", f.Name, city)
	if f.Type != "" {
		fmt.Fprintf(&b, ", a %s festival", strings.ToLower(f.Type))
	}
	if f.Theme != "" {
		fmt.Fprintf(&b, ", themed around %s", f.Theme)
	}
	if rgb, ok := f.Color.RGB(); ok {
		fmt.Fprintf(&b, ", with a colour palette anchored on %s", rgb.Hex())
	}
	b.WriteString(", wide landscape composition for an in-flight entertainment screen, no text, no lettering")
	return b.String()
}

// ForFestival returns artwork for f, generating it on a cache miss.
func (s *Service) ForFestival(ctx context.Context, f festival.Festival, city string) (*Artwork, error) {
	prompt := Prompt(f, city)
	key := "artwork:" + cache.HashKey(prompt, s.aspect)
	log := s.log.With("festival", f.Name)

	if art, ok := s.lookup(ctx, key); ok {
		log.Debug("artwork cache hit", "path", art.Path)
		art.Cached = true
		return art, nil
	}

	img, err := s.generate(ctx, Request{Prompt: prompt, AspectRatio: s.aspect})
	if err != nil {
		return nil, fmt.Errorf("generating artwork for %s: %w", f.Name, err)
	}

	path := filepath.Join(s.dir, cache.HashKey(prompt, s.aspect)+image.ExtensionForMIME(img.MIMEType))
	if err := os.WriteFile(path, img.Data, 0o644); err != nil { // #nosec G306 - Cache files need standard read permissions
		return nil, fmt.Errorf("failed to write artwork: %w", err)
	}

	art := &Artwork{
		Festival: f.Name,
		City:     cityFor(city, f),
		Prompt:   prompt,
		Path:     path,
	}

	swatches, err := s.swatches(ctx, path)
	if err != nil {
		log.Warn("palette extraction failed", "error", err)
	} else {
		art.Swatches = swatches
	}

	data, err := json.Marshal(art)
	if err != nil {
		return nil, fmt.Errorf("encoding artwork record: %w", err)
	}
	if err := s.store.Set(ctx, key, string(data), s.ttl); err != nil {
		log.Warn("failed to cache artwork", "error", err)
	}

	log.Info("generated artwork", "path", path)
	return art, nil
}

// ForFestivals returns artwork for each festival in order, stopping at the
// first failure.
func (s *Service) ForFestivals(ctx context.Context, festivals []festival.Festival, city string) ([]*Artwork, error) {
	out := make([]*Artwork, 0, len(festivals))
	for _, f := range festivals {
		art, err := s.ForFestival(ctx, f, city)
		if err != nil {
			return out, err
		}
		out = append(out, art)
	}
	return out, nil
}

// cityFor returns city, or the festival's undecorated location if city is
// empty.
func cityFor(city string, f festival.Festival) string {
	if city != "" {
		return city
	}
	return f.City()
}

func (s *Service) lookup(ctx context.Context, key string) (*Artwork, bool) {
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			s.log.Warn("artwork cache lookup failed", "error", err)
		}
		return nil, false
	}

	var art Artwork
	if err := json.Unmarshal([]byte(raw), &art); err != nil {
		s.log.Warn("discarding corrupt artwork record", "error", err)
		return nil, false
	}
	if _, err := os.Stat(art.Path); err != nil {
		s.log.Debug("cached artwork file missing", "path", art.Path)
		return nil, false
	}
	return &art, true
}

func (s *Service) generate(ctx context.Context, req Request) (*Image, error) {
	var img *Image
	operation := func() error {
		out, err := s.gen.Generate(ctx, req)
		if err != nil {
			if IsRetryable(err) {
				s.log.Debug("transient generation failure, retrying", "error", err)
				return err
			}
			return backoff.Permanent(err)
		}
		img = out
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(s.newBackOff(), ctx)); err != nil {
		return nil, err
	}
	return img, nil
}

func (s *Service) swatches(ctx context.Context, path string) ([]colour.Swatch, error) {
	img, err := s.loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	palette, err := s.extractor.Extract(img, paletteSize)
	if err != nil {
		return nil, err
	}
	return palette.Swatches(), nil
}
