package artwork

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/genai"

	"github.com/jmylchreest/skytint/internal/cache"
	"github.com/jmylchreest/skytint/internal/colour"
	"github.com/jmylchreest/skytint/internal/festival"
)

func solidPNG(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// fakeGenerator returns errs in order, then the image.
type fakeGenerator struct {
	mu       sync.Mutex
	data     []byte
	errs     []error
	calls    int
	requests []Request
}

func (g *fakeGenerator) Generate(_ context.Context, req Request) (*Image, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.requests = append(g.requests, req)
	if len(g.errs) > 0 {
		err := g.errs[0]
		g.errs = g.errs[1:]
		return nil, err
	}
	return &Image{Data: g.data, MIMEType: "image/png"}, nil
}

var oktoberfest = festival.Festival{
	Name:     "Oktoberfest",
	Location: "🇩🇪 Munich",
	StartDay: 20,
	EndDay:   30,
	Color:    colour.ParseColourValue("#1E72AE"),
	Type:     "Beer",
	Theme:    "Bavarian blue and white",
}

func newTestService(t *testing.T, gen Generator) (*Service, *cache.MemoryStore) {
	t.Helper()
	store := cache.NewMemoryStore()
	seed := int64(7)
	s, err := NewService(gen, store, Options{Dir: t.TempDir(), Seed: &seed})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	s.newBackOff = func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 2)
	}
	return s, store
}

func TestPrompt(t *testing.T) {
	got := Prompt(oktoberfest, "")
	for _, want := range []string{"Oktoberfest in Munich", "a beer festival", "Bavarian blue and white", "#1e72ae", "no text"} {
		if !strings.Contains(got, want) {
			t.Errorf("Prompt() = %q, missing %q", got, want)
		}
	}

	if got := Prompt(oktoberfest, "München"); !strings.Contains(got, "in München") {
		t.Errorf("Prompt() with city = %q", got)
	}

	bare := festival.Festival{Name: "Carnival", Location: "Rio de Janeiro"}
	got = Prompt(bare, "")
	if strings.Contains(got, "themed") || strings.Contains(got, "palette") {
		t.Errorf("Prompt() for bare festival = %q", got)
	}
}

func TestService_GeneratesThenCaches(t *testing.T) {
	gen := &fakeGenerator{data: solidPNG(t, color.RGBA{R: 0x1e, G: 0x72, B: 0xae, A: 0xff})}
	s, _ := newTestService(t, gen)
	ctx := context.Background()

	first, err := s.ForFestival(ctx, oktoberfest, "Munich")
	if err != nil {
		t.Fatalf("ForFestival() error = %v", err)
	}
	if first.Cached {
		t.Error("first call reported cached")
	}
	if first.City != "Munich" || first.Festival != "Oktoberfest" {
		t.Errorf("Artwork = %+v", first)
	}
	if _, err := os.Stat(first.Path); err != nil {
		t.Fatalf("artwork file missing: %v", err)
	}
	if !strings.HasSuffix(first.Path, ".png") {
		t.Errorf("Path = %q, want .png suffix", first.Path)
	}
	if len(first.Swatches) != 1 || first.Swatches[0].Hex != "#1e72ae" || first.Swatches[0].OnColour != colour.White {
		t.Errorf("Swatches = %+v", first.Swatches)
	}
	if gen.requests[0].AspectRatio != DefaultAspectRatio {
		t.Errorf("AspectRatio = %q", gen.requests[0].AspectRatio)
	}

	second, err := s.ForFestival(ctx, oktoberfest, "Munich")
	if err != nil {
		t.Fatalf("ForFestival() second error = %v", err)
	}
	if !second.Cached || second.Path != first.Path {
		t.Errorf("second call = %+v, want cached copy of %s", second, first.Path)
	}
	if gen.calls != 1 {
		t.Errorf("generator calls = %d, want 1", gen.calls)
	}
}

func TestService_RegeneratesWhenFileMissing(t *testing.T) {
	gen := &fakeGenerator{data: solidPNG(t, color.White)}
	s, _ := newTestService(t, gen)
	ctx := context.Background()

	art, err := s.ForFestival(ctx, oktoberfest, "")
	if err != nil {
		t.Fatal(err)
	}
	if art.City != "Munich" {
		t.Errorf("City = %q, want Munich", art.City)
	}
	if err := os.Remove(art.Path); err != nil {
		t.Fatal(err)
	}

	again, err := s.ForFestival(ctx, oktoberfest, "")
	if err != nil {
		t.Fatal(err)
	}
	if again.Cached {
		t.Error("expected regeneration after file removal")
	}
	if gen.calls != 2 {
		t.Errorf("generator calls = %d, want 2", gen.calls)
	}
}

func TestService_Retries(t *testing.T) {
	transient := genai.APIError{Code: http.StatusServiceUnavailable, Message: "overloaded"}
	rateLimited := genai.APIError{Code: http.StatusTooManyRequests}
	badRequest := genai.APIError{Code: http.StatusBadRequest, Message: "bad prompt"}

	tests := []struct {
		name      string
		errs      []error
		wantCalls int
		wantErr   bool
	}{
		{name: "transient then ok", errs: []error{transient, rateLimited}, wantCalls: 3},
		{name: "permanent", errs: []error{badRequest}, wantCalls: 1, wantErr: true},
		{name: "plain error is permanent", errs: []error{errors.New("boom")}, wantCalls: 1, wantErr: true},
		{name: "exhausted", errs: []error{transient, transient, transient, transient}, wantCalls: 3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{data: solidPNG(t, color.Black), errs: tt.errs}
			s, store := newTestService(t, gen)

			_, err := s.ForFestival(context.Background(), oktoberfest, "Munich")
			if (err != nil) != tt.wantErr {
				t.Fatalf("ForFestival() error = %v, wantErr %v", err, tt.wantErr)
			}
			if gen.calls != tt.wantCalls {
				t.Errorf("generator calls = %d, want %d", gen.calls, tt.wantCalls)
			}
			if tt.wantErr {
				key := "artwork:" + cache.HashKey(Prompt(oktoberfest, "Munich"), DefaultAspectRatio)
				if _, err := store.Get(context.Background(), key); !errors.Is(err, cache.ErrNotFound) {
					t.Error("failed generation must not be cached")
				}
			}
		})
	}
}

func TestService_ForFestivals(t *testing.T) {
	gen := &fakeGenerator{data: solidPNG(t, color.White)}
	s, _ := newTestService(t, gen)

	fests := []festival.Festival{
		oktoberfest,
		{Name: "Fringe", Location: "🏴 Edinburgh", StartDay: 1, EndDay: 25, Color: colour.ParseColourValue("#6A1B9A")},
	}
	arts, err := s.ForFestivals(context.Background(), fests, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(arts) != 2 || arts[1].City != "Edinburgh" {
		t.Errorf("ForFestivals() = %+v", arts)
	}
	if arts[0].Path == arts[1].Path {
		t.Error("distinct festivals share an artwork path")
	}
}

func TestNewService_Errors(t *testing.T) {
	if _, err := NewService(nil, cache.NewMemoryStore(), Options{Dir: t.TempDir()}); err == nil {
		t.Error("expected error for nil generator")
	}
	if _, err := NewService(&fakeGenerator{}, nil, Options{Dir: t.TempDir()}); err == nil {
		t.Error("expected error for nil store")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{err: genai.APIError{Code: 429}, want: true},
		{err: genai.APIError{Code: 500}, want: true},
		{err: fmt.Errorf("wrapped: %w", genai.APIError{Code: 503}), want: true},
		{err: genai.APIError{Code: 403}},
		{err: errors.New("network")},
	}
	for _, tt := range tests {
		if got := IsRetryable(tt.err); got != tt.want {
			t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestIsGeminiModel(t *testing.T) {
	if !isGeminiModel("gemini-2.5-flash-image") {
		t.Error("gemini model not detected")
	}
	if isGeminiModel("imagen-4.0-generate-001") {
		t.Error("imagen model detected as gemini")
	}
}

func TestNewGenAIGenerator_RequiresKey(t *testing.T) {
	if _, err := NewGenAIGenerator(context.Background(), GenAIOptions{Model: "gemini-2.5-flash-image"}); err == nil {
		t.Error("expected error without API key")
	}
	if _, err := NewGenAIGenerator(context.Background(), GenAIOptions{APIKey: "k"}); err == nil {
		t.Error("expected error without model")
	}
}

func TestGenAIGenerator_Gemini(t *testing.T) {
	pngData := solidPNG(t, color.RGBA{R: 0xff, G: 0xc7, B: 0x2c, A: 0xff})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			http.Error(w, `{"error":{"code":404,"message":"unexpected path"}}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"candidates":[{"content":{"role":"model","parts":[{"inlineData":{"mimeType":"image/png","data":%q}}]}}]}`,
			base64.StdEncoding.EncodeToString(pngData))
	}))
	defer srv.Close()

	gen, err := NewGenAIGenerator(context.Background(), GenAIOptions{
		APIKey:  "test-key",
		Model:   "gemini-2.5-flash-image",
		BaseURL: srv.URL,
	})
	if err != nil {
		t.Fatalf("NewGenAIGenerator() error = %v", err)
	}

	img, err := gen.Generate(context.Background(), Request{Prompt: "Oktoberfest"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !bytes.Equal(img.Data, pngData) || img.MIMEType != "image/png" {
		t.Errorf("Generate() = %d bytes %s", len(img.Data), img.MIMEType)
	}
}

func TestGenAIGenerator_APIErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`))
	}))
	defer srv.Close()

	gen, err := NewGenAIGenerator(context.Background(), GenAIOptions{
		APIKey:  "test-key",
		Model:   "gemini-2.5-flash-image",
		BaseURL: srv.URL,
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = gen.Generate(context.Background(), Request{Prompt: "Oktoberfest"})
	if err == nil {
		t.Fatal("Generate() expected error")
	}
	if !IsRetryable(err) {
		t.Errorf("IsRetryable(%v) = false, want true", err)
	}
}
