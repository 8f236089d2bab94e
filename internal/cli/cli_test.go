package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/tessro/onair/internal/audio"
	"github.com/tessro/onair/internal/config"
	"github.com/tessro/onair/internal/core"
	apperrors "github.com/tessro/onair/internal/errors"
)

var testEpisodes = []core.Episode{
	{Slug: "le-grand-direct", URL: "https://example.org/a.mp3", Title: "Le grand direct", FeedName: "Matinale"},
	{Slug: "hors-serie", URL: "https://example.org/b.mp3", Title: "Hors série", FeedName: "Matinale"},
}

func TestResolveTarget(t *testing.T) {
	tests := []struct {
		name      string
		arg       string
		wantLive  bool
		wantURL   string
		wantSlug  string
		wantLoads int
		wantErr   error
	}{
		{name: "empty", arg: "", wantLive: true},
		{name: "live", arg: "live", wantLive: true},
		{name: "live uppercase", arg: " LIVE ", wantLive: true},
		{name: "url", arg: "https://example.org/x.mp3", wantURL: "https://example.org/x.mp3"},
		{name: "slug", arg: "hors-serie", wantURL: "https://example.org/b.mp3", wantSlug: "hors-serie", wantLoads: 1},
		{name: "unknown slug", arg: "nope", wantLoads: 1, wantErr: apperrors.ErrEpisodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loads := 0
			req, err := resolveTarget(context.Background(), tt.arg, func(context.Context) ([]core.Episode, error) {
				loads++
				return testEpisodes, nil
			})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("resolveTarget(%q) error = %v, want %v", tt.arg, err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("resolveTarget(%q) error = %v", tt.arg, err)
			}
			if loads != tt.wantLoads {
				t.Errorf("episode loads = %d, want %d", loads, tt.wantLoads)
			}
			if req.Live != tt.wantLive {
				t.Errorf("Live = %v, want %v", req.Live, tt.wantLive)
			}
			if req.URL != tt.wantURL {
				t.Errorf("URL = %q, want %q", req.URL, tt.wantURL)
			}
			if req.Slug != tt.wantSlug {
				t.Errorf("Slug = %q, want %q", req.Slug, tt.wantSlug)
			}
		})
	}
}

func TestResolveTargetLoadError(t *testing.T) {
	want := errors.New("feed down")
	_, err := resolveTarget(context.Background(), "hors-serie", func(context.Context) ([]core.Episode, error) {
		return nil, want
	})
	if !errors.Is(err, want) {
		t.Errorf("error = %v, want %v", err, want)
	}
}

func TestSwitchError(t *testing.T) {
	rejected := fmt.Errorf("%w: empty url", apperrors.ErrInvalidSource)
	if err := switchError(rejected); !errors.Is(err, apperrors.ErrInvalidSource) || apperrors.GetSuggestion(err) == "" {
		t.Errorf("switchError(rejected) = %v, want ErrInvalidSource with a suggestion", err)
	}

	other := errors.New("output closed")
	if err := switchError(other); err != other {
		t.Errorf("switchError(other) = %v, want %v", err, other)
	}
}

func TestLoadEpisodesWithoutFeeds(t *testing.T) {
	_, err := loadEpisodes(context.Background(), nil)
	if !errors.Is(err, apperrors.ErrFeedUnavailable) {
		t.Fatalf("error = %v, want %v", err, apperrors.ErrFeedUnavailable)
	}
	if apperrors.GetSuggestion(err) == "" {
		t.Error("expected a suggestion")
	}
}

func TestNewOutput(t *testing.T) {
	out, err := newOutput(config.AudioConfig{Backend: "null"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("newOutput(null) error = %v", err)
	}
	if _, ok := out.(*audio.Null); !ok {
		t.Errorf("newOutput(null) = %T, want *audio.Null", out)
	}

	_, err = newOutput(config.AudioConfig{Backend: "alsa"}, zerolog.Nop())
	if !errors.Is(err, apperrors.ErrInvalidConfig) {
		t.Errorf("newOutput(alsa) error = %v, want %v", err, apperrors.ErrInvalidConfig)
	}
}

func TestNewCatalogWithoutFeeds(t *testing.T) {
	c := config.Default()
	if cat := newCatalog(c, zerolog.Nop()); cat != nil {
		t.Error("newCatalog() with no feeds should be nil")
	}
}

func TestSetValue(t *testing.T) {
	tests := []struct {
		key   string
		value string
		want  any
	}{
		{"playback.volume", "60", 60},
		{"playback.autoplay", "false", false},
		{"media_session.enabled", "1", true},
		{"podcasts.feeds", "https://a.example/rss, ,https://b.example/rss", []string{"https://a.example/rss", "https://b.example/rss"}},
		{"podcasts.feeds", "", []string{}},
		{"station.stream_url", "https://s.example/live", "https://s.example/live"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			raw := map[string]any{}
			if err := setValue(raw, tt.key, tt.value); err != nil {
				t.Fatalf("setValue() error = %v", err)
			}
			section, field, _ := strings.Cut(tt.key, ".")
			got := raw[section].(map[string]any)[field]
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("%s = %#v, want %#v", tt.key, got, tt.want)
			}
		})
	}
}

func TestSetValueErrors(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"volume", "60"},
		{"playback.volume.extra", "60"},
		{".volume", "60"},
		{"playback.volume", "loud"},
		{"playback.autoplay", "maybe"},
	}

	for _, tt := range tests {
		if err := setValue(map[string]any{}, tt.key, tt.value); err == nil {
			t.Errorf("setValue(%q, %q) expected error", tt.key, tt.value)
		}
	}
}

func TestSetValueKeepsOtherKeys(t *testing.T) {
	raw := map[string]any{
		"playback": map[string]any{"volume": int64(80), "max_retries": int64(3)},
	}
	if err := setValue(raw, "playback.volume", "20"); err != nil {
		t.Fatal(err)
	}
	pb := raw["playback"].(map[string]any)
	if pb["max_retries"] != int64(3) {
		t.Errorf("max_retries = %v, want 3", pb["max_retries"])
	}
	if pb["volume"] != 20 {
		t.Errorf("volume = %v, want 20", pb["volume"])
	}
}

func TestCheckRaw(t *testing.T) {
	raw := map[string]any{"playback": map[string]any{"volume": 150}}
	if err := checkRaw(raw); err == nil {
		t.Error("checkRaw() volume 150 expected error")
	}

	raw = map[string]any{"audio": map[string]any{"backend": "null"}}
	if err := checkRaw(raw); err != nil {
		t.Errorf("checkRaw() error = %v", err)
	}
}

func TestEncodeConfigRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := encodeConfig(&buf, config.Default()); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "# On Air Configuration") {
		t.Errorf("missing header:\n%s", buf.String())
	}

	var got config.Config
	if _, err := toml.Decode(buf.String(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := config.Default()
	if got.Station.StreamURL != want.Station.StreamURL {
		t.Errorf("StreamURL = %q, want %q", got.Station.StreamURL, want.Station.StreamURL)
	}
	if got.Playback.MaxRetries != want.Playback.MaxRetries {
		t.Errorf("MaxRetries = %d, want %d", got.Playback.MaxRetries, want.Playback.MaxRetries)
	}
}

func TestPrintEpisodes(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	eps := []core.Episode{
		{Slug: "le-grand-direct", Title: "Le grand direct", FeedName: "Matinale", DurationHint: "58:00", Published: now.Add(-48 * time.Hour)},
		{Slug: "sans-date", Title: "Sans date"},
	}

	var buf bytes.Buffer
	printEpisodes(NewTableWriter(&buf, "SLUG", "TITLE", "SHOW", "LENGTH", "PUBLISHED"), eps, now)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[1], "2 days ago") {
		t.Errorf("row = %q, want relative publish time", lines[1])
	}
	if f := strings.Fields(lines[2]); f[len(f)-1] != "-" {
		t.Errorf("row = %q, want placeholders", lines[2])
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"a longer title", 10, "a longe..."},
		{"émission spéciale", 9, "émissi..."},
		{"abcdef", 2, "ab"},
	}

	for _, tt := range tests {
		if got := TruncateString(tt.in, tt.max); got != tt.want {
			t.Errorf("TruncateString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestBuildVersion(t *testing.T) {
	v := buildVersion()
	if v.Version == "" {
		t.Error("Version is empty")
	}
	if !strings.Contains(v.Platform, "/") {
		t.Errorf("Platform = %q, want os/arch", v.Platform)
	}
}
