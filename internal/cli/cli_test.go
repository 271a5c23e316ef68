package cli_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmylchreest/skytint/internal/cli"
	"github.com/jmylchreest/skytint/internal/version"
)

// isolate clears the configuration environment and moves into an empty
// directory so no .env file is picked up.
func isolate(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SKYTINT_ENV_FILE", "SKYTINT_FESTIVALS", "SKYTINT_CITY_MATCH",
		"SKYTINT_CACHE", "SKYTINT_CACHE_DIR", "SKYTINT_CACHE_TTL", "SKYTINT_REDIS_URL",
		"SKYTINT_LISTEN", "SKYTINT_ARTWORK_RATE", "SKYTINT_GENAI_BACKEND",
		"GOOGLE_API_KEY", "GEMINI_API_KEY", "GOOGLE_CLOUD_PROJECT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Chdir(t.TempDir())
}

// run executes the CLI with args and returns stdout and the command error.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer
	rootCmd := cli.NewRootCmd()
	rootCmd.SetOut(&outBuf)
	rootCmd.SetErr(&errBuf)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return outBuf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if strings.TrimSpace(out) != version.String() {
		t.Errorf("version output = %q, want %q", out, version.String())
	}
}

func TestOnColourCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{
			name: "Text",
			args: []string{"oncolour", "#FFFFFF", "#000000"},
			want: "#FFFFFF\t#000000\n#000000\t#FFFFFF\n",
		},
		{
			name: "Alias",
			args: []string{"oncolor", "#000"},
			want: "#000\t#FFFFFF\n",
		},
		{
			name: "Gradient",
			args: []string{"oncolour", "linear-gradient(90deg, #FFFFFF 0%, #000000 100%)"},
			want: "linear-gradient(90deg, #FFFFFF 0%, #000000 100%)\t#000000\n",
		},
		{
			name: "InvalidFallsBackToWhiteBackground",
			args: []string{"oncolour", "blue"},
			want: "blue\t#000000\n",
		},
		{
			name:    "NoArgs",
			args:    []string{"oncolour"},
			wantErr: true,
		},
		{
			name:    "BadFormat",
			args:    []string{"oncolour", "-f", "xml", "#FFFFFF"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestOnColourCommand_JSON(t *testing.T) {
	out, err := run(t, "oncolour", "-f", "json", "#FFFFFF")
	if err != nil {
		t.Fatalf("oncolour failed: %v", err)
	}

	var results []struct {
		Background string  `json:"background"`
		Kind       string  `json:"kind"`
		OnColour   string  `json:"onColour"`
		Contrast   float64 `json:"contrast"`
	}
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Kind != "hex" || results[0].OnColour != "#000000" || math.Abs(results[0].Contrast-21) > 1e-9 {
		t.Errorf("result = %+v", results[0])
	}
}

func TestOnColourCommand_Table(t *testing.T) {
	out, err := run(t, "oncolour", "-f", "table", "#FFFFFF")
	if err != nil {
		t.Fatalf("oncolour failed: %v", err)
	}
	if !strings.Contains(out, "Background") || !strings.Contains(out, "21.00") {
		t.Errorf("table output missing content:\n%s", out)
	}
}

type festivalJSON struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	City     string `json:"city"`
	OnColour string `json:"onColour"`
}

func TestFestivalsCommand(t *testing.T) {
	isolate(t)

	out, err := run(t, "festivals", "--city", "Munich", "--date", "2025-09-25", "-f", "json")
	if err != nil {
		t.Fatalf("festivals failed: %v", err)
	}

	var got []festivalJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d festivals, want 1: %+v", len(got), got)
	}
	if got[0].Name != "Oktoberfest" || got[0].City != "Munich" || got[0].OnColour != "#FFFFFF" {
		t.Errorf("festival = %+v", got[0])
	}
}

func TestFestivalsCommand_CustomTable(t *testing.T) {
	isolate(t)

	tablePath := filepath.Join(t.TempDir(), "festivals.yaml")
	table := `july:
  - name: Harbour Lights
    location: "⚓ Port Town"
    startDay: 10
    endDay: 12
    color: "#FFD700"
    type: lights
  - name: Harbour Lights
    location: "⚓ Port Town"
    startDay: 20
    endDay: 21
    color: "#FFD700"
    type: lights
`
	if err := os.WriteFile(tablePath, []byte(table), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"ExactMiss", []string{"--city", "port town"}, 0},
		{"Fold", []string{"--city", "port town", "--city-match", "fold"}, 1},
		{"RangeDedup", []string{"--city", "Port Town", "--date", "2025-07-11", "--date", "2025-07-20"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"festivals", "--festivals", tablePath, "-f", "json"}, tt.args...)
			if !strings.Contains(strings.Join(tt.args, " "), "--date") {
				args = append(args, "--date", "2025-07-11")
			}
			out, err := run(t, args...)
			if err != nil {
				t.Fatalf("festivals failed: %v", err)
			}
			var got []festivalJSON
			if err := json.Unmarshal([]byte(out), &got); err != nil {
				t.Fatalf("invalid JSON %q: %v", out, err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d festivals, want %d", len(got), tt.want)
			}
		})
	}
}

func TestFestivalsCommand_Table(t *testing.T) {
	isolate(t)

	out, err := run(t, "festivals", "--city", "Munich", "--date", "2025-09-28", "--date", "2025-10-02")
	if err != nil {
		t.Fatalf("festivals failed: %v", err)
	}
	if strings.Count(out, "Oktoberfest") != 1 {
		t.Errorf("expected one Oktoberfest row:\n%s", out)
	}

	out, err = run(t, "festivals", "--city", "Atlantis", "--date", "2025-09-28")
	if err != nil {
		t.Fatalf("festivals failed: %v", err)
	}
	if !strings.Contains(out, "No festivals in Atlantis") {
		t.Errorf("unexpected output for empty result: %q", out)
	}
}

func TestFestivalsCommand_NoDates(t *testing.T) {
	isolate(t)

	out, err := run(t, "festivals", "--city", "Munich", "-f", "json")
	if err != nil {
		t.Fatalf("festivals failed: %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("json output = %q, want []", out)
	}

	out, err = run(t, "festivals", "--city", "Munich")
	if err != nil {
		t.Fatalf("festivals failed: %v", err)
	}
	if !strings.Contains(out, "No festivals in Munich") {
		t.Errorf("table output = %q", out)
	}
}

func TestFestivalsCommand_Errors(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		args []string
	}{
		{"MissingCity", []string{"festivals", "--date", "2025-09-25"}},
		{"ThreeDates", []string{"festivals", "--city", "Munich", "--date", "2025-09-25", "--date", "2025-09-26", "--date", "2025-09-27"}},
		{"BadDate", []string{"festivals", "--city", "Munich", "--date", "25/09/2025"}},
		{"BadCityMatch", []string{"festivals", "--city", "Munich", "--date", "2025-09-25", "--city-match", "fuzzy"}},
		{"MissingTable", []string{"festivals", "--city", "Munich", "--date", "2025-09-25", "--festivals", "missing.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestThemeCommand(t *testing.T) {
	isolate(t)

	out, err := run(t, "theme", "--name", "munich", "--primary", "#1E72AE",
		"--city", "Munich", "--date", "2025-09-25")
	if err != nil {
		t.Fatalf("theme failed: %v", err)
	}
	for _, want := range []string{
		"--skytint-primary: #1e72ae;",
		"--skytint-on-primary: #FFFFFF;",
		"--skytint-background: #ffffff;",
		".skytint-card--oktoberfest {",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("CSS missing %q:\n%s", want, out)
		}
	}
}

func TestThemeCommand_JSONToFile(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "theme.json")
	out, err := run(t, "theme", "--primary", "#F2C94C", "-f", "json", "-o", path)
	if err != nil {
		t.Fatalf("theme failed: %v", err)
	}
	if out != "" {
		t.Errorf("expected no stdout when writing to a file, got %q", out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got struct {
		Name  string `json:"name"`
		Cards []any  `json:"cards"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Name != "skytint" || got.Cards == nil || len(got.Cards) != 0 {
		t.Errorf("theme = %+v", got)
	}
}

func TestThemeCommand_Invalid(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		args []string
	}{
		{"MissingPrimary", []string{"theme"}},
		{"BadPrimary", []string{"theme", "--primary", "blue"}},
		{"BadBackground", []string{"theme", "--primary", "#000000", "--background", "nope"}},
		{"BadFormat", []string{"theme", "--primary", "#000000", "-f", "scss"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func writePNG(t *testing.T, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := range 16 {
		for x := range 16 {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "logo.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractCommand(t *testing.T) {
	path := writePNG(t, color.RGBA{R: 255, A: 255})

	out, err := run(t, "extract", "-c", "1", "--seed", "1", path)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if out != "#ff0000\n" {
		t.Errorf("output = %q, want %q", out, "#ff0000\n")
	}

	out, err = run(t, "extract", "-c", "1", "--seed", "1", "-f", "table", path)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if !strings.Contains(out, "#ff0000") || !strings.Contains(out, "100.0%") {
		t.Errorf("table output missing content:\n%s", out)
	}
}

func TestExtractCommand_Errors(t *testing.T) {
	path := writePNG(t, color.RGBA{B: 255, A: 255})

	tests := []struct {
		name string
		args []string
	}{
		{"UnsupportedExtension", []string{"extract", "notes.txt"}},
		{"MissingFile", []string{"extract", filepath.Join(t.TempDir(), "missing.png")}},
		{"ZeroColours", []string{"extract", "-c", "0", path}},
		{"BadAlgorithm", []string{"extract", "-a", "median", path}},
		{"BadFormat", []string{"extract", "-f", "yaml", path}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestArtworkCommand_DryRun(t *testing.T) {
	isolate(t)

	out, err := run(t, "artwork", "--city", "Munich", "--date", "2025-09-25", "--dry-run")
	if err != nil {
		t.Fatalf("artwork failed: %v", err)
	}
	if !strings.HasPrefix(out, "Oktoberfest\tA vibrant celebratory illustration of Oktoberfest in Munich") {
		t.Errorf("unexpected dry-run output: %q", out)
	}
}

func TestArtworkCommand_NotConfigured(t *testing.T) {
	isolate(t)

	_, err := run(t, "artwork", "--city", "Munich", "--date", "2025-09-25")
	if err == nil || !strings.Contains(err.Error(), "not configured") {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestArtworkCommand_NoFestivals(t *testing.T) {
	isolate(t)

	out, err := run(t, "artwork", "--city", "Atlantis", "--date", "2025-09-25")
	if err != nil {
		t.Fatalf("artwork failed: %v", err)
	}
	if !strings.Contains(out, "No festivals in Atlantis") {
		t.Errorf("unexpected output: %q", out)
	}
}
