package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/ironsheep/pixelmosh/internal/mosh"
	"github.com/ironsheep/pixelmosh/internal/pngio"
)

// writeTestImage writes a width x height gradient PNG to fs.
func writeTestImage(t *testing.T, fs afero.Fs, path string, width, height int) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 5), uint8(y * 5), uint8(x ^ y), 255})
		}
	}
	writePNG(t, fs, path, img)
}

func writePNG(t *testing.T, fs afero.Fs, path string, img image.Image) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	if err := afero.WriteFile(fs, path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}
}

// callTool runs a tools/call request and decodes the text content into out.
// It returns the JSON-RPC error, if any.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}, out interface{}) *MCPError {
	t.Helper()

	paramsJSON, _ := json.Marshal(map[string]interface{}{
		"name":      name,
		"arguments": args,
	})
	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})

	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		return resp.Error
	}

	content := resp.Result.(map[string]interface{})["content"].([]map[string]interface{})
	if out != nil {
		if err := json.Unmarshal([]byte(content[0]["text"].(string)), out); err != nil {
			t.Fatalf("failed to decode %s result: %v", name, err)
		}
	}
	return nil
}

type runResponse struct {
	Seed       uint64       `json:"seed"`
	SeedText   string       `json:"seed_text"`
	Iterations int          `json:"iterations"`
	Options    mosh.Options `json:"options"`
	Preview    *struct {
		Width       int    `json:"width"`
		Height      int    `json:"height"`
		ImageBase64 string `json:"image_base64"`
	} `json:"preview"`
}

func TestHandleMoshLoad(t *testing.T) {
	s, fs := newTestServer(t)
	writeTestImage(t, fs, "/img.png", 40, 30)

	var info struct {
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		ColorType string `json:"color_type"`
		Moshable  bool   `json:"moshable"`
	}
	if err := callTool(t, s, "mosh_load", map[string]interface{}{"path": "/img.png"}, &info); err != nil {
		t.Fatalf("mosh_load failed: %v", err)
	}

	if info.Width != 40 || info.Height != 30 {
		t.Errorf("dimensions: got %dx%d, want 40x30", info.Width, info.Height)
	}
	if info.ColorType != "rgb" {
		t.Errorf("color type: got %s, want rgb", info.ColorType)
	}
	if !info.Moshable {
		t.Error("rgb image reported as not moshable")
	}

	if err := callTool(t, s, "mosh_load", map[string]interface{}{"path": "/missing.png"}, nil); err == nil {
		t.Error("expected error for missing file")
	}
	if err := callTool(t, s, "mosh_load", map[string]interface{}{}, nil); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestHandleMoshRun_Deterministic(t *testing.T) {
	s, fs := newTestServer(t)
	writeTestImage(t, fs, "/img.png", 32, 32)

	args := map[string]interface{}{
		"path":       "/img.png",
		"seed":       12345,
		"pixelation": 4,
		"min_rate":   2,
		"max_rate":   6,
	}

	var first, second runResponse
	if err := callTool(t, s, "mosh_run", args, &first); err != nil {
		t.Fatalf("mosh_run failed: %v", err)
	}
	if err := callTool(t, s, "mosh_run", args, &second); err != nil {
		t.Fatalf("mosh_run failed: %v", err)
	}

	if first.Seed != 12345 || first.SeedText != "12345" {
		t.Errorf("seed: got %d (%s), want 12345", first.Seed, first.SeedText)
	}
	if first.Iterations < 2 || first.Iterations > 6 {
		t.Errorf("iterations %d outside [2, 6]", first.Iterations)
	}
	if first.Preview == nil || second.Preview == nil {
		t.Fatal("preview missing")
	}
	if first.Preview.ImageBase64 != second.Preview.ImageBase64 {
		t.Error("same seed and options produced different images")
	}
	if first.Options.Pixelation != 4 {
		t.Errorf("pixelation: got %d, want 4", first.Options.Pixelation)
	}
	// Unset options fall back to the defaults.
	if first.Options.Flip != mosh.DefaultOptions().Flip {
		t.Errorf("flip: got %v, want default", first.Options.Flip)
	}
}

func TestHandleMoshRun_MatchesEngine(t *testing.T) {
	s, fs := newTestServer(t)
	writeTestImage(t, fs, "/img.png", 16, 16)

	var resp runResponse
	if err := callTool(t, s, "mosh_run", map[string]interface{}{"path": "/img.png", "seed": 7}, &resp); err != nil {
		t.Fatalf("mosh_run failed: %v", err)
	}

	data, err := base64.StdEncoding.DecodeString(resp.Preview.ImageBase64)
	if err != nil {
		t.Fatalf("bad preview: %v", err)
	}
	got, err := pngio.Decode(data)
	if err != nil {
		t.Fatalf("bad preview png: %v", err)
	}

	orig, err := pngio.ReadFile(fs, "/img.png")
	if err != nil {
		t.Fatal(err)
	}
	o := resp.Options
	if err := mosh.Mosh(orig.Meta, orig.Pix, &o); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got.Pix, orig.Pix) {
		t.Error("preview differs from an in-place mosh with the reported options")
	}
}

func TestHandleMoshRun_Seeds(t *testing.T) {
	s, fs := newTestServer(t)
	writeTestImage(t, fs, "/img.png", 8, 8)

	mosh.SetTestMode(true)
	defer mosh.SetTestMode(false)

	var resp runResponse
	if err := callTool(t, s, "mosh_run", map[string]interface{}{"path": "/img.png", "preview": false}, &resp); err != nil {
		t.Fatalf("mosh_run failed: %v", err)
	}
	if resp.Seed != mosh.TestSeed {
		t.Errorf("missing seed: got %d, want %d", resp.Seed, mosh.TestSeed)
	}
	if resp.Preview != nil {
		t.Error("preview returned although disabled")
	}

	big := "18446744073709551615"
	if err := callTool(t, s, "mosh_run", map[string]interface{}{"path": "/img.png", "seed": big, "pixelation": 2}, &resp); err != nil {
		t.Fatalf("mosh_run with string seed failed: %v", err)
	}
	if resp.SeedText != big {
		t.Errorf("seed text: got %s, want %s", resp.SeedText, big)
	}

	if err := callTool(t, s, "mosh_run", map[string]interface{}{"path": "/img.png", "seed": -1}, nil); err == nil {
		t.Error("expected error for negative seed")
	}
}

func TestHandleMoshRun_Errors(t *testing.T) {
	s, fs := newTestServer(t)
	writeTestImage(t, fs, "/small.png", 4, 4)

	pal := make(color.Palette, 20)
	for i := range pal {
		pal[i] = color.Gray{Y: uint8(i * 10)}
	}
	writePNG(t, fs, "/indexed.png", image.NewPaletted(image.Rect(0, 0, 8, 8), pal))

	tests := []struct {
		name    string
		args    map[string]interface{}
		wantMsg string
	}{
		{"bad probability", map[string]interface{}{"path": "/small.png", "flip": 1.5}, "flip"},
		{"pixelation too large", map[string]interface{}{"path": "/small.png", "pixelation": 9}, "pixelation"},
		{"indexed", map[string]interface{}{"path": "/indexed.png"}, "unsupported color type"},
		{"missing path", map[string]interface{}{}, "path is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := callTool(t, s, "mosh_run", tt.args, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if data, _ := err.Data.(string); !strings.Contains(data, tt.wantMsg) {
				t.Errorf("error data %q does not mention %q", data, tt.wantMsg)
			}
		})
	}
}

func TestHandleMoshDefaults_Remember(t *testing.T) {
	s, fs := newTestServer(t)
	writeTestImage(t, fs, "/img.png", 8, 8)

	run := map[string]interface{}{"path": "/img.png", "reverse": 0.9, "pixelation": 2, "remember": true, "preview": false}
	if err := callTool(t, s, "mosh_run", run, nil); err != nil {
		t.Fatalf("mosh_run failed: %v", err)
	}

	var defaults mosh.Options
	if err := callTool(t, s, "mosh_defaults", nil, &defaults); err != nil {
		t.Fatalf("mosh_defaults failed: %v", err)
	}
	if defaults.Reverse != 0.9 || defaults.Pixelation != 2 {
		t.Errorf("remembered defaults not applied: %+v", defaults)
	}

	var resp runResponse
	if err := callTool(t, s, "mosh_run", map[string]interface{}{"path": "/img.png", "preview": false}, &resp); err != nil {
		t.Fatalf("mosh_run failed: %v", err)
	}
	if resp.Options.Reverse != 0.9 {
		t.Errorf("run did not use remembered reverse: %v", resp.Options.Reverse)
	}

	if err := callTool(t, s, "mosh_defaults", map[string]interface{}{"reset": true}, &defaults); err != nil {
		t.Fatalf("mosh_defaults reset failed: %v", err)
	}
	if defaults.Reverse != mosh.DefaultOptions().Reverse {
		t.Errorf("reset did not restore reverse: %v", defaults.Reverse)
	}
}

func TestHandleMoshNewSeed(t *testing.T) {
	s, _ := newTestServer(t)

	mosh.SetTestMode(true)
	defer mosh.SetTestMode(false)

	var resp struct {
		Seed     uint64 `json:"seed"`
		SeedText string `json:"seed_text"`
	}
	if err := callTool(t, s, "mosh_new_seed", nil, &resp); err != nil {
		t.Fatalf("mosh_new_seed failed: %v", err)
	}
	if resp.Seed != mosh.TestSeed || resp.SeedText != "901042006" {
		t.Errorf("got %+v, want test seed", resp)
	}
}

func TestHandleMoshCompare(t *testing.T) {
	s, fs := newTestServer(t)
	writeTestImage(t, fs, "/img.png", 24, 24)

	if err := callTool(t, s, "mosh_compare", map[string]interface{}{"path": "/img.png"}, nil); err == nil {
		t.Error("expected error before load")
	}
	if err := callTool(t, s, "mosh_load", map[string]interface{}{"path": "/img.png"}, nil); err != nil {
		t.Fatalf("mosh_load failed: %v", err)
	}
	if err := callTool(t, s, "mosh_compare", map[string]interface{}{"path": "/img.png"}, nil); err == nil {
		t.Error("expected error before run")
	}

	if err := callTool(t, s, "mosh_run", map[string]interface{}{"path": "/img.png", "seed": 3, "pixelation": 4, "preview": false}, nil); err != nil {
		t.Fatalf("mosh_run failed: %v", err)
	}

	var cmp struct {
		Seed          uint64  `json:"seed"`
		ChangedPixels int     `json:"changed_pixels"`
		ChangedRatio  float64 `json:"changed_ratio"`
		MeanDeltaE    float64 `json:"mean_delta_e"`
		DiffBase64    string  `json:"diff_base64"`
		PaletteBefore []struct {
			Hex        string  `json:"hex"`
			Percentage float64 `json:"percentage"`
		} `json:"palette_before"`
		PaletteAfter []struct {
			Hex string `json:"hex"`
		} `json:"palette_after"`
	}
	if err := callTool(t, s, "mosh_compare", map[string]interface{}{"path": "/img.png", "diff": true, "palette": 3}, &cmp); err != nil {
		t.Fatalf("mosh_compare failed: %v", err)
	}

	if cmp.Seed != 3 {
		t.Errorf("seed: got %d, want 3", cmp.Seed)
	}
	if cmp.ChangedPixels == 0 || cmp.MeanDeltaE <= 0 {
		t.Errorf("pixelation of a gradient should change pixels: %+v", cmp)
	}
	if cmp.ChangedRatio <= 0 || cmp.ChangedRatio > 1 {
		t.Errorf("changed ratio out of range: %v", cmp.ChangedRatio)
	}
	if cmp.DiffBase64 == "" {
		t.Error("diff image missing")
	}
	if len(cmp.PaletteBefore) == 0 || len(cmp.PaletteBefore) > 3 || len(cmp.PaletteAfter) == 0 {
		t.Fatalf("palette sizes: before %d, after %d", len(cmp.PaletteBefore), len(cmp.PaletteAfter))
	}
	if cmp.PaletteBefore[0].Percentage <= 0 || cmp.PaletteBefore[0].Hex == "" {
		t.Errorf("unexpected palette entry: %+v", cmp.PaletteBefore[0])
	}

	if err := callTool(t, s, "mosh_compare", map[string]interface{}{"path": "/img.png", "palette": 1000}, nil); err == nil {
		t.Error("expected error for oversized palette")
	}
}

func TestHandleMoshSave(t *testing.T) {
	s, fs := newTestServer(t)
	writeTestImage(t, fs, "/img.png", 16, 12)

	if err := callTool(t, s, "mosh_run", map[string]interface{}{"path": "/img.png", "seed": 99, "preview": false}, nil); err != nil {
		t.Fatalf("mosh_run failed: %v", err)
	}

	var saved struct {
		Output string `json:"output"`
		Bytes  int    `json:"bytes"`
		Size   string `json:"size"`
		Seed   uint64 `json:"seed"`
	}
	if err := callTool(t, s, "mosh_save", map[string]interface{}{"path": "/img.png", "output": "/out/glitch"}, &saved); err != nil {
		t.Fatalf("mosh_save failed: %v", err)
	}

	if saved.Output != "/out/glitch.png" {
		t.Errorf("output: got %s, want /out/glitch.png", saved.Output)
	}
	if saved.Seed != 99 || saved.Bytes == 0 || saved.Size == "" {
		t.Errorf("unexpected save result: %+v", saved)
	}

	img, err := pngio.ReadFile(fs, "/out/glitch.png")
	if err != nil {
		t.Fatalf("saved file unreadable: %v", err)
	}

	orig, err := pngio.ReadFile(fs, "/img.png")
	if err != nil {
		t.Fatal(err)
	}
	o := mosh.DefaultOptions()
	o.Seed = 99
	if err := mosh.Mosh(orig.Meta, orig.Pix, &o); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(img.Pix, orig.Pix) {
		t.Error("saved image differs from the seeded mosh")
	}

	if err := callTool(t, s, "mosh_save", map[string]interface{}{"path": "/img.png"}, nil); err == nil {
		t.Error("expected error for missing output")
	}
	if err := callTool(t, s, "mosh_save", map[string]interface{}{"path": "/other.png", "output": "/x.png"}, nil); err == nil {
		t.Error("expected error for image that was never loaded")
	}
}

func TestHandleToolsCall_Errors(t *testing.T) {
	s, _ := newTestServer(t)

	if err := callTool(t, s, "image_crop", map[string]interface{}{}, nil); err == nil || err.Code != -32000 {
		t.Errorf("unknown tool: got %+v, want code -32000", err)
	}

	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: json.RawMessage(`[1,2]`)})
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Errorf("bad params: got %+v, want code -32602", resp.Error)
	}
}
