package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/inhies/go-bytesize"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/ironsheep/pixelmosh/internal/imaging"
	"github.com/ironsheep/pixelmosh/internal/mosh"
	"github.com/ironsheep/pixelmosh/internal/pngio"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "mosh_load", "mosh_run").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	log := s.log.With(zap.String("tool", params.Name), zap.Duration("elapsed", time.Since(start)))
	if err != nil {
		log.Info("tool failed", zap.Error(err))
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	log.Debug("tool succeeded")

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	case "mosh_load":
		return s.handleMoshLoad(args)
	case "mosh_run":
		return s.handleMoshRun(args)
	case "mosh_new_seed":
		return s.handleMoshNewSeed(args)
	case "mosh_defaults":
		return s.handleMoshDefaults(args)
	case "mosh_compare":
		return s.handleMoshCompare(args)
	case "mosh_save":
		return s.handleMoshSave(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// seedArg accepts a seed as a JSON number or a decimal string, since JSON
// clients lose precision on integers above 2^53.
type seedArg uint64

func (a *seedArg) UnmarshalJSON(data []byte) error {
	text := string(bytes.Trim(data, `"`))
	v, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid seed %s: must be an unsigned 64-bit integer", data)
	}
	*a = seedArg(v)
	return nil
}

// seedResult reports a seed both as a number and as an exact string.
type seedResult struct {
	Seed     uint64 `json:"seed"`
	SeedText string `json:"seed_text"`
}

func newSeedResult(seed uint64) seedResult {
	return seedResult{Seed: seed, SeedText: strconv.FormatUint(seed, 10)}
}

// === Session Handlers ===

type moshLoadArgs struct {
	Path   string `json:"path"`
	Strict bool   `json:"strict"`
}

func (s *Server) handleMoshLoad(args json.RawMessage) (interface{}, error) {
	var a moshLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	// A reload picks up changes on disk.
	s.cache.Evict(a.Path)
	if _, err := s.openSession(a.Path, a.Strict); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

type moshRunArgs struct {
	Path         string   `json:"path"`
	MinRate      *uint16  `json:"min_rate"`
	MaxRate      *uint16  `json:"max_rate"`
	Pixelation   *uint8   `json:"pixelation"`
	LineShift    *float64 `json:"line_shift"`
	Reverse      *float64 `json:"reverse"`
	Flip         *float64 `json:"flip"`
	ChannelSwap  *float64 `json:"channel_swap"`
	ChannelShift *float64 `json:"channel_shift"`
	Seed         *seedArg `json:"seed"`
	Scale        float64  `json:"scale"`
	Preview      *bool    `json:"preview"`
	Remember     bool     `json:"remember"`
}

// options overlays the given arguments on defaults. A missing seed is
// replaced by a new one.
func (a *moshRunArgs) options(defaults mosh.Options) mosh.Options {
	o := defaults
	set(&o.MinRate, a.MinRate)
	set(&o.MaxRate, a.MaxRate)
	set(&o.Pixelation, a.Pixelation)
	set(&o.LineShift, a.LineShift)
	set(&o.Reverse, a.Reverse)
	set(&o.Flip, a.Flip)
	set(&o.ChannelSwap, a.ChannelSwap)
	set(&o.ChannelShift, a.ChannelShift)
	if a.Seed != nil {
		o.Seed = uint64(*a.Seed)
	} else {
		o.NewSeed()
	}
	return o
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

type moshRunResult struct {
	seedResult
	Path       string                 `json:"path"`
	Iterations int                    `json:"iterations"`
	Options    mosh.Options           `json:"options"`
	Preview    *imaging.PreviewResult `json:"preview,omitempty"`
}

func (s *Server) handleMoshRun(args json.RawMessage) (interface{}, error) {
	var a moshRunArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	ss, err := s.sessionFor(a.Path)
	if err != nil {
		return nil, err
	}

	o := a.options(s.sessionDefaults())

	ss.mu.Lock()
	defer ss.mu.Unlock()

	res, err := ss.engine.Mosh(&o)
	if err != nil {
		return nil, err
	}
	ss.last, ss.lastOpts = res, o

	if a.Remember {
		s.setSessionDefaults(o)
	}

	result := &moshRunResult{
		seedResult: newSeedResult(res.Seed),
		Path:       a.Path,
		Iterations: res.Iterations,
		Options:    o,
	}

	if a.Preview == nil || *a.Preview {
		img, err := ss.moshed()
		if err != nil {
			return nil, err
		}
		if result.Preview, err = imaging.Preview(img, a.Scale); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (s *Server) handleMoshNewSeed(json.RawMessage) (interface{}, error) {
	var o mosh.Options
	o.NewSeed()
	return newSeedResult(o.Seed), nil
}

type moshDefaultsArgs struct {
	Reset bool `json:"reset"`
}

func (s *Server) handleMoshDefaults(args json.RawMessage) (interface{}, error) {
	var a moshDefaultsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Reset {
		s.setSessionDefaults(mosh.DefaultOptions())
	}
	return s.sessionDefaults(), nil
}

type moshCompareArgs struct {
	Path    string `json:"path"`
	Diff    bool   `json:"diff"`
	Palette int    `json:"palette"`
}

type moshCompareResult struct {
	*imaging.CompareResult
	seedResult
	PaletteBefore []imaging.ColorFrequency `json:"palette_before,omitempty"`
	PaletteAfter  []imaging.ColorFrequency `json:"palette_after,omitempty"`
}

func (s *Server) handleMoshCompare(args json.RawMessage) (interface{}, error) {
	var a moshCompareArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	ss, err := s.existingSession(a.Path)
	if err != nil {
		return nil, err
	}

	ss.mu.Lock()
	defer ss.mu.Unlock()

	img, err := ss.moshed()
	if err != nil {
		return nil, err
	}
	cmp, err := imaging.Compare(ss.original, img, a.Diff)
	if err != nil {
		return nil, err
	}
	result := &moshCompareResult{CompareResult: cmp, seedResult: newSeedResult(ss.lastOpts.Seed)}

	if a.Palette > 0 {
		if result.PaletteBefore, err = imaging.Palette(ss.original, a.Palette); err != nil {
			return nil, err
		}
		if result.PaletteAfter, err = imaging.Palette(img, a.Palette); err != nil {
			return nil, err
		}
	}
	return result, nil
}

type moshSaveArgs struct {
	Path   string `json:"path"`
	Output string `json:"output"`
}

type moshSaveResult struct {
	seedResult
	Output    string `json:"output"`
	Bytes     int    `json:"bytes"`
	Size      string `json:"size"`
	ColorType string `json:"color_type"`
}

func (s *Server) handleMoshSave(args json.RawMessage) (interface{}, error) {
	var a moshSaveArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Output == "" {
		return nil, fmt.Errorf("output is required")
	}
	out := lo.Ternary(imaging.IsPNGPath(a.Output), a.Output, a.Output+".png")

	ss, err := s.existingSession(a.Path)
	if err != nil {
		return nil, err
	}

	ss.mu.Lock()
	defer ss.mu.Unlock()

	img, err := ss.moshed()
	if err != nil {
		return nil, err
	}
	n, err := pngio.WriteFile(s.cache.Fs(), out, img)
	if err != nil {
		return nil, err
	}

	// Go's encoder has no gray+alpha mode.
	written := lo.Ternary(img.Meta.ColorType == mosh.GrayscaleAlpha, mosh.RGBA, img.Meta.ColorType)

	s.log.Info("saved mosh", zap.String("output", out), zap.Uint64("seed", ss.lastOpts.Seed), zap.Int("bytes", n))
	return &moshSaveResult{
		seedResult: newSeedResult(ss.lastOpts.Seed),
		Output:     out,
		Bytes:      n,
		Size:       bytesize.New(float64(n)).String(),
		ColorType:  written.String(),
	}, nil
}
