package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"github.com/ironsheep/mapmerge/internal/changeset"
	"github.com/ironsheep/mapmerge/internal/config"
	"github.com/ironsheep/mapmerge/internal/pipeline"
	"github.com/ironsheep/mapmerge/internal/raster"
	"github.com/ironsheep/mapmerge/internal/render"
	"github.com/ironsheep/mapmerge/internal/spatial"
)

const defaultLimit = 50

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "map_merge", "map_compare_pair").
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
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

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
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "map_merge":
		return s.handleMapMerge(ctx, args)
	case "map_changes":
		return s.handleMapChanges(args)
	case "map_compare_pair":
		return s.handleMapComparePair(args)
	case "map_classify_pixel":
		return s.handleMapClassifyPixel(ctx, args)
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
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Shared result types ===

// PixelInfo is one changed pixel and its new color.
type PixelInfo struct {
	X   int    `json:"x"`
	Y   int    `json:"y"`
	Hex string `json:"hex,omitempty"`
}

// Bounds is an inclusive-exclusive rectangle in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func points(pts []raster.Point, limit int) []PixelInfo {
	n := min(len(pts), limit)
	out := make([]PixelInfo, n)
	for i, p := range pts[:n] {
		out[i] = PixelInfo{X: p.X, Y: p.Y}
	}
	return out
}

func finite(d float64) *float64 {
	if math.IsInf(d, 0) || math.IsNaN(d) {
		return nil
	}
	d = math.Round(d*100) / 100
	return &d
}

// mapsConfig builds a merge configuration for a maps directory. Unset
// arguments keep the command-line defaults, except that outputs go next to
// the maps directory rather than into the server's working directory.
func mapsConfig(mapsDir, baseFile string, tolerance *float64, exclude []string) (*config.Config, error) {
	if mapsDir == "" {
		return nil, errors.New("maps_dir is required")
	}
	cfg := config.Default()
	cfg.MapsDir = mapsDir
	cfg.OutputDir = filepath.Dir(filepath.Clean(mapsDir))
	if baseFile != "" {
		cfg.BaseFile = baseFile
	}
	if tolerance != nil {
		cfg.Tolerance = *tolerance
	}
	if exclude != nil {
		cfg.Exclude = exclude
	}
	return cfg, nil
}

func (s *Server) loadPair(basePath, variantPath string) ([]changeset.Change, error) {
	base, err := s.cache.Load(basePath)
	if err != nil {
		return nil, err
	}
	v, err := s.cache.Load(variantPath)
	if err != nil {
		return nil, err
	}
	changes, err := changeset.Extract(base, v)
	if err != nil {
		return nil, fmt.Errorf("variant %s: %w", filepath.Base(variantPath), err)
	}
	return changes, nil
}

// === Merge ===

type mapMergeArgs struct {
	MapsDir        string   `json:"maps_dir"`
	BaseFile       string   `json:"base_file"`
	OutputDir      string   `json:"output_dir"`
	Tolerance      *float64 `json:"tolerance"`
	Exclude        []string `json:"exclude"`
	SummaryFile    string   `json:"summary_file"`
	OverlayFile    string   `json:"overlay_file"`
	ReviewCropFile string   `json:"review_crop_file"`
	DryRun         bool     `json:"dry_run"`
}

// MergeResult is returned by map_merge.
type MergeResult struct {
	*pipeline.Summary
	DryRun bool `json:"dry_run"`
}

func (s *Server) handleMapMerge(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a mapMergeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	cfg, err := mapsConfig(a.MapsDir, a.BaseFile, a.Tolerance, a.Exclude)
	if err != nil {
		return nil, err
	}
	if a.OutputDir != "" {
		cfg.OutputDir = a.OutputDir
	}
	cfg.SummaryFile = a.SummaryFile
	cfg.OverlayFile = a.OverlayFile
	cfg.ReviewCropFile = a.ReviewCropFile

	m, err := pipeline.Prepare(ctx, cfg, s.logger, s.cache.Load)
	if err != nil {
		return nil, err
	}
	if !a.DryRun {
		if err := m.Write(cfg, s.logger); err != nil {
			return nil, err
		}
	}
	return MergeResult{Summary: m.Summary, DryRun: a.DryRun}, nil
}

// === Changes ===

type mapChangesArgs struct {
	Base    string `json:"base"`
	Variant string `json:"variant"`
	Limit   int    `json:"limit"`
}

// ChangesResult is returned by map_changes.
type ChangesResult struct {
	Variant string      `json:"variant"`
	Count   int         `json:"count"`
	Bounds  *Bounds     `json:"bounds,omitempty"`
	Changes []PixelInfo `json:"changes"`
}

func (s *Server) handleMapChanges(args json.RawMessage) (interface{}, error) {
	var a mapChangesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Limit <= 0 {
		a.Limit = defaultLimit
	}

	changes, err := s.loadPair(a.Base, a.Variant)
	if err != nil {
		return nil, err
	}

	res := ChangesResult{
		Variant: filepath.Base(a.Variant),
		Count:   len(changes),
		Changes: make([]PixelInfo, 0, min(len(changes), a.Limit)),
	}
	for _, c := range changes[:min(len(changes), a.Limit)] {
		res.Changes = append(res.Changes, PixelInfo{X: c.Point.X, Y: c.Point.Y, Hex: render.Hex(c.Color)})
	}

	base, err := s.cache.Load(a.Base)
	if err != nil {
		return nil, err
	}
	set := changeset.Set{Changes: changes}
	if r, ok := raster.ReviewRegion(base, set.Points(), 0); ok {
		res.Bounds = &Bounds{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
	}
	return res, nil
}

// === Pair comparison ===

type mapComparePairArgs struct {
	Base      string   `json:"base"`
	A         string   `json:"a"`
	B         string   `json:"b"`
	Tolerance *float64 `json:"tolerance"`
	Limit     int      `json:"limit"`
}

// ComparePairResult is returned by map_compare_pair.
type ComparePairResult struct {
	A               string      `json:"a"`
	B               string      `json:"b"`
	Tolerance       float64     `json:"tolerance"`
	ChangesA        int         `json:"changes_a"`
	ChangesB        int         `json:"changes_b"`
	MinDistance     *float64    `json:"min_distance"`
	ConflictedCount int         `json:"conflicted_count"`
	NearMissCount   int         `json:"near_miss_count"`
	Conflicted      []PixelInfo `json:"conflicted"`
	NearMiss        []PixelInfo `json:"near_miss"`
}

func (s *Server) handleMapComparePair(args json.RawMessage) (interface{}, error) {
	var a mapComparePairArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Limit <= 0 {
		a.Limit = defaultLimit
	}
	tolerance := config.DefaultTolerance
	if a.Tolerance != nil {
		tolerance = *a.Tolerance
	}
	if tolerance < 0 {
		return nil, fmt.Errorf("tolerance must be >= 0, got %g", tolerance)
	}

	ca, err := s.loadPair(a.Base, a.A)
	if err != nil {
		return nil, err
	}
	cb, err := s.loadPair(a.Base, a.B)
	if err != nil {
		return nil, err
	}

	pr := spatial.Analyze(ca, cb, tolerance)
	return ComparePairResult{
		A:               filepath.Base(a.A),
		B:               filepath.Base(a.B),
		Tolerance:       tolerance,
		ChangesA:        len(ca),
		ChangesB:        len(cb),
		MinDistance:     finite(pr.MinDistance),
		ConflictedCount: len(pr.Conflicted),
		NearMissCount:   len(pr.NearMiss),
		Conflicted:      points(pr.Conflicted, a.Limit),
		NearMiss:        points(pr.NearMiss, a.Limit),
	}, nil
}

// === Pixel classification ===

type mapClassifyPixelArgs struct {
	MapsDir   string   `json:"maps_dir"`
	BaseFile  string   `json:"base_file"`
	X         int      `json:"x"`
	Y         int      `json:"y"`
	Tolerance *float64 `json:"tolerance"`
}

// VariantColor is the color one variant writes at a pixel.
type VariantColor struct {
	Variant string `json:"variant"`
	Hex     string `json:"hex"`
}

// ClassifyPixelResult is returned by map_classify_pixel.
type ClassifyPixelResult struct {
	X              int            `json:"x"`
	Y              int            `json:"y"`
	Classification string         `json:"classification"`
	BaseHex        string         `json:"base_hex"`
	MergedHex      string         `json:"merged_hex"`
	Variants       []VariantColor `json:"variants"`
}

func (s *Server) handleMapClassifyPixel(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a mapClassifyPixelArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	cfg, err := mapsConfig(a.MapsDir, a.BaseFile, a.Tolerance, nil)
	if err != nil {
		return nil, err
	}

	m, err := pipeline.Prepare(ctx, cfg, s.logger, s.cache.Load)
	if err != nil {
		return nil, err
	}

	p := raster.Point{X: a.X, Y: a.Y}
	if !m.Base.Contains(p) {
		return nil, fmt.Errorf("pixel %s outside %dx%d map", p, m.Base.Width(), m.Base.Height())
	}

	res := ClassifyPixelResult{
		X:              p.X,
		Y:              p.Y,
		Classification: m.Result.Of(p).String(),
		BaseHex:        render.Hex(m.Base.At(p)),
		MergedHex:      render.Hex(m.Output.Merged.At(p)),
		Variants:       []VariantColor{},
	}
	for _, set := range m.Sets {
		for _, c := range set.Changes {
			if c.Point == p {
				res.Variants = append(res.Variants, VariantColor{Variant: set.Name, Hex: render.Hex(c.Color)})
				break
			}
		}
	}
	return res, nil
}
