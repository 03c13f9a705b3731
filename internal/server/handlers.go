package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/ironsheep/image-edit-mcp/internal/command"
	"github.com/ironsheep/image-edit-mcp/internal/document"
	"github.com/ironsheep/image-edit-mcp/internal/imaging"
	"github.com/ironsheep/image-edit-mcp/internal/logger"
	"github.com/ironsheep/image-edit-mcp/internal/selection"
)

// JSON-RPC error codes for tool failures.
const (
	CodeToolFailed       = -32000
	CodeOpenFailed       = -32001
	CodeSaveFailed       = -32002
	CodeInvalidOperation = -32003
	CodeNoActiveDocument = -32004
	CodeDocumentBusy     = -32005
	CodeInvalidParams    = -32602
)

// toolPrefix is prepended to command ids to form tool names.
const toolPrefix = "image_"

// errInvalidArgs marks tool arguments that could not be decoded.
var errInvalidArgs = errors.New("invalid arguments")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_open", "image_rotate_right").
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
// Tool failures map to a code from errorCode; the error text goes in data.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, CodeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		logger.Debugf("Tool %s failed: %v", params.Name, err)
		code := errorCode(err)
		if code == CodeInvalidParams {
			return s.errorResponse(req.ID, code, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, code, "Tool execution failed", err.Error())
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

// errorCode picks the JSON-RPC code for a tool error.
func errorCode(err error) int {
	switch {
	case errors.Is(err, errInvalidArgs):
		return CodeInvalidParams
	case errors.Is(err, document.ErrOpenFailed):
		return CodeOpenFailed
	case errors.Is(err, document.ErrSaveFailed):
		return CodeSaveFailed
	case errors.Is(err, document.ErrInvalidOperation), errors.Is(err, selection.ErrNotSelecting),
		errors.Is(err, selection.ErrViewportChanged):
		return CodeInvalidOperation
	case errors.Is(err, document.ErrNoActiveDocument):
		return CodeNoActiveDocument
	case errors.Is(err, document.ErrDocumentBusy):
		return CodeDocumentBusy
	}
	return CodeToolFailed
}

// executeTool dispatches tool execution to the appropriate handler function.
// Names that are not session tools are looked up in the command table.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Document
	case "image_open":
		return s.handleOpen(ctx, args)
	case "image_info":
		return s.session.doc.Info()
	case "image_history":
		return s.handleHistory()
	case "image_save":
		return s.handleSave(ctx, args, false)
	case "image_export":
		return s.handleSave(ctx, args, true)
	case "image_render":
		return s.handleRender(args)
	case "image_sample_color":
		return s.handleSampleColor(args)

	// History
	case "image_undo":
		return s.handleStep(s.session.doc.Undo)
	case "image_redo":
		return s.handleStep(s.session.doc.Redo)

	// Selection
	case "image_select_start":
		return s.handleSelectStart()
	case "image_select_down":
		return s.handleSelectDown(args)
	case "image_select_move":
		return s.handleSelectMove(args)
	case "image_select_up":
		return s.handleSelectUp(args)
	case "image_select_cancel":
		s.session.selection.Cancel()
		return selectionResult{State: s.session.selection.State().String()}, nil
	}

	if id, ok := strings.CutPrefix(name, toolPrefix); ok {
		if _, ok := s.session.commands[id]; ok {
			return s.handleCommand(id, args)
		}
	}
	return nil, fmt.Errorf("unknown tool: %s", name)
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
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments into v. Missing arguments leave v
// untouched.
func decodeArgs(args json.RawMessage, v interface{}) error {
	trimmed := bytes.TrimSpace(args)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return fmt.Errorf("%w: %w", errInvalidArgs, err)
	}
	return nil
}

// === Document Handlers ===

type openArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleOpen(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a openArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("%w: path is required", errInvalidArgs)
	}

	if err := s.session.doc.OpenFile(ctx, a.Path); err != nil {
		return nil, err
	}
	s.session.selection.Cancel()
	return s.session.doc.Info()
}

type historyResult struct {
	Entries []document.HistoryEntry `json:"entries"`
	CanUndo bool                    `json:"can_undo"`
	CanRedo bool                    `json:"can_redo"`
}

func (s *Server) handleHistory() (interface{}, error) {
	entries, err := s.session.doc.History()
	if err != nil {
		return nil, err
	}
	info, err := s.session.doc.Info()
	if err != nil {
		return nil, err
	}
	return historyResult{Entries: entries, CanUndo: info.CanUndo, CanRedo: info.CanRedo}, nil
}

type saveArgs struct {
	Path   string `json:"path"`
	Format string `json:"format"`
}

type saveResult struct {
	Path     string `json:"path"`
	Format   string `json:"format"`
	Modified bool   `json:"modified"`
}

func (s *Server) handleSave(ctx context.Context, args json.RawMessage, export bool) (interface{}, error) {
	var a saveArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	var format imaging.Format
	if a.Format != "" {
		f, err := imaging.ParseFormat(a.Format)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errInvalidArgs, err)
		}
		format = f
	}

	doc := s.session.doc
	if export {
		if a.Path == "" {
			return nil, fmt.Errorf("%w: path is required", errInvalidArgs)
		}
		if err := doc.Export(ctx, a.Path, format); err != nil {
			return nil, err
		}
		if format == "" {
			format, _ = imaging.FormatFromPath(a.Path)
		}
		return saveResult{Path: a.Path, Format: string(format), Modified: doc.Modified()}, nil
	}

	if err := doc.Save(ctx, a.Path, format); err != nil {
		return nil, err
	}
	info, err := doc.Info()
	if err != nil {
		return nil, err
	}
	return saveResult{Path: info.Path, Format: string(info.Format), Modified: info.Modified}, nil
}

type renderArgs struct {
	Format string `json:"format"`
}

// RenderResult is a rendered view of the document.
type RenderResult struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Zoom        float64 `json:"zoom"`
	ImageBase64 string  `json:"image_base64"`
	MimeType    string  `json:"mime_type"`
}

// base64Renderer encodes whatever it is handed into a RenderResult.
type base64Renderer struct {
	format imaging.Format
	opts   imaging.EncodeOptions
	result *RenderResult
}

// Draw implements document.Renderer.
func (r *base64Renderer) Draw(bitmap image.Image, width, height int) error {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.NewRaster(bitmap), r.format, r.opts); err != nil {
		return fmt.Errorf("failed to encode view: %w", err)
	}
	r.result = &RenderResult{
		Width:       width,
		Height:      height,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    r.format.MimeType(),
	}
	return nil
}

func (s *Server) handleRender(args json.RawMessage) (interface{}, error) {
	var a renderArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	format := imaging.FormatPNG
	if a.Format != "" {
		f, err := imaging.ParseFormat(a.Format)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errInvalidArgs, err)
		}
		format = f
	}

	r := &base64Renderer{format: format, opts: s.session.encode}
	if err := s.session.doc.Present(r); err != nil {
		return nil, err
	}
	r.result.Zoom = s.session.doc.View().Zoom
	return r.result, nil
}

type pointArgs struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p pointArgs) point() image.Point { return image.Pt(p.X, p.Y) }

func (s *Server) handleSampleColor(args json.RawMessage) (interface{}, error) {
	var a pointArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.session.doc.SampleColor(a.X, a.Y)
}

// === History Handlers ===

type stepResult struct {
	Moved bool           `json:"moved"`
	Info  *document.Info `json:"info"`
}

func (s *Server) handleStep(step func() (bool, error)) (interface{}, error) {
	moved, err := step()
	if err != nil {
		return nil, err
	}
	info, err := s.session.doc.Info()
	if err != nil {
		return nil, err
	}
	return stepResult{Moved: moved, Info: info}, nil
}

// === Command Handlers ===

func (s *Server) handleCommand(id string, args json.RawMessage) (interface{}, error) {
	op, err := s.session.commands.Build(id, args)
	if errors.Is(err, command.ErrInvalidArguments) {
		return nil, fmt.Errorf("%w: %w", errInvalidArgs, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", document.ErrInvalidOperation, err)
	}
	if err := s.session.doc.Apply(op); err != nil {
		return nil, err
	}
	return s.session.doc.Info()
}

// === Selection Handlers ===

type selectionResult struct {
	State     string         `json:"state"`
	Selection []int          `json:"selection,omitempty"`
	Committed bool           `json:"committed,omitempty"`
	Info      *document.Info `json:"info,omitempty"`
}

func rectSlice(r image.Rectangle) []int {
	if r.Empty() {
		return nil
	}
	return []int{r.Min.X, r.Min.Y, r.Max.X, r.Max.Y}
}

func (s *Server) handleSelectStart() (interface{}, error) {
	if _, err := s.session.doc.Current(); err != nil {
		return nil, err
	}
	s.session.selection.Start()
	return selectionResult{State: s.session.selection.State().String()}, nil
}

func (s *Server) handleSelectDown(args json.RawMessage) (interface{}, error) {
	var a pointArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := s.session.selection.PointerDown(a.point()); err != nil {
		return nil, err
	}
	return selectionResult{State: s.session.selection.State().String()}, nil
}

func (s *Server) handleSelectMove(args json.RawMessage) (interface{}, error) {
	var a pointArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	r, ok := s.session.selection.PointerMove(a.point())
	if !ok {
		return nil, selection.ErrNotSelecting
	}
	return selectionResult{State: s.session.selection.State().String(), Selection: rectSlice(r)}, nil
}

func (s *Server) handleSelectUp(args json.RawMessage) (interface{}, error) {
	var a pointArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if !s.session.selection.Anchored() {
		return nil, selection.ErrNotSelecting
	}

	committed, err := s.session.selection.PointerUp(a.point())
	if err != nil {
		return nil, err
	}
	info, err := s.session.doc.Info()
	if err != nil {
		return nil, err
	}
	return selectionResult{
		State:     s.session.selection.State().String(),
		Committed: committed,
		Info:      info,
	}, nil
}
