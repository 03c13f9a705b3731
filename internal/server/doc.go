// Package server implements the MCP (Model Context Protocol) server for the
// image editor.
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Tools
//
// A server drives one Session holding a single document. Session tools open,
// inspect, save and export it, walk its history and feed the crop-selection
// controller:
//
//   - image_open, image_info, image_history
//   - image_save, image_export, image_render, image_sample_color
//   - image_undo, image_redo
//   - image_select_start, image_select_down, image_select_move,
//     image_select_up, image_select_cancel
//
// Every entry of the command table is exposed as image_<id>, for example
// image_rotate_right, image_crop, image_adjust, image_draw_text and
// image_zoom_in. Those tools build an operation from their arguments and
// apply it to the document.
//
// # Error Handling
//
// Tool failures are returned as JSON-RPC errors whose data carries the Go
// error string. The code identifies the failure:
//   - -32001: the image could not be opened
//   - -32002: the image could not be saved or exported
//   - -32003: the operation was rejected
//   - -32004: no document is open
//   - -32005: the document is busy with I/O
//   - -32602: the arguments could not be decoded
//   - -32000: anything else
package server
