//go:build js && wasm

package main

import (
	"encoding/json"
	"errors"
	"syscall/js"

	"github.com/seatforge/seatforge/backend-go/internal/export"
	"github.com/seatforge/seatforge/backend-go/internal/layout"
	"github.com/seatforge/seatforge/backend-go/internal/store"
)

// The wasm build hosts the bare layout engine for an in-browser editor. The
// JS side owns rendering, hit-testing, selection, and pan/zoom; it feeds the
// engine plain world-coordinate values extracted from pointer events and
// re-renders from the snapshot pushed through onLayoutChange.
var eng *store.Store

func main() {
	eng = store.New(nil, notifyLayoutChange)

	api := js.Global().Get("Object").New()

	// --- Lifecycle ---
	api.Set("loadLayout", js.FuncOf(loadLayout))
	api.Set("newLayout", js.FuncOf(newLayout))
	api.Set("onLayoutChange", js.FuncOf(onLayoutChange))

	// --- Commands (frontend → engine) ---
	api.Set("moveSection", js.FuncOf(moveSection))
	api.Set("transformSection", js.FuncOf(transformSection))
	api.Set("addSeat", js.FuncOf(addSeat))
	api.Set("moveSeat", js.FuncOf(moveSeat))
	api.Set("fillWithSeats", js.FuncOf(fillWithSeats))
	api.Set("addSection", js.FuncOf(addSection))
	api.Set("addLabelSection", js.FuncOf(addLabelSection))
	api.Set("duplicateSection", js.FuncOf(duplicateSection))
	api.Set("deleteSection", js.FuncOf(deleteSection))
	api.Set("deleteSeat", js.FuncOf(deleteSeat))
	api.Set("renameSection", js.FuncOf(renameSection))
	api.Set("recolorSection", js.FuncOf(recolorSection))
	api.Set("renameSeat", js.FuncOf(renameSeat))

	// --- Queries (frontend ← engine) ---
	api.Set("getLayout", js.FuncOf(getLayout))
	api.Set("getSectionBounds", js.FuncOf(getSectionBounds))
	api.Set("exportLayout", js.FuncOf(exportLayout))

	js.Global().Set("seatforgeEngine", api)
	js.Global().Set("seatforgeWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

var layoutChangeCallback js.Value = js.Undefined()

func notifyLayoutChange(l layout.Layout) {
	if layoutChangeCallback.IsUndefined() {
		return
	}
	data, err := json.Marshal(l)
	if err != nil {
		return
	}
	layoutChangeCallback.Invoke(string(data))
}

// --- Lifecycle ---

func loadLayout(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing layout JSON"})
	}

	var l layout.Layout
	if err := json.Unmarshal([]byte(args[0].String()), &l); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	if err := l.Validate(); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}

	eng = store.New(&l, notifyLayoutChange)
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func newLayout(this js.Value, args []js.Value) interface{} {
	eng = store.New(nil, notifyLayoutChange)
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func onLayoutChange(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		layoutChangeCallback = js.Undefined()
		return nil
	}
	layoutChangeCallback = args[0]
	return nil
}

// --- Command Handlers ---

func moveSection(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.MoveSection(args[0].String(), args[1].Float(), args[2].Float()))
}

func transformSection(this js.Value, args []js.Value) interface{} {
	if len(args) < 6 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.TransformSection(
		args[0].String(),
		args[1].Float(), args[2].Float(),
		args[3].Float(), args[4].Float(),
		args[5].Float(),
	))
}

func addSeat(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.AddSeat(args[0].String(), args[1].Float(), args[2].Float()))
}

func moveSeat(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.MoveSeat(args[0].String(), args[1].String(), args[2].Float(), args[3].Float()))
}

func fillWithSeats(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return js.ValueOf(map[string]interface{}{"error": "missing fill parameters"})
	}

	applied, err := eng.FillWithSeats(args[0].String(), args[1].Int(), args[2].Int(), args[3].Float())
	if err != nil {
		if errors.Is(err, layout.ErrTooSmall) {
			return js.ValueOf(map[string]interface{}{"error": "tooSmall"})
		}
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": applied})
}

func addSection(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.AddSection())
}

func addLabelSection(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.AddLabelSection())
}

func duplicateSection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf("")
	}
	return js.ValueOf(eng.DuplicateSection(args[0].String()))
}

func deleteSection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.DeleteSection(args[0].String()))
}

func deleteSeat(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.DeleteSeat(args[0].String(), args[1].String()))
}

func renameSection(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.RenameSection(args[0].String(), args[1].String()))
}

func recolorSection(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.RecolorSection(args[0].String(), args[1].String()))
}

func renameSeat(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.RenameSeat(args[0].String(), args[1].String(), args[2].String()))
}

// --- Query Handlers ---

func getLayout(this js.Value, args []js.Value) interface{} {
	data, err := json.Marshal(eng.Layout())
	if err != nil {
		return js.ValueOf("{}")
	}
	return js.ValueOf(string(data))
}

func getSectionBounds(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf("{}")
	}

	l := eng.Layout()
	sec := l.Section(args[0].String())
	if sec == nil {
		return js.ValueOf("{}")
	}

	data, err := json.Marshal(sec.Frame().Bounds())
	if err != nil {
		return js.ValueOf("{}")
	}
	return js.ValueOf(string(data))
}

func exportLayout(this js.Value, args []js.Value) interface{} {
	data, err := json.Marshal(export.Build(eng.Layout()))
	if err != nil {
		return js.ValueOf("{}")
	}
	return js.ValueOf(string(data))
}
