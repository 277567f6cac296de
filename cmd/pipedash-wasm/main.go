//go:build js && wasm

// Command pipedash-wasm runs the dashboard load cycle inside the browser,
// writing straight into the host page's DOM.
//
// The host page loads wasm_exec.js and this module, is served from the same
// origin as the /api endpoints, and carries an element for every slot id
// plus a <tbody id="predictions_body">. The page served by "pipedash serve"
// does not load the module; it is driven by the SSE load stream instead.
//
// Once started the module exposes window.pipedashLoad(); the first cycle
// runs immediately.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"syscall/js"

	"github.com/leapstack-labs/pipedash/internal/dashboard"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	origin := js.Global().Get("location").Get("origin").String()

	loader := dashboard.NewLoader(
		dashboard.NewClient(origin, http.DefaultClient),
		dashboard.NewDOMSink(),
		logger,
	)

	// Cycles run off the JS event loop; blocking calls inside a js.Func deadlock.
	run := func() {
		go func() { _ = loader.Load(context.Background()) }()
	}

	js.Global().Set("pipedashLoad", js.FuncOf(func(_ js.Value, _ []js.Value) any {
		run()
		return nil
	}))

	run()
	select {}
}
