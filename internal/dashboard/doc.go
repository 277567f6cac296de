// Package dashboard implements the pipeline dashboard load cycle.
//
// A Loader fetches the summary, metrics and predictions resources from the
// pipeline API one after another and writes selected fields into a Sink: a
// set of named text slots plus a table body for prediction rows. Any fetch,
// decode or render failure aborts the remaining steps and leaves the sink in
// its error display state.
package dashboard
