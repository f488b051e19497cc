// Package pipeline drives tables through the processing stages.
//
// The coordinator owns stage ordering and nothing else: it reads a
// stage's predecessor table from the store, applies the registered
// transform, and writes the result back, recording a run-log entry with
// the output fingerprint. All numeric work lives in the transform set;
// all persistence in the store. Because both are deterministic, so is
// the coordinator, and re-running a stage on unchanged inputs rewrites
// an identical table.
//
// A full run is Preprocess for every modality followed by Feature for
// every modality. A transform or contract failure quarantines its
// modality for the rest of the run; the other modalities proceed. Store
// failures abort the run, since nothing downstream can be trusted after
// one.
package pipeline
