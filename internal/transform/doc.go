// Package transform holds the per-modality stage transforms.
//
// Each transform is a pure function from one stage's table to the next:
// Raw to Preprocess cleans the time series (interpolation, smoothing,
// blink removal, tonic/phasic decomposition), Preprocess to Feature
// collapses each trial to one row of summary features. Transforms know
// nothing about storage, exclusion, or other modalities; the pipeline
// coordinator wires them to the store.
//
// # Identity contract
//
// A transform may drop rows or whole trials (unrecoverable artifacts) but
// never fabricates a (participant, trial) identity absent from its input.
// Every transform here is built on mapTrials, which makes that hold by
// construction: output rows are only produced per input trial.
//
// # Error policy
//
// A trial the transform cannot process is handled one of two ways, chosen
// per modality and documented on each transform:
//
//   - dropped: the trial's rows are omitted from the output (a recorded
//     decision, e.g. a pupil trial that is all blink)
//   - fatal: the transform returns a *TransformError carrying the
//     offending trial, which aborts the whole modality batch (e.g.
//     non-monotonic timestamps, which mean the recording itself is
//     corrupt)
//
// Silent truncation is never an option: anything else that goes wrong is
// an error, not a smaller table.
package transform
