// Package runbatch runs commands one after another and reports how each of them ended.
// A SerialBatch stops at the first command that fails; the batch result carries that
// command's exit code so it can be handed straight back to the shell.
// Batches can be nested, which is how a recipe that calls another recipe is run.
package runbatch
