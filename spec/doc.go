// Package spec provides the shared primitives of the UbiSpec notation:
// identifier lexical classes, predicate entries and expressions, outcome
// blocks, format versions, and the validation issue taxonomy.
//
// Every document kind (lifecycle, process, system) is built from these
// atoms. Predicate expressions are stored losslessly as opaque text; the
// four authoring detail levels are a convention, not a structural field,
// and nothing in this package branches on them except the optional
// ClassifyDetail helper.
package spec
