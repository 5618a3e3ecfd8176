// Package scenario runs scripted browser scenarios against a testing engine.
//
// A scenario file holds a suite: a name and a list of scenarios, each of which is a list of
// steps. A step names an engine operation in lowerCamelCase ("beginAt", "checkCheckboxWithLabel")
// and gives its parameters as fields; it can also state the result it expects, or the kind of
// error it expects the operation to fail with. Files may be written in JSON or YAML.
//
// Every scenario gets a new engine, so no state carries over between scenarios. Results are
// reported through a Logger, in the same way as the Go testing package reports subtests.
package scenario
