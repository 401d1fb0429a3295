package cgerr

import "fmt"

// NotFound reports that no symbol named name exists in the graph.
func NotFound(name string) *Error {
	return New(CodeNotFound, fmt.Sprintf("no symbol named %q", name))
}

// Ambiguous reports that name matched more than one symbol with no
// single best candidate; candidates lists the qualifying names/files.
func Ambiguous(name string, candidates []string) *Error {
	return &Error{
		code:       CodeAmbiguous,
		message:    fmt.Sprintf("%q is ambiguous (%d candidates)", name, len(candidates)),
		candidates: candidates,
	}
}

// ParseFailure reports a non-fatal per-file parse error. The indexer does
// not use it: it records the adapter's parse error directly as a
// Diagnostic and never returns it to a caller.
func ParseFailure(file string, cause error) *Error {
	return Wrap(CodeParseFailure, fmt.Sprintf("failed to parse %s", file), cause)
}

// CorruptIndex reports that the on-disk index file failed to decode.
func CorruptIndex(cause error) *Error {
	return Wrap(CodeCorruptIndex, "index file is corrupt or unreadable", cause)
}

// IOFailure reports a filesystem error unrelated to index decoding.
func IOFailure(cause error) *Error {
	return Wrap(CodeIOFailure, "I/O failure", cause)
}

// InvalidArgument reports a malformed or out-of-range request argument.
func InvalidArgument(msg string) *Error {
	return New(CodeInvalidArgument, msg)
}
