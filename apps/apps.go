// Package apps implements the embedded application bundle: a static
// table of application names and their ELF image bytes. A freestanding
// riscv64 image has no linker-symbol introspection available to Go, so
// this package's Bundle is a name/blob table produced at compile time by
// the host-side cmd/mkapps tool via go:embed, rather than a hand-built
// offset table addressed by linker symbols.
package apps

import (
	"golang.org/x/text/unicode/norm"
)

/// Bundle is the in-memory app table: parallel Name/Data slices indexed
/// 0..Count()-1.
type Bundle struct {
	names []string
	blobs [][]byte
}

/// New builds a Bundle from parallel name/blob slices, normalizing every
/// name to NFC so lookups are insensitive to the embedding host
/// filesystem's Unicode normalization form.
func New(names []string, blobs [][]byte) *Bundle {
	if len(names) != len(blobs) {
		panic("apps: names and blobs must have the same length")
	}
	b := &Bundle{names: make([]string, len(names)), blobs: blobs}
	for i, n := range names {
		b.names[i] = norm.NFC.String(n)
	}
	return b
}

/// Count returns the number of embedded applications.
func (b *Bundle) Count() int { return len(b.names) }

/// Name returns the i'th application's name.
func (b *Bundle) Name(i int) string { return b.names[i] }

/// Data returns the i'th application's raw ELF bytes ").
func (b *Bundle) Data(i int) []byte { return b.blobs[i] }

/// Lookup resolves name to its ELF bytes, the form sys_exec/sys_spawn
/// (scall.AppLookup) actually calls through.
func (b *Bundle) Lookup(name string) ([]byte, bool) {
	name = norm.NFC.String(name)
	for i, n := range b.names {
		if n == name {
			return b.blobs[i], true
		}
	}
	return nil, false
}

/// IndexOf returns the position of name in the bundle, mirroring the
/// original's linear app-name scan (os/src/loader.rs get_app_data), or -1
/// if absent.
func (b *Bundle) IndexOf(name string) int {
	name = norm.NFC.String(name)
	for i, n := range b.names {
		if n == name {
			return i
		}
	}
	return -1
}
