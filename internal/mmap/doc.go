// Package mmap maps graph files into memory read-only.
//
// Road graphs with millions of nodes are decoded once at startup. Mapping the
// file avoids a second copy of the encoded bytes in the Go heap while the
// decoder walks it front to back:
//
//	m, err := mmap.Open("bw.bin")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AccessSequential)
//	data := m.Bytes()
//
// Unix platforms use mmap(2) and madvise(2). Windows uses
// CreateFileMapping/MapViewOfFile; Advise is a no-op there.
//
// A Mapping is safe for concurrent reads. Close is idempotent, but callers
// must not touch the slice returned by Bytes after Close returns.
package mmap
