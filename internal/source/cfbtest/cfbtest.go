// Package cfbtest builds small OLE2 compound files for tests.
package cfbtest

import (
	"encoding/binary"
	"fmt"
	"unicode/utf16"
)

// Stream is one stream to store. Storage names the top-level storage that
// holds it; empty means the root storage.
type Stream struct {
	Storage string
	Name    string
	Data    []byte
}

const (
	sectorSize = 512
	miniSize   = 64
	cutoff     = 4096
	entrySize  = 128
	perSector  = sectorSize / 4

	freeSect   = 0xFFFFFFFF
	endOfChain = 0xFFFFFFFE
	fatSect    = 0xFFFFFFFD
	noStream   = 0xFFFFFFFF

	typeStorage = 1
	typeStream  = 2
	typeRoot    = 5
)

var signature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

var le = binary.LittleEndian

type entry struct {
	name               string
	kind               byte
	left, right, child uint32
	start, size        uint32
}

// Build encodes streams as a version 3 compound file with 512-byte
// sectors. Streams shorter than 4096 bytes are placed in the mini stream.
// Siblings are chained through their right pointers, which readers accept
// even though it is not a balanced tree.
func Build(streams []Stream) []byte {
	entries := []entry{{
		name: "Root Entry", kind: typeRoot,
		left: noStream, right: noStream, child: noStream, start: endOfChain,
	}}
	add := func(e entry) int {
		e.left, e.right, e.child = noStream, noStream, noStream
		entries = append(entries, e)
		return len(entries) - 1
	}
	lastChild := map[int]int{}
	link := func(parent, idx int) {
		if prev, ok := lastChild[parent]; ok {
			entries[prev].right = uint32(idx)
		} else {
			entries[parent].child = uint32(idx)
		}
		lastChild[parent] = idx
	}

	storages := map[string]int{}
	ids := make([]int, len(streams))
	for i, s := range streams {
		parent := 0
		if s.Storage != "" {
			id, ok := storages[s.Storage]
			if !ok {
				id = add(entry{name: s.Storage, kind: typeStorage})
				storages[s.Storage] = id
				link(0, id)
			}
			parent = id
		}
		ids[i] = add(entry{name: s.Name, kind: typeStream, start: endOfChain, size: uint32(len(s.Data))})
		link(parent, ids[i])
	}

	var mini []byte
	var miniFAT []uint32
	for i, s := range streams {
		if len(s.Data) == 0 || len(s.Data) >= cutoff {
			continue
		}
		entries[ids[i]].start = uint32(len(miniFAT))
		miniFAT = append(miniFAT, chain(uint32(len(miniFAT)), blocks(len(s.Data), miniSize))...)
		mini = append(mini, pad(s.Data, miniSize)...)
	}
	for len(miniFAT)%perSector != 0 {
		miniFAT = append(miniFAT, freeSect)
	}

	dirEntries := blocks(len(entries), sectorSize/entrySize) * (sectorSize / entrySize)
	used := blocks(dirEntries*entrySize, sectorSize) +
		blocks(len(miniFAT)*4, sectorSize) +
		blocks(len(mini), sectorSize)
	for _, s := range streams {
		if len(s.Data) >= cutoff {
			used += blocks(len(s.Data), sectorSize)
		}
	}
	fatSectors := 1
	for fatSectors*perSector < used+fatSectors {
		fatSectors++
	}
	if fatSectors > 109 {
		panic(fmt.Sprintf("cfbtest: %d FAT sectors need a DIFAT chain", fatSectors))
	}

	fat := make([]uint32, fatSectors*perSector)
	for i := range fat {
		fat[i] = freeSect
	}
	for i := 0; i < fatSectors; i++ {
		fat[i] = fatSect
	}
	body := make([]byte, fatSectors*sectorSize)
	alloc := func(data []byte) uint32 {
		if len(data) == 0 {
			return endOfChain
		}
		first := uint32(len(body) / sectorSize)
		copy(fat[first:], chain(first, blocks(len(data), sectorSize)))
		body = append(body, pad(data, sectorSize)...)
		return first
	}

	miniFATStart := uint32(endOfChain)
	if len(mini) > 0 {
		miniFATStart = alloc(uint32s(miniFAT))
		entries[0].start = alloc(mini)
		entries[0].size = uint32(len(mini))
	}
	for i, s := range streams {
		if len(s.Data) >= cutoff {
			entries[ids[i]].start = alloc(s.Data)
		}
	}

	dir := make([]byte, dirEntries*entrySize)
	for i := 0; i < dirEntries; i++ {
		e := entry{left: noStream, right: noStream, child: noStream}
		if i < len(entries) {
			e = entries[i]
		}
		e.encode(dir[i*entrySize:])
	}
	dirStart := alloc(dir)

	copy(body, uint32s(fat))

	h := make([]byte, sectorSize)
	copy(h, signature)
	le.PutUint16(h[24:], 0x003E)
	le.PutUint16(h[26:], 3)
	le.PutUint16(h[28:], 0xFFFE)
	le.PutUint16(h[30:], 9)
	le.PutUint16(h[32:], 6)
	le.PutUint32(h[44:], uint32(fatSectors))
	le.PutUint32(h[48:], dirStart)
	le.PutUint32(h[56:], cutoff)
	le.PutUint32(h[60:], miniFATStart)
	if len(mini) > 0 {
		le.PutUint32(h[64:], uint32(blocks(len(miniFAT)*4, sectorSize)))
	}
	le.PutUint32(h[68:], endOfChain)
	for i := 0; i < 109; i++ {
		v := uint32(freeSect)
		if i < fatSectors {
			v = uint32(i)
		}
		le.PutUint32(h[76+i*4:], v)
	}

	return append(h, body...)
}

func (e entry) encode(b []byte) {
	name := utf16.Encode([]rune(e.name))
	if len(name) > 31 {
		panic(fmt.Sprintf("cfbtest: name %q is longer than 31 characters", e.name))
	}
	for i, c := range name {
		le.PutUint16(b[i*2:], c)
	}
	if len(name) > 0 {
		le.PutUint16(b[64:], uint16((len(name)+1)*2))
	}
	b[66] = e.kind
	b[67] = 1 // black
	le.PutUint32(b[68:], e.left)
	le.PutUint32(b[72:], e.right)
	le.PutUint32(b[76:], e.child)
	le.PutUint32(b[116:], e.start)
	le.PutUint32(b[120:], e.size)
}

// chain returns the allocation table entries for n consecutive sectors
// starting at first.
func chain(first uint32, n int) []uint32 {
	links := make([]uint32, n)
	for k := range links {
		links[k] = first + uint32(k) + 1
	}
	links[n-1] = endOfChain
	return links
}

func blocks(n, size int) int {
	return (n + size - 1) / size
}

func pad(data []byte, size int) []byte {
	out := make([]byte, blocks(len(data), size)*size)
	copy(out, data)
	return out
}

func uint32s(vs []uint32) []byte {
	out := make([]byte, len(vs)*4)
	for i, v := range vs {
		le.PutUint32(out[i*4:], v)
	}
	return out
}
