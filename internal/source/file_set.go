package source

import (
	"bytes"
	"fmt"
	"os"

	"fortio.org/safecast"
)

// FileSet manages a collection of source files and resolves spans to line/column.
type FileSet struct {
	files []File
	index map[string]FileID
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0),
		index: make(map[string]FileID),
	}
}

// Add stores a file from normalized bytes, computes LineIdx, and returns a new FileID.
// It always creates a new FileID even when the same path was added before.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	lenFiles, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id := FileID(lenFiles)
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    path,
		Content: content,
		LineIdx: buildLineIndex(content),
		Flags:   flags,
	})
	fs.index[path] = id
	return id
}

// Load reads a file from disk, normalizes CRLF/BOM, and calls Add.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)

	flags := FileFlags(0)
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return fs.Add(path, content, flags), nil
}

// AddVirtual adds an in-memory file (test, stdin, or generated).
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	return fs.Add(name, content, FileVirtual)
}

// Get returns the file metadata for the given ID.
func (fs *FileSet) Get(id FileID) *File {
	return &fs.files[id]
}

// GetLatest returns the latest file ID for the given path, if it exists.
func (fs *FileSet) GetLatest(path string) (FileID, bool) {
	id, ok := fs.index[path]
	return id, ok
}

// Resolve converts a span into line and column positions.
func (fs *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fs.files[span.File]
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// GetLine returns the 1-based line lineNum of the file, without the trailing newline.
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 {
		return ""
	}
	lenLineIdx, err := safecast.Conv[uint32](len(f.LineIdx))
	if err != nil {
		panic(fmt.Errorf("line index length overflow: %w", err))
	}
	lenContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}

	var start, end uint32
	switch {
	case lineNum == 1:
		start = 0
	case (lineNum - 2) < lenLineIdx:
		start = f.LineIdx[lineNum-2] + 1
	default:
		return ""
	}
	if (lineNum - 1) < lenLineIdx {
		end = f.LineIdx[lineNum-1]
	} else {
		end = lenContent
	}
	if start >= lenContent {
		return ""
	}
	if end > lenContent {
		end = lenContent
	}
	return string(f.Content[start:end])
}

// buildLineIndex records the byte offset of every '\n' in content.
func buildLineIndex(content []byte) []uint32 {
	var idx []uint32
	for i, b := range content {
		if b == '\n' {
			idx = append(idx, uint32(i)) // #nosec G115 -- guarded by Add
		}
	}
	return idx
}

// toLineCol maps a byte offset to 1-based line/column using the newline index.
func toLineCol(lineIdx []uint32, off uint32) LineCol {
	line := uint32(1)
	lineStart := uint32(0)
	for _, nl := range lineIdx {
		if off <= nl {
			break
		}
		line++
		lineStart = nl + 1
	}
	return LineCol{Line: line, Col: off - lineStart + 1}
}

func removeBOM(content []byte) ([]byte, bool) {
	bom := []byte{0xEF, 0xBB, 0xBF}
	if bytes.HasPrefix(content, bom) {
		return content[len(bom):], true
	}
	return content, false
}

func normalizeCRLF(content []byte) ([]byte, bool) {
	if !bytes.Contains(content, []byte{'\r', '\n'}) {
		return content, false
	}
	return bytes.ReplaceAll(content, []byte{'\r', '\n'}, []byte{'\n'}), true
}
