package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
)

// FileSet owns every source buffer seen by a compilation: user files,
// included files, and virtual buffers. It also resolves `include lookups
// against the configured search directories.
type FileSet struct {
	files       []File
	index       map[string]FileID // normalized path -> latest id
	includeDirs []string
}

// NewFileSet creates an empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0),
		index: make(map[string]FileID),
	}
}

// AddIncludeDir appends a directory to the include search path.
// Directories are searched in the order they were added.
func (fs *FileSet) AddIncludeDir(dir string) {
	fs.includeDirs = append(fs.includeDirs, dir)
}

// IncludeDirs returns the configured search path.
func (fs *FileSet) IncludeDirs() []string {
	return fs.includeDirs
}

// Add stores a buffer and returns a new FileID. A path may be added more
// than once (re-included files); the index always tracks the latest.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	hash := sha256.Sum256(content)
	lineIdx := buildLineIndex(content)
	normalizedPath := normalizePath(path)

	lenFiles, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("file set overflow: %w", err))
	}
	id := FileID(lenFiles)
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    normalizedPath,
		Content: content,
		LineIdx: lineIdx,
		Hash:    hash,
		Flags:   flags,
	})
	fs.index[normalizedPath] = id
	return id
}

// Load reads a file from disk. UTF-16 buffers are transcoded to UTF-8;
// everything else is stored byte-exact so token round-trips reproduce the
// original source.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	content, transcoded, err := decodeUTF16(content)
	if err != nil {
		return 0, fmt.Errorf("decode %s: %w", path, err)
	}

	flags := FileFlags(0)
	if transcoded {
		flags |= FileTranscoded
	}
	return fs.Add(path, content, flags), nil
}

// AddVirtual adds an in-memory buffer (test, stdin, generated text).
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	return fs.Add(name, content, FileVirtual)
}

// Get returns the file metadata for the given ID.
func (fs *FileSet) Get(id FileID) *File {
	return &fs.files[id]
}

// GetLatest returns the most recent file ID for the given path.
func (fs *FileSet) GetLatest(path string) (FileID, bool) {
	id, ok := fs.index[normalizePath(path)]
	return id, ok
}

// Len reports the number of buffers in the set.
func (fs *FileSet) Len() int {
	return len(fs.files)
}

// Resolve converts a span into line and column positions.
func (fs *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fs.files[span.File]
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// ResolveInclude locates an included file. Quoted includes search the
// including file's directory first; both forms then walk the include
// directories in order. Returns the loaded FileID or false on miss.
func (fs *FileSet) ResolveInclude(name string, from FileID, quoted bool) (FileID, bool) {
	var candidates []string
	if quoted && int(from) < len(fs.files) {
		fromDir := filepath.Dir(fs.files[from].Path)
		candidates = append(candidates, filepath.Join(fromDir, name))
	}
	for _, dir := range fs.includeDirs {
		candidates = append(candidates, filepath.Join(dir, name))
	}

	for _, cand := range candidates {
		if _, err := os.Stat(cand); err != nil {
			continue
		}
		id, err := fs.Load(cand)
		if err != nil {
			continue
		}
		return id, true
	}
	return 0, false
}

// GetLine returns the 1-based line of a file, without its newline.
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 {
		return ""
	}

	var start, end, lenLineIdx, lenContent uint32
	var err error
	lenLineIdx, err = safecast.Conv[uint32](len(f.LineIdx))
	if err != nil {
		panic(fmt.Errorf("line index length overflow: %w", err))
	}
	lenContent, err = safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}

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
