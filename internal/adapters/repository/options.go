package repository

import "os"

// FileOption applies a configuration option to the FileBackend.
type FileOption func(*FileBackend)

// WithFileMode sets the permission bits of written documents.
func WithFileMode(mode os.FileMode) FileOption {
	return func(b *FileBackend) {
		if mode != 0 {
			b.fileMode = mode
		}
	}
}

// WithDirMode sets the permission bits used when creating the data directory.
func WithDirMode(mode os.FileMode) FileOption {
	return func(b *FileBackend) {
		if mode != 0 {
			b.dirMode = mode
		}
	}
}

// WithExtension sets the file name suffix, ".json" by default.
func WithExtension(ext string) FileOption {
	return func(b *FileBackend) {
		if ext != "" {
			b.ext = ext
		}
	}
}
