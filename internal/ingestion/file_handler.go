package ingestion

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// StoredDocument is one file sitting in the uploads directory.
type StoredDocument struct {
	Filename string
	Path     string
	Data     []byte
}

// FileHandler manages the uploads directory where incoming resumes land.
type FileHandler struct {
	uploadsDir string
}

// NewFileHandler creates a file handler rooted at uploadsDir.
func NewFileHandler(uploadsDir string) *FileHandler {
	return &FileHandler{
		uploadsDir: uploadsDir,
	}
}

// UploadsDir returns the directory this handler is rooted at.
func (fh *FileHandler) UploadsDir() string {
	return fh.uploadsDir
}

// Exists reports whether a file with this name is already stored.
func (fh *FileHandler) Exists(filename string) bool {
	_, err := os.Stat(filepath.Join(fh.uploadsDir, filename))
	return err == nil
}

// SaveUploadedFile writes an uploaded file into the uploads directory and
// returns its path on disk.
func (fh *FileHandler) SaveUploadedFile(filename string, content io.Reader) (string, error) {
	if err := os.MkdirAll(fh.uploadsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create uploads directory: %w", err)
	}

	filePath := filepath.Join(fh.uploadsDir, filepath.Base(filename))
	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, content); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return filePath, nil
}

// LoadDocuments reads every supported document from the uploads directory.
func (fh *FileHandler) LoadDocuments() ([]StoredDocument, error) {
	files, err := os.ReadDir(fh.uploadsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []StoredDocument{}, nil
		}
		return nil, fmt.Errorf("failed to read uploads directory: %w", err)
	}

	documents := make([]StoredDocument, 0, len(files))
	for _, file := range files {
		if file.IsDir() || !SupportedExtension(file.Name()) {
			continue
		}

		path := filepath.Join(fh.uploadsDir, file.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", file.Name(), err)
		}

		documents = append(documents, StoredDocument{
			Filename: file.Name(),
			Path:     path,
			Data:     data,
		})
	}

	return documents, nil
}

// ClearUploads removes every stored file and recreates the directory.
func (fh *FileHandler) ClearUploads() error {
	if err := os.RemoveAll(fh.uploadsDir); err != nil {
		return fmt.Errorf("failed to clear uploads directory: %w", err)
	}
	return os.MkdirAll(fh.uploadsDir, 0755)
}
