package ingestion

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestExtractText_PlainText tests .txt passthrough and the empty-document error
func TestExtractText_PlainText(t *testing.T) {
	text, err := ExtractText("resume.txt", []byte("Jane Doe\n5 years of experience."))
	if err != nil {
		t.Fatalf("Failed to extract txt: %v", err)
	}
	if !strings.Contains(text, "Jane Doe") {
		t.Errorf("Extracted text missing content: %q", text)
	}

	_, err = ExtractText("empty.txt", []byte("   \n\t "))
	if !errors.Is(err, ErrEmptyDocument) {
		t.Errorf("Expected ErrEmptyDocument for whitespace-only file, got %v", err)
	}
}

// TestExtractText_UnsupportedType tests the sentinel for unknown extensions
func TestExtractText_UnsupportedType(t *testing.T) {
	tests := []string{"resume.png", "resume.zip", "resume", "resume.doc.bak"}
	for _, filename := range tests {
		t.Run(filename, func(t *testing.T) {
			_, err := ExtractText(filename, []byte("content"))
			if !errors.Is(err, ErrUnsupportedType) {
				t.Errorf("Expected ErrUnsupportedType for %s, got %v", filename, err)
			}
		})
	}
}

// TestExtractText_CorruptPDF tests that malformed PDF bytes surface an error
func TestExtractText_CorruptPDF(t *testing.T) {
	_, err := ExtractText("broken.pdf", []byte("not a real pdf"))
	if err == nil {
		t.Error("Expected an error for corrupt PDF data")
	}
}

// TestSupportedExtension tests the extension allow-list
func TestSupportedExtension(t *testing.T) {
	tests := []struct {
		filename  string
		supported bool
	}{
		{"cv.pdf", true},
		{"cv.PDF", true},
		{"cv.docx", true},
		{"cv.txt", true},
		{"cv.doc", false},
		{"cv.png", false},
		{"cv", false},
	}

	for _, tt := range tests {
		if got := SupportedExtension(tt.filename); got != tt.supported {
			t.Errorf("SupportedExtension(%q) = %v, want %v", tt.filename, got, tt.supported)
		}
	}
}

// TestStripDocxTags tests markup removal and paragraph breaks
func TestStripDocxTags(t *testing.T) {
	content := `<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p><w:p><w:r><w:t>Engineer</w:t></w:r></w:p>`
	text := stripDocxTags(content)

	if !strings.Contains(text, "Jane Doe") || !strings.Contains(text, "Engineer") {
		t.Errorf("Stripped text missing content: %q", text)
	}
	if strings.Contains(text, "<") {
		t.Errorf("Stripped text still contains markup: %q", text)
	}
	if !strings.Contains(text, "\n") {
		t.Error("Paragraph boundary must become a newline")
	}
}

func TestSaveUploadedFile(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "uploads")
	fh := NewFileHandler(tmpDir)

	content := strings.NewReader("Test resume content")
	path, err := fh.SaveUploadedFile("jane_resume.txt", content)
	if err != nil {
		t.Fatalf("Failed to save file: %v", err)
	}

	expectedPath := filepath.Join(tmpDir, "jane_resume.txt")
	if path != expectedPath {
		t.Errorf("Expected path %s, got %s", expectedPath, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(data) != "Test resume content" {
		t.Errorf("Content mismatch: %q", string(data))
	}

	if !fh.Exists("jane_resume.txt") {
		t.Error("Exists must report the saved file")
	}
	if fh.Exists("other.txt") {
		t.Error("Exists must not report missing files")
	}
}

// TestSaveUploadedFile_StripsPath tests that directory components are dropped
func TestSaveUploadedFile_StripsPath(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "uploads")
	fh := NewFileHandler(tmpDir)

	path, err := fh.SaveUploadedFile("../../etc/evil.txt", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Failed to save file: %v", err)
	}
	if filepath.Dir(path) != tmpDir {
		t.Errorf("File escaped the uploads directory: %s", path)
	}
}

func TestLoadDocuments(t *testing.T) {
	tmpDir := t.TempDir()
	os.WriteFile(filepath.Join(tmpDir, "jane.txt"), []byte("Jane resume"), 0644)
	os.WriteFile(filepath.Join(tmpDir, "notes.md"), []byte("skip me"), 0644)

	fh := NewFileHandler(tmpDir)
	docs, err := fh.LoadDocuments()
	if err != nil {
		t.Fatalf("Failed to load documents: %v", err)
	}

	if len(docs) != 1 {
		t.Fatalf("Expected 1 document, got %d", len(docs))
	}
	if docs[0].Filename != "jane.txt" {
		t.Errorf("Expected 'jane.txt', got %q", docs[0].Filename)
	}
	if string(docs[0].Data) != "Jane resume" {
		t.Errorf("Document content mismatch")
	}
}

// TestLoadDocuments_MissingDirectory tests that an absent uploads dir is not an error
func TestLoadDocuments_MissingDirectory(t *testing.T) {
	fh := NewFileHandler(filepath.Join(t.TempDir(), "never_created"))
	docs, err := fh.LoadDocuments()
	if err != nil {
		t.Fatalf("Missing directory must not error: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("Expected no documents, got %d", len(docs))
	}
}

func TestClearUploads(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "uploads")
	os.MkdirAll(tmpDir, 0755)
	os.WriteFile(filepath.Join(tmpDir, "test.txt"), []byte("test"), 0644)

	fh := NewFileHandler(tmpDir)
	if err := fh.ClearUploads(); err != nil {
		t.Fatalf("Failed to clear uploads: %v", err)
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("Directory must be recreated: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty directory, got %d entries", len(entries))
	}
}
