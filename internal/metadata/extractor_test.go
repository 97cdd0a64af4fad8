package metadata

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTagsFromFileName(t *testing.T) {
	extractor := NewExtractor()

	tests := []struct {
		fileName       string
		expectedTitle  string
		expectedArtist string
	}{
		{"001. 晴天 - 周杰伦.mp3", "晴天", "周杰伦"},
		{"012. Hotel California - Eagles.flac", "Hotel California", "Eagles"},
		{"003. Some - Long - Name - Artist.mp3", "Some - Long - Name", "Artist"},
		{"no-separator.mp3", "no-separator", "Unknown Artist"},
	}

	for _, test := range tests {
		tags := extractor.tagsFromFileName(test.fileName)
		if tags.Title != test.expectedTitle {
			t.Errorf("tagsFromFileName(%q).Title = %q; expected %q", test.fileName, tags.Title, test.expectedTitle)
		}
		if tags.Artist != test.expectedArtist {
			t.Errorf("tagsFromFileName(%q).Artist = %q; expected %q", test.fileName, tags.Artist, test.expectedArtist)
		}
	}
}

func TestExtractFromFileWithoutTags(t *testing.T) {
	// Файл без валидных тегов: метаданные восстанавливаются из имени
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "005. Track Name - Some Artist.mp3")
	if err := os.WriteFile(filePath, []byte("not really an mp3"), 0644); err != nil {
		t.Fatalf("Ошибка подготовки файла: %v", err)
	}

	tags := NewExtractor().ExtractFromFile(filePath)
	if tags.Title != "Track Name" {
		t.Errorf("Ожидалось Title: Track Name, получено: %q", tags.Title)
	}
	if tags.Artist != "Some Artist" {
		t.Errorf("Ожидался Artist: Some Artist, получено: %q", tags.Artist)
	}
}

func TestGetFileInfoSize(t *testing.T) {
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "001. Track - Artist.flac")
	data := make([]byte, 2048)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		t.Fatalf("Ошибка подготовки файла: %v", err)
	}

	info, err := NewExtractor().GetFileInfo(filePath)
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if info.Size != 2048 {
		t.Errorf("Ожидался размер 2048, получено: %d", info.Size)
	}
	// Не MP3: длительность не определяется
	if info.Duration != 0 {
		t.Errorf("Ожидалась нулевая длительность, получено: %v", info.Duration)
	}
}

func TestGetFileInfoMissingFile(t *testing.T) {
	if _, err := NewExtractor().GetFileInfo(filepath.Join(t.TempDir(), "missing.mp3")); err == nil {
		t.Error("Ожидалась ошибка для отсутствующего файла")
	}
}

func TestGetDurationInvalidFile(t *testing.T) {
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "broken.mp3")
	if err := os.WriteFile(filePath, []byte("garbage"), 0644); err != nil {
		t.Fatalf("Ошибка подготовки файла: %v", err)
	}

	if _, err := NewExtractor().GetDuration(filePath); err == nil {
		t.Error("Ожидалась ошибка декодирования для поврежденного файла")
	}
}
