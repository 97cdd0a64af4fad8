package uploader

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hazadus/go-163grab/internal/download"
	"github.com/hazadus/go-163grab/internal/manifest"
	"github.com/hazadus/go-163grab/internal/metadata"
)

// S3UploaderInterface интерфейс для S3 uploader
type S3UploaderInterface interface {
	UploadFile(ctx context.Context, reader io.Reader, key string) (string, error)
}

// MockS3Uploader мок для S3 uploader
type MockS3Uploader struct {
	uploadFunc func(ctx context.Context, reader io.Reader, key string) (string, error)
}

func (m *MockS3Uploader) UploadFile(ctx context.Context, reader io.Reader, key string) (string, error) {
	return m.uploadFunc(ctx, reader, key)
}

// TestService тестовая версия Service для тестирования
type TestService struct {
	s3Uploader        S3UploaderInterface
	metadataExtractor *metadata.Extractor
	downloadDir       string
}

// UploadRecord выгружает скачанный файл записи манифеста (тестовая версия)
func (s *TestService) UploadRecord(ctx context.Context, record manifest.TrackRecord, progressCallback func(int64)) (*UploadResult, error) {
	filePath := filepath.Join(s.downloadDir, download.FileName(record))
	return s.UploadFile(ctx, filePath, progressCallback)
}

// UploadFile выгружает файл с метаданными (тестовая версия)
func (s *TestService) UploadFile(ctx context.Context, filePath string, progressCallback func(int64)) (*UploadResult, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("файл не найден: %s", filePath)
	}

	fileInfo, err := s.metadataExtractor.GetFileInfo(filePath)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения информации о файле: %w", err)
	}

	tags := s.metadataExtractor.ExtractFromFile(filePath)

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	if progressCallback != nil {
		reader = &ProgressReader{Reader: file, Size: fileInfo.Size, OnProgress: progressCallback}
	}

	url, err := s.s3Uploader.UploadFile(ctx, reader, filepath.Base(filePath))
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки в S3: %w", err)
	}

	return &UploadResult{URL: url, Tags: tags, FileInfo: fileInfo}, nil
}

func newTestService(mock *MockS3Uploader, downloadDir string) *TestService {
	return &TestService{
		s3Uploader:        mock,
		metadataExtractor: metadata.NewExtractor(),
		downloadDir:       downloadDir,
	}
}

// TestUploadRecordKey тестирует формирование ключа S3 из записи манифеста
func TestUploadRecordKey(t *testing.T) {
	tempDir := t.TempDir()
	record := manifest.TrackRecord{
		Index:  3,
		Name:   "Hotel California",
		Artist: "Eagles",
		Type:   "mp3",
	}

	filePath := filepath.Join(tempDir, download.FileName(record))
	if err := os.WriteFile(filePath, []byte("audio content"), 0644); err != nil {
		t.Fatalf("Ошибка создания тестового файла: %v", err)
	}

	var receivedKey string
	mock := &MockS3Uploader{
		uploadFunc: func(_ context.Context, reader io.Reader, key string) (string, error) {
			receivedKey = key
			body, err := io.ReadAll(reader)
			if err != nil {
				t.Errorf("Ошибка чтения тела: %v", err)
			}
			if string(body) != "audio content" {
				t.Errorf("Неожиданное содержимое: %s", string(body))
			}
			return "https://s3.amazonaws.com/test-bucket/" + key, nil
		},
	}

	result, err := newTestService(mock, tempDir).UploadRecord(context.Background(), record, nil)
	if err != nil {
		t.Fatalf("Неожиданная ошибка при выгрузке: %v", err)
	}

	expectedKey := "003. Hotel California - Eagles.mp3"
	if receivedKey != expectedKey {
		t.Errorf("Ожидался ключ: %s, получено: %s", expectedKey, receivedKey)
	}
	if result.URL != "https://s3.amazonaws.com/test-bucket/"+expectedKey {
		t.Errorf("Неожиданный URL: %s", result.URL)
	}
	if result.FileInfo.Size != int64(len("audio content")) {
		t.Errorf("Неожиданный размер файла: %d", result.FileInfo.Size)
	}
}

// TestUploadMissingFile тестирует выгрузку отсутствующего файла
func TestUploadMissingFile(t *testing.T) {
	mock := &MockS3Uploader{
		uploadFunc: func(_ context.Context, _ io.Reader, key string) (string, error) {
			return "https://s3.amazonaws.com/test-bucket/" + key, nil
		},
	}

	record := manifest.TrackRecord{Index: 1, Name: "Missing", Artist: "Nobody", Type: "mp3"}
	_, err := newTestService(mock, t.TempDir()).UploadRecord(context.Background(), record, nil)
	if err == nil {
		t.Fatal("Ожидалась ошибка при несуществующем файле")
	}
	if !strings.Contains(err.Error(), "файл не найден") {
		t.Errorf("Неожиданное сообщение об ошибке: %v", err)
	}
}

// TestUploadS3Error тестирует обработку ошибки S3
func TestUploadS3Error(t *testing.T) {
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "001. Track - Artist.mp3")
	if err := os.WriteFile(filePath, []byte("data"), 0644); err != nil {
		t.Fatalf("Ошибка создания тестового файла: %v", err)
	}

	mock := &MockS3Uploader{
		uploadFunc: func(_ context.Context, _ io.Reader, _ string) (string, error) {
			return "", fmt.Errorf("S3 upload failed")
		},
	}

	_, err := newTestService(mock, tempDir).UploadFile(context.Background(), filePath, nil)
	if err == nil {
		t.Fatal("Ожидалась ошибка при выгрузке в S3")
	}
	if !strings.Contains(err.Error(), "ошибка загрузки в S3") {
		t.Errorf("Неожиданное сообщение об ошибке: %v", err)
	}
}

// TestProgressReader тестирует отслеживание прогресса чтения
func TestProgressReader(t *testing.T) {
	testData := "test content for progress tracking"

	var progressCalled bool
	var progressBytes int64

	progressReader := &ProgressReader{
		Reader: strings.NewReader(testData),
		Size:   int64(len(testData)),
		OnProgress: func(bytesRead int64) {
			progressCalled = true
			progressBytes = bytesRead
		},
	}

	buffer := make([]byte, 1024)
	n, err := progressReader.Read(buffer)
	if err != nil {
		t.Errorf("Неожиданная ошибка при чтении: %v", err)
	}
	if n != len(testData) {
		t.Errorf("Ожидалось прочитано байт: %d, получено: %d", len(testData), n)
	}
	if !progressCalled {
		t.Error("Callback прогресса не был вызван")
	}
	if progressBytes != int64(len(testData)) {
		t.Errorf("Ожидалось байт в callback: %d, получено: %d", len(testData), progressBytes)
	}
}
