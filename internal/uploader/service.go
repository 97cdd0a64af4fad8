// Package uploader предоставляет функционал для выгрузки скачанных треков в S3
package uploader

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hazadus/go-163grab/internal/download"
	"github.com/hazadus/go-163grab/internal/manifest"
	"github.com/hazadus/go-163grab/internal/metadata"
	"github.com/hazadus/go-163grab/internal/s3"
)

// Service управляет процессом выгрузки скачанных файлов
type Service struct {
	s3Uploader        *s3.Uploader
	metadataExtractor *metadata.Extractor
	downloadDir       string
}

// NewService создает новый сервис выгрузки
func NewService(s3Uploader *s3.Uploader, downloadDir string) *Service {
	return &Service{
		s3Uploader:        s3Uploader,
		metadataExtractor: metadata.NewExtractor(),
		downloadDir:       downloadDir,
	}
}

// UploadResult содержит результат выгрузки
type UploadResult struct {
	URL      string
	Tags     metadata.TrackTags
	FileInfo *metadata.FileInfo
}

// UploadRecord выгружает скачанный файл записи манифеста. Ключ объекта
// совпадает с именем файла на диске.
func (s *Service) UploadRecord(ctx context.Context, record manifest.TrackRecord, progressCallback func(int64)) (*UploadResult, error) {
	fileName := download.FileName(record)
	filePath := filepath.Join(s.downloadDir, fileName)
	return s.UploadFile(ctx, filePath, progressCallback)
}

// UploadFile выгружает файл с метаданными
func (s *Service) UploadFile(ctx context.Context, filePath string, progressCallback func(int64)) (*UploadResult, error) {
	// Проверяем существование файла
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("файл не найден: %s", filePath)
	}

	// Получаем информацию о файле
	fileInfo, err := s.metadataExtractor.GetFileInfo(filePath)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения информации о файле: %w", err)
	}

	// Извлекаем метаданные
	tags := s.metadataExtractor.ExtractFromFile(filePath)

	// Открываем файл для выгрузки
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer file.Close()

	// Создаем reader с отслеживанием прогресса
	var reader io.Reader = file
	if progressCallback != nil {
		reader = &ProgressReader{
			Reader:     file,
			Size:       fileInfo.Size,
			OnProgress: progressCallback,
		}
	}

	s3Key := filepath.Base(filePath)

	url, err := s.s3Uploader.UploadFile(ctx, reader, s3Key)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки в S3: %w", err)
	}

	return &UploadResult{
		URL:      url,
		Tags:     tags,
		FileInfo: fileInfo,
	}, nil
}

// ProgressReader структура для отслеживания прогресса чтения
type ProgressReader struct {
	io.Reader
	Size       int64
	OnProgress func(int64)
	bytesRead  int64
}

func (pr *ProgressReader) Read(p []byte) (n int, err error) {
	n, err = pr.Reader.Read(p)
	pr.bytesRead += int64(n)
	if pr.OnProgress != nil {
		pr.OnProgress(pr.bytesRead)
	}
	return n, err
}
