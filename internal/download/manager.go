// Package download реализует пакетную загрузку треков из манифеста
// пулом воркеров с ограниченной конкурентностью
package download

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/hazadus/go-163grab/internal/manifest"
)

const (
	// MinWorkers и MaxWorkers границы допустимого числа воркеров
	MinWorkers = 1
	MaxWorkers = 10
	// DefaultWorkers число воркеров по умолчанию
	DefaultWorkers = 3

	// maxRetries число попыток загрузки одного файла
	maxRetries = 3
	// sizeTolerance допустимое расхождение размера при проверке
	// уже скачанного файла
	sizeTolerance = 1024
	// maxFileNameLen предельная длина имени файла в символах
	maxFileNameLen = 200
	// copyBufferSize размер порции при потоковой записи на диск
	copyBufferSize = 32 * 1024
)

const (
	downloadUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	// refererHeader обязателен: без него CDN отвечает 403
	refererHeader = "https://music.163.com/"
)

// illegalFileNameChars символы, недопустимые в именах файлов
var illegalFileNameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// SanitizeFileName заменяет недопустимые символы и ограничивает длину имени
func SanitizeFileName(name string) string {
	name = illegalFileNameChars.ReplaceAllString(name, "_")
	if runes := []rune(name); len(runes) > maxFileNameLen {
		name = string(runes[:maxFileNameLen])
	}
	return name
}

// FileName строит имя файла записи вида "NNN. Название - Исполнитель.тип"
func FileName(record manifest.TrackRecord) string {
	name := fmt.Sprintf("%03d. %s - %s.%s", record.Index, record.Name, record.Artist, record.Type)
	return SanitizeFileName(name)
}

// ClampWorkers приводит число воркеров к допустимым границам
func ClampWorkers(workers int) int {
	if workers < MinWorkers {
		return MinWorkers
	}
	if workers > MaxWorkers {
		return MaxWorkers
	}
	return workers
}

// Result итог пакетной загрузки
type Result struct {
	Success int
	Failed  int
}

// Manager пул воркеров для загрузки треков. Каждый воркер самодостаточен:
// свой файл, свой цикл повторов. Общие счетчики защищены одним мьютексом.
type Manager struct {
	dir     string
	workers int
	client  *http.Client

	// RetryDelay пауза между попытками загрузки одного файла
	RetryDelay time.Duration

	mu      sync.Mutex
	success int
	failed  int
}

// NewManager создает менеджер загрузок для указанной директории
func NewManager(dir string, workers int) *Manager {
	// Потоковый клиент без общего таймаута: большие файлы качаются
	// дольше любого разумного лимита, ограничиваем только ожидания
	// соединения и заголовков
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		IdleConnTimeout:       300 * time.Second,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
	}

	return &Manager{
		dir:        dir,
		workers:    ClampWorkers(workers),
		client:     &http.Client{Transport: transport},
		RetryDelay: 2 * time.Second,
	}
}

// DownloadAll скачивает все записи пулом воркеров и возвращает итоговые
// счетчики. Порядок завершения не гарантируется.
func (m *Manager) DownloadAll(ctx context.Context, records []manifest.TrackRecord) (*Result, error) {
	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания директории загрузок: %w", err)
	}

	m.mu.Lock()
	m.success = 0
	m.failed = 0
	m.mu.Unlock()

	jobs := make(chan manifest.TrackRecord)
	var wg sync.WaitGroup

	for i := 0; i < m.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for record := range jobs {
				ok := m.downloadOne(ctx, record)

				m.mu.Lock()
				if ok {
					m.success++
				} else {
					m.failed++
				}
				m.mu.Unlock()
			}
		}()
	}

feed:
	for _, record := range records {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- record:
		}
	}
	close(jobs)
	wg.Wait()

	m.mu.Lock()
	result := &Result{Success: m.success, Failed: m.failed}
	m.mu.Unlock()
	return result, nil
}

// downloadOne скачивает одну запись с повторами. Файл подходящего размера
// не скачивается повторно, сеть при этом не используется вовсе.
func (m *Manager) downloadOne(ctx context.Context, record manifest.TrackRecord) bool {
	fileName := FileName(record)
	filePath := filepath.Join(m.dir, fileName)

	if info, err := os.Stat(filePath); err == nil {
		diff := info.Size() - record.Size
		if diff < 0 {
			diff = -diff
		}
		if diff < sizeTolerance {
			fmt.Printf("✅ [%03d] Файл уже существует, пропускаем: %s\n", record.Index, fileName)
			return true
		}
	}

	fmt.Printf("⏳ [%03d] Начинаем загрузку: %s\n", record.Index, fileName)

	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := m.fetch(ctx, record, filePath)
		if err == nil {
			fmt.Printf("\n✅ [%03d] Загрузка завершена: %s\n", record.Index, fileName)
			return true
		}

		fmt.Printf("\n❌ [%03d] Ошибка загрузки: %v\n", record.Index, err)
		if ctx.Err() != nil {
			return false
		}
		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return false
			case <-time.After(m.RetryDelay):
			}
		}
	}

	return false
}

// fetch выполняет одну попытку: потоковый GET с обязательными заголовками
// и запись на диск порциями с отображением прогресса
func (m *Manager) fetch(ctx context.Context, record manifest.TrackRecord, filePath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, record.URL, nil)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("User-Agent", downloadUserAgent)
	req.Header.Set("Referer", refererHeader)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Encoding", "identity")
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Range", "bytes=0-")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка запроса: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		io.Copy(io.Discard, resp.Body)
		if resp.StatusCode == http.StatusForbidden {
			return fmt.Errorf("HTTP 403: возможно, требуется обновить заголовки запроса")
		}
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	totalSize := resp.ContentLength
	if totalSize <= 0 {
		totalSize = record.Size
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("ошибка создания файла: %w", err)
	}
	defer file.Close()

	var downloaded int64
	buffer := make([]byte, copyBufferSize)
	for {
		n, readErr := resp.Body.Read(buffer)
		if n > 0 {
			if _, writeErr := file.Write(buffer[:n]); writeErr != nil {
				return fmt.Errorf("ошибка записи файла: %w", writeErr)
			}
			downloaded += int64(n)
			if totalSize > 0 {
				progress := float64(downloaded) / float64(totalSize) * 100
				fmt.Printf("\r⏳ [%03d] Прогресс: %.1f%% (%d/%d bytes)", record.Index, progress, downloaded, totalSize)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("ошибка чтения ответа: %w", readErr)
		}
	}

	return nil
}
