// Package netease реализует клиент стороннего API NetEase Cloud Music
package netease

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL адрес стороннего API сервера по умолчанию
const DefaultBaseURL = "https://163api.qijieya.cn"

// defaultUserAgent эмулирует десктопный браузер; cookie os=pc нужна,
// чтобы API отдавал ссылки с нормальным битрейтом
const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	defaultCookie    = "os=pc"
)

const (
	// batchSize количество треков в одном запросе song/detail
	batchSize = 50
	// playlistRetries количество попыток получения деталей плейлиста
	playlistRetries = 3
	// songURLRetries количество попыток получения прямой ссылки
	songURLRetries = 2
)

// Playlist содержит название плейлиста и идентификаторы его треков
type Playlist struct {
	Name     string
	TrackIDs []int64
}

// Song метаданные одного трека из song/detail
type Song struct {
	ID      int64
	Name    string
	Artists []string
}

// ArtistNames возвращает исполнителей одной строкой через запятую
func (s Song) ArtistNames() string {
	if len(s.Artists) == 0 {
		return "Unknown Artist"
	}
	return strings.Join(s.Artists, ", ")
}

// TrackURL прямая ссылка на трек с параметрами файла
type TrackURL struct {
	URL     string
	Bitrate int
	Size    int64
	Type    string
}

// Client клиент стороннего API. Паузы вынесены в поля, чтобы тесты
// могли их обнулить.
type Client struct {
	baseURL    string
	httpClient *http.Client

	// RetryDelay пауза между попытками playlist/detail
	RetryDelay time.Duration
	// URLRetryDelay пауза между попытками song/url/v1
	URLRetryDelay time.Duration
	// BatchDelay пауза между батчами song/detail
	BatchDelay time.Duration
	// URLDelayMin и URLDelayMax границы случайной паузы перед каждым
	// запросом прямой ссылки (обход кэширования и rate limiting)
	URLDelayMin time.Duration
	URLDelayMax time.Duration
}

// NewClient создает клиент API с паузами как в эталонном поведении
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		RetryDelay:    3 * time.Second,
		URLRetryDelay: 500 * time.Millisecond,
		BatchDelay:    500 * time.Millisecond,
		URLDelayMin:   1 * time.Second,
		URLDelayMax:   3 * time.Second,
	}
}

// Ping проверяет доступность API сервера простым поисковым запросом
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	resp, err := c.postForm(ctx, "/search", url.Values{"keywords": {"test"}}, defaultUserAgent)
	if err != nil {
		return fmt.Errorf("API сервер недоступен: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API сервер вернул ошибку: HTTP %d", resp.StatusCode)
	}
	return nil
}

// playlistDetailResponse конверт ответа playlist/detail
type playlistDetailResponse struct {
	Code     int    `json:"code"`
	Msg      string `json:"msg"`
	Playlist struct {
		Name     string `json:"name"`
		TrackIds []struct {
			ID int64 `json:"id"`
		} `json:"trackIds"`
	} `json:"playlist"`
}

// PlaylistDetail получает название плейлиста и список ID его треков.
// Повторяет запрос до трех раз с фиксированной паузой; 404 и 403
// считаются окончательными.
func (c *Client) PlaylistDetail(ctx context.Context, playlistID string) (*Playlist, error) {
	var lastErr error

	for attempt := 1; attempt <= playlistRetries; attempt++ {
		fmt.Printf("⏳ Получаем детали плейлиста... (попытка %d/%d)\n", attempt, playlistRetries)

		playlist, retryable, err := c.playlistDetailOnce(ctx, playlistID)
		if err == nil {
			return playlist, nil
		}
		lastErr = err
		if !retryable || attempt == playlistRetries {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.RetryDelay):
		}
	}

	return nil, lastErr
}

func (c *Client) playlistDetailOnce(ctx context.Context, playlistID string) (*Playlist, bool, error) {
	resp, err := c.postForm(ctx, "/playlist/detail", url.Values{"id": {playlistID}}, defaultUserAgent)
	if err != nil {
		return nil, true, fmt.Errorf("ошибка запроса деталей плейлиста: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil, false, fmt.Errorf("плейлист не существует или был удален (ID: %s)", playlistID)
	case http.StatusForbidden:
		return nil, false, fmt.Errorf("доступ запрещен: возможно, плейлист приватный")
	case http.StatusOK:
	default:
		return nil, true, fmt.Errorf("API сервер вернул ошибку: HTTP %d", resp.StatusCode)
	}

	var envelope playlistDetailResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, true, fmt.Errorf("ошибка разбора ответа API: %w", err)
	}
	if envelope.Code != 200 {
		return nil, true, fmt.Errorf("ошибка API: code=%d, msg=%s", envelope.Code, envelope.Msg)
	}
	if envelope.Playlist.Name == "" && len(envelope.Playlist.TrackIds) == 0 {
		return nil, false, fmt.Errorf("API вернул успех, но данные плейлиста пусты")
	}

	playlist := &Playlist{Name: envelope.Playlist.Name}
	for _, track := range envelope.Playlist.TrackIds {
		playlist.TrackIDs = append(playlist.TrackIDs, track.ID)
	}
	return playlist, false, nil
}

// songDetailResponse конверт ответа song/detail
type songDetailResponse struct {
	Code  int    `json:"code"`
	Msg   string `json:"msg"`
	Songs []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
		Ar   []struct {
			Name string `json:"name"`
		} `json:"ar"`
	} `json:"songs"`
}

// SongDetails получает метаданные треков батчами по 50 штук с короткой
// паузой между батчами. Неудачный батч пропускается без повтора.
func (c *Client) SongDetails(ctx context.Context, ids []int64) ([]Song, error) {
	var songs []Song

	for start := 0; start < len(ids); start += batchSize {
		end := start + batchSize
		if end > len(ids) {
			end = len(ids)
		}
		fmt.Printf("⏳ Получаем сведения о треках %d-%d из %d...\n", start+1, end, len(ids))

		batch, err := c.songDetailBatch(ctx, ids[start:end])
		if err != nil {
			if ctx.Err() != nil {
				return songs, ctx.Err()
			}
			// Неудачный батч теряется: так вел себя эталонный инструмент
			fmt.Printf("⚠️  Батч %d-%d пропущен: %v\n", start+1, end, err)
		} else {
			songs = append(songs, batch...)
		}

		if end < len(ids) {
			select {
			case <-ctx.Done():
				return songs, ctx.Err()
			case <-time.After(c.BatchDelay):
			}
		}
	}

	if len(songs) == 0 {
		return nil, fmt.Errorf("не удалось получить сведения ни об одном треке")
	}
	return songs, nil
}

func (c *Client) songDetailBatch(ctx context.Context, ids []int64) ([]Song, error) {
	joined := make([]string, len(ids))
	for i, id := range ids {
		joined[i] = strconv.FormatInt(id, 10)
	}

	resp, err := c.postForm(ctx, "/song/detail", url.Values{"ids": {strings.Join(joined, ",")}}, defaultUserAgent)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса сведений о треках: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var envelope songDetailResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("ошибка разбора ответа API: %w", err)
	}
	if envelope.Code != 200 {
		return nil, fmt.Errorf("ошибка API: code=%d, msg=%s", envelope.Code, envelope.Msg)
	}

	songs := make([]Song, 0, len(envelope.Songs))
	for _, s := range envelope.Songs {
		song := Song{ID: s.ID, Name: s.Name}
		if song.Name == "" {
			song.Name = "Unknown Track"
		}
		for _, artist := range s.Ar {
			if artist.Name != "" {
				song.Artists = append(song.Artists, artist.Name)
			}
		}
		songs = append(songs, song)
	}
	return songs, nil
}

// songURLResponse конверт ответа song/url/v1
type songURLResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data []struct {
		ID   int64  `json:"id"`
		URL  string `json:"url"`
		Br   int    `json:"br"`
		Size int64  `json:"size"`
		Type string `json:"type"`
	} `json:"data"`
}

// SongURL запрашивает прямую ссылку на трек в указанном качестве.
// Перед каждой попыткой выдерживается случайная пауза и подставляется
// случайный User-Agent, чтобы не попадать в кэш и под rate limiting.
func (c *Client) SongURL(ctx context.Context, songID int64, level string) (*TrackURL, error) {
	var lastErr error

	for attempt := 1; attempt <= songURLRetries; attempt++ {
		if err := c.randomSleep(ctx); err != nil {
			return nil, err
		}

		trackURL, retryable, err := c.songURLOnce(ctx, songID, level)
		if err == nil {
			return trackURL, nil
		}
		lastErr = err
		if !retryable || attempt == songURLRetries {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.URLRetryDelay):
		}
	}

	return nil, lastErr
}

func (c *Client) songURLOnce(ctx context.Context, songID int64, level string) (*TrackURL, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	query := url.Values{
		"id":    {strconv.FormatInt(songID, 10)},
		"level": {level},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/song/url/v1?"+query.Encode(), nil)
	if err != nil {
		return nil, false, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("User-Agent", randomUserAgent())
	req.Header.Set("Cookie", defaultCookie)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("ошибка запроса прямой ссылки: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, true, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var envelope songURLResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, true, fmt.Errorf("ошибка разбора ответа API: %w", err)
	}
	if envelope.Code != 200 || len(envelope.Data) == 0 {
		return nil, true, fmt.Errorf("ошибка API: code=%d, msg=%s", envelope.Code, envelope.Msg)
	}
	// Пустая ссылка в успешном конверте окончательна: трек недоступен
	// в запрошенном качестве, повтор ничего не изменит
	if envelope.Data[0].URL == "" {
		return nil, false, fmt.Errorf("API вернул успех, но ссылка пуста")
	}

	return &TrackURL{
		URL:     envelope.Data[0].URL,
		Bitrate: envelope.Data[0].Br,
		Size:    envelope.Data[0].Size,
		Type:    envelope.Data[0].Type,
	}, true, nil
}

// postForm выполняет POST с form-данными и стандартными заголовками сессии
func (c *Client) postForm(ctx context.Context, path string, form url.Values, userAgent string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Cookie", defaultCookie)

	return c.httpClient.Do(req)
}

// randomSleep выдерживает случайную паузу в границах URLDelayMin..URLDelayMax
func (c *Client) randomSleep(ctx context.Context) error {
	if c.URLDelayMax <= 0 {
		return nil
	}
	delay := c.URLDelayMin
	if c.URLDelayMax > c.URLDelayMin {
		delay += time.Duration(rand.Int63n(int64(c.URLDelayMax - c.URLDelayMin)))
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

// randomUserAgent возвращает User-Agent со случайной версией Chrome 90-120
func randomUserAgent() string {
	return fmt.Sprintf("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%d.0.0.0 Safari/537.36", 90+rand.Intn(31))
}
