package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-163grab/internal/download"
	"github.com/hazadus/go-163grab/internal/manifest"
	"github.com/hazadus/go-163grab/internal/metadata"
	"github.com/hazadus/go-163grab/internal/s3"
	"github.com/hazadus/go-163grab/internal/uploader"
	"github.com/hazadus/go-163grab/internal/utils"
)

// createUploadCommand создает команду upload с привязкой к экземпляру приложения
func (app *Application) createUploadCommand(ctx context.Context) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "upload [track number]",
		Short: "Upload a downloaded track to S3 storage",
		Long:  `Upload a downloaded track to S3 storage by its number in the manifest file, with progress tracking.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("неверный номер трека: %s", args[0])
			}

			// Контекст с таймаутом для загрузки (10 минут)
			uploadCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
			defer cancel()
			return app.uploadTrack(uploadCtx, input, index)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", manifest.DefaultPath, "путь к файлу манифеста")
	return cmd
}

// uploadTrack выгружает скачанный трек в S3 с отображением прогресса
func (app *Application) uploadTrack(ctx context.Context, input string, index int) error {
	if app.Config.AwsBucketName == "" {
		return fmt.Errorf("в конфигурации не задан aws_bucket_name")
	}

	records, err := manifest.Parse(input)
	if err != nil {
		return fmt.Errorf("ошибка чтения манифеста: %w", err)
	}

	var record *manifest.TrackRecord
	for i := range records {
		if records[i].Index == index {
			record = &records[i]
			break
		}
	}
	if record == nil {
		return fmt.Errorf("трек с номером %d не найден в манифесте", index)
	}

	filePath := filepath.Join(app.Config.DownloadDir, download.FileName(*record))
	fileInfo, err := metadata.NewExtractor().GetFileInfo(filePath)
	if err != nil {
		return fmt.Errorf("файл не скачан: %w", err)
	}

	s3Uploader, err := s3.NewUploader(&s3.Config{
		Region:     app.Config.AwsRegion,
		AccessKey:  app.Config.AwsAccessKey,
		SecretKey:  app.Config.AwsSecretKey,
		Endpoint:   app.Config.AwsEndpoint,
		BucketName: app.Config.AwsBucketName,
	})
	if err != nil {
		return fmt.Errorf("ошибка создания S3 uploader: %w", err)
	}

	uploadService := uploader.NewService(s3Uploader, app.Config.DownloadDir)

	fmt.Printf("📤 Загружаем файл в S3:\n")
	fmt.Printf("   Файл: %s\n", filePath)
	fmt.Printf("   Размер: %s\n", utils.FormatFileSize(fileInfo.Size))
	fmt.Printf("   Бакет: %s\n", app.Config.AwsBucketName)
	fmt.Println()

	progressChan := make(chan int64)

	// Горутина отображения прогресса
	go func() {
		startTime := time.Now()

		for {
			select {
			case progress, ok := <-progressChan:
				if !ok {
					return
				}
				if progress > 0 {
					elapsed := time.Since(startTime)
					percentage := float64(progress) / float64(fileInfo.Size) * 100
					speed := float64(progress) / elapsed.Seconds()

					fmt.Printf("\r📊 Прогресс: %.1f%% | Скорость: %s/s | Прошло: %s",
						percentage,
						utils.FormatFileSize(int64(speed)),
						utils.FormatDuration(elapsed))
				}
			case <-ctx.Done():
				fmt.Printf("\n🚫 Загрузка отменена\n")
				return
			}
		}
	}()

	result, err := uploadService.UploadRecord(ctx, *record, func(bytesRead int64) {
		progressChan <- bytesRead
	})
	close(progressChan)

	if err != nil {
		return fmt.Errorf("ошибка загрузки файла: %w", err)
	}
	if ctx.Err() != nil {
		return fmt.Errorf("операция отменена: %w", ctx.Err())
	}

	fmt.Printf("\n✅ Файл успешно загружен в S3!\n")
	fmt.Printf("   URL: %s\n", result.URL)
	return nil
}
