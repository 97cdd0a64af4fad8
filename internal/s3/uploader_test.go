package s3

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// S3UploaderInterface интерфейс для S3 uploader
type S3UploaderInterface interface {
	UploadWithContext(ctx context.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error)
}

// MockS3Uploader мок для S3 uploader
type MockS3Uploader struct {
	uploadFunc func(input *s3manager.UploadInput) (*s3manager.UploadOutput, error)
}

func (m *MockS3Uploader) UploadWithContext(_ context.Context, input *s3manager.UploadInput, _ ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	return m.uploadFunc(input)
}

// TestUploader тестовая версия Uploader для тестирования
type TestUploader struct {
	s3Uploader S3UploaderInterface
	config     *Config
}

// UploadFile загружает файл в S3 (тестовая версия)
func (u *TestUploader) UploadFile(ctx context.Context, reader io.Reader, key string) (string, error) {
	_, err := u.s3Uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(u.config.BucketName),
		Key:    aws.String(key),
		Body:   reader,
	})
	if err != nil {
		return "", err
	}
	return u.config.Endpoint + "/" + u.config.BucketName + "/" + key, nil
}

func testConfig() *Config {
	return &Config{
		Region:     "us-east-1",
		AccessKey:  "test-access-key",
		SecretKey:  "test-secret-key",
		Endpoint:   "https://s3.amazonaws.com",
		BucketName: "test-bucket",
	}
}

// TestSuccessfulUpload тестирует успешную загрузку файла в S3
func TestSuccessfulUpload(t *testing.T) {
	config := testConfig()

	mockUploader := &MockS3Uploader{
		uploadFunc: func(input *s3manager.UploadInput) (*s3manager.UploadOutput, error) {
			if aws.StringValue(input.Bucket) != "test-bucket" {
				t.Errorf("Ожидался bucket: test-bucket, получено: %s", aws.StringValue(input.Bucket))
			}
			if aws.StringValue(input.Key) != "001. 晴天 - 周杰伦.mp3" {
				t.Errorf("Неожиданный key: %s", aws.StringValue(input.Key))
			}

			body, err := io.ReadAll(input.Body)
			if err != nil {
				t.Errorf("Ошибка чтения тела запроса: %v", err)
			}
			if string(body) != "audio content" {
				t.Errorf("Неожиданное содержимое: %s", string(body))
			}

			return &s3manager.UploadOutput{}, nil
		},
	}

	uploader := &TestUploader{s3Uploader: mockUploader, config: config}

	url, err := uploader.UploadFile(context.Background(), strings.NewReader("audio content"), "001. 晴天 - 周杰伦.mp3")
	if err != nil {
		t.Errorf("Неожиданная ошибка при загрузке: %v", err)
	}

	expectedURL := "https://s3.amazonaws.com/test-bucket/001. 晴天 - 周杰伦.mp3"
	if url != expectedURL {
		t.Errorf("Ожидался URL: %s, получено: %s", expectedURL, url)
	}
}

// TestUploadErrorHandling тестирует обработку ошибок при загрузке
func TestUploadErrorHandling(t *testing.T) {
	config := testConfig()

	t.Run("InvalidCredentials", func(t *testing.T) {
		mockUploader := &MockS3Uploader{
			uploadFunc: func(_ *s3manager.UploadInput) (*s3manager.UploadOutput, error) {
				return nil, awserr.New("InvalidAccessKeyId", "The AWS Access Key Id you provided does not exist in our records.", nil)
			},
		}

		uploader := &TestUploader{s3Uploader: mockUploader, config: config}
		if _, err := uploader.UploadFile(context.Background(), strings.NewReader("data"), "file.mp3"); err == nil {
			t.Error("Ожидалась ошибка при неверных учетных данных")
		}
	})

	t.Run("AccessDenied", func(t *testing.T) {
		mockUploader := &MockS3Uploader{
			uploadFunc: func(_ *s3manager.UploadInput) (*s3manager.UploadOutput, error) {
				return nil, awserr.New("AccessDenied", "Access Denied", nil)
			},
		}

		uploader := &TestUploader{s3Uploader: mockUploader, config: config}
		if _, err := uploader.UploadFile(context.Background(), strings.NewReader("data"), "file.mp3"); err == nil {
			t.Error("Ожидалась ошибка при отсутствии доступа к bucket")
		}
	})
}

// TestNewUploader тестирует создание нового uploader
func TestNewUploader(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		config := testConfig()

		uploader, err := NewUploader(config)
		if err != nil {
			t.Errorf("Неожиданная ошибка при создании uploader: %v", err)
		}
		if uploader == nil {
			t.Error("Uploader не должен быть nil")
			return
		}
		if uploader.config != config {
			t.Error("Конфигурация должна быть сохранена")
		}
	})

	t.Run("ConfigWithoutEndpoint", func(t *testing.T) {
		config := testConfig()
		config.Endpoint = ""

		uploader, err := NewUploader(config)
		if err != nil {
			t.Errorf("Неожиданная ошибка при создании uploader: %v", err)
		}
		if uploader == nil {
			t.Error("Uploader не должен быть nil")
		}
	})
}
