package services

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"

	"github.com/airmems/meme_api/model"
)

// MediaService mirrors fetched meme images into object storage so saved
// lessons keep rendering after the upstream post is deleted. Entirely
// optional: without MINIO_ENDPOINT every call is a no-op.
type MediaService struct {
	appContext.DefaultService

	client     *minio.Client
	httpClient *http.Client

	endpoint   string
	accessKey  string
	secretKey  string
	useSSL     bool
	bucketName string
}

const MEDIA_SVC = "media_svc"

func (svc MediaService) Id() string {
	return MEDIA_SVC
}

func (svc *MediaService) Configure(ctx *appContext.Context) error {
	svc.endpoint = os.Getenv("MINIO_ENDPOINT")
	svc.accessKey = os.Getenv("MINIO_ACCESS_KEY")
	svc.secretKey = os.Getenv("MINIO_SECRET_KEY")
	svc.useSSL = os.Getenv("MINIO_USE_SSL") == "true"

	svc.bucketName = os.Getenv("MINIO_BUCKET_NAME")
	if svc.bucketName == "" {
		svc.bucketName = "airmems-media"
	}

	svc.httpClient = &http.Client{Timeout: 30 * time.Second}
	return svc.DefaultService.Configure(ctx)
}

func (svc *MediaService) Start() error {
	if svc.endpoint == "" {
		log.Info("MINIO_ENDPOINT not set, image mirroring disabled")
		return nil
	}

	client, err := minio.New(svc.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(svc.accessKey, svc.secretKey, ""),
		Secure: svc.useSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %v", err)
	}
	svc.client = client

	if err := svc.ensureBucket(); err != nil {
		return fmt.Errorf("failed to ensure bucket exists: %v", err)
	}

	log.Printf("Media mirror started with endpoint: %s", svc.endpoint)
	return nil
}

func (svc *MediaService) Enabled() bool {
	return svc.client != nil
}

func (svc *MediaService) ensureBucket() error {
	ctx := context.Background()

	exists, err := svc.client.BucketExists(ctx, svc.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %v", err)
	}

	if !exists {
		if err := svc.client.MakeBucket(ctx, svc.bucketName, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %v", err)
		}
		log.Printf("Created MinIO bucket: %s", svc.bucketName)
	}
	return nil
}

// MirrorMemes mirrors a batch in the background. Fire and forget: feed
// serving never waits on object storage.
func (svc *MediaService) MirrorMemes(memes []model.Meme) {
	if !svc.Enabled() {
		return
	}

	go func() {
		for i := range memes {
			if _, err := svc.MirrorImage(context.Background(), memes[i].ID, memes[i].URL); err != nil {
				log.WithError(err).WithField("meme", memes[i].ID).Warn("Image mirror failed")
			}
		}
	}()
}

// MirrorImage downloads the source image and stores it under the meme id.
// Already-mirrored objects are left alone.
func (svc *MediaService) MirrorImage(ctx context.Context, memeID, sourceURL string) (string, error) {
	if !svc.Enabled() {
		return "", nil
	}

	objectName := fmt.Sprintf("memes/%s%s", memeID, path.Ext(sourceURL))

	if _, err := svc.client.StatObject(ctx, svc.bucketName, objectName, minio.StatObjectOptions{}); err == nil {
		return objectName, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := svc.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image fetch failed: %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	_, err = svc.client.PutObject(ctx, svc.bucketName, objectName, resp.Body, resp.ContentLength, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to MinIO: %v", err)
	}
	return objectName, nil
}

// PresignedURL returns a time-limited link to a mirrored image.
func (svc *MediaService) PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	if !svc.Enabled() {
		return "", fmt.Errorf("media mirror disabled")
	}

	presignedURL, err := svc.client.PresignedGetObject(ctx, svc.bucketName, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %v", err)
	}
	return presignedURL.String(), nil
}
