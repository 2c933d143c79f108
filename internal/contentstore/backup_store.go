package contentstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// BackupStore writes pre-replacement snapshots of content to object storage
// so any rewrite can be rolled back.
type BackupStore struct {
	Client     *minio.Client
	BucketName string
}

var globalBackupStore *BackupStore

// InitBackupStore initializes the global backup store from environment
// variables. This should be called at application startup. Backups are an
// optional feature; callers may treat an error here as non-fatal.
func InitBackupStore() error {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	accessKeyID := os.Getenv("MINIO_ACCESS_KEY_ID")
	secretAccessKey := os.Getenv("MINIO_SECRET_ACCESS_KEY")
	bucketName := os.Getenv("MINIO_BUCKET_NAME")
	useSSLStr := os.Getenv("MINIO_USE_SSL")

	if endpoint == "" || accessKeyID == "" || secretAccessKey == "" || bucketName == "" {
		return fmt.Errorf("MINIO_ENDPOINT, MINIO_ACCESS_KEY_ID, MINIO_SECRET_ACCESS_KEY, and MINIO_BUCKET_NAME must be set")
	}

	useSSL, err := strconv.ParseBool(useSSLStr)
	if err != nil {
		log.Printf("Warning: MINIO_USE_SSL environment variable is not a valid boolean ('%s'). Defaulting to false. Error: %v", useSSLStr, err)
		useSSL = false
	}

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	ctx := context.Background()
	exists, err := minioClient.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("failed to check if MinIO bucket '%s' exists: %w", bucketName, err)
	}
	if !exists {
		log.Printf("MinIO bucket '%s' does not exist. Attempting to create it.", bucketName)
		err = minioClient.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create MinIO bucket '%s': %w", bucketName, err)
		}
		log.Printf("MinIO bucket '%s' created successfully.", bucketName)
	} else {
		log.Printf("MinIO bucket '%s' already exists.", bucketName)
	}

	globalBackupStore = &BackupStore{
		Client:     minioClient,
		BucketName: bucketName,
	}
	log.Println("Content backup store initialized successfully.")
	return nil
}

// GetGlobalBackupStore returns the initialized global backup store.
func GetGlobalBackupStore() (*BackupStore, error) {
	if globalBackupStore == nil {
		return nil, fmt.Errorf("backup store not initialized. Call InitBackupStore first")
	}
	return globalBackupStore, nil
}

// SaveBackup stores the original content for a content item before it is
// replaced and returns the generated object key. Keys are namespaced by user
// so cleanup and audits can scope per account.
func (bs *BackupStore) SaveBackup(ctx context.Context, userID int, contentItemID int64, contentType string, original string) (string, error) {
	if bs.Client == nil {
		return "", fmt.Errorf("backup store MinIO client not initialized")
	}
	if bs.BucketName == "" {
		return "", fmt.Errorf("backup store bucket name not configured")
	}

	objectKey := fmt.Sprintf("backups/user_%d/item_%d/%s_%s.txt", userID, contentItemID, contentType, uuid.New().String())

	data := []byte(original)
	uploadInfo, err := bs.Client.PutObject(ctx, bs.BucketName, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "text/plain; charset=utf-8",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload backup to MinIO (bucket: %s, object: %s): %w", bs.BucketName, objectKey, err)
	}

	log.Printf("Successfully backed up '%s' (%d bytes) to MinIO. ETag: %s", objectKey, uploadInfo.Size, uploadInfo.ETag)
	return objectKey, nil
}

// GetBackup retrieves a previously saved snapshot by its object key.
func (bs *BackupStore) GetBackup(ctx context.Context, objectKey string) (string, error) {
	if bs.Client == nil {
		return "", fmt.Errorf("backup store MinIO client not initialized")
	}
	if bs.BucketName == "" {
		return "", fmt.Errorf("backup store bucket name not configured")
	}

	object, err := bs.Client.GetObject(ctx, bs.BucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to get object '%s' from bucket '%s': %w", objectKey, bs.BucketName, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return "", fmt.Errorf("failed to read object '%s' data: %w", objectKey, err)
	}

	return string(data), nil
}

// DeleteBackup removes a snapshot, used by retention cleanup.
func (bs *BackupStore) DeleteBackup(ctx context.Context, objectKey string) error {
	if bs.Client == nil {
		return fmt.Errorf("backup store MinIO client not initialized")
	}
	if bs.BucketName == "" {
		return fmt.Errorf("backup store bucket name not configured")
	}

	err := bs.Client.RemoveObject(ctx, bs.BucketName, objectKey, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete object '%s' from MinIO bucket '%s': %w", objectKey, bs.BucketName, err)
	}

	log.Printf("Successfully deleted backup '%s' from MinIO bucket '%s'.", objectKey, bs.BucketName)
	return nil
}
