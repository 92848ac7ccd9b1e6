package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// getGoogleClient initializes a Google Cloud Storage client.
// Prefers ADC (service account / GOOGLE_APPLICATION_CREDENTIALS); explicit
// JSON can be provided via GCS_CREDENTIALS_JSON for local runs.
func getGoogleClient(ctx context.Context) (*storage.Client, error) {
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		client, err := storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// ExtractStorageConfigured reports whether generated extracts should also be
// persisted to Cloud Storage.
func ExtractStorageConfigured() bool {
	return strings.TrimSpace(os.Getenv("GCS_EXTRACT_BUCKET")) != ""
}

// UploadExtractToGCS stores a generated extract archive under
// extracts/<objectName> in the configured bucket.
func UploadExtractToGCS(ctx context.Context, objectName string, content io.Reader) error {
	bucketName := os.Getenv("GCS_EXTRACT_BUCKET")
	if bucketName == "" {
		return errors.New("GCS_EXTRACT_BUCKET is required")
	}

	client, err := getGoogleClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if _, err := client.Bucket(bucketName).Attrs(ctx); err != nil {
		return fmt.Errorf("gcs bucket %q not found or not accessible: %v", bucketName, err)
	}

	wc := client.Bucket(bucketName).Object("extracts/" + objectName).NewWriter(ctx)
	wc.ContentType = "application/zip"
	if _, err := io.Copy(wc, content); err != nil {
		wc.Close()
		return err
	}
	return wc.Close()
}
