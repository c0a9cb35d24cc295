// Package publish copies produced files to a Google Cloud Storage bucket.
// It assumes Application Default Credentials are configured.
package publish

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	"paytrends/internal/logger"
)

// ObjectName is the object a local file is stored under: the file's base
// name below prefix. Slashes around prefix are ignored.
func ObjectName(prefix, filePath string) string {
	base := filepath.Base(filePath)
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return base
	}
	return path.Join(prefix, base)
}

// URI formats the gs:// address of an object.
func URI(bucket, object string) string {
	return "gs://" + bucket + "/" + object
}

// Upload copies every file in paths to bucket under prefix and returns the
// URIs written, in order. It stops at the first failure.
func Upload(ctx context.Context, bucket, prefix string, paths ...string) ([]string, error) {
	if bucket == "" {
		return nil, fmt.Errorf("publish: empty bucket name")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	log := logger.FromContext(ctx)
	bkt := client.Bucket(bucket)
	var uris []string
	for _, p := range paths {
		object := ObjectName(prefix, p)
		if err := uploadFile(ctx, bkt, object, p); err != nil {
			return uris, err
		}
		uri := URI(bucket, object)
		log.Info().Str("uri", uri).Msg("published")
		uris = append(uris, uri)
	}
	return uris, nil
}

func uploadFile(ctx context.Context, bkt *storage.BucketHandle, object, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open file %q: %w", filePath, err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := bkt.Object(object).NewWriter(ctx)
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return fmt.Errorf("copy %s to GCS writer: %w", filePath, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize upload of %s: %w", object, err)
	}
	return nil
}
