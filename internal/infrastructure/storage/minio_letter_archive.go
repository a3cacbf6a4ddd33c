// Package storage archivo de cartas firmadas en un bucket S3 compatible.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/xaldigital/insumos-portal/internal/application/order"
	"github.com/xaldigital/insumos-portal/internal/domain/entity"
	"github.com/xaldigital/insumos-portal/pkg/config"
)

var _ order.LetterArchive = (*MinioLetterArchive)(nil)

// MinioLetterArchive guarda cada carta como cartas/<id>/<tipo>.pdf.
type MinioLetterArchive struct {
	client *minio.Client
	bucket string
}

// NewMinioLetterArchive conecta y crea el bucket si no existe.
func NewMinioLetterArchive(ctx context.Context, cfg config.StorageConfig) (*MinioLetterArchive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return &MinioLetterArchive{client: client, bucket: cfg.Bucket}, nil
}

// ObjectKey ruta del objeto para una carta.
func ObjectKey(orderID int64, letterType entity.LetterType) string {
	return fmt.Sprintf("cartas/%d/%s.pdf", orderID, letterType)
}

// Store sube el PDF; sobrescribe la versión anterior.
func (a *MinioLetterArchive) Store(ctx context.Context, orderID int64, letterType entity.LetterType, pdf []byte) error {
	_, err := a.client.PutObject(ctx, a.bucket, ObjectKey(orderID, letterType), bytes.NewReader(pdf), int64(len(pdf)),
		minio.PutObjectOptions{ContentType: "application/pdf"})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}
