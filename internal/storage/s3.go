// Package storage issues time-boxed upload handles against S3. Document
// bytes never pass through this service; clients PUT them directly using
// the presigned URL.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/aaoeclipse/serverless-qr-manager/pkg/types"
)

// Presigner is the slice of the S3 presign client this package uses.
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Bucket mints write-capable upload handles for object keys and builds the
// public URLs stored alongside document metadata.
type Bucket struct {
	presigner Presigner
	name      string
	uploadTTL time.Duration
}

func NewBucket(client *s3.Client, name string, uploadTTL time.Duration) *Bucket {
	return &Bucket{
		presigner: s3.NewPresignClient(client),
		name:      name,
		uploadTTL: uploadTTL,
	}
}

// NewBucketWithPresigner exists for tests that substitute the presigner.
func NewBucketWithPresigner(presigner Presigner, name string, uploadTTL time.Duration) *Bucket {
	return &Bucket{presigner: presigner, name: name, uploadTTL: uploadTTL}
}

// ObjectKey is the deterministic storage key for a tenant's document.
func ObjectKey(tenantID, docID string) string {
	return tenantID + "/" + docID
}

// IssueUploadHandle presigns a PUT for the key. The handle expires after
// the configured TTL; expiry is enforced by S3, not tracked here.
func (b *Bucket) IssueUploadHandle(ctx context.Context, key string) (string, error) {
	req, err := b.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = b.uploadTTL
	})
	if err != nil {
		return "", fmt.Errorf("presign upload: %w: %w", types.ErrUpstream, err)
	}
	return req.URL, nil
}

// ObjectURL is the public URL a confirmed document is served from.
func (b *Bucket) ObjectURL(key string) string {
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", b.name, key)
}
