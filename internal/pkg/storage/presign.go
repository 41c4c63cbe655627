package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Options for the object storage
type Options struct {
	URL    string
	User   string
	Key    string
	Bucket string
	Secure bool
	Region string
	Expiry time.Duration
}

// Presigner creates direct upload URLs
type Presigner struct {
	client *minio.Client
	bucket string
	expiry time.Duration
}

// NewPresigner creates minio based presigner
func NewPresigner(opt Options) (*Presigner, error) {
	if opt.URL == "" {
		return nil, fmt.Errorf("no storage URL")
	}
	if opt.Bucket == "" {
		return nil, fmt.Errorf("no bucket")
	}
	endpoint := stripScheme(opt.URL)
	region := opt.Region
	if region == "" {
		region = "us-east-1"
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opt.User, opt.Key, ""),
		Secure: opt.Secure,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("can't init minio client: %w", err)
	}
	expiry := opt.Expiry
	if expiry <= 0 {
		expiry = time.Hour
	}
	goapp.Log.Info().Str("endpoint", endpoint).Str("bucket", opt.Bucket).Dur("expiry", expiry).Msg("presigner")
	return &Presigner{client: client, bucket: opt.Bucket, expiry: expiry}, nil
}

// PresignPut returns URL for a direct PUT upload of the object
func (p *Presigner) PresignPut(ctx context.Context, name string) (string, error) {
	u, err := p.client.PresignedPutObject(ctx, p.bucket, name, p.expiry)
	if err != nil {
		return "", fmt.Errorf("can't presign %s: %w", name, err)
	}
	return u.String(), nil
}

func stripScheme(url string) string {
	for _, p := range []string{"https://", "http://"} {
		if strings.HasPrefix(url, p) {
			return strings.TrimSuffix(url[len(p):], "/")
		}
	}
	return strings.TrimSuffix(url, "/")
}
