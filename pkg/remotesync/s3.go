package remotesync

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/paulschiretz/pgl-shipper/pkg/backend"
	"github.com/paulschiretz/pgl-shipper/pkg/collector"
	"github.com/paulschiretz/pgl-shipper/pkg/pathretention"
	"github.com/paulschiretz/pgl-shipper/pkg/pathtemplate"
	"github.com/paulschiretz/pgl-shipper/pkg/plog"
)

// objectStore is an S3 bucket as seen by the sync.
type objectStore interface {
	collector.ObjectStore
	Upload(ctx context.Context, key, path string) error
}

type s3Config struct {
	endpoint     string
	bucket       string
	accessKey    string
	secretKey    string
	region       string
	secure       bool
	createBucket bool
}

// dialS3 opens the bucket. Replaced in tests.
var dialS3 = func(ctx context.Context, cfg s3Config) (objectStore, error) {
	client, err := minio.New(cfg.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.accessKey, cfg.secretKey, ""),
		Secure: cfg.secure,
		Region: cfg.region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}
	if cfg.createBucket {
		exists, err := client.BucketExists(ctx, cfg.bucket)
		if err != nil {
			return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.bucket, err)
		}
		if !exists {
			if err := client.MakeBucket(ctx, cfg.bucket, minio.MakeBucketOptions{Region: cfg.region}); err != nil {
				return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.bucket, err)
			}
			plog.Info("Created bucket", "bucket", cfg.bucket)
		}
	}
	return &minioStore{client: client, bucket: cfg.bucket}, nil
}

type minioStore struct {
	client *minio.Client
	bucket string
}

var _ objectStore = (*minioStore)(nil)

func (s *minioStore) List(ctx context.Context, prefix string) ([]collector.ObjectInfo, error) {
	var objects []collector.ObjectInfo
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		objects = append(objects, collector.ObjectInfo{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}
	return objects, nil
}

func (s *minioStore) Remove(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

func (s *minioStore) Upload(ctx context.Context, key, path string) error {
	_, err := s.client.FPutObject(ctx, s.bucket, key, path, minio.PutObjectOptions{ContentType: "application/octet-stream"})
	return err
}

// S3 uploads the artifact to an S3 compatible bucket.
type S3 struct {
	cfg         s3Config
	dirTemplate string
	policy      pathretention.Policy
	metrics     bool
	store       objectStore
}

var (
	_ backend.Sync      = (*S3)(nil)
	_ backend.Simulator = (*S3)(nil)
)

// Setup reads "endpoint", "bucket", "accessKey", "secretKey" (all required),
// "region", "useSSL", "createBucket", "path" and the "cleanup." options.
// The remote path may contain placeholders.
func (s *S3) Setup(env backend.Env, opts backend.Options) error {
	const component = "sync s3"
	var cfg s3Config
	var err error
	required := []struct {
		key string
		dst *string
	}{
		{"endpoint", &cfg.endpoint},
		{"bucket", &cfg.bucket},
		{"accessKey", &cfg.accessKey},
		{"secretKey", &cfg.secretKey},
	}
	for _, r := range required {
		if *r.dst, err = opts.Required(component, r.key); err != nil {
			return err
		}
	}
	if cfg.secure, err = opts.Bool(component, "useSSL", true); err != nil {
		return err
	}
	if cfg.createBucket, err = opts.Bool(component, "createBucket", false); err != nil {
		return err
	}
	cfg.region = opts.String("region", "")

	policy, err := remoteCleanup(component, opts)
	if err != nil {
		return err
	}

	s.cfg = cfg
	s.dirTemplate = opts.String("path", "")
	s.policy = policy
	s.metrics = env.Metrics
	return nil
}

func (s *S3) open(ctx context.Context) (objectStore, error) {
	if s.store != nil {
		return s.store, nil
	}
	store, err := dialS3(ctx, s.cfg)
	if err != nil {
		return nil, err
	}
	s.store = store
	return store, nil
}

func (s *S3) Sync(ctx context.Context, t *pathtemplate.Target) error {
	store, err := s.open(ctx)
	if err != nil {
		return err
	}
	remote := collector.NewRemote(store, t, s.dirTemplate)
	key := remote.CurrentKey()
	if err := store.Upload(ctx, key, t.Path()); err != nil {
		return fmt.Errorf("failed to upload %s to s3://%s/%s: %w", t.Path(), s.cfg.bucket, key, err)
	}
	plog.Info("Uploaded backup", "bucket", s.cfg.bucket, "key", key)

	if s.policy == nil {
		return nil
	}
	_, err = pathretention.NewPathRetainer(s.policy).Cleanup(ctx, t, remote, &pathretention.Plan{Metrics: s.metrics})
	return err
}

func (s *S3) Simulate(ctx context.Context, t *pathtemplate.Target) error {
	key := collector.NewRemote(nil, t, s.dirTemplate).CurrentKey()
	plog.Info("[SIMULATE] Uploading backup", "path", t.Path(), "bucket", s.cfg.bucket, "key", key)
	if s.policy == nil {
		return nil
	}
	store, err := s.open(ctx)
	if err != nil {
		return err
	}
	_, err = pathretention.NewPathRetainer(s.policy).Simulate(ctx, t, collector.NewRemote(store, t, s.dirTemplate))
	return err
}
