package services

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/voxkeeper/internal/logging"
	sc "github.com/dmitrijs2005/voxkeeper/internal/server/config"
	"github.com/dmitrijs2005/voxkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// ArchivedSample describes a sample copied to object storage.
type ArchivedSample struct {
	SampleID int64
	Key      string
	URL      string
	Expires  time.Time
}

// SampleArchive copies voice samples to S3-compatible storage and hands out
// presigned download links. It only reads from Postgres.
type SampleArchive struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	log         logging.Logger
}

func NewSampleArchive(db *sql.DB, repomanager repomanager.RepositoryManager, config *sc.Config, log logging.Logger) *SampleArchive {
	return &SampleArchive{
		db:          db,
		repomanager: repomanager,
		config:      config,
		log:         log.With("module", "archive"),
	}
}

// GetRandomStorageKey returns a fresh object key under voice-samples/Y/M/D/.
func GetRandomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("voice-samples/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (a *SampleArchive) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(a.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			a.config.S3RootUser,
			a.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(a.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// Archive uploads the payload of sampleID under a new key and returns a
// presigned GET URL valid for ArchiveURLTTL.
func (a *SampleArchive) Archive(ctx context.Context, sampleID int64) (*ArchivedSample, error) {
	sample, err := a.repomanager.Samples(a.db).Get(ctx, sampleID)
	if err != nil {
		return nil, fmt.Errorf("voice sample %d: %w", sampleID, err)
	}

	client, err := a.getClient(ctx)
	if err != nil {
		return nil, err
	}

	bucket := a.config.S3Bucket
	key := GetRandomStorageKey()

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:        &bucket,
		Key:           &key,
		Body:          bytes.NewReader(sample.Payload),
		ContentLength: aws.Int64(int64(len(sample.Payload))),
		ContentType:   aws.String("application/octet-stream"),
		Metadata: map[string]string{
			"owner":     sample.Owner.String(),
			"device-id": fmt.Sprint(sample.DeviceID),
		},
	})
	if err != nil {
		a.log.Error(ctx, "upload voice sample", "sample_id", sampleID, "error", err)
		return nil, err
	}

	ttl := a.config.ArchiveURLTTL
	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return nil, err
	}

	a.log.Info(ctx, "voice sample archived", "sample_id", sampleID, "key", key)
	return &ArchivedSample{SampleID: sampleID, Key: key, URL: req.URL, Expires: time.Now().Add(ttl)}, nil
}
