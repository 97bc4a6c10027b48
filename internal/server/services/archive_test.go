package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/voxkeeper/internal/common"
	"github.com/dmitrijs2005/voxkeeper/internal/logging"
	sc "github.com/dmitrijs2005/voxkeeper/internal/server/config"
	"github.com/dmitrijs2005/voxkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newArchive(t *testing.T, rm *fakeRepoManager) *SampleArchive {
	t.Helper()
	db, _ := newSQLMockDB(t)
	cfg := &sc.Config{
		S3Region:       "us-east-1",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000",
		S3Bucket:       "voice-samples",
		ArchiveURLTTL:  10 * time.Minute,
	}
	return NewSampleArchive(db, rm, cfg, logging.Nop())
}

// stubS3 replaces the S3 seams for the duration of the test.
func stubS3(t *testing.T) {
	t.Helper()
	origLoad, origNewS3, origNewPre := loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient
	origPut, origGet := putObject, presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		putObject = origPut
		presignGetObject = origGet
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return &s3.PresignClient{}
	}
}

func TestGetRandomStorageKey(t *testing.T) {
	k1 := GetRandomStorageKey()
	k2 := GetRandomStorageKey()
	assert.True(t, strings.HasPrefix(k1, "voice-samples/"))
	assert.Len(t, strings.Split(k1, "/"), 5)
	assert.NotEqual(t, k1, k2)
}

func TestGetClient_AppliesConfig(t *testing.T) {
	stubS3(t)
	a := newArchive(t, newFakeRepoManager())

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		require.NotNil(t, lo.Credentials)
		creds, err := lo.Credentials.Retrieve(ctx)
		require.NoError(t, err)
		assert.Equal(t, "minioadmin", creds.AccessKeyID)
		return aws.Config{}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}

	c, err := a.getClient(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, c)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}
	_, err = a.getClient(context.Background())
	assert.EqualError(t, err, "load-fail")
}

func TestArchive_UploadsAndPresigns(t *testing.T) {
	stubS3(t)
	rm := newFakeRepoManager()
	rm.s.rows = append(rm.s.rows, &models.VoiceSample{ID: 5, Owner: models.AIOwner(2), DeviceID: 7, Payload: []byte("wav-bytes")})
	a := newArchive(t, rm)

	var uploaded []byte
	var putKey string
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		assert.Equal(t, "voice-samples", *in.Bucket)
		assert.Equal(t, "ai:2", in.Metadata["owner"])
		putKey = *in.Key
		b, err := io.ReadAll(in.Body)
		require.NoError(t, err)
		uploaded = b
		return &s3.PutObjectOutput{}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		assert.Equal(t, putKey, *in.Key)
		var po s3.PresignOptions
		for _, fn := range optFns {
			fn(&po)
		}
		assert.Equal(t, 10*time.Minute, po.Expires)
		return &v4.PresignedHTTPRequest{URL: "http://127.0.0.1:9000/voice-samples/" + *in.Key + "?sig=1"}, nil
	}

	got, err := a.Archive(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []byte("wav-bytes"), uploaded)
	assert.Equal(t, putKey, got.Key)
	assert.Contains(t, got.URL, "sig=1")
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), got.Expires, time.Minute)
}

func TestArchive_UnknownSample(t *testing.T) {
	stubS3(t)
	a := newArchive(t, newFakeRepoManager())

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		t.Fatal("upload must not happen")
		return nil, nil
	}

	_, err := a.Archive(context.Background(), 404)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestArchive_UploadAndPresignErrors(t *testing.T) {
	stubS3(t)
	rm := newFakeRepoManager()
	rm.s.rows = append(rm.s.rows, &models.VoiceSample{ID: 1, Owner: models.HumanOwner("01A"), DeviceID: 1, Payload: []byte{1}})
	a := newArchive(t, rm)

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return nil, errors.New("put-fail")
	}
	_, err := a.Archive(context.Background(), 1)
	assert.EqualError(t, err, "put-fail")

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return &s3.PutObjectOutput{}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("presign-fail")
	}
	_, err = a.Archive(context.Background(), 1)
	assert.EqualError(t, err, "presign-fail")
}
