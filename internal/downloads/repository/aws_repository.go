package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/snapsaver/media-downloader/internal/downloads"
	"github.com/snapsaver/media-downloader/internal/models"
)

const (
	artifactPrefix   = "artifacts/"
	filenameMetaKey  = "filename"
	presignedExpires = 60 * time.Minute
)

type awsRepository struct {
	client        *s3.Client
	preSignClient *s3.PresignClient
	bucket        string
}

func NewAwsRepository(awsClient *s3.Client, preSignClient *s3.PresignClient, bucket string) downloads.AWSRepository {
	return &awsRepository{
		client:        awsClient,
		preSignClient: preSignClient,
		bucket:        bucket,
	}
}

func artifactKey(jobID string) string {
	return artifactPrefix + jobID
}

func (a *awsRepository) PutArtifact(ctx context.Context, upload *models.ArtifactUpload) error {
	// Completed jobs are immutable, so the key must not exist yet.
	if _, err := a.StatArtifact(ctx, upload.JobID); err == nil {
		return downloads.ErrConflict
	} else if !errors.Is(err, downloads.ErrNotFound) {
		return err
	}

	key := artifactKey(upload.JobID)
	_, err := a.client.PutObject(
		ctx,
		&s3.PutObjectInput{
			Bucket:        &a.bucket,
			Key:           &key,
			Body:          upload.Body,
			ContentType:   &upload.ContentType,
			ContentLength: &upload.Size,
			Metadata: map[string]string{
				filenameMetaKey: upload.FileName,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to store artifact: %w", err)
	}
	return nil
}

func (a *awsRepository) GetArtifact(ctx context.Context, jobID string, rangeHeader string) (*models.ArtifactStream, error) {
	key := artifactKey(jobID)
	input := &s3.GetObjectInput{
		Bucket: &a.bucket,
		Key:    &key,
	}
	if rangeHeader != "" {
		input.Range = &rangeHeader
	}
	res, err := a.client.GetObject(ctx, input)
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, downloads.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	return &models.ArtifactStream{
		Body:          res.Body,
		ContentType:   aws.ToString(res.ContentType),
		ContentLength: aws.ToInt64(res.ContentLength),
		ContentRange:  aws.ToString(res.ContentRange),
		FileName:      res.Metadata[filenameMetaKey],
	}, nil
}

func (a *awsRepository) StatArtifact(ctx context.Context, jobID string) (*models.Artifact, error) {
	key := artifactKey(jobID)
	res, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &a.bucket,
		Key:    &key,
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return nil, downloads.ErrNotFound
		}
		return nil, fmt.Errorf("failed to stat artifact: %w", err)
	}
	return &models.Artifact{
		JobID:       jobID,
		FileName:    res.Metadata[filenameMetaKey],
		ContentType: aws.ToString(res.ContentType),
		Size:        aws.ToInt64(res.ContentLength),
		StoredAt:    aws.ToTime(res.LastModified),
	}, nil
}

func (a *awsRepository) RemoveArtifact(ctx context.Context, jobID string) error {
	key := artifactKey(jobID)
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &a.bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("failed to remove artifact: %w", err)
	}
	return nil
}

func (a *awsRepository) GetPresignedURL(ctx context.Context, jobID string) (string, error) {
	key := artifactKey(jobID)
	req, err := a.preSignClient.PresignGetObject(
		ctx,
		&s3.GetObjectInput{
			Bucket: &a.bucket,
			Key:    &key,
		},
		s3.WithPresignExpires(presignedExpires),
	)
	if err != nil {
		return "", fmt.Errorf("failed to presign artifact url: %w", err)
	}
	return req.URL, nil
}
