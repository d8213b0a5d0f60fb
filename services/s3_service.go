package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3Types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/walletsign/go-walletsign-server/global"
	"github.com/walletsign/go-walletsign-server/types"
)

// S3Service stores the immutable document binaries. CouchDB keeps only the
// metadata and signature records, the bytes live under the object key.
type S3Service struct {
	env *types.Environment
}

func NewS3Service(env *types.Environment) *S3Service {
	return &S3Service{
		env: env,
	}
}

// UploadDocument uploads the document content to s3
func (s3s *S3Service) UploadDocument(bucket, objectKey string, content []byte) (string, error) {
	if len(content) == 0 {
		return "", types.ErrBadRequest
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ioReader := bytes.NewReader(content)
	_, uErr := s3s.env.S3Uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(objectKey),
		Body:   ioReader,
	})
	if uErr != nil {
		global.Logger.Log(uErr.Error(), "failed to upload document", objectKey)
		return "", uErr
	}
	return fmt.Sprintf("s3://%s/%s", bucket, objectKey), nil
}

// DownloadDocument fetches the document content from s3
func (s3s *S3Service) DownloadDocument(bucket, objectKey string) ([]byte, error) {
	if objectKey == "" {
		return nil, types.ErrBadRequest
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buf := manager.NewWriteAtBuffer([]byte{})
	_, dErr := s3s.env.S3Downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(objectKey),
	})
	if dErr != nil {
		var noKey *s3Types.NoSuchKey
		if errors.As(dErr, &noKey) {
			return nil, types.ErrNotFound
		}
		global.Logger.Log("error", "failed to download document", "objectKey", objectKey)
		return nil, dErr
	}
	return buf.Bytes(), nil
}

// DeleteDocument removes the object at a specific bucket and key
func (s3s *S3Service) DeleteDocument(bucket, objectKey string) error {
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(objectKey),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := s3s.env.S3Client.DeleteObject(ctx, input)
	if err != nil {
		var noKey *s3Types.NoSuchKey
		var apiErr *smithy.GenericAPIError
		if errors.As(err, &noKey) {
			global.Logger.Log("warning", "object does not exist", "objectKey", objectKey)
			return types.ErrNotFound
		} else if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case "AccessDenied":
				global.Logger.Log("warning", "access denied", "objectKey", objectKey)
				return types.ErrNotAuthorized
			}
			global.Logger.Log("error", "error deleting object", "error", err)
			return err
		}
	}
	return nil
}
