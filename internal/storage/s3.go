// internal/storage/s3.go
package storage

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dropshoplabs/dropshop-backend/internal/config"
)

const shopImagesFolder = "shop-images"

// S3Store stores shop and product images as public-read S3 objects.
type S3Store struct {
	s3Client *s3.S3
	cfg      *config.AWSConfig
}

func NewS3Store(cfg *config.AWSConfig) (*S3Store, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3Store{
		s3Client: s3.New(sess),
		cfg:      cfg,
	}, nil
}

func (s *S3Store) Upload(ownerID uuid.UUID, filename string, data []byte, contentType string) (string, error) {
	key := fmt.Sprintf("%s/%s", shopImagesFolder, objectKey(ownerID, filename))

	params := &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		ACL:           aws.String("public-read"),
	}

	if _, err := s.s3Client.PutObject(params); err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return s.publicURL(key), nil
}

func (s *S3Store) Delete(url string) error {
	key, ok := s.keyFromURL(url)
	if !ok {
		return fmt.Errorf("not an uploaded image URL: %s", url)
	}

	_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}

	logrus.WithField("key", key).Debug("Deleted image blob")
	return nil
}

func (s *S3Store) IsUploadedURL(url string) bool {
	_, ok := s.keyFromURL(url)
	return ok
}

func (s *S3Store) publicURL(key string) string {
	if s.cfg.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", s.cfg.CloudFrontURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.S3Bucket, s.cfg.Region, key)
}

func (s *S3Store) keyFromURL(url string) (string, bool) {
	prefixes := []string{
		fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", s.cfg.S3Bucket, s.cfg.Region),
	}
	if s.cfg.CloudFrontURL != "" {
		prefixes = append(prefixes, s.cfg.CloudFrontURL+"/")
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(url, prefix) {
			key := strings.TrimPrefix(url, prefix)
			if strings.HasPrefix(key, shopImagesFolder+"/") {
				return key, true
			}
		}
	}
	return "", false
}
