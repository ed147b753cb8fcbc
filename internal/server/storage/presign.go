// Package storage issues presigned PUT URLs against the S3-compatible
// object store. The client uploads bytes directly to the store; the
// application server never proxies them.
package storage

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	sc "github.com/medialift/medialift/internal/server/config"
)

// Presigner signs direct-upload URLs. The Content-Type and Content-MD5 of
// the eventual PUT are bound into the signature, so a client cannot upload
// different bytes than it declared.
type Presigner struct {
	config *sc.Config
}

func NewPresigner(config *sc.Config) *Presigner {
	return &Presigner{config: config}
}

func (p *Presigner) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(p.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			p.config.S3RootUser,
			p.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(p.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return s3.NewPresignClient(client), nil
}

// PresignPut signs a PUT for the given object key. contentMD5 is the base64
// form required by the Content-MD5 header.
func (p *Presigner) PresignPut(ctx context.Context, key, contentType, contentMD5 string) (string, error) {
	presignClient, err := p.presignClient(ctx)
	if err != nil {
		return "", err
	}

	req, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.config.S3Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		ContentMD5:  aws.String(contentMD5),
	}, s3.WithPresignExpires(p.config.PresignExpiry))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

var nonWord = regexp.MustCompile(`\W+`)

// UniqueFilename sanitizes the basename and appends a uuid so concurrent
// uploads of the same file never collide in the store.
func UniqueFilename(filename string) string {
	base := filename
	ext := ""
	if i := lastDot(filename); i >= 0 {
		base, ext = filename[:i], filename[i:]
	}
	base = nonWord.ReplaceAllString(base, "")
	return fmt.Sprintf("%s_%s%s", base, uuid.New(), ext)
}

// ObjectKey scopes an object under its owner with a date prefix.
func ObjectKey(userID int64, uniqueFilename string) string {
	d := time.Now()
	return fmt.Sprintf("%d/%d/%d/%d/%s", userID, d.Year(), d.Month(), d.Day(), uniqueFilename)
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
		if s[i] == '/' {
			return -1
		}
	}
	return -1
}
