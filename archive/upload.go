/*
 * upload.go, part of molingest.
 *
 * Copyright 2026 The molingest authors.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package archive

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

//Uploader stores objects by name.
type Uploader interface {
	Upload(ctx context.Context, name string, r io.Reader, size int64) error
}

//S3Config holds the settings of an S3-compatible endpoint.
type S3Config struct {
	Endpoint  string `json:"endpoint" yaml:"endpoint"`
	AccessKey string `json:"access_key" yaml:"access_key"`
	SecretKey string `json:"secret_key" yaml:"secret_key"`
	Bucket    string `json:"bucket" yaml:"bucket"`
	Prefix    string `json:"prefix" yaml:"prefix"`
	Secure    bool   `json:"secure" yaml:"secure"`
}

//S3 uploads to a bucket of MinIO or any S3-compatible storage.
type S3 struct {
	client *minio.Client
	bucket string
	prefix string
}

//NewS3 returns an S3 uploader for the given endpoint.
func NewS3(cfg S3Config) (*S3, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, err
	}
	return NewS3Client(client, cfg.Bucket, cfg.Prefix), nil
}

//NewS3Client returns an S3 uploader using an existing client.
func NewS3Client(client *minio.Client, bucket, prefix string) *S3 {
	return &S3{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3) key(name string) string {
	return path.Join(s.prefix, name)
}

//Upload stores r under name, creating the bucket if needed. size may be -1 if unknown.
func (s *S3) Upload(ctx context.Context, name string, r io.Reader, size int64) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return err
		}
	}
	_, err = s.client.PutObject(ctx, s.bucket, s.key(name), r, size, minio.PutObjectOptions{
		ContentType: "application/zstd",
	})
	return err
}

//UploadFile uploads the named file with u, under the file's base name.
func UploadFile(ctx context.Context, u Uploader, name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}
	return u.Upload(ctx, filepath.Base(name), f, info.Size())
}
