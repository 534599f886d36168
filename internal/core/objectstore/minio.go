// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/jaycherian/gcp-go-file-processor/internal/core/model"
	"github.com/minio/minio-go/v7"
)

// MinIOStore serves objects from an S3-compatible store.
type MinIOStore struct {
	client *minio.Client
}

func NewMinIOStore(client *minio.Client) *MinIOStore {
	return &MinIOStore{client: client}
}

func (s *MinIOStore) Scheme() string {
	return "s3"
}

func (s *MinIOStore) Size(ctx context.Context, bucket string, key string) (int64, error) {
	info, err := s.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return 0, classifyS3Error(err)
	}
	return info.Size, nil
}

// Read fetches the object. GetObject is lazy, so errors surface on the first
// read.
func (s *MinIOStore) Read(ctx context.Context, bucket string, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, classifyS3Error(err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, classifyS3Error(err)
	}
	return data, nil
}

func (s *MinIOStore) Delete(ctx context.Context, bucket string, key string) error {
	err := s.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{})
	if err == nil {
		return nil
	}
	if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
		return nil
	}
	return classifyS3Error(err)
}

func classifyS3Error(err error) error {
	resp := minio.ToErrorResponse(err)
	switch {
	case resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" || resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %w", model.ErrObjectNotFound, err)
	case resp.Code == "AccessDenied" || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %w", model.ErrAccessDenied, err)
	}
	return err
}
