// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/NVIDIA/core-dump-agent/pkg/defaults"
	"github.com/NVIDIA/core-dump-agent/pkg/errors"
)

// S3 uploads to a bucket of an S3-compatible store.
type S3 struct {
	client s3iface.S3API
	bucket string
}

// NewS3 returns an S3 uploader for t. Static credentials are used when
// provided, otherwise the SDK's default chain applies.
func NewS3(t Target) (*S3, error) {
	cfg := aws.NewConfig().
		WithRegion(t.Region).
		WithS3ForcePathStyle(true).
		WithHTTPClient(newHTTPClient())

	if t.Endpoint != "" {
		cfg = cfg.WithEndpoint(t.Endpoint).
			WithDisableSSL(strings.HasPrefix(t.Endpoint, "http://"))
	}
	if t.AccessKey != "" {
		cfg = cfg.WithCredentials(credentials.NewStaticCredentials(t.AccessKey, t.Secret, ""))
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to create S3 session", err,
			map[string]any{"region": t.Region, "endpoint": t.Endpoint})
	}

	return &S3{
		client: s3.New(sess),
		bucket: t.Bucket,
	}, nil
}

// Upload puts data at key and returns the object's ETag.
func (s *S3) Upload(ctx context.Context, key string, data []byte) (string, error) {
	out, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		code := errors.ErrCodeUnavailable
		if ctx.Err() != nil {
			code = errors.ErrCodeTimeout
		}
		return "", errors.WrapWithContext(code, "failed to upload object", err,
			map[string]any{"bucket": s.bucket, "key": key})
	}

	return strings.Trim(aws.StringValue(out.ETag), `"`), nil
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout: defaults.HTTPConnectTimeout,
			}).DialContext,
			TLSHandshakeTimeout:   defaults.HTTPTLSHandshakeTimeout,
			ResponseHeaderTimeout: defaults.HTTPResponseHeaderTimeout,
			IdleConnTimeout:       defaults.HTTPIdleConnTimeout,
		},
	}
}
