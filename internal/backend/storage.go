package backend

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// StorageClient uploads objects to buckets of the managed storage API.
type StorageClient struct{ rest *restClient }

func (s *StorageClient) Upload(ctx context.Context, bucket, key, contentType string, body io.Reader) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return s.rest.do(ctx, http.MethodPost, objectPath("/storage/v1/object/", bucket, key), contentType, body, nil)
}

func (s *StorageClient) PublicURL(bucket, key string) string {
	return s.rest.baseURL + objectPath("/storage/v1/object/public/", bucket, key)
}

func objectPath(prefix, bucket, key string) string {
	segs := strings.Split(key, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return prefix + url.PathEscape(bucket) + "/" + strings.Join(segs, "/")
}
