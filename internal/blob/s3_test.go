package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3Transport fakes the small S3 subset the adapter uses, keyed by object
// key. Bodies may arrive aws-chunked when the SDK streams checksums.
type s3Transport struct {
	state map[string]s3Object
}

type s3Object struct {
	body        []byte
	contentType string
	metadata    map[string]string
}

func (m *s3Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}

	if req.Method == http.MethodGet && strings.Contains(req.URL.RawQuery, "list-type=2") {
		return m.listResponse(req), nil
	}

	switch req.Method {
	case http.MethodHead:
		obj, ok := m.state[key]
		if !ok {
			return response(404, nil, http.Header{}), nil
		}
		header := http.Header{
			"Content-Length": {strconv.Itoa(len(obj.body))},
			"Content-Type":   {obj.contentType},
			"ETag":           {`"etag"`},
			"Last-Modified":  {time.Now().UTC().Format(http.TimeFormat)},
		}
		for k, v := range obj.metadata {
			header.Set("X-Amz-Meta-"+k, v)
		}
		return response(200, nil, header), nil
	case http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		if dec, ok := decodeAWSChunked(body); ok {
			body = dec
		}
		md := map[string]string{}
		for name, values := range req.Header {
			if after, ok := strings.CutPrefix(strings.ToLower(name), "x-amz-meta-"); ok && len(values) > 0 {
				md[after] = values[0]
			}
		}
		m.state[key] = s3Object{body: body, contentType: req.Header.Get("Content-Type"), metadata: md}
		return response(200, nil, http.Header{"ETag": {`"etag"`}}), nil
	case http.MethodGet:
		obj, ok := m.state[key]
		if !ok {
			return response(404, nil, http.Header{}), nil
		}
		return response(200, obj.body, http.Header{
			"Content-Length": {strconv.Itoa(len(obj.body))},
			"Content-Type":   {obj.contentType},
			"Last-Modified":  {time.Now().UTC().Format(http.TimeFormat)},
			"ETag":           {`"etag"`},
		}), nil
	case http.MethodDelete:
		delete(m.state, key)
		return response(204, nil, http.Header{}), nil
	}
	return response(501, nil, http.Header{}), nil
}

func (m *s3Transport) listResponse(req *http.Request) *http.Response {
	prefix := req.URL.Query().Get("prefix")
	var keys []string
	for k := range m.state {
		if prefix == "" || strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><ListBucketResult>`)
	cont := req.URL.Query().Get("continuation-token")
	if cont == "" && len(keys) > 1 {
		// First page: one key, truncated, to exercise pagination.
		b.WriteString("<IsTruncated>true</IsTruncated><NextContinuationToken>tok</NextContinuationToken>")
		writeContents(&b, keys[0], len(m.state[keys[0]].body))
	} else {
		b.WriteString("<IsTruncated>false</IsTruncated>")
		start := 0
		if cont != "" && len(keys) > 1 {
			start = 1
		}
		for _, k := range keys[start:] {
			writeContents(&b, k, len(m.state[k].body))
		}
	}
	b.WriteString("</ListBucketResult>")
	return response(200, []byte(b.String()), http.Header{"Content-Type": {"application/xml"}})
}

func writeContents(b *strings.Builder, key string, size int) {
	fmt.Fprintf(b, "<Contents><Key>%s</Key><Size>%d</Size><LastModified>2026-01-01T00:00:00Z</LastModified></Contents>", key, size)
}

func response(status int, body []byte, header http.Header) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(bytes.NewReader(body)), Header: header}
}

// decodeAWSChunked unwraps a single-stream aws-chunked body; returns ok=false
// when the payload is not chunked.
func decodeAWSChunked(body []byte) ([]byte, bool) {
	rest := body
	var out []byte
	for {
		idx := bytes.Index(rest, []byte("\r\n"))
		if idx <= 0 {
			return nil, false
		}
		sizeField := string(rest[:idx])
		if semi := strings.Index(sizeField, ";"); semi >= 0 {
			sizeField = sizeField[:semi]
		}
		size, err := strconv.ParseInt(sizeField, 16, 64)
		if err != nil {
			return nil, false
		}
		rest = rest[idx+2:]
		if size == 0 {
			return out, true
		}
		if int64(len(rest)) < size+2 {
			return nil, false
		}
		out = append(out, rest[:size]...)
		rest = rest[size+2:]
	}
}

func newMockS3(t *testing.T) *S3 {
	t.Helper()
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String("https://mock.s3.local")
		o.HTTPClient = &http.Client{Transport: &s3Transport{state: make(map[string]s3Object)}}
		o.UsePathStyle = true
	})
	return &S3{client: client, presign: s3.NewPresignClient(client), bucket: "exports"}
}

func TestS3RoundTrip(t *testing.T) {
	store := newMockS3(t)
	ctx := context.Background()

	info, err := store.Put(ctx, "exports/1/animals.csv", bytes.NewReader([]byte("tag_number\nT1\n")), PutOptions{
		ContentType: "text/csv",
		Metadata:    map[string]string{"collection": "animals"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "exports/1/animals.csv" || info.ContentType != "text/csv" {
		t.Fatalf("unexpected info %+v", info)
	}
	if info.URL == "" {
		t.Fatalf("expected presigned url on info")
	}

	if _, err := store.Put(ctx, "exports/1/animals.csv", bytes.NewReader([]byte("other")), PutOptions{}); err == nil {
		t.Fatalf("expected duplicate put refused")
	}

	head, err := store.Head(ctx, "exports/1/animals.csv")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if head.Metadata["collection"] != "animals" {
		t.Fatalf("metadata not preserved: %+v", head)
	}

	_, rc, err := store.Get(ctx, "exports/1/animals.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "tag_number\nT1\n" {
		t.Fatalf("payload mismatch %q", body)
	}

	existed, err := store.Delete(ctx, "exports/1/animals.csv")
	if err != nil || !existed {
		t.Fatalf("delete: %v %v", existed, err)
	}
}

func TestS3ListPaginates(t *testing.T) {
	store := newMockS3(t)
	ctx := context.Background()

	for _, key := range []string{"exports/1/a.csv", "exports/1/a.json", "other/b.csv"} {
		if _, err := store.Put(ctx, key, bytes.NewReader([]byte("x")), PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	infos, err := store.List(ctx, "exports/1/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "exports/1/a.csv" || infos[1].Key != "exports/1/a.json" {
		t.Fatalf("unexpected listing %+v", infos)
	}
}

func TestNewS3RequiresBucket(t *testing.T) {
	if _, err := NewS3(context.Background(), S3Config{}); err == nil {
		t.Fatalf("expected bucket requirement")
	}
	t.Setenv("AGRICORE_BLOB_S3_BUCKET", "")
	if _, err := OpenS3FromEnv(context.Background()); err == nil {
		t.Fatalf("expected env bucket requirement")
	}
}

func TestNewS3WithCustomEndpoint(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIA")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "SECRET")
	store, err := NewS3(context.Background(), S3Config{
		Bucket:    "exports",
		Endpoint:  "https://mock.s3.local",
		PathStyle: true,
	})
	if err != nil {
		t.Fatalf("new s3: %v", err)
	}
	if store.Driver() != DriverS3 {
		t.Fatalf("unexpected driver %s", store.Driver())
	}
}
