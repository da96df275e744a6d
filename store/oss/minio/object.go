package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"

	"github.com/kochabx/docvault/document"
)

const objectContentType = "application/octet-stream"

// Put 上传密文，对象内容对服务端不透明
func (c *Client) Put(ctx context.Context, object string, data []byte) error {
	if object == "" {
		return ErrEmptyObjectName
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	_, err := c.client.PutObject(ctx, c.config.Bucket, object, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: objectContentType})
	return c.wrap("put", object, err)
}

func (c *Client) Get(ctx context.Context, object string) ([]byte, error) {
	if object == "" {
		return nil, ErrEmptyObjectName
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	obj, err := c.client.GetObject(ctx, c.config.Bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, c.wrap("get", object, err)
	}
	defer obj.Close()

	// 对象不存在的错误在第一次读取时才返回
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, c.wrap("get", object, err)
	}
	return data, nil
}

// Delete 删除不存在的对象不报错
func (c *Client) Delete(ctx context.Context, object string) error {
	if object == "" {
		return ErrEmptyObjectName
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	err := c.client.RemoveObject(ctx, c.config.Bucket, object, minio.RemoveObjectOptions{})
	if isNotFound(err) {
		return nil
	}
	return c.wrap("delete", object, err)
}

func (c *Client) Exists(ctx context.Context, object string) (bool, error) {
	if object == "" {
		return false, ErrEmptyObjectName
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	_, err := c.client.StatObject(ctx, c.config.Bucket, object, minio.StatObjectOptions{})
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, c.wrap("stat", object, err)
	}
	return true, nil
}

func (c *Client) wrap(op, object string, err error) error {
	switch {
	case err == nil:
		return nil
	case isNotFound(err):
		return document.ErrBlobNotFound.WithCause(err)
	default:
		return fmt.Errorf("minio: %s %s/%s: %w", op, c.config.Bucket, object, err)
	}
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}
