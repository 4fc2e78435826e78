/* Copyright (c) 2013 The s3cache AUTHORS. All rights reserved.
 * Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 *
 * Package s3cache provides an implementation of httpcache.Cache that stores and
 * retrieves provider responses using Amazon S3, so cached rating histories
 * survive restarts and are shared between the CLI, dashboard and bot.
 */
package s3cache

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

const DefaultPrefix = "fidecompare"

// ObjectAPI is the subset of *s3.Client the cache uses.
type ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput,
		optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput,
		optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput,
		optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput,
		optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input,
		optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type Options struct {
	Bucket string

	// Gzip compresses entries in Set and decompresses them in Get. Gzipped
	// entries get a ".gz" key suffix so both forms can share a bucket.
	Gzip bool

	// Prefix namespaces object keys; DefaultPrefix when empty.
	Prefix    string
	LogErrors bool
}

// Cache objects store and retrieve data using Amazon S3.
type Cache struct {
	// Client is the S3 API used by the cache. Init creates one from the
	// default AWS configuration unless the caller supplied its own.
	Client ObjectAPI

	opts Options

	// The context to specify when initiating s3 requests
	ctx context.Context
}

// New returns a Cache over opts.Bucket. Callers should take care to invoke
// Init() on the returned Cache object before use.
func New(ctx context.Context, opts Options) *Cache {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	opts.Prefix = strings.Trim(opts.Prefix, "/")
	return &Cache{ctx: ctx, opts: opts}
}

// The default configuration sources are:
// * Environment Variables (e.g. AWS_ACCESS_KEY_ID and AWS_SECRET_KEY)
// * Shared Configuration and Shared Credentials files.
// Init then verifies the bucket can be read and listed.
func (c *Cache) Init() error {
	if c.Client == nil {
		awsCfg, err := config.LoadDefaultConfig(c.ctx)
		if err != nil {
			return fmt.Errorf("s3cache.init: failed to load AWS config: %w", err)
		}
		c.Client = s3.NewFromConfig(awsCfg)
	}

	bucket := aws.String(c.opts.Bucket)
	if _, err := c.Client.HeadBucket(c.ctx, &s3.HeadBucketInput{Bucket: bucket}); err != nil {
		return fmt.Errorf("s3cache.init: head bucket failed for %s: %w", c.opts.Bucket, err)
	}
	if _, err := c.Client.ListObjectsV2(c.ctx, &s3.ListObjectsV2Input{
		Bucket:  bucket,
		Prefix:  aws.String(c.opts.Prefix + "/"),
		MaxKeys: aws.Int32(1),
	}); err != nil {
		return fmt.Errorf("s3cache.init: list objects failed for %s: %w", c.opts.Bucket, err)
	}

	return nil
}

func (c *Cache) Get(key string) ([]byte, bool) {
	objKey := c.objectKey(key)
	resp, err := c.Client.GetObject(c.ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.opts.Bucket),
		Key:    aws.String(objKey),
	})
	if err != nil {
		// no such key just indicates a cache miss
		var apiErr smithy.APIError
		if !(errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey") {
			c.logf("s3cache.get: failed to get object %v/%v: %v", c.opts.Bucket, objKey, err)
		}
		return nil, false
	}
	defer resp.Body.Close()

	var rdr io.Reader = resp.Body
	if c.opts.Gzip {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			c.logf("s3cache.get: failed to open compressed object %v/%v: %v",
				c.opts.Bucket, objKey, err)
			return nil, false
		}
		defer gz.Close()
		rdr = gz
	}

	data, err := io.ReadAll(rdr)
	if err != nil {
		c.logf("s3cache.get: failed to read object %v/%v: %v", c.opts.Bucket, objKey, err)
		return nil, false
	}
	return data, true
}

// Set stores the provided data in the cache under the given key.
func (c *Cache) Set(key string, data []byte) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(c.opts.Bucket),
		Key:    aws.String(c.objectKey(key)),
		Body:   bytes.NewReader(data),
	}

	if c.opts.Gzip {
		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		if _, err := gw.Write(data); err != nil {
			c.logf("s3cache.set: failed to gzip data for %v: %v", *input.Key, err)
			return
		}
		if err := gw.Close(); err != nil {
			c.logf("s3cache.set: failed to close gzip writer for %v: %v", *input.Key, err)
			return
		}
		input.Body = &buf
		input.ContentEncoding = aws.String("gzip")
	}

	if _, err := c.Client.PutObject(c.ctx, input); err != nil {
		c.logf("s3cache.set: put failed for %v/%v: %v", c.opts.Bucket, *input.Key, err)
	}
}

func (c *Cache) Delete(key string) {
	_, err := c.Client.DeleteObject(c.ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.opts.Bucket),
		Key:    aws.String(c.objectKey(key)),
	})
	if err != nil {
		c.logf("s3cache.delete: delete failed: %v", err)
	}
}

// objectKey hashes the cache key, which is a full provider URL, into a
// fixed-length object name under the configured prefix.
func (c *Cache) objectKey(key string) string {
	sum := md5.Sum([]byte(key))
	objKey := c.opts.Prefix + "/" + hex.EncodeToString(sum[:])
	if c.opts.Gzip {
		objKey += ".gz"
	}
	return objKey
}

func (c *Cache) logf(format string, args ...any) {
	if c.opts.LogErrors {
		log.Printf(format, args...)
	}
}
