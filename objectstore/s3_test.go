package objectstore

import (
	"context"
	"errors"
	"testing"
)

func TestIsNotFoundErrorMatchesStringFallback(t *testing.T) {
	err := errors.New("operation error S3: GetObject, https response error StatusCode: 404, NoSuchKey: The specified key does not exist.")
	if !isNotFoundError(err) {
		t.Fatal("expected NoSuchKey message to be classified as not-found")
	}
}

func TestIsAccessDeniedErrorMatchesStringFallback(t *testing.T) {
	err := errors.New("operation error S3: GetObject, https response error StatusCode: 403, AccessDenied: Access Denied")
	if !isAccessDeniedError(err) {
		t.Fatal("expected AccessDenied message to be classified as access-denied")
	}
}

func TestNewRejectsEmptyBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatal("expected an error when bucket is empty")
	}
}
