package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
)

type fakeS3 struct {
	putInput    *s3.PutObjectInput
	putBody     string
	deleteInput *s3.DeleteObjectInput
	putErr      error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.putInput = in
	if in.Body != nil {
		b, _ := io.ReadAll(in.Body)
		f.putBody = string(b)
	}
	if f.putErr != nil {
		return nil, f.putErr
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleteInput = in
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store_Put(t *testing.T) {
	t.Run("cdn url", func(t *testing.T) {
		client := &fakeS3{}
		store := NewS3Store(client, "payslips-bucket", "ap-south-1", "https://cdn.example.com/")

		url, err := store.Put(context.Background(), "payslips/inv-1/1.pdf", strings.NewReader("%PDF"), "application/pdf")
		assert.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/payslips/inv-1/1.pdf", url)
		assert.Equal(t, "payslips-bucket", aws.ToString(client.putInput.Bucket))
		assert.Equal(t, "application/pdf", aws.ToString(client.putInput.ContentType))
		assert.Equal(t, "%PDF", client.putBody)
	})

	t.Run("bucket url without cdn", func(t *testing.T) {
		store := NewS3Store(&fakeS3{}, "b", "eu-west-1", "")
		url, err := store.Put(context.Background(), "k.pdf", strings.NewReader("x"), "application/pdf")
		assert.NoError(t, err)
		assert.Equal(t, "https://b.s3.eu-west-1.amazonaws.com/k.pdf", url)
	})

	t.Run("upload error", func(t *testing.T) {
		store := NewS3Store(&fakeS3{putErr: errors.New("access denied")}, "b", "eu-west-1", "")
		_, err := store.Put(context.Background(), "k.pdf", strings.NewReader("x"), "application/pdf")
		assert.ErrorContains(t, err, "access denied")
	})
}

func TestS3Store_Delete(t *testing.T) {
	client := &fakeS3{}
	store := NewS3Store(client, "b", "eu-west-1", "")

	assert.NoError(t, store.Delete(context.Background(), "payslips/inv-1/1.pdf"))
	assert.Equal(t, "payslips/inv-1/1.pdf", aws.ToString(client.deleteInput.Key))
	assert.ErrorIs(t, store.Delete(context.Background(), ""), ErrInvalidKey)
}
