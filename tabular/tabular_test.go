package tabular

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/porydex/errors"
)

func TestParse(t *testing.T) {
	ctx := context.Background()

	loc, err := Parse(ctx, "data", S3Options{})
	require.NoError(t, err)
	assert.Equal(t, Dir("data"), loc)

	loc, err = Parse(ctx, "s3://dex-bucket/reference/v1", S3Options{Region: "eu-west-1", AccessKeyID: "AKIA", SecretAccessKey: "SECRET"})
	require.NoError(t, err)
	s, ok := loc.(*S3)
	require.True(t, ok)
	assert.Equal(t, "dex-bucket", s.bucket)
	assert.Equal(t, "reference/v1/pokemon.csv", s.key("pokemon"))
	assert.Equal(t, "s3://dex-bucket/reference/v1", s.String())

	_, err = Parse(ctx, "", S3Options{})
	assert.Error(t, err)
	_, err = Parse(ctx, "s3:///prefix", S3Options{})
	assert.Error(t, err)
	_, err = Parse(ctx, "gs://bucket", S3Options{})
	require.Error(t, err)
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestDirRoundTrip(t *testing.T) {
	ctx := context.Background()
	d := Dir(filepath.Join(t.TempDir(), "data"))

	w, err := d.Create(ctx, "generations")
	require.NoError(t, err)
	_, err = io.WriteString(w, "id,identifier\n1,red-blue\n")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(string(d), "generations.csv"))
	assert.True(t, os.IsNotExist(err), "file appears only after Close")

	require.NoError(t, w.Close())

	r, err := d.Open(ctx, "generations")
	require.NoError(t, err)
	defer r.Close()
	body, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "id,identifier\n1,red-blue\n", string(body))

	entries, err := os.ReadDir(string(d))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestDirMissingFile(t *testing.T) {
	_, err := Dir(t.TempDir()).Open(context.Background(), "moves")
	require.Error(t, err)
	assert.True(t, errors.IsIntegrityError(err))
	assert.Contains(t, errors.FlattenHints(err), "moves.csv")
}

type fakeObjects struct {
	objects map[string]string
	puts    []*s3.PutObjectInput
}

func (f *fakeObjects) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Bucket+"/"+*in.Key] = string(body)
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func TestS3(t *testing.T) {
	ctx := context.Background()
	fake := &fakeObjects{objects: map[string]string{}}
	loc := newS3(fake, "dex", "csv")

	w, err := loc.Create(ctx, "types")
	require.NoError(t, err)
	_, err = io.WriteString(w, "id,identifier\n")
	require.NoError(t, err)
	_, err = io.WriteString(w, "1,normal\n")
	require.NoError(t, err)
	assert.Empty(t, fake.puts, "nothing is uploaded before Close")
	require.NoError(t, w.Close())
	require.NoError(t, w.Close(), "second Close is a no-op")

	require.Len(t, fake.puts, 1)
	assert.Equal(t, "csv/types.csv", *fake.puts[0].Key)
	assert.Equal(t, "text/csv", *fake.puts[0].ContentType)

	r, err := loc.Open(ctx, "types")
	require.NoError(t, err)
	body, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "id,identifier\n1,normal\n", string(body))

	_, err = loc.Open(ctx, "abilities")
	require.Error(t, err)
	assert.True(t, errors.IsIntegrityError(err))
}

func TestNewS3RequiresBucket(t *testing.T) {
	_, err := NewS3(context.Background(), S3Options{})
	assert.Error(t, err)
}
