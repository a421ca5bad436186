package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"rosetta/cli/internal/logging"
)

const (
	testUser     = "minioadmin"
	testPassword = "minioadmin"
	testBucket   = "rosetta"
	testRegion   = "us-east-1"
)

// endpoint is set by TestMain when ROSETTA_INTEGRATION=1 and Docker is available.
var endpoint string

func TestMain(m *testing.M) {
	if os.Getenv("ROSETTA_INTEGRATION") != "1" {
		os.Exit(m.Run())
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("connect to docker: %s", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository:   "minio/minio",
		Tag:          "latest",
		Env:          []string{"MINIO_ROOT_USER=" + testUser, "MINIO_ROOT_PASSWORD=" + testPassword, "MINIO_REGION=" + testRegion},
		Cmd:          []string{"server", "/data"},
		ExposedPorts: []string{"9000/tcp"},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("start MinIO container: %s", err)
	}
	endpoint = fmt.Sprintf("localhost:%s", resource.GetPort("9000/tcp"))

	if err := pool.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		client, err := minio.New(endpoint, &minio.Options{
			Region: testRegion,
			Creds:  credentials.NewStaticV4(testUser, testPassword, ""),
		})
		if err != nil {
			return err
		}
		return client.MakeBucket(ctx, testBucket, minio.MakeBucketOptions{Region: testRegion})
	}); err != nil {
		log.Fatalf("wait for MinIO: %s", err)
	}

	code := m.Run()
	if err := pool.Purge(resource); err != nil {
		log.Printf("purge MinIO container: %s", err)
	}
	os.Exit(code)
}

func TestS3Mirror(t *testing.T) {
	if endpoint == "" {
		t.Skip("set ROSETTA_INTEGRATION=1 to run against MinIO")
	}

	sink, err := NewS3(logging.Nop, MirrorConfig{
		Kind:      "s3",
		Bucket:    testBucket,
		Endpoint:  endpoint,
		Region:    testRegion,
		AccessKey: testUser,
		SecretKey: testPassword,
		PathStyle: true,
		Prefix:    "mirror",
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := NewStore(NewDisk(t.TempDir()), WithMirror(sink)).Persist(ctx, demo(), "run-s3"); err != nil {
		t.Fatal(err)
	}

	obj, err := sink.client.GetObject(ctx, testBucket, "mirror/"+SummaryKey("com.example.demo"), minio.GetObjectOptions{})
	if err != nil {
		t.Fatal(err)
	}
	defer obj.Close()
	body, err := io.ReadAll(obj)
	if err != nil {
		t.Fatal(err)
	}
	if len(body) == 0 {
		t.Fatal("empty summary object")
	}
}
