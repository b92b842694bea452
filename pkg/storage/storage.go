// Package storage provides blob storage operations with an Azure Blob Storage
// implementation. Each pipeline stage artifact lives in its own container;
// callers address blobs by (container, key).
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/tally-ai/taggo/pkg/lifecycle"
)

// System manages blob storage operations and lifecycle coordination.
type System interface {
	// Start registers a startup hook that ensures all configured containers exist.
	Start(lc *lifecycle.Coordinator) error
	// Upload streams data to a blob at the given container and key.
	Upload(ctx context.Context, container, key string, reader io.Reader, contentType string) error
	// Download returns a stream for the blob. The caller must close the reader.
	// Returns ErrNotFound if the blob does not exist.
	Download(ctx context.Context, container, key string) (io.ReadCloser, error)
	// Fetch reads the entire blob into memory. Returns ErrNotFound if the blob
	// does not exist.
	Fetch(ctx context.Context, container, key string) ([]byte, error)
	// Delete removes the blob. Returns ErrNotFound if the blob does not exist.
	Delete(ctx context.Context, container, key string) error
	// Exists reports whether a blob exists at the given container and key.
	Exists(ctx context.Context, container, key string) (bool, error)
}

type azure struct {
	client     *azblob.Client
	containers []string
	opTimeout  time.Duration
	logger     *slog.Logger
}

// New creates a storage system from the given configuration.
// It validates the connection string and creates the Azure client
// but does not touch the service until Start is called.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &azure{
		client:     client,
		containers: cfg.Containers.All(),
		opTimeout:  cfg.OpTimeoutDuration(),
		logger:     logger.With("system", "storage"),
	}, nil
}

func (a *azure) Start(lc *lifecycle.Coordinator) error {
	a.logger.Info("starting storage system")

	lc.OnStartup(func() {
		for _, container := range a.containers {
			_, err := a.client.CreateContainer(lc.Context(), container, nil)
			if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
				a.logger.Error("storage container initialization failed",
					"container", container, "error", err)
				return
			}
		}
		a.logger.Info("storage containers ready", "containers", a.containers)
	})

	return nil
}

func (a *azure) Upload(ctx context.Context, container, key string, reader io.Reader, contentType string) error {
	if err := validateAddress(container, key); err != nil {
		return err
	}

	ctx, cancel := a.bounded(ctx)
	defer cancel()

	opts := &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &contentType,
		},
	}

	if _, err := a.client.UploadStream(ctx, container, key, reader, opts); err != nil {
		return unavailable("upload", container, key, err)
	}

	return nil
}

func (a *azure) Download(ctx context.Context, container, key string) (io.ReadCloser, error) {
	if err := validateAddress(container, key); err != nil {
		return nil, err
	}

	resp, err := a.client.DownloadStream(ctx, container, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, ErrNotFound
		}
		return nil, unavailable("download", container, key, err)
	}

	return resp.Body, nil
}

func (a *azure) Fetch(ctx context.Context, container, key string) ([]byte, error) {
	ctx, cancel := a.bounded(ctx)
	defer cancel()

	body, err := a.Download(ctx, container, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, unavailable("read", container, key, err)
	}

	return data, nil
}

func (a *azure) Delete(ctx context.Context, container, key string) error {
	if err := validateAddress(container, key); err != nil {
		return err
	}

	ctx, cancel := a.bounded(ctx)
	defer cancel()

	if _, err := a.client.DeleteBlob(ctx, container, key, nil); err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return ErrNotFound
		}
		return unavailable("delete", container, key, err)
	}

	return nil
}

func (a *azure) Exists(ctx context.Context, container, key string) (bool, error) {
	if err := validateAddress(container, key); err != nil {
		return false, err
	}

	ctx, cancel := a.bounded(ctx)
	defer cancel()

	blobClient := a.client.
		ServiceClient().
		NewContainerClient(container).
		NewBlobClient(key)

	if _, err := blobClient.GetProperties(ctx, nil); err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return false, nil
		}
		return false, unavailable("stat", container, key, err)
	}

	return true, nil
}

// bounded derives a context with the configured operation timeout.
// Operations are reported failed on timeout; retries belong to the caller.
func (a *azure) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, a.opTimeout)
}

func unavailable(op, container, key string, err error) error {
	return fmt.Errorf("%s blob %s/%s: %w: %v", op, container, key, ErrUnavailable, err)
}

func validateAddress(container, key string) error {
	if container == "" {
		return ErrEmptyContainer
	}
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
