package assets

import (
	"context"
	"fmt"

	"storefront/internal/config"
)

// Drivers accepted by OpenStore
const (
	DriverFS    = "fs"
	DriverMinio = "minio"
)

// OpenStore returns the backend selected by configuration.
func OpenStore(ctx context.Context, cfg config.AssetsConfig, minioCfg config.MinioConfig) (Store, error) {
	switch cfg.Driver {
	case DriverFS, "":
		store, err := NewFileStore(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return store, nil
	case DriverMinio:
		store, err := NewMinioStore(ctx, MinioOptions{
			Endpoint:  minioCfg.Endpoint,
			AccessKey: minioCfg.AccessKey,
			SecretKey: minioCfg.SecretKey,
			Bucket:    minioCfg.Bucket,
			UseSSL:    minioCfg.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown assets driver %q", cfg.Driver)
	}
}
