// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/camunda/camunda-sub024/cmd/deployctl/cli"
	"github.com/camunda/camunda-sub024/lib/clock"
	"github.com/camunda/camunda-sub024/lib/config"
	"github.com/camunda/camunda-sub024/lib/distribution"
	"github.com/camunda/camunda-sub024/lib/keygen"
	"github.com/camunda/camunda-sub024/lib/objectstore"
	"github.com/camunda/camunda-sub024/lib/statestore"
	"github.com/camunda/camunda-sub024/lib/versioning"
)

// node is one partition's view of the deployment state, assembled
// from the config file.
type node struct {
	config    *config.Config
	logger    *slog.Logger
	state     *statestore.Store
	contents  distribution.ContentStore
	keys      *keygen.Generator
	submitter *distribution.Submitter
	applier   *distribution.Applier
}

// loadConfig reads the file at path, or the one named by
// DEPLOYCTL_CONFIG when path is empty, and validates it.
func loadConfig(path string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openNode loads the config and opens everything it names. The caller
// must close the node.
func openNode(ctx context.Context, configPath string, streams Streams) (*node, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := cli.NewLogger(streams.Err, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}
	logger = logger.With("partition_id", cfg.PartitionID)

	if err := cfg.EnsureStoreDir(); err != nil {
		return nil, err
	}
	compression, err := statestore.ParseCompression(cfg.Store.Compression)
	if err != nil {
		return nil, err
	}
	state, err := statestore.Open(statestore.Config{
		Path:        cfg.Store.Path,
		PoolSize:    cfg.Store.PoolSize,
		Compression: compression,
		Clock:       clock.Real(),
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	n := &node{config: cfg, logger: logger, state: state, contents: state}
	if err := n.wire(ctx); err != nil {
		state.Close()
		return nil, err
	}
	return n, nil
}

func (n *node) wire(ctx context.Context) error {
	if n.config.ContentStore.Backend == "s3" {
		s3 := n.config.ContentStore.S3
		bucket, err := objectstore.Open(ctx, objectstore.Config{
			Endpoint:  s3.Endpoint,
			Bucket:    s3.Bucket,
			AccessKey: s3.AccessKey,
			SecretKey: s3.SecretKey,
			Region:    s3.Region,
			UseSSL:    s3.UseSSL,
			Prefix:    s3.Prefix,
		}, n.logger)
		if err != nil {
			return err
		}
		n.contents = bucket
	}

	lastKey, err := n.state.LastKey(ctx, n.config.PartitionID)
	if err != nil {
		return err
	}
	n.keys, err = keygen.NewGenerator(n.config.PartitionID, lastKey)
	if err != nil {
		return err
	}

	versioner := versioning.New(n.state, n.keys, n.config.DuplicatePolicy(), n.logger)
	n.submitter, err = distribution.NewSubmitter(distribution.SubmitterConfig{
		Versioner: versioner,
		Keys:      n.keys,
		Checksum:  n.config.ChecksumAlgorithm(),
		Logger:    n.logger,
	})
	if err != nil {
		return err
	}
	n.applier, err = distribution.NewApplier(distribution.ApplierConfig{
		Versions:    n.state,
		Contents:    n.contents,
		Deployments: n.state,
		Logger:      n.logger,
	})
	return err
}

func (n *node) Close() error {
	return n.state.Close()
}
