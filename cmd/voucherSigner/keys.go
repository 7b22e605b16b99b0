package main

import (
	"context"
	"fmt"

	internalAws "github.com/Layr-Labs/eigenx-vouchers-go/internal/aws"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/digestSigner/inMemoryDigestSigner"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/keySource"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/keySource/awsKmsKeySource"
	"go.uber.org/zap"
)

type keyConfig struct {
	HexKey        string
	KMSCiphertext string
	AWSRegion     string
}

func newKeySource(ctx context.Context, cfg keyConfig, l *zap.Logger) (keySource.IKeySource, error) {
	if cfg.KMSCiphertext == "" {
		return keySource.NewHexKeySource(cfg.HexKey), nil
	}

	awsCfg, err := internalAws.LoadAWSConfig(ctx, cfg.AWSRegion)
	if err != nil {
		return nil, err
	}
	identity, err := internalAws.GetCallerIdentity(ctx, awsCfg)
	if err != nil {
		return nil, err
	}
	l.Sugar().Infow("Using AWS KMS for the signing key",
		"region", awsCfg.Region,
		"account", identity.Account,
		"arn", identity.Arn,
	)
	return awsKmsKeySource.NewAWSKMSKeySource(awsCfg, cfg.KMSCiphertext, l), nil
}

func newDigestSigner(ctx context.Context, cfg keyConfig, l *zap.Logger) (*inMemoryDigestSigner.InMemoryDigestSigner, error) {
	src, err := newKeySource(ctx, cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to create key source: %w", err)
	}
	key, err := src.SigningKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load signing key: %w", err)
	}
	defer func() {
		for i := range key {
			key[i] = 0
		}
	}()
	return inMemoryDigestSigner.NewInMemoryDigestSigner(key, l)
}
