package awsKmsKeySource

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/digestSigner/inMemoryDigestSigner"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/keySource"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// rawKeyLength is the plaintext size of a binary secp256k1 scalar.
const rawKeyLength = 32

// KMSDecryptAPI is the subset of the KMS client used here.
type KMSDecryptAPI interface {
	Decrypt(ctx context.Context, params *kms.DecryptInput, optFns ...func(*kms.Options)) (*kms.DecryptOutput, error)
}

// AWSKMSKeySource decrypts a KMS-encrypted signing key. The ciphertext is
// base64 text; the plaintext is either the raw 32 key bytes or hex text.
type AWSKMSKeySource struct {
	logger     *zap.Logger
	kmsClient  KMSDecryptAPI
	awsRegion  string
	ciphertext string
}

var _ keySource.IKeySource = (*AWSKMSKeySource)(nil)

func NewAWSKMSKeySource(awsCfg aws.Config, ciphertext string, logger *zap.Logger) *AWSKMSKeySource {
	return NewAWSKMSKeySourceWithClient(kms.NewFromConfig(awsCfg), awsCfg.Region, ciphertext, logger)
}

func NewAWSKMSKeySourceWithClient(client KMSDecryptAPI, awsRegion string, ciphertext string, logger *zap.Logger) *AWSKMSKeySource {
	return &AWSKMSKeySource{
		logger:     logger,
		kmsClient:  client,
		awsRegion:  awsRegion,
		ciphertext: ciphertext,
	}
}

func (a *AWSKMSKeySource) SigningKey(ctx context.Context) ([]byte, error) {
	blob, err := base64.StdEncoding.DecodeString(strings.TrimSpace(a.ciphertext))
	if err != nil {
		return nil, errors.Wrap(err, "KMS ciphertext is not valid base64")
	}
	if len(blob) == 0 {
		return nil, errors.New("KMS ciphertext is empty")
	}

	res, err := a.kmsClient.Decrypt(ctx, &kms.DecryptInput{CiphertextBlob: blob})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decrypt signing key in region %s", a.awsRegion)
	}
	if res == nil || len(res.Plaintext) == 0 {
		return nil, errors.Errorf("KMS returned no plaintext in region %s", a.awsRegion)
	}
	defer wipe(res.Plaintext)

	a.logger.Sugar().Debugw("Decrypted signing key with KMS",
		"region", a.awsRegion,
		"keyId", aws.ToString(res.KeyId),
	)

	if len(res.Plaintext) == rawKeyLength {
		return append([]byte(nil), res.Plaintext...), nil
	}
	key, err := inMemoryDigestSigner.DecodeHexKey(string(res.Plaintext))
	if err != nil {
		return nil, errors.Wrap(err, "KMS plaintext is neither a raw nor a hex encoded key")
	}
	return key, nil
}

func (a *AWSKMSKeySource) String() string {
	return "AWSKMSKeySource{region: " + a.awsRegion + "}"
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
