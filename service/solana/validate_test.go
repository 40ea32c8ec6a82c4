package solana

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAddress(t *testing.T) {
	assert.NoError(t, ValidateAddress("8R5brRqNa1CDMtcQRaLPQfJeLBrtyqpjDPTSKbBvmsna"))
	assert.Error(t, ValidateAddress(""))
	assert.Error(t, ValidateAddress("not-base58-0OIl"))
	assert.ErrorContains(t, ValidateAddress("abc"), `invalid address "abc"`)
}

func TestValidateSignature(t *testing.T) {
	assert.NoError(t, ValidateSignature("uZz2qDvLzndsTEY31YkxgRe1rYQ8MsCtS3DwhPYP1Md7u7dnUK4HW3vYzsxE6GSxFhSG5zpvqSQnSUn1sPmzTBu"))
	assert.Error(t, ValidateSignature("8R5brRqNa1CDMtcQRaLPQfJeLBrtyqpjDPTSKbBvmsna"))
	assert.ErrorContains(t, ValidateSignature("sig"), `invalid signature "sig"`)
}
