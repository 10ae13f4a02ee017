package chain

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"

	"subsidyledger/internal/model"
)

func TestResumeTxHash(t *testing.T) {
	intent := &model.TxIntent{ID: 1, Kind: model.IntentReleasePayment, Status: model.IntentStatusPending}

	_, ok := resumeTxHash(intent)
	assert.False(t, ok, "never-submitted intent has nothing to resume")

	empty := ""
	intent.TxHash = &empty
	_, ok = resumeTxHash(intent)
	assert.False(t, ok)

	// a pending intent with a recorded hash was submitted in an earlier
	// cycle; resuming from it avoids a second transaction
	submitted := "0x52908400098527886e0f7030069857d2e4169ee7000000000000000000000001"
	intent.TxHash = &submitted
	hash, ok := resumeTxHash(intent)
	assert.True(t, ok)
	assert.Equal(t, common.HexToHash(submitted), hash)
}
