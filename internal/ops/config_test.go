package ops

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/risk"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"account": "8012345-01",
		"risk": {"perInstrumentCap": 300000},
		"engine": {
			"orderSpacingMs": 3000,
			"settleDelayMs": 2000,
			"buyConditions": ["momentum-breakout"],
			"sellConditions": ["trend-exit"]
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "8012345-01", loaded.Account)
	assert.Equal(t, 3*time.Second, loaded.Engine.OrderSpacing)
	assert.Equal(t, 2*time.Second, loaded.Engine.SettleDelay)
	assert.Equal(t, defaultSnapshotCooldown, loaded.Engine.SnapshotCooldown)
	assert.Equal(t, defaultQueueCapacity, loaded.Engine.QueueCapacity)
	assert.Equal(t, []string{"momentum-breakout"}, loaded.Engine.BuyConditions)
}

func TestResolveRejectsMissingAccount(t *testing.T) {
	_, err := Resolve(FileConfig{
		Risk:   risk.Config{PerInstrumentCap: 300000},
		Engine: EngineConfig{BuyConditions: []string{"x"}},
	})
	assert.Error(t, err)
}

func TestResolveRejectsZeroCap(t *testing.T) {
	_, err := Resolve(FileConfig{
		Account: "8012345-01",
		Engine:  EngineConfig{BuyConditions: []string{"x"}},
	})
	assert.Error(t, err)
}

func TestResolveRejectsNoConditions(t *testing.T) {
	_, err := Resolve(FileConfig{
		Account: "8012345-01",
		Risk:    risk.Config{PerInstrumentCap: 300000},
	})
	assert.Error(t, err)
}

func TestResolveRejectsJournalWithoutDatabase(t *testing.T) {
	_, err := Resolve(FileConfig{
		Account: "8012345-01",
		Risk:    risk.Config{PerInstrumentCap: 300000},
		Engine:  EngineConfig{BuyConditions: []string{"x"}},
		Journal: JournalConfig{Enabled: true},
	})
	assert.Error(t, err)
}
