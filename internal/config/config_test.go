package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(``))
	require.NoError(t, err)
	require.EqualValues(t, 512, cfg.Capacity)
	require.Equal(t, 20, cfg.ProducerBatch)
	require.False(t, cfg.Uniprocessor)
}

func TestParse_RejectsNonPowerOfTwoCapacity(t *testing.T) {
	_, err := Parse([]byte("capacity: 500\n"))
	require.Error(t, err)
}

func TestParse_RejectsNonPositiveBatch(t *testing.T) {
	_, err := Parse([]byte("producer_batch: 0\n"))
	require.Error(t, err)
}

func TestParse_OverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
capacity: 1024
uniprocessor: true
metrics_addr: ":9100"
producer_batch: 64
`))
	require.NoError(t, err)
	require.EqualValues(t, 1024, cfg.Capacity)
	require.True(t, cfg.Uniprocessor)
	require.Equal(t, ":9100", cfg.MetricsAddr)
	require.Equal(t, 64, cfg.ProducerBatch)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/portal-config.yaml")
	require.Error(t, err)
}
