package config

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViperAndCobra(t *testing.T) {
	assert := assert.New(t)

	cmd := &cobra.Command{}
	AddFlags(cmd)

	v := viper.New()
	assert.NoError(v.BindPFlags(cmd.PersistentFlags()))

	assert.NoError(cmd.PersistentFlags().Set(FlagMaxOpsPerBatch, "7"))
	assert.NoError(cmd.PersistentFlags().Set(FlagSubmitter, SubmitterRPC))
	assert.NoError(cmd.PersistentFlags().Set(FlagPollingInterval, "2s"))
	assert.NoError(cmd.PersistentFlags().Set(FlagStrictValidation, "true"))
	assert.NoError(cmd.PersistentFlags().Set(FlagDBPath, "./accounts"))

	c := Config{}
	assert.NoError(c.GetViperConfig(v))

	assert.Equal(7, c.MaxOpsPerBatch)
	assert.Equal(SubmitterRPC, c.Submitter)
	assert.Equal(2*time.Second, c.PollingInterval)
	assert.True(c.StrictValidation)
	assert.Equal("./accounts", c.DBPath)
	assert.Equal(DefaultConfig.HorizonURL, c.HorizonURL)
	assert.Equal(DefaultConfig.BaseFee, c.BaseFee)
}

func TestDefaults(t *testing.T) {
	c := DefaultConfig
	require.NoError(t, c.Validate())
	require.Equal(t, 100, c.MaxOpsPerBatch)
	require.Equal(t, 5*time.Second, DefaultPollingTimeout)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		modify func(*Config)
		err    error
	}{
		{"zero batch size", func(c *Config) { c.MaxOpsPerBatch = 0 }, ErrInvalidBatchSize},
		{"negative batch size", func(c *Config) { c.MaxOpsPerBatch = -1 }, ErrInvalidBatchSize},
		{"unknown submitter", func(c *Config) { c.Submitter = "carrier pigeon" }, ErrUnknownSubmitter},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := DefaultConfig
			tc.modify(&c)
			require.ErrorIs(t, c.Validate(), tc.err)
		})
	}

	c := DefaultConfig
	c.LogLevel = "loud"
	require.Error(t, c.Validate())
}
