package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	_, res := NormalizeAndValidate(Default())
	assert.Empty(t, res.Errors)
}

func TestNoEnabledSourcesIsAnError(t *testing.T) {
	cfg := Default()
	for name, sc := range cfg.Sources {
		sc.Enabled = false
		cfg.Sources[name] = sc
	}
	_, res := NormalizeAndValidate(cfg)
	require.False(t, res.OK())
	assert.Contains(t, res.Error(), "no sources enabled")
}

func TestInvalidDelayAndSalaryBounds(t *testing.T) {
	cfg := Default()
	sc := cfg.Sources["indeed"]
	sc.MinDelayMS = 5000
	sc.MaxDelayMS = 1000
	sc.MinSalary = 200000
	sc.MaxSalary = 100000
	cfg.Sources["indeed"] = sc

	_, res := NormalizeAndValidate(cfg)
	require.False(t, res.OK())
	assert.Contains(t, res.Error(), "min_delay_ms")
	assert.Contains(t, res.Error(), "salary bounds")
}

func TestEmailFieldsRequiredWhenEmailAlertsEnabled(t *testing.T) {
	cfg := Default()
	sc := cfg.Sources["emailalerts"]
	sc.Enabled = true
	cfg.Sources["emailalerts"] = sc
	cfg.Email.Username = ""

	_, res := NormalizeAndValidate(cfg)
	require.False(t, res.OK())
	assert.Contains(t, res.Error(), "email.username")
}

func TestKeywordListsAreTrimmedAndDeduped(t *testing.T) {
	cfg := Default()
	cfg.Filters.RequiredKeywords = []string{" llm ", "LLM", "", "rag"}
	out, res := NormalizeAndValidate(cfg)
	require.True(t, res.OK())
	assert.Equal(t, []string{"llm", "rag"}, out.Filters.RequiredKeywords)
}

func TestWeightDriftWarnsButDoesNotFail(t *testing.T) {
	cfg := Default()
	cfg.Scoring.TechWeight = 0.9
	_, res := NormalizeAndValidate(cfg)
	assert.True(t, res.OK())
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "scoring weights")
}
