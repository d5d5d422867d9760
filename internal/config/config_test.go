package config

import (
	"github.com/caarlos0/env/v11"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func defaults() *Config {
	cfg := &Config{}
	Expect(env.ParseWithOptions(cfg, env.Options{Environment: map[string]string{}})).To(Succeed())
	cfg.EnableMocks = true
	return cfg
}

var _ = Describe("validateConfig", func() {
	It("should accept the defaults with mocks enabled", func() {
		cfg := defaults()
		Expect(validateConfig(cfg)).To(Succeed())
		Expect(cfg.ServerAddr).To(Equal(":8000"))
		Expect(cfg.EmbeddingCfg.Dimension).To(Equal(384))
		Expect(cfg.LLMCfg.Model).To(Equal("gpt-3.5-turbo"))
		Expect(cfg.LLMCfg.Retry.Attempts).To(Equal(uint(2)))
		Expect(cfg.QueryCfg.DefaultTopK).To(Equal(5))
	})

	It("should allow at most one retry of the completion call", func() {
		cfg := defaults()
		cfg.LLMCfg.Retry.Attempts = 3
		Expect(validateConfig(cfg)).To(MatchError(ContainSubstring("LLM_RETRY_ATTEMPTS")))
	})

	It("should reject an unknown index backend", func() {
		cfg := defaults()
		cfg.SnapshotCfg.Backend = "faiss"
		Expect(validateConfig(cfg)).To(MatchError(ContainSubstring("SNAPSHOT_BACKEND")))
	})

	It("should require completion credentials without mocks", func() {
		cfg := defaults()
		cfg.EnableMocks = false
		Expect(validateConfig(cfg)).To(MatchError(ContainSubstring("LLM_TOKEN")))

		cfg.LLMCfg.Token = "sk-test"
		Expect(validateConfig(cfg)).To(Succeed())
	})

	It("should read prefixed variables", func() {
		cfg := &Config{}
		Expect(env.ParseWithOptions(cfg, env.Options{Environment: map[string]string{
			"SNAPSHOT_BACKEND":     "qdrant",
			"SNAPSHOT_QDRANT_HOST": "qdrant.internal",
			"LLM_RETRY_TIMEOUT":    "5s",
			"EMBEDDING_TOKEN":      "t",
		}})).To(Succeed())

		Expect(cfg.SnapshotCfg.Backend).To(Equal("qdrant"))
		Expect(cfg.SnapshotCfg.Qdrant.Host).To(Equal("qdrant.internal"))
		Expect(cfg.LLMCfg.Retry.Timeout.Seconds()).To(Equal(5.0))
		Expect(cfg.EmbeddingCfg.Token).To(Equal("t"))
	})
})

var _ = Describe("getEnvFile", func() {
	DescribeTable("maps environments to files",
		func(environment, file string) {
			Expect(getEnvFile(environment)).To(Equal(file))
		},
		Entry("prod", "prod", ".env.prod"),
		Entry("dev", "dev", ".env.local"),
		Entry("other", "ci", ".env.ci"),
	)
})
