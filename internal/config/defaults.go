package config

// Default returns the built-in configuration. The engine runs with this
// when no config file exists yet; EnsureUserConfig writes it out so users
// have something to edit.
func Default() Config {
	var cfg Config

	cfg.App.DataDir = "."
	cfg.App.Port = 38471

	cfg.Run.TimeoutSeconds = 300
	cfg.Run.MaxConcurrentSources = 3
	cfg.Run.RetryMax = 2
	cfg.Run.RetryBackoffSeconds = 2

	cfg.Search.Location = "Houston, TX"
	cfg.Search.DefaultMaxPages = 3
	cfg.Search.Strict = false

	cfg.Browser.Headless = true
	cfg.Browser.MaxContexts = 3

	cfg.Sources = map[string]SourceConfig{
		"ziprecruiter": {
			Enabled:  true,
			Priority: 1,
			// ZipRecruiter tolerates moderate pacing.
			MinDelayMS:       2000,
			MaxDelayMS:       4000,
			MaxRequests:      20,
			MaxPages:         3,
			MinSalary:        80000,
			MaxSalary:        500000,
			MinQuality:       0.65,
			MinQualityStrict: 0.8,
		},
		"indeed": {
			Enabled:          true,
			Priority:         2,
			MinDelayMS:       3000,
			MaxDelayMS:       8000,
			MaxRequests:      15,
			MaxPages:         3,
			MinSalary:        85000,
			MaxSalary:        500000,
			MinQuality:       0.65,
			MinQualityStrict: 0.75,
		},
		"linkedin": {
			Enabled:  true,
			Priority: 3,
			// Most aggressive bot detection of the bunch; stay conservative.
			MinDelayMS:       2000,
			MaxDelayMS:       6000,
			MaxRequests:      10,
			MaxPages:         2,
			MinSalary:        100000,
			MaxSalary:        500000,
			MinQuality:       0.7,
			MinQualityStrict: 0.8,
		},
		"remoteok": {
			Enabled:  true,
			Priority: 4,
			// Public JSON API; pacing is politeness, not evasion.
			MinDelayMS:       500,
			MaxDelayMS:       1500,
			MaxRequests:      30,
			MaxPages:         1,
			MinSalary:        70000,
			MaxSalary:        500000,
			MinQuality:       0.5,
			MinQualityStrict: 0.7,
		},
		"emailalerts": {
			Enabled:     false,
			Priority:    5,
			MinDelayMS:  200,
			MaxDelayMS:  500,
			MaxRequests: 50,
			MaxPages:    1,
			// Alert emails carry sparse fields; keep the bar low.
			MinQuality:       0.3,
			MinQualityStrict: 0.5,
		},
	}

	cfg.Email = EmailConfig{
		IMAPHost:    "imap.gmail.com",
		IMAPPort:    993,
		Mailbox:     "INBOX",
		SubjectAny:  []string{"job alert", "new jobs for", "jobs you may be interested in"},
		MaxMessages: 50,
	}

	cfg.Filters.RequiredKeywords = []string{
		"llm", "large language model", "gpt", "bert", "transformer",
		"machine learning", "artificial intelligence", "ai engineer",
		"ml engineer", "mlops", "ai/ml",
		"pytorch", "tensorflow", "keras", "huggingface",
		"langchain", "llamaindex", "openai", "anthropic",
		"deep learning", "neural network", "nlp",
		"natural language processing", "generative ai", "conversational ai",
		"vector database", "embeddings", "semantic search", "retrieval", "rag",
	}
	cfg.Filters.ExcludeKeywords = []string{
		"sales", "marketing", "recruiter", "cold calling", "door to door",
		"commission only", "mlm", "pyramid", "telemarketing",
		"unpaid", "volunteer",
		"real estate", "insurance", "retail", "restaurant", "driver",
		"warehouse", "construction", "manual labor",
		"make money fast", "work from home easy", "no experience needed",
	}
	cfg.Filters.TechKeywords = []string{
		"llm", "gpt", "transformer", "bert", "t5",
		"pytorch", "tensorflow", "keras", "jax",
		"huggingface", "langchain", "llamaindex",
		"openai", "anthropic", "cohere",
		"python", "scala", "java", "go",
		"aws", "azure", "gcp", "kubernetes",
		"mlflow", "wandb",
		"vector", "embedding", "rag", "fine-tuning",
	}

	cfg.Scoring.DescriptionWeight = 0.35
	cfg.Scoring.SalaryWeight = 0.15
	cfg.Scoring.JobTypeWeight = 0.10
	cfg.Scoring.RemoteTypeWeight = 0.10
	cfg.Scoring.TechWeight = 0.30
	cfg.Scoring.DescriptionCapChars = 1500
	cfg.Scoring.TechCap = 5

	cfg.Categories = []Category{
		{
			Name:        "core-llm",
			Description: "Core large language model and generative AI positions",
			Queries: []string{
				"LLM engineer",
				"large language model engineer",
				"Generative AI engineer",
				"LLM developer",
				"Applied AI engineer",
				"LLM scientist",
			},
		},
		{
			Name:        "agentic-ai",
			Description: "AI agents and autonomous systems positions",
			Queries: []string{
				"Agentic AI engineer",
				"AI agent developer",
				"autonomous AI agents",
				"multi-agent systems engineer",
				"AI orchestration engineer",
				"AI automation engineer",
			},
		},
		{
			Name:        "python-ml",
			Description: "Python-focused machine learning positions",
			Queries: []string{
				"Python AI engineer",
				"Python machine learning engineer",
				"ML engineer Python",
				"Deep learning engineer",
				"Applied ML engineer",
				"AI/ML engineer",
			},
		},
		{
			Name:        "rag-vector",
			Description: "RAG, vector databases, and AI framework positions",
			Queries: []string{
				"RAG engineer",
				"retrieval augmented generation",
				"Vector database AI",
				"LangChain engineer",
				"LlamaIndex engineer",
				"Embedding engineer",
			},
		},
		{
			Name:        "startup-catchall",
			Description: "Startup and specialized AI positions",
			Queries: []string{
				"Founding AI engineer",
				"AI researcher engineer",
				"NLP engineer",
				"natural language processing",
				"Prompt engineer LLM",
				"AI systems developer",
				"AI infrastructure engineer",
			},
		},
	}

	return cfg
}
