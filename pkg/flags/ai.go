package flags

import (
	"github.com/spf13/pflag"

	"github.com/lifeos/lifeos/pkg/ai"
)

// AIFlags contains flags related to LifeOS's use of generative AI.
type AIFlags struct {
	Endpoint       string
	Model          string
	EmbeddingModel string
}

func NewAIFlags() *AIFlags {
	return &AIFlags{
		Model:          "meta-llama/Llama-3.1-8B-Instruct",
		EmbeddingModel: "text-embedding-3-small",
	}
}

func (f *AIFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.Endpoint, "ai-endpoint", "", "URL for an OpenAI-compatible endpoint. Set OPENAI_API_KEY to specify an API key.")
	fs.StringVar(&f.Model, "ai-model", f.Model, "The chat model used for classification, study answers and summaries")
	fs.StringVar(&f.EmbeddingModel, "ai-embedding-model", f.EmbeddingModel, "The embedding model used for study content")
}

func (f *AIFlags) GetLLMClient() *ai.LLMClient {
	return ai.NewLLMClient(f.Endpoint, f.Model)
}

func (f *AIFlags) GetEmbeddingClient() *ai.EmbeddingClient {
	return ai.NewEmbeddingClient(f.Endpoint, f.EmbeddingModel)
}
