package ai

import (
	"context"
	"fmt"

	"fieldforce.com/fieldforce/fieldforce/core"
	gai "github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

// Gemini generates text through genkit's Google AI plugin.
type Gemini struct {
	g       *genkit.Genkit
	insight gai.ModelRef
	advice  gai.ModelRef
	verbose bool
}

func NewGemini(ctx context.Context, apiKey, model string, verbose bool) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	g := genkit.Init(ctx,
		genkit.WithPlugins(&googlegenai.GoogleAI{APIKey: apiKey}),
		genkit.WithDefaultModel("googleai/"+model),
	)
	return &Gemini{
		g: g,
		insight: googlegenai.GoogleAIModelRef(model, &genai.GenerateContentConfig{
			MaxOutputTokens: 400,
			Temperature:     genai.Ptr[float32](0.2),
			ThinkingConfig: &genai.ThinkingConfig{
				ThinkingBudget: genai.Ptr[int32](0),
			},
		}),
		advice: googlegenai.GoogleAIModelRef(model, &genai.GenerateContentConfig{
			MaxOutputTokens: 500,
			Temperature:     genai.Ptr[float32](0.7),
			ThinkingConfig: &genai.ThinkingConfig{
				ThinkingBudget: genai.Ptr[int32](0),
			},
		}),
		verbose: verbose,
	}
}

func (m *Gemini) GenerateInsight(ctx context.Context, prompt string) (*core.Insight, error) {
	insight, resp, err := genkit.GenerateData[core.Insight](ctx, m.g,
		gai.WithModel(m.insight),
		gai.WithPrompt(prompt),
	)
	if err != nil {
		return nil, fmt.Errorf("generate insight: %w", err)
	}
	m.printUsage("insight", resp)
	return insight, nil
}

func (m *Gemini) GenerateText(ctx context.Context, system, prompt string) (string, error) {
	resp, err := genkit.Generate(ctx, m.g,
		gai.WithModel(m.advice),
		gai.WithSystem(system),
		gai.WithPrompt(prompt),
	)
	if err != nil {
		return "", fmt.Errorf("generate text: %w", err)
	}
	m.printUsage("advice", resp)
	return resp.Text(), nil
}

func (m *Gemini) printUsage(name string, resp *gai.ModelResponse) {
	if !m.verbose || resp == nil || resp.Usage == nil {
		return
	}
	u := resp.Usage
	fmt.Printf("[INFO] %s tokens: prompt %d, thoughts %d, output %d, total %d\n",
		name, u.InputTokens, u.ThoughtsTokens, u.OutputTokens, u.TotalTokens)
}
