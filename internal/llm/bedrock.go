package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// bedrockModels maps friendly names to Bedrock model IDs.
var bedrockModels = map[string]string{
	"claude-haiku":  "anthropic.claude-3-5-haiku-20241022-v1:0",
	"claude-sonnet": "anthropic.claude-3-5-sonnet-20241022-v2:0",
}

const bedrockAnthropicVersion = "bedrock-2023-05-31"

// bedrockInvoker is the subset of the Bedrock runtime client the provider uses.
type bedrockInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockProvider implements Provider for Anthropic models hosted on AWS
// Bedrock, using the Messages API body format.
type BedrockProvider struct {
	client bedrockInvoker
	model  string
}

type bedrockRequest struct {
	AnthropicVersion string           `json:"anthropic_version"`
	MaxTokens        int              `json:"max_tokens"`
	System           string           `json:"system,omitempty"`
	Temperature      *float64         `json:"temperature,omitempty"`
	TopP             *float64         `json:"top_p,omitempty"`
	Messages         []bedrockMessage `json:"messages"`
}

type bedrockMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type bedrockResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// NewBedrockProvider creates a Bedrock provider from the default AWS
// credential chain.
func NewBedrockProvider(ctx context.Context, cfg BedrockConfig) (*BedrockProvider, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("bedrock region is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return newBedrockProvider(bedrockruntime.NewFromConfig(awsCfg), cfg.Model), nil
}

func newBedrockProvider(client bedrockInvoker, model string) *BedrockProvider {
	return &BedrockProvider{
		client: client,
		model:  resolveModel(model, bedrockModels),
	}
}

func (p *BedrockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	body := bedrockRequest{
		AnthropicVersion: bedrockAnthropicVersion,
		MaxTokens:        req.MaxTokens,
		System:           req.System,
	}
	body.Temperature, body.TopP = req.sampling()
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, bedrockMessage{Role: string(m.Role), Content: m.Content})
	}
	if req.Schema != nil {
		// Bedrock has no native structured output for this body format;
		// ask for JSON in the system prompt and validate below.
		def, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return nil, fmt.Errorf("marshal schema: %w", err)
		}
		body.System += fmt.Sprintf("\n\nRespond with a single JSON object matching this JSON Schema and nothing else:\n%s", def)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal bedrock request: %w", err)
	}

	out, err := p.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(p.model),
		Body:        payload,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return nil, mapBedrockError(err)
	}

	var parsed bedrockResponse
	if err := json.Unmarshal(out.Body, &parsed); err != nil {
		return nil, &ErrInvalidResponse{Content: out.Body, Err: fmt.Errorf("decode bedrock response: %w", err)}
	}

	var text string
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return nil, &ErrInvalidResponse{Content: out.Body, Err: fmt.Errorf("no text content in Bedrock response")}
	}

	content := json.RawMessage(text)
	stop := mapBedrockStopReason(parsed.StopReason)
	if err := finish(req, content, stop); err != nil {
		return nil, err
	}

	model := parsed.Model
	if model == "" {
		model = p.model
	}
	return &Response{
		Content: content,
		Usage: Usage{
			InputTokens:  parsed.Usage.InputTokens,
			OutputTokens: parsed.Usage.OutputTokens,
			TotalTokens:  parsed.Usage.InputTokens + parsed.Usage.OutputTokens,
		},
		Model:      model,
		StopReason: stop,
	}, nil
}

func (p *BedrockProvider) ModelID() string {
	return p.model
}

func mapBedrockStopReason(reason string) string {
	if reason == "max_tokens" {
		return "max_tokens"
	}
	return "end"
}

func mapBedrockError(err error) error {
	var throttled *types.ThrottlingException
	if errors.As(err, &throttled) {
		return &ErrRateLimit{Err: err}
	}
	var invalid *types.ValidationException
	if errors.As(err, &invalid) {
		return &ErrInvalidResponse{Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}
