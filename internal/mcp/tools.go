package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

var (
	utilizationProp = Property{Type: "number", Description: "Utilization percentage, 1-100"}
	markupProp      = Property{Type: "number", Description: "Price multiplier over cost, >= 1"}
	topProp         = Property{Type: "integer", Description: "Return only the N most profitable configurations (0 = all)"}
	gpuProp         = Property{Type: "string", Description: "GPU name as listed in the catalog"}
	modelProp       = Property{Type: "string", Description: "Model name as listed in the catalog"}
	providerProp    = Property{Type: "string", Description: "Media GPU provider", Enum: []string{"cudo", "runpod", "runpod_serverless"}}
	kindProp        = Property{Type: "string", Description: "Media model table", Enum: []string{"image", "video"}}
)

func schema(props map[string]Property, required ...string) InputSchema {
	if props == nil {
		props = map[string]Property{}
	}
	return InputSchema{Type: "object", Properties: props, Required: required}
}

// AllTools returns every tool the server exposes.
func AllTools() []Tool {
	return []Tool{
		{
			Name:        "get_catalog",
			Description: "Return the reference data: GPUs, models, throughput and competitor prices.",
			InputSchema: schema(map[string]Property{
				"table": {Type: "string", Description: "Return a single table", Enum: []string{
					"llmGpus", "llmModels", "mediaGpus", "imageModels", "videoModels",
					"voiceModels", "estimatorGpus", "estimatorModels", "competitors",
				}},
			}),
		},
		{
			Name:        "rank_llm_configurations",
			Description: "Rank every GPU x LLM pair by monthly profit.",
			InputSchema: schema(map[string]Property{"utilization": utilizationProp, "markup": markupProp, "top": topProp}),
		},
		{
			Name:        "calculate_llm_profit",
			Description: "Compute revenue and profit for one GPU and LLM.",
			InputSchema: schema(map[string]Property{
				"gpu": gpuProp, "model": modelProp, "utilization": utilizationProp, "markup": markupProp,
				"inputCostOverride":  {Type: "number", Description: "Replace the model's input cost per million tokens"},
				"outputCostOverride": {Type: "number", Description: "Replace the model's output cost per million tokens"},
			}, "gpu", "model"),
		},
		{
			Name:        "rank_media_configurations",
			Description: "Rank every GPU x provider x image or video model by monthly profit.",
			InputSchema: schema(map[string]Property{"kind": kindProp, "utilization": utilizationProp, "markup": markupProp, "top": topProp}),
		},
		{
			Name:        "calculate_media_profit",
			Description: "Compute per-unit cost, price and monthly profit for one media configuration, with competitor quotes.",
			InputSchema: schema(map[string]Property{
				"gpu": gpuProp, "model": modelProp, "provider": providerProp, "kind": kindProp,
				"utilization": utilizationProp, "markup": markupProp,
			}, "gpu", "model"),
		},
		{
			Name:        "rank_voice_configurations",
			Description: "Rank every GPU x voice model by monthly profit.",
			InputSchema: schema(map[string]Property{"utilization": utilizationProp, "markup": markupProp, "top": topProp}),
		},
		{
			Name:        "calculate_voice_profit",
			Description: "Compute per-job cost, price and monthly profit for one GPU and voice model.",
			InputSchema: schema(map[string]Property{
				"gpu": gpuProp, "model": modelProp, "utilization": utilizationProp, "markup": markupProp,
			}, "gpu", "model"),
		},
		{
			Name:        "estimate_cluster",
			Description: "Size a GPU cluster for a user population and report the binding constraint, capex and cost per million tokens.",
			InputSchema: schema(map[string]Property{
				"model":               modelProp,
				"gpu":                 gpuProp,
				"allGpus":             {Type: "boolean", Description: "Estimate for every GPU in the catalog"},
				"users":               {Type: "integer", Description: "Number of users"},
				"tokensPerUser":       {Type: "number", Description: "Daily tokens per user"},
				"dailyTokensOverride": {Type: "number", Description: "Total daily tokens, replacing users x tokensPerUser"},
				"workHours":           {Type: "number", Description: "Hours per day the load is spread over"},
				"peakFactor":          {Type: "number", Description: "Peak to average load ratio"},
				"precision":           {Type: "string", Description: "Weight precision", Enum: []string{"FP16", "FP8", "INT4"}},
				"scalingPolicy":       {Type: "string", Description: "Multi-GPU efficiency table", Enum: []string{"intra-server", "conservative"}},
			}),
		},
		{
			Name:        "get_profit_curve",
			Description: "Return monthly profit at every utilization from 1 to 100% and the break-even point.",
			InputSchema: schema(map[string]Property{
				"calculator": {Type: "string", Description: "Which calculator to use", Enum: []string{"llm", "media", "voice"}},
				"gpu":        gpuProp, "model": modelProp, "markup": markupProp,
				"provider": providerProp, "kind": kindProp,
			}, "gpu", "model"),
		},
		{
			Name:        "get_config",
			Description: "Return the calculator defaults the API server applies.",
			InputSchema: schema(nil),
		},
	}
}

// executeTool dispatches a tool call to the API client.
func (s *MCPServer) executeTool(ctx context.Context, name string, args map[string]interface{}) (json.RawMessage, error) {
	switch name {
	case "get_catalog":
		table, err := optionalString(args, "table")
		if err != nil {
			return nil, err
		}
		return s.client.GetCatalog(ctx, table)

	case "rank_llm_configurations":
		q, err := queryArgs(args, "utilization", "markup", "top")
		if err != nil {
			return nil, err
		}
		return s.client.ListConfigurations(ctx, "llm", q)
	case "rank_media_configurations":
		q, err := queryArgs(args, "kind", "utilization", "markup", "top")
		if err != nil {
			return nil, err
		}
		return s.client.ListConfigurations(ctx, "media", q)
	case "rank_voice_configurations":
		q, err := queryArgs(args, "utilization", "markup", "top")
		if err != nil {
			return nil, err
		}
		return s.client.ListConfigurations(ctx, "voice", q)

	case "calculate_llm_profit":
		if err := requireStrings(args, "gpu", "model"); err != nil {
			return nil, err
		}
		return s.client.Calculate(ctx, "llm", pick(args, "gpu", "model", "utilization", "markup", "inputCostOverride", "outputCostOverride"))
	case "calculate_media_profit":
		if err := requireStrings(args, "gpu", "model"); err != nil {
			return nil, err
		}
		return s.client.Calculate(ctx, "media", pick(args, "gpu", "model", "provider", "kind", "utilization", "markup"))
	case "calculate_voice_profit":
		if err := requireStrings(args, "gpu", "model"); err != nil {
			return nil, err
		}
		return s.client.Calculate(ctx, "voice", pick(args, "gpu", "model", "utilization", "markup"))

	case "estimate_cluster":
		return s.client.Estimate(ctx, pick(args, "model", "gpu", "allGpus", "users", "tokensPerUser",
			"dailyTokensOverride", "workHours", "peakFactor", "precision", "scalingPolicy"))

	case "get_profit_curve":
		if err := requireStrings(args, "gpu", "model"); err != nil {
			return nil, err
		}
		q, err := queryArgs(args, "calculator", "gpu", "model", "markup", "provider", "kind")
		if err != nil {
			return nil, err
		}
		return s.client.GetCurve(ctx, q)

	case "get_config":
		return s.client.GetConfig(ctx)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

func optionalString(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", nil
	}
	str, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %s must be a string", key)
	}
	return str, nil
}

func requireStrings(args map[string]interface{}, keys ...string) error {
	for _, key := range keys {
		str, err := optionalString(args, key)
		if err != nil {
			return err
		}
		if str == "" {
			return fmt.Errorf("missing required argument: %s", key)
		}
	}
	return nil
}

// pick copies the named arguments that are present into a request body.
func pick(args map[string]interface{}, keys ...string) map[string]interface{} {
	out := make(map[string]interface{}, len(keys))
	for _, key := range keys {
		if v, ok := args[key]; ok && v != nil {
			out[key] = v
		}
	}
	return out
}

// queryArgs renders the named scalar arguments as query parameters.
func queryArgs(args map[string]interface{}, keys ...string) (url.Values, error) {
	q := url.Values{}
	for _, key := range keys {
		v, ok := args[key]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			q.Set(key, t)
		case float64:
			q.Set(key, strconv.FormatFloat(t, 'f', -1, 64))
		case bool:
			q.Set(key, strconv.FormatBool(t))
		default:
			return nil, fmt.Errorf("argument %s has unsupported type %T", key, v)
		}
	}
	return q, nil
}
