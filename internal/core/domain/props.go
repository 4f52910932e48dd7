package domain

import "strings"

// Role is the operating mode a llama.cpp server reports in /props
type Role string

const (
	RoleUnknown Role = ""
	RoleRouter  Role = "router"
	RoleModel   Role = "model"
)

// ParseRole maps the raw props value to a Role, defaulting to RoleModel
// when absent or unrecognised.
func ParseRole(raw string) Role {
	if strings.EqualFold(strings.TrimSpace(raw), string(RoleRouter)) {
		return RoleRouter
	}
	return RoleModel
}

// Label is the upper-case form used in logs
func (r Role) Label() string {
	switch r {
	case RoleRouter:
		return "ROUTER"
	case RoleModel:
		return "MODEL"
	default:
		return "UNKNOWN"
	}
}

// ServerProps is the payload of GET /props. The store replaces it wholesale
// on every successful fetch.
type ServerProps struct {
	DefaultGenerationSettings *GenerationSettings `json:"default_generation_settings,omitempty" yaml:"default_generation_settings,omitempty"`
	WebUISettings             map[string]any      `json:"webui_settings,omitempty" yaml:"webui_settings,omitempty"`
	Modalities                *Modalities         `json:"modalities,omitempty" yaml:"modalities,omitempty"`
	ModelPath                 string              `json:"model_path,omitempty" yaml:"model_path,omitempty"`
	ModelAlias                string              `json:"model_alias,omitempty" yaml:"model_alias,omitempty"`
	ChatTemplate              string              `json:"chat_template,omitempty" yaml:"chat_template,omitempty"`
	BuildInfo                 string              `json:"build_info,omitempty" yaml:"build_info,omitempty"`
	Role                      string              `json:"role,omitempty" yaml:"role,omitempty"`
	TotalSlots                int                 `json:"total_slots,omitempty" yaml:"total_slots,omitempty"`

	// Raw holds the undecoded body for ad-hoc queries
	Raw []byte `json:"-" yaml:"-"`
}

type GenerationSettings struct {
	NCtx         *int            `json:"n_ctx,omitempty" yaml:"n_ctx,omitempty"`
	Params       *SamplingParams `json:"params,omitempty" yaml:"params,omitempty"`
	ID           int             `json:"id,omitempty" yaml:"id,omitempty"`
	IDTask       int             `json:"id_task,omitempty" yaml:"id_task,omitempty"`
	Speculative  bool            `json:"speculative,omitempty" yaml:"speculative,omitempty"`
	IsProcessing bool            `json:"is_processing,omitempty" yaml:"is_processing,omitempty"`
}

// SamplingParams mirrors default_generation_settings.params
type SamplingParams struct {
	Samplers          []string `json:"samplers,omitempty" yaml:"samplers,omitempty"`
	Stop              []string `json:"stop,omitempty" yaml:"stop,omitempty"`
	NPredict          int      `json:"n_predict" yaml:"n_predict"`
	MaxTokens         int      `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	Seed              int64    `json:"seed" yaml:"seed"`
	Temperature       float64  `json:"temperature" yaml:"temperature"`
	DynatempRange     float64  `json:"dynatemp_range" yaml:"dynatemp_range"`
	DynatempExponent  float64  `json:"dynatemp_exponent" yaml:"dynatemp_exponent"`
	TopK              int      `json:"top_k" yaml:"top_k"`
	TopP              float64  `json:"top_p" yaml:"top_p"`
	MinP              float64  `json:"min_p" yaml:"min_p"`
	XTCProbability    float64  `json:"xtc_probability" yaml:"xtc_probability"`
	XTCThreshold      float64  `json:"xtc_threshold" yaml:"xtc_threshold"`
	TypicalP          float64  `json:"typical_p" yaml:"typical_p"`
	RepeatLastN       int      `json:"repeat_last_n" yaml:"repeat_last_n"`
	RepeatPenalty     float64  `json:"repeat_penalty" yaml:"repeat_penalty"`
	PresencePenalty   float64  `json:"presence_penalty" yaml:"presence_penalty"`
	FrequencyPenalty  float64  `json:"frequency_penalty" yaml:"frequency_penalty"`
	DryMultiplier     float64  `json:"dry_multiplier" yaml:"dry_multiplier"`
	DryBase           float64  `json:"dry_base" yaml:"dry_base"`
	DryAllowedLength  int      `json:"dry_allowed_length" yaml:"dry_allowed_length"`
	DryPenaltyLastN   int      `json:"dry_penalty_last_n" yaml:"dry_penalty_last_n"`
	Mirostat          int      `json:"mirostat" yaml:"mirostat"`
	MirostatTau       float64  `json:"mirostat_tau" yaml:"mirostat_tau"`
	MirostatEta       float64  `json:"mirostat_eta" yaml:"mirostat_eta"`
}

type Modalities struct {
	Vision bool `json:"vision" yaml:"vision"`
	Audio  bool `json:"audio" yaml:"audio"`
}

// FetchState is a point-in-time copy of the properties store
type FetchState struct {
	Props   *ServerProps
	Error   string
	Role    Role
	Loading bool
}
