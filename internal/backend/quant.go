package backend

import "strings"

// vllmGenericQuantization is the vLLM method used for plain int4/int8 requests.
const vllmGenericQuantization = "bitsandbytes"

var (
	vllmNoQuantization = map[string]bool{"": true, "none": true, "no": true, "false": true}
	vllmGenericAliases = map[string]bool{"int8": true, "int4": true, "4": true, "8": true}
	transformers4Bit   = map[string]bool{"int4": true, "4": true, "4bit": true, "4-bit": true}
	transformers8Bit   = map[string]bool{"int8": true, "8": true, "8bit": true, "8-bit": true}
)

func normalizeQuantization(q string) string {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return "none"
	}
	return q
}

// ResolveVLLMQuantization maps the user-facing QUANTIZATION value to a vLLM
// quantization method. ok is false when no quantization should be applied.
// Unknown values pass through unchanged, assumed to be vLLM method names
// such as "awq" or "gptq".
func ResolveVLLMQuantization(q string) (method string, ok bool) {
	v := normalizeQuantization(q)
	switch {
	case vllmNoQuantization[v]:
		return "", false
	case vllmGenericAliases[v]:
		return vllmGenericQuantization, true
	default:
		return v, true
	}
}

// ResolveTransformersBits picks the bitsandbytes bit width for the
// transformers backend. An explicit QUANTIZATION_BITS of 4 or 8 wins over the
// string setting; 0 means no quantization.
func ResolveTransformersBits(bits int, q string) int {
	if bits == 4 || bits == 8 {
		return bits
	}
	v := normalizeQuantization(q)
	switch {
	case transformers4Bit[v]:
		return 4
	case transformers8Bit[v]:
		return 8
	default:
		return 0
	}
}

// BitsAndBytesConfig is attached to transformers model construction when
// weights are loaded in reduced precision.
type BitsAndBytesConfig struct {
	LoadIn4Bit bool
	LoadIn8Bit bool
}

// bitsAndBytesFor returns the config for a resolved bit width, or nil for 0.
func bitsAndBytesFor(bits int) *BitsAndBytesConfig {
	switch bits {
	case 4:
		return &BitsAndBytesConfig{LoadIn4Bit: true}
	case 8:
		return &BitsAndBytesConfig{LoadIn8Bit: true}
	default:
		return nil
	}
}

// tgiQuantize is the text-generation-launcher --quantize value. 4-bit uses
// the fp4 quant type, which is the bitsandbytes default.
func (c *BitsAndBytesConfig) tgiQuantize() string {
	switch {
	case c == nil:
		return ""
	case c.LoadIn4Bit:
		return "bitsandbytes-fp4"
	case c.LoadIn8Bit:
		return "bitsandbytes"
	default:
		return ""
	}
}
