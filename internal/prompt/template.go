package prompt

import (
	"fmt"
	"strings"

	"promptd/pkg/types"
)

// Family identifies a model family's prompt formatting convention.
type Family string

const (
	FamilyLlama   Family = "llama"
	FamilyLlama3  Family = "llama3"
	FamilyAlpaca  Family = "alpaca"
	FamilyChatML  Family = "chatml"
	FamilyMistral Family = "mistral"
	FamilyPhi     Family = "phi"
	FamilyGemma   Family = "gemma"
)

// Spec describes one generation request's conversation context.
// It is consumed once by Build; Build never mutates it.
type Spec struct {
	Family  Family
	System  string
	User    string
	History []types.Turn
}

// template holds the fixed control-token wrapping for one family.
// The formats are data: adding a family means adding a table row.
//   - prefix is emitted once at the very start (BOS-style markers).
//   - system wraps the system prompt (verb %s); omitted when System is empty.
//   - turn wraps one completed history exchange (user %s, assistant %s).
//   - user wraps the final user message and ends with the family's
//     "assistant turn begins" marker. No closing token: generation
//     continues from there.
//   - stops are the family's natural end-of-turn markers, used as default
//     stop sequences when the caller configures none.
type template struct {
	prefix string
	system string
	turn   string
	user   string
	stops  []string
}

var templates = map[Family]template{
	FamilyLlama: {
		system: "<<SYS>>\n%s\n<</SYS>>\n\n",
		turn:   "[INST] %s [/INST] %s\n",
		user:   "[INST] %s [/INST] ",
		stops:  []string{"[INST]", "</s>"},
	},
	FamilyLlama3: {
		prefix: "<|begin_of_text|>",
		system: "<|start_header_id|>system<|end_header_id|>\n\n%s<|eot_id|>",
		turn:   "<|start_header_id|>user<|end_header_id|>\n\n%s<|eot_id|><|start_header_id|>assistant<|end_header_id|>\n\n%s<|eot_id|>",
		user:   "<|start_header_id|>user<|end_header_id|>\n\n%s<|eot_id|><|start_header_id|>assistant<|end_header_id|>\n\n",
		stops:  []string{"<|eot_id|>", "<|end_of_text|>"},
	},
	FamilyAlpaca: {
		system: "%s\n\n",
		turn:   "### Instruction:\n%s\n\n### Response:\n%s\n\n",
		user:   "### Instruction:\n%s\n\n### Response:\n",
		stops:  []string{"### Instruction:"},
	},
	FamilyChatML: {
		system: "<|im_start|>system\n%s<|im_end|>\n",
		turn:   "<|im_start|>user\n%s<|im_end|>\n<|im_start|>assistant\n%s<|im_end|>\n",
		user:   "<|im_start|>user\n%s<|im_end|>\n<|im_start|>assistant\n",
		stops:  []string{"<|im_end|>", "<|im_start|>"},
	},
	FamilyMistral: {
		// Mistral has no system role; the system prompt rides ahead of the
		// first instruction block as plain text.
		system: "%s\n\n",
		turn:   "[INST] %s [/INST]%s</s>",
		user:   "[INST] %s [/INST]",
		stops:  []string{"</s>", "[INST]"},
	},
	FamilyPhi: {
		system: "<|system|>\n%s<|end|>\n",
		turn:   "<|user|>\n%s<|end|>\n<|assistant|>\n%s<|end|>\n",
		user:   "<|user|>\n%s<|end|>\n<|assistant|>\n",
		stops:  []string{"<|end|>", "<|user|>"},
	},
	FamilyGemma: {
		// Gemma has no system role either; same plain-prefix treatment.
		prefix: "<bos>",
		system: "%s\n\n",
		turn:   "<start_of_turn>user\n%s<end_of_turn>\n<start_of_turn>model\n%s<end_of_turn>\n",
		user:   "<start_of_turn>user\n%s<end_of_turn>\n<start_of_turn>model\n",
		stops:  []string{"<end_of_turn>", "<eos>"},
	},
}

// Build assembles the model-family-formatted prompt for spec. It is pure and
// deterministic; the only failure mode is an unrecognized family.
func Build(spec Spec) (string, error) {
	tpl, ok := templates[spec.Family]
	if !ok {
		return "", unknownFamilyError{family: string(spec.Family)}
	}
	var b strings.Builder
	b.WriteString(tpl.prefix)
	if spec.System != "" {
		fmt.Fprintf(&b, tpl.system, spec.System)
	}
	for _, t := range spec.History {
		fmt.Fprintf(&b, tpl.turn, t.User, t.Assistant)
	}
	fmt.Fprintf(&b, tpl.user, spec.User)
	return b.String(), nil
}

// DefaultStops returns the family's natural end-of-turn markers. The result
// is a copy; callers may append to it. Unknown families yield nil.
func DefaultStops(f Family) []string {
	tpl, ok := templates[f]
	if !ok {
		return nil
	}
	return append([]string(nil), tpl.stops...)
}

// ParseFamily validates a family name from config or a request.
// The empty string is not a valid family.
func ParseFamily(s string) (Family, error) {
	f := Family(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := templates[f]; !ok {
		return "", unknownFamilyError{family: s}
	}
	return f, nil
}

// detectOrder is checked first-match-wins; more specific names come first
// (llama3 before llama, so "llama-3" files don't fall through).
var detectOrder = []struct {
	needle string
	family Family
}{
	{"llama-3", FamilyLlama3},
	{"llama3", FamilyLlama3},
	{"meta-llama-3", FamilyLlama3},
	{"mistral", FamilyMistral},
	{"mixtral", FamilyMistral},
	{"phi-", FamilyPhi},
	{"phi3", FamilyPhi},
	{"gemma", FamilyGemma},
	{"qwen", FamilyChatML},
	{"hermes", FamilyChatML},
	{"chatml", FamilyChatML},
	{"alpaca", FamilyAlpaca},
	{"llama", FamilyLlama},
	{"tinyllama", FamilyLlama},
	{"vicuna", FamilyLlama},
}

// DetectFamily guesses the template family from a model filename.
// Returns FamilyLlama when nothing matches; a GGUF file with an unknown
// lineage is still most likely llama-shaped.
func DetectFamily(filename string) Family {
	name := strings.ToLower(filename)
	for _, d := range detectOrder {
		if strings.Contains(name, d.needle) {
			return d.family
		}
	}
	return FamilyLlama
}

// unknownFamilyError signals an unrecognized template family. It is the
// configuration error of the prompt stage: it must surface before any
// engine work starts.
type unknownFamilyError struct{ family string }

func (e unknownFamilyError) Error() string {
	if e.family == "" {
		return "template family not set"
	}
	return "unknown template family: " + e.family
}

// IsUnknownFamily reports whether err indicates an unrecognized template family.
func IsUnknownFamily(err error) bool {
	_, ok := err.(unknownFamilyError)
	return ok
}
