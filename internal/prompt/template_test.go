package prompt

import (
	"strings"
	"testing"

	"promptd/pkg/types"
)

func TestBuildLlama3FullConversation(t *testing.T) {
	got, err := Build(Spec{
		Family: FamilyLlama3,
		System: "Be terse.",
		User:   "And now?",
		History: []types.Turn{
			{User: "Hi", Assistant: "Hello!"},
		},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := "<|begin_of_text|>" +
		"<|start_header_id|>system<|end_header_id|>\n\nBe terse.<|eot_id|>" +
		"<|start_header_id|>user<|end_header_id|>\n\nHi<|eot_id|>" +
		"<|start_header_id|>assistant<|end_header_id|>\n\nHello!<|eot_id|>" +
		"<|start_header_id|>user<|end_header_id|>\n\nAnd now?<|eot_id|>" +
		"<|start_header_id|>assistant<|end_header_id|>\n\n"
	if got != want {
		t.Fatalf("prompt mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestBuildEndsWithAssistantCue(t *testing.T) {
	// Every family's prompt must end at the point where the assistant turn
	// begins, with no closing token after it.
	suffixes := map[Family]string{
		FamilyLlama:   "[INST] ping [/INST] ",
		FamilyLlama3:  "<|start_header_id|>assistant<|end_header_id|>\n\n",
		FamilyAlpaca:  "### Response:\n",
		FamilyChatML:  "<|im_start|>assistant\n",
		FamilyMistral: "[INST] ping [/INST]",
		FamilyPhi:     "<|assistant|>\n",
		FamilyGemma:   "<start_of_turn>model\n",
	}
	for fam, suffix := range suffixes {
		got, err := Build(Spec{Family: fam, User: "ping"})
		if err != nil {
			t.Fatalf("Build(%s): %v", fam, err)
		}
		if !strings.HasSuffix(got, suffix) {
			t.Errorf("family %s: prompt %q does not end with %q", fam, got, suffix)
		}
	}
}

func TestBuildEmptySystemOmitsBlock(t *testing.T) {
	got, err := Build(Spec{Family: FamilyChatML, User: "hi"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if strings.Contains(got, "<|im_start|>system") {
		t.Fatalf("empty system prompt must not produce a system block: %q", got)
	}
	withSys, err := Build(Spec{Family: FamilyChatML, System: "x", User: "hi"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.HasPrefix(withSys, "<|im_start|>system\nx<|im_end|>\n") {
		t.Fatalf("system block missing: %q", withSys)
	}
}

func TestBuildEmptyUserStillValid(t *testing.T) {
	got, err := Build(Spec{Family: FamilyAlpaca, User: ""})
	if err != nil {
		t.Fatalf("Build with empty user: %v", err)
	}
	if got != "### Instruction:\n\n\n### Response:\n" {
		t.Fatalf("unexpected prompt: %q", got)
	}
}

func TestBuildUnknownFamily(t *testing.T) {
	_, err := Build(Spec{Family: "vogon", User: "hi"})
	if err == nil {
		t.Fatal("expected error for unknown family")
	}
	if !IsUnknownFamily(err) {
		t.Fatalf("IsUnknownFamily(%v) = false", err)
	}
}

func TestParseFamily(t *testing.T) {
	for _, tc := range []struct {
		in      string
		want    Family
		wantErr bool
	}{
		{"chatml", FamilyChatML, false},
		{" ChatML ", FamilyChatML, false},
		{"LLAMA3", FamilyLlama3, false},
		{"", "", true},
		{"gpt4", "", true},
	} {
		got, err := ParseFamily(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseFamily(%q): expected error", tc.in)
			} else if !IsUnknownFamily(err) {
				t.Errorf("ParseFamily(%q): IsUnknownFamily = false", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFamily(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseFamily(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestDefaultStops(t *testing.T) {
	stops := DefaultStops(FamilyLlama3)
	if len(stops) == 0 {
		t.Fatal("llama3 must have default stops")
	}
	found := false
	for _, s := range stops {
		if s == "<|eot_id|>" {
			found = true
		}
	}
	if !found {
		t.Fatalf("llama3 stops %v missing <|eot_id|>", stops)
	}

	// Mutating the returned slice must not leak into the table.
	stops[0] = "mutated"
	if again := DefaultStops(FamilyLlama3); again[0] == "mutated" {
		t.Fatal("DefaultStops must return a copy")
	}

	if DefaultStops("vogon") != nil {
		t.Fatal("unknown family must yield nil stops")
	}
}

func TestDetectFamily(t *testing.T) {
	for _, tc := range []struct {
		filename string
		want     Family
	}{
		{"Meta-Llama-3-8B-Instruct.Q4_K_M.gguf", FamilyLlama3},
		{"llama-2-7b-chat.Q4_0.gguf", FamilyLlama},
		{"mistral-7b-instruct-v0.2.Q5_K_M.gguf", FamilyMistral},
		{"Mixtral-8x7B.gguf", FamilyMistral},
		{"Phi-3-mini-4k-instruct.gguf", FamilyPhi},
		{"gemma-2b-it.gguf", FamilyGemma},
		{"Qwen2-7B-Instruct.gguf", FamilyChatML},
		{"Hermes-2-Pro.gguf", FamilyChatML},
		{"tinyllama-1.1b.gguf", FamilyLlama},
		{"mystery-model.gguf", FamilyLlama},
	} {
		if got := DetectFamily(tc.filename); got != tc.want {
			t.Errorf("DetectFamily(%q) = %s, want %s", tc.filename, got, tc.want)
		}
	}
}
